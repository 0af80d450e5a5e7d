package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pitchpartner/pitchpartner/internal/persona"
	"github.com/pitchpartner/pitchpartner/internal/score"
	"github.com/pitchpartner/pitchpartner/pkg/provider/chat"
	"github.com/pitchpartner/pitchpartner/pkg/types"
)

// ErrEmptyReport is returned when the model replies with nothing
// usable after sanitization.
var ErrEmptyReport = errors.New("report: model returned empty report")

// Compile-time interface check.
var _ Generator = (*LLMGenerator)(nil)

const reportSystemPrompt = `You are a pitch coach reviewing a founder's practice session. ` +
	`Write a short coaching report in plain prose: open with an honest verdict, ` +
	`cover speech clarity, confidence, eye contact and posture using the numbers given, ` +
	`give one concrete drill to practice before the next session, and close with ` +
	`one sentence of encouragement. Do not use headings or bullet points. ` +
	`Keep it under 200 words.`

// LLMGenerator produces a coaching report by asking a chat model.
type LLMGenerator struct {
	provider chat.Provider
	log      *slog.Logger
}

// NewLLMGenerator creates a generator backed by the given chat provider.
func NewLLMGenerator(provider chat.Provider, log *slog.Logger) *LLMGenerator {
	if log == nil {
		log = slog.Default()
	}
	return &LLMGenerator{provider: provider, log: log}
}

// Generate builds a session summary prompt, asks the model and strips
// any reasoning markup from the reply. An empty reply after stripping
// is reported as [ErrEmptyReport] so callers can fall back.
func (g *LLMGenerator) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := g.provider.Complete(ctx, chat.Request{
		SystemPrompt: reportSystemPrompt,
		Messages: []types.Message{
			{Role: types.RoleUser, Content: buildSessionSummary(req)},
		},
		Temperature: 0.7,
		MaxTokens:   512,
	})
	if err != nil {
		return "", fmt.Errorf("report: chat completion: %w", err)
	}

	text := StripReasoning(resp.Content)
	if text == "" {
		return "", ErrEmptyReport
	}
	return text, nil
}

// buildSessionSummary renders the session numbers and transcript
// excerpts into the user message handed to the model.
func buildSessionSummary(req Request) string {
	var b strings.Builder

	p, _ := persona.Get(req.Persona)
	m, _ := persona.GetMode(req.Mode)
	fmt.Fprintf(&b, "Session: %d round(s) against %s in %s mode.", req.Metrics.Rounds, p.DisplayName, m.DisplayName)
	if req.Roast {
		b.WriteString(" Roast mode was on.")
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Scores: clarity %d, confidence %d, eye contact %d, posture %d. Overall %d (%s).\n",
		req.Metrics.ClarityScore, req.Metrics.ConfidenceScore,
		req.Metrics.EyeContactScore, req.Metrics.PostureScore,
		score.Overall(req.Metrics), score.LetterGrade(score.Overall(req.Metrics)))
	fmt.Fprintf(&b, "Filler words: %d of %d total words.\n", req.Metrics.FillerWords, req.Metrics.TotalWords)
	fmt.Fprintf(&b, "Camera readings: %d samples, %d discarded, eye-contact variance %.1f, drift %d%%.\n",
		req.Visual.Samples, req.Visual.Discarded, req.Visual.EyeContactVariance, req.Visual.DriftPercent)

	if excerpt := lastUserUtterances(req.Messages, 3); excerpt != "" {
		b.WriteString("\nWhat the founder said (most recent first):\n")
		b.WriteString(excerpt)
	}
	return b.String()
}

// lastUserUtterances returns up to n of the most recent user messages,
// newest first, one per line.
func lastUserUtterances(messages []types.Message, n int) string {
	var lines []string
	for i := len(messages) - 1; i >= 0 && len(lines) < n; i-- {
		if messages[i].Role == types.RoleUser {
			lines = append(lines, "- "+messages[i].Content)
		}
	}
	return strings.Join(lines, "\n")
}
