package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/pitchpartner/pitchpartner/internal/score"
)

// Compile-time interface check.
var _ Generator = (*RuleBased)(nil)

// RuleBased builds a coaching report from the session numbers alone.
// Given the same request it always produces the same text, so it is
// safe to use as the fallback when no chat model is reachable.
type RuleBased struct{}

// NewRuleBased creates the deterministic report generator.
func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

// Generate never fails and never returns an empty report.
func (*RuleBased) Generate(_ context.Context, req Request) (string, error) {
	m := req.Metrics
	overall := score.Overall(m)

	var b strings.Builder

	b.WriteString(verdict(m.ConfidenceScore))
	fmt.Fprintf(&b, " Overall you scored %d, grade %s.", overall, score.LetterGrade(overall))

	if m.Rounds == 0 {
		b.WriteString(" You ended the session before pitching anything, so there is nothing to score on the speech side.")
	} else {
		fmt.Fprintf(&b, " Across %d round(s) your clarity came out at %d and your confidence at %d.",
			m.Rounds, m.ClarityScore, m.ConfidenceScore)
		if m.TotalWords > 0 {
			fmt.Fprintf(&b, " You used %d filler words in %d words", m.FillerWords, m.TotalWords)
			if m.FillerWords*20 >= m.TotalWords {
				b.WriteString(", which is high enough that investors will notice.")
			} else {
				b.WriteString(", a rate most listeners will not register.")
			}
		}
	}

	b.WriteString(" ")
	b.WriteString(presenceCommentary(req))
	b.WriteString(" ")
	b.WriteString(drill(req))
	b.WriteString(" Run another session and try to beat today's overall score.")

	return b.String(), nil
}

// verdict opens the report with an honest read on the confidence score.
func verdict(confidence int) string {
	switch {
	case confidence >= 75:
		return "Strong session: you sounded like someone who believes their own numbers."
	case confidence >= 55:
		return "Solid session with room to grow: the conviction is there but it wavers."
	case confidence >= 35:
		return "Shaky session: the pitch read more like a question than a statement."
	default:
		return "Rough session: the delivery undercut the content almost everywhere."
	}
}

// presenceCommentary covers the camera-derived half of the scorecard.
func presenceCommentary(req Request) string {
	if req.Visual.Samples == 0 {
		return "The camera never produced a usable reading, so eye contact and posture went unscored this time."
	}

	m := req.Metrics
	var parts []string

	switch {
	case m.EyeContactScore >= 80:
		parts = append(parts, fmt.Sprintf("Eye contact was a strength at %d", m.EyeContactScore))
	case m.EyeContactScore >= 55:
		parts = append(parts, fmt.Sprintf("Eye contact was serviceable at %d", m.EyeContactScore))
	default:
		parts = append(parts, fmt.Sprintf("Eye contact needs work at %d", m.EyeContactScore))
	}
	if req.Visual.EyeContactVariance > 200 {
		parts = append(parts, "though your gaze swung around a lot, so hold it steadier")
	}

	switch {
	case m.PostureScore >= 80:
		parts = append(parts, fmt.Sprintf("and posture held up well at %d.", m.PostureScore))
	case m.PostureScore >= 55:
		parts = append(parts, fmt.Sprintf("and posture was acceptable at %d.", m.PostureScore))
	default:
		parts = append(parts, fmt.Sprintf("and posture dragged you down at %d.", m.PostureScore))
	}

	return strings.Join(parts, ", ")
}

// drill picks the one concrete exercise that targets the weakest area.
func drill(req Request) string {
	m := req.Metrics

	weakest := m.ClarityScore
	which := "clarity"
	for _, c := range []struct {
		score int
		name  string
	}{
		{m.ConfidenceScore, "confidence"},
		{m.EyeContactScore, "eye contact"},
		{m.PostureScore, "posture"},
	} {
		if c.score < weakest {
			weakest, which = c.score, c.name
		}
	}

	switch which {
	case "clarity":
		return "Drill for next time: record a one-minute pitch and re-record it until you get through with zero filler words."
	case "confidence":
		return "Drill for next time: rewrite your opening line as a flat statement of fact, then say it out loud ten times without hedging."
	case "eye contact":
		return "Drill for next time: pitch to a sticky note at camera height and keep your eyes on it for a full minute."
	default:
		return "Drill for next time: pitch standing up with your shoulders against a wall to reset what level feels like."
	}
}
