package report_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pitchpartner/pitchpartner/internal/report"
	"github.com/pitchpartner/pitchpartner/pkg/provider/chat"
	"github.com/pitchpartner/pitchpartner/pkg/provider/chat/mock"
	"github.com/pitchpartner/pitchpartner/pkg/types"
)

func TestLLMGenerator_StripsReasoningMarkup(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{Response: &chat.Response{
		Content: "<think>low filler count, lean positive</think>Tight pitch, keep the pace.",
	}}

	text, err := report.NewLLMGenerator(provider, nil).Generate(context.Background(), goodSessionRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Tight pitch, keep the pace." {
		t.Errorf("text = %q", text)
	}
}

func TestLLMGenerator_PromptCarriesSessionNumbers(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{Response: &chat.Response{Content: "ok"}}
	req := goodSessionRequest()
	req.Messages = []types.Message{
		{Role: types.RoleAssistant, Content: "Convince me."},
		{Role: types.RoleUser, Content: "We grew revenue 40% last quarter."},
	}

	if _, err := report.NewLLMGenerator(provider, nil).Generate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.CallCount() != 1 {
		t.Fatalf("CallCount = %d, want 1", provider.CallCount())
	}
	sent := provider.Calls[0]
	if sent.SystemPrompt == "" {
		t.Error("system prompt is empty")
	}
	summary := sent.Messages[len(sent.Messages)-1].Content
	for _, want := range []string{
		"clarity 88", "confidence 75", "eye contact 85", "posture 80",
		"2 of 100 total words",
		"We grew revenue 40% last quarter.",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestLLMGenerator_EmptyAfterSanitization(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{Response: &chat.Response{Content: "<think>all markup</think>"}}

	_, err := report.NewLLMGenerator(provider, nil).Generate(context.Background(), goodSessionRequest())
	if !errors.Is(err, report.ErrEmptyReport) {
		t.Fatalf("err = %v, want ErrEmptyReport", err)
	}
}

func TestLLMGenerator_ProviderError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("backend down")
	provider := &mock.Provider{Err: wantErr}

	_, err := report.NewLLMGenerator(provider, nil).Generate(context.Background(), goodSessionRequest())
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped %v", err, wantErr)
	}
}
