package anyllm

import (
	"testing"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/pitchpartner/pitchpartner/pkg/provider/chat"
	"github.com/pitchpartner/pitchpartner/pkg/types"
)

// ── New ───────────────────────────────────────────────────────────────────────

func TestNew_RequiresProviderAndModel(t *testing.T) {
	if _, err := New("", "gpt-4o-mini"); err == nil {
		t.Error("expected error for empty provider name")
	}
	if _, err := New("openai", ""); err == nil {
		t.Error("expected error for empty model")
	}
}

func TestNew_UnsupportedBackend(t *testing.T) {
	if _, err := New("legacy-gpt", "some-model"); err == nil {
		t.Error("expected error for unsupported backend")
	}
}

// ── buildParams ───────────────────────────────────────────────────────────────

func TestBuildParams_SystemPromptFirst(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}
	params := p.buildParams(chat.Request{
		SystemPrompt: "You are a skeptical investor.",
		Messages: []types.Message{
			{Role: types.RoleAssistant, Content: "Pitch me."},
			{Role: types.RoleUser, Content: "We sell robot lawyers."},
		},
	})

	if params.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", params.Model)
	}
	if len(params.Messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(params.Messages))
	}
	if params.Messages[0].Role != anyllmlib.RoleSystem {
		t.Errorf("first role = %q, want system", params.Messages[0].Role)
	}
	if params.Messages[1].Role != types.RoleAssistant || params.Messages[2].Role != types.RoleUser {
		t.Errorf("history roles = %q, %q", params.Messages[1].Role, params.Messages[2].Role)
	}
}

func TestBuildParams_OptionalFields(t *testing.T) {
	p := &Provider{model: "m"}

	params := p.buildParams(chat.Request{Messages: []types.Message{{Role: types.RoleUser, Content: "hi"}}})
	if params.Temperature != nil || params.MaxTokens != nil {
		t.Error("zero temperature and max tokens must be omitted")
	}
	if len(params.Messages) != 1 {
		t.Fatalf("messages = %d, want 1 (no system entry)", len(params.Messages))
	}

	params = p.buildParams(chat.Request{
		Messages:    []types.Message{{Role: types.RoleUser, Content: "hi"}},
		Temperature: 0.9,
		MaxTokens:   256,
	})
	if params.Temperature == nil || *params.Temperature != 0.9 {
		t.Errorf("temperature = %v, want 0.9", params.Temperature)
	}
	if params.MaxTokens == nil || *params.MaxTokens != 256 {
		t.Errorf("max tokens = %v, want 256", params.MaxTokens)
	}
}
