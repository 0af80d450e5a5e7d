package persona_test

import (
	"strings"
	"testing"

	"github.com/pitchpartner/pitchpartner/internal/persona"
)

func TestAllPersonasAreComplete(t *testing.T) {
	t.Parallel()

	for _, id := range persona.All() {
		p, ok := persona.Get(id)
		if !ok {
			t.Fatalf("persona %q missing from table", id)
		}
		if p.DisplayName == "" || p.SystemPrompt == "" || p.Opener == "" {
			t.Errorf("persona %q has empty text fields: %+v", id, p)
		}
		if p.Voice.ID == "" || p.Voice.SpeedFactor <= 0 {
			t.Errorf("persona %q has incomplete voice profile: %+v", id, p.Voice)
		}
		if !id.IsValid() {
			t.Errorf("IsValid()=false for defined persona %q", id)
		}
	}
}

func TestUnknownPersonaRejected(t *testing.T) {
	t.Parallel()

	if persona.ID("angel").IsValid() {
		t.Error("undefined persona reported valid")
	}
	if _, ok := persona.Get("angel"); ok {
		t.Error("Get returned entry for undefined persona")
	}
}

func TestSystemPromptRoastAddendum(t *testing.T) {
	t.Parallel()

	plain := persona.SystemPrompt(persona.Skeptic, false)
	roast := persona.SystemPrompt(persona.Skeptic, true)

	if !strings.HasPrefix(roast, plain) {
		t.Error("roast prompt does not extend the base prompt")
	}
	if !strings.Contains(roast, "amateur hour") {
		t.Error("roast addendum missing")
	}
	if strings.Contains(plain, "amateur hour") {
		t.Error("base prompt contains the roast addendum")
	}
}

func TestModeTable(t *testing.T) {
	t.Parallel()

	sprint, ok := persona.GetMode(persona.ModeSprint)
	if !ok || sprint.DurationSeconds != 60 {
		t.Errorf("sprint mode = %+v, want 60s countdown", sprint)
	}

	boardroom, _ := persona.GetMode(persona.ModeBoardroom)
	if boardroom.DurationSeconds != 0 || boardroom.RoundsTarget != 5 {
		t.Errorf("boardroom mode = %+v, want untimed with 5 round target", boardroom)
	}

	freeform, _ := persona.GetMode(persona.ModeFreeform)
	if freeform.DurationSeconds != 0 || freeform.RoundsTarget != 0 {
		t.Errorf("freeform mode = %+v, want no constraints", freeform)
	}

	if persona.ModeID("marathon").IsValid() {
		t.Error("undefined mode reported valid")
	}
}
