package score_test

import (
	"testing"

	"github.com/pitchpartner/pitchpartner/internal/score"
	"github.com/pitchpartner/pitchpartner/internal/vision"
	"github.com/pitchpartner/pitchpartner/pkg/types"
)

func TestApplyRound_FirstRoundSetsDirectly(t *testing.T) {
	t.Parallel()

	var m types.SessionMetrics
	score.ApplyRound(&m, types.TranscriptAnalysis{
		TotalWords:      40,
		FillerCount:     3,
		ClarityScore:    72,
		ConfidenceScore: 61,
	})

	if m.ClarityScore != 72 || m.ConfidenceScore != 61 {
		t.Errorf("round 1 scores = %d/%d, want raw 72/61", m.ClarityScore, m.ConfidenceScore)
	}
	if m.Rounds != 1 {
		t.Errorf("Rounds=%d, want 1", m.Rounds)
	}
	if m.TotalWords != 40 || m.FillerWords != 3 {
		t.Errorf("counts = %d words / %d fillers, want 40/3", m.TotalWords, m.FillerWords)
	}
}

func TestApplyRound_LaterRoundsBlend(t *testing.T) {
	t.Parallel()

	var m types.SessionMetrics
	score.ApplyRound(&m, types.TranscriptAnalysis{TotalWords: 30, ClarityScore: 80, ConfidenceScore: 50})
	score.ApplyRound(&m, types.TranscriptAnalysis{TotalWords: 20, FillerCount: 2, ClarityScore: 60, ConfidenceScore: 70})

	// 0.6×80 + 0.4×60 = 72; 0.6×50 + 0.4×70 = 58.
	if m.ClarityScore != 72 {
		t.Errorf("ClarityScore=%d, want 72", m.ClarityScore)
	}
	if m.ConfidenceScore != 58 {
		t.Errorf("ConfidenceScore=%d, want 58", m.ConfidenceScore)
	}
	if m.Rounds != 2 {
		t.Errorf("Rounds=%d, want 2", m.Rounds)
	}
	if m.TotalWords != 50 || m.FillerWords != 2 {
		t.Errorf("counts = %d/%d, want 50/2 (additively accumulated)", m.TotalWords, m.FillerWords)
	}
}

func TestApplyVisual_CopiesRunningScoresVerbatim(t *testing.T) {
	t.Parallel()

	m := types.SessionMetrics{EyeContactScore: 10, PostureScore: 20}
	score.ApplyVisual(&m, vision.Snapshot{EyeContact: 85, Posture: 74})

	if m.EyeContactScore != 85 || m.PostureScore != 74 {
		t.Errorf("visual scores = %d/%d, want 85/74", m.EyeContactScore, m.PostureScore)
	}
}

func TestOverall(t *testing.T) {
	t.Parallel()

	m := types.SessionMetrics{
		ClarityScore:    80,
		ConfidenceScore: 60,
		EyeContactScore: 70,
		PostureScore:    50,
	}
	if got := score.Overall(m); got != 65 {
		t.Errorf("Overall=%d, want 65", got)
	}
	if got := score.Overall(types.SessionMetrics{}); got != 0 {
		t.Errorf("Overall of zero metrics=%d, want 0", got)
	}
}

func TestLetterGrade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		want  string
	}{
		{100, "A+"}, {90, "A+"},
		{89, "A"}, {80, "A"},
		{79, "B+"}, {70, "B+"},
		{69, "B"}, {65, "B"}, {60, "B"},
		{59, "C+"}, {50, "C+"},
		{49, "C"}, {40, "C"},
		{39, "D"}, {0, "D"},
	}
	for _, tt := range tests {
		if got := score.LetterGrade(tt.score); got != tt.want {
			t.Errorf("LetterGrade(%d)=%q, want %q", tt.score, got, tt.want)
		}
	}
}
