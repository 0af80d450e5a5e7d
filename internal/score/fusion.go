// Package score fuses per-round transcript analysis with the vision engine's
// running visual scores into the live session metrics record, and computes
// the final overall score and letter grade at session end.
package score

import (
	"github.com/pitchpartner/pitchpartner/internal/vision"
	"github.com/pitchpartner/pitchpartner/pkg/types"
)

// Round blending uses exponential smoothing: history keeps 60% of its weight
// and the new round contributes 40%. The first round sets the scores
// directly; there is no prior to blend with.
const (
	historyWeight  = 0.6
	newRoundWeight = 0.4
)

// ApplyRound folds one round's transcript analysis into the session metrics.
// Word and filler counts accumulate; clarity and confidence are blended with
// the history. The round counter increments once per call, so callers must
// not invoke ApplyRound for empty or failed transcripts.
func ApplyRound(m *types.SessionMetrics, a types.TranscriptAnalysis) {
	m.TotalWords += a.TotalWords
	m.FillerWords += a.FillerCount

	if m.Rounds == 0 {
		m.ClarityScore = a.ClarityScore
		m.ConfidenceScore = a.ConfidenceScore
	} else {
		m.ClarityScore = blend(m.ClarityScore, a.ClarityScore)
		m.ConfidenceScore = blend(m.ConfidenceScore, a.ConfidenceScore)
	}
	m.Rounds++
}

// ApplyVisual copies the aggregator's running visual scores into the metrics
// record verbatim. The aggregator already performs its own temporal
// smoothing, so no further blending happens here.
func ApplyVisual(m *types.SessionMetrics, snap vision.Snapshot) {
	m.EyeContactScore = snap.EyeContact
	m.PostureScore = snap.Posture
}

// Overall is the end-of-session score: the unweighted mean of the four
// component scores, each contributing 25%.
func Overall(m types.SessionMetrics) int {
	sum := m.ClarityScore + m.ConfidenceScore + m.EyeContactScore + m.PostureScore
	return (sum + 2) / 4 // mean of the four components, rounded
}

// LetterGrade maps an overall score to its tier. Total over [0,100].
func LetterGrade(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B+"
	case score >= 60:
		return "B"
	case score >= 50:
		return "C+"
	case score >= 40:
		return "C"
	default:
		return "D"
	}
}

func blend(history, incoming int) int {
	return int(historyWeight*float64(history) + newRoundWeight*float64(incoming) + 0.5)
}
