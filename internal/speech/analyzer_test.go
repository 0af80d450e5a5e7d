package speech_test

import (
	"testing"

	"github.com/pitchpartner/pitchpartner/internal/speech"
	"github.com/pitchpartner/pitchpartner/pkg/types"
)

func TestAnalyze_EmptyTranscript(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "\n\t"} {
		got := speech.Analyze(input)
		if got != (types.TranscriptAnalysis{}) {
			t.Errorf("Analyze(%q) = %+v, want zero value", input, got)
		}
	}
}

func TestAnalyze_MixedPitch(t *testing.T) {
	t.Parallel()

	got := speech.Analyze("um, like, I think this is a great product with proven revenue")

	if got.TotalWords != 12 {
		t.Errorf("TotalWords=%d, want 12", got.TotalWords)
	}
	if got.FillerCount < 2 {
		t.Errorf("FillerCount=%d, want ≥ 2 (um, like)", got.FillerCount)
	}
	if got.WeakCount < 1 {
		t.Errorf("WeakCount=%d, want ≥ 1 (\"i think\")", got.WeakCount)
	}
	if got.PowerCount < 2 {
		t.Errorf("PowerCount=%d, want ≥ 2 (proven, revenue)", got.PowerCount)
	}
	if got.ClarityScore >= 100 {
		t.Errorf("ClarityScore=%d, want < 100 with fillers present", got.ClarityScore)
	}
	if got.ConfidenceScore <= 0 || got.ConfidenceScore >= 100 {
		t.Errorf("ConfidenceScore=%d, want interior value from offsetting terms", got.ConfidenceScore)
	}
}

func TestAnalyze_FillersCountOccurrences(t *testing.T) {
	t.Parallel()

	one := speech.Analyze("um this works well today")
	three := speech.Analyze("um um um this works well today")

	if one.FillerCount != 1 {
		t.Errorf("single um FillerCount=%d, want 1", one.FillerCount)
	}
	if three.FillerCount != 3 {
		t.Errorf("triple um FillerCount=%d, want 3", three.FillerCount)
	}
	if three.ClarityScore >= one.ClarityScore {
		t.Errorf("clarity %d with three fillers >= %d with one", three.ClarityScore, one.ClarityScore)
	}
}

func TestAnalyze_WeakPhrasesArePresenceFlags(t *testing.T) {
	t.Parallel()

	once := speech.Analyze("maybe the product will succeed in this space")
	many := speech.Analyze("maybe maybe maybe the product will maybe succeed maybe")

	if once.WeakCount != 1 {
		t.Errorf("single maybe WeakCount=%d, want 1", once.WeakCount)
	}
	if many.WeakCount != 1 {
		t.Errorf("repeated maybe WeakCount=%d, want 1 (presence flag)", many.WeakCount)
	}
}

func TestAnalyze_PowerWordsRaiseConfidence(t *testing.T) {
	t.Parallel()

	plain := speech.Analyze("our company builds software for small teams everywhere")
	strong := speech.Analyze("our traction shows revenue growth with healthy margins")

	if strong.PowerCount < 4 {
		t.Errorf("PowerCount=%d, want ≥ 4", strong.PowerCount)
	}
	if strong.ConfidenceScore <= plain.ConfidenceScore {
		t.Errorf("confidence %d with power words <= %d without", strong.ConfidenceScore, plain.ConfidenceScore)
	}
}

func TestAnalyze_WholeWordMatching(t *testing.T) {
	t.Parallel()

	// "sovereign" contains "so" and "reign" but neither is a whole-word hit.
	got := speech.Analyze("sovereign customers drumming business")
	if got.FillerCount != 0 {
		t.Errorf("FillerCount=%d, want 0 (substring must not match)", got.FillerCount)
	}

	// "umbrella" must not count as "um".
	got = speech.Analyze("umbrella insurance covers everything")
	if got.FillerCount != 0 {
		t.Errorf("FillerCount=%d for umbrella, want 0", got.FillerCount)
	}
}

func TestAnalyze_ScoresClamped(t *testing.T) {
	t.Parallel()

	// Pathological input: nothing but fillers and hedges.
	got := speech.Analyze("um uh like um uh maybe i think i guess not sure probably um uh like")
	if got.ClarityScore < 0 || got.ClarityScore > 100 {
		t.Errorf("ClarityScore=%d out of range", got.ClarityScore)
	}
	if got.ConfidenceScore < 0 || got.ConfidenceScore > 100 {
		t.Errorf("ConfidenceScore=%d out of range", got.ConfidenceScore)
	}
}
