// Package speech implements lexical analysis of pitch transcripts: filler
// word counting, weak/power phrase detection, and the derived clarity and
// confidence scores.
//
// The analysis is a heuristic linear model over three fixed lexicons. Filler
// words are counted per occurrence (five "um"s are five disfluencies); weak
// and power phrases are presence flags (one "maybe" hedges the pitch as much
// as five). The exact coefficients live in this package so the qualitative
// properties hold: more fillers or hedging lowers both scores, power
// vocabulary raises confidence, fillers hit clarity harder than confidence,
// and weak phrases hit confidence harder than clarity.
package speech

import (
	"regexp"
	"strings"

	"github.com/pitchpartner/pitchpartner/pkg/types"
)

// Scoring coefficients. clarity = 100 − fillerRatio×fillerClarityWeight −
// weak×weakClarityPenalty; confidence = confidenceBaseline +
// power×powerBonus − weak×weakConfidencePenalty − filler×fillerConfidencePenalty.
const (
	fillerClarityWeight     = 150.0
	weakClarityPenalty      = 4
	confidenceBaseline      = 48
	powerBonus              = 9
	weakConfidencePenalty   = 7
	fillerConfidencePenalty = 2
)

// fillerPattern matches verbal disfluencies as whole words, anywhere in the
// transcript. Occurrences are summed, not deduplicated.
var fillerPattern = regexp.MustCompile(`(?i)\b(?:um|uh|like|you know|basically|actually|literally|so|right)\b`)

// weakPhrases are hedging expressions counted as presence flags: at most one
// hit per phrase per transcript.
var weakPhrases = compileWordPatterns(
	"i think", "maybe", "sort of", "kind of", "probably", "i guess",
	"not sure", "hopefully", "we'll see", "possibly",
)

// powerWords are domain-confidence vocabulary, also presence flags.
var powerWords = compileWordPatterns(
	"revenue", "growth", "traction", "margins", "profit", "market",
	"scalable", "proven", "retention", "conversion", "roi", "valuation",
	"moat", "customers", "demand",
)

func compileWordPatterns(terms ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(terms))
	for i, term := range terms {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
	}
	return out
}

// Analyze maps a transcript to its lexical metrics and derived scores.
// A transcript with zero whitespace-separated tokens returns the zero value.
func Analyze(transcript string) types.TranscriptAnalysis {
	words := strings.Fields(strings.ToLower(transcript))
	if len(words) == 0 {
		return types.TranscriptAnalysis{}
	}

	fillers := len(fillerPattern.FindAllStringIndex(transcript, -1))
	weak := countPresent(weakPhrases, transcript)
	power := countPresent(powerWords, transcript)

	fillerRatio := float64(fillers) / float64(len(words))
	clarity := 100 - int(fillerRatio*fillerClarityWeight+0.5) - weak*weakClarityPenalty
	confidence := confidenceBaseline + power*powerBonus - weak*weakConfidencePenalty - fillers*fillerConfidencePenalty

	return types.TranscriptAnalysis{
		TotalWords:      len(words),
		FillerCount:     fillers,
		WeakCount:       weak,
		PowerCount:      power,
		ClarityScore:    clampScore(clarity),
		ConfidenceScore: clampScore(confidence),
	}
}

// countPresent counts how many of the patterns appear at least once.
func countPresent(patterns []*regexp.Regexp, text string) int {
	n := 0
	for _, p := range patterns {
		if p.MatchString(text) {
			n++
		}
	}
	return n
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
