package vision

import (
	"sync"

	"github.com/pitchpartner/pitchpartner/pkg/types"
)

// varianceWindow is the number of most-recent samples over which eye-contact
// variance is computed. The variance is a steadiness indicator only; it never
// feeds back into the running scores.
const varianceWindow = 10

// driftThreshold is the frame-to-frame eye-contact delta above which a pair
// of consecutive samples counts as a drift event.
const driftThreshold = 15

// Snapshot is a point-in-time view of the aggregator's running values.
type Snapshot struct {
	// EyeContact and Posture are the recency-weighted running scores (0–100).
	EyeContact int
	Posture    int

	// EyeContactVariance is the population variance of eye-contact over the
	// last [varianceWindow] samples. Zero until enough samples exist.
	EyeContactVariance float64

	// DriftPercent is the share of consecutive sample pairs whose eye-contact
	// delta exceeds [driftThreshold], in [0,100].
	DriftPercent int

	// Samples is the total number of retained samples.
	Samples int

	// Discarded counts detection cycles dropped because both scores were zero.
	Discarded int
}

// Aggregator consumes the per-tick visual sample stream and maintains
// recency-weighted running averages for eye contact and posture, a
// rolling-window eye-contact variance, and the full session sample log.
//
// The running average weights sample i (1-indexed from the start of the log)
// by i, so recent behaviour dominates without history being discarded. The
// averages are recomputed from the entire log on every ingestion, which keeps
// them deterministic given the log; session sample counts are small enough
// (a few hundred) that the O(n) pass is irrelevant.
//
// Aggregator is safe for concurrent use: sample ingestion runs on the
// landmark tick while snapshots are read by the round pipeline and the API.
type Aggregator struct {
	mu        sync.Mutex
	log       []types.VisualSample
	eyeAvg    int
	postAvg   int
	variance  float64
	discarded int
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Ingest appends a sample to the log and recomputes the running values.
//
// A sample with both scores at zero is treated as "no reading" (the detector
// found neither a usable face nor a usable body this cycle) and is discarded
// rather than recorded as a literal zero observation. This keeps sensor
// dropouts from dragging the averages down. The return value reports
// whether the sample entered the averages; the discarded counter in
// [Snapshot] tallies the rejections, and this is the only place that
// decision is made.
func (a *Aggregator) Ingest(s types.VisualSample) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s.EyeContact <= 0 && s.Posture <= 0 {
		a.discarded++
		return false
	}

	a.log = append(a.log, s)
	a.eyeAvg = weightedMean(a.log, func(v types.VisualSample) int { return v.EyeContact })
	a.postAvg = weightedMean(a.log, func(v types.VisualSample) int { return v.Posture })

	if len(a.log) >= varianceWindow {
		a.variance = populationVariance(a.log[len(a.log)-varianceWindow:])
	}
	return true
}

// Snapshot returns the current running values.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	return Snapshot{
		EyeContact:         a.eyeAvg,
		Posture:            a.postAvg,
		EyeContactVariance: a.variance,
		DriftPercent:       driftPercent(a.log),
		Samples:            len(a.log),
		Discarded:          a.discarded,
	}
}

// Log returns a copy of the retained sample log.
func (a *Aggregator) Log() []types.VisualSample {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]types.VisualSample, len(a.log))
	copy(out, a.log)
	return out
}

// Reset clears all retained state for a fresh session.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.log = nil
	a.eyeAvg = 0
	a.postAvg = 0
	a.variance = 0
	a.discarded = 0
}

// weightedMean computes the linearly recency-weighted average of the selected
// field: sample i (1-indexed) carries weight i. An empty log yields 0.
func weightedMean(log []types.VisualSample, field func(types.VisualSample) int) int {
	var sum, weights float64
	for i, s := range log {
		w := float64(i + 1)
		sum += float64(field(s)) * w
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return clampScore(sum / weights)
}

// populationVariance computes the population (not sample) variance of the
// eye-contact scores in window.
func populationVariance(window []types.VisualSample) float64 {
	n := float64(len(window))
	if n == 0 {
		return 0
	}

	var mean float64
	for _, s := range window {
		mean += float64(s.EyeContact)
	}
	mean /= n

	var sq float64
	for _, s := range window {
		d := float64(s.EyeContact) - mean
		sq += d * d
	}
	return sq / n
}

// driftPercent is the percentage of consecutive sample pairs whose
// eye-contact delta exceeds the drift threshold.
func driftPercent(log []types.VisualSample) int {
	if len(log) < 2 {
		return 0
	}

	events := 0
	for i := 1; i < len(log); i++ {
		delta := log[i].EyeContact - log[i-1].EyeContact
		if delta < 0 {
			delta = -delta
		}
		if delta > driftThreshold {
			events++
		}
	}
	return clampScore(float64(events) / float64(len(log)-1) * 100)
}
