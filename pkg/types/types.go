// Package types defines the shared types used across all Pitch Partner packages.
//
// These types form the lingua franca between the vision engine, the speech
// analyzer, the score fusion layer, and the session controller. They are
// intentionally minimal; each package defines its own domain types, but
// cross-cutting data structures live here to avoid circular imports.
package types

// Landmark is a single normalized 3D keypoint produced by an external face
// mesh or pose estimation model. Coordinates are in normalized image space
// (x, y typically in [0,1]; z is relative depth). Visibility is a per-point
// confidence reported only by pose models; face mesh points leave it zero.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	// Visibility is the detection confidence for pose landmarks (0.0–1.0).
	// Face landmarks do not carry visibility; the field stays zero for them.
	Visibility float64 `json:"visibility,omitempty"`
}

// FaceLandmarkSet is the ordered landmark sequence for one detected face in
// one frame. Index positions are semantically fixed (MediaPipe FaceMesh
// topology: index 1 is the nose tip, 468/473 the pupils when iris refinement
// is active). A set is ephemeral; the engine only ever consumes the latest.
type FaceLandmarkSet []Landmark

// PoseLandmarkSet is the ordered landmark sequence for one detected body in
// one frame (MediaPipe Pose topology: 11/12 shoulders, 7/8 ears, 23/24 hips).
// Same latest-only lifecycle as [FaceLandmarkSet].
type PoseLandmarkSet []Landmark

// LandmarkFrame is one detection cycle's worth of landmarks as delivered by
// the external landmark source. Either set may be nil when the corresponding
// model found nothing this tick.
type LandmarkFrame struct {
	Face FaceLandmarkSet `json:"face,omitempty"`
	Pose PoseLandmarkSet `json:"pose,omitempty"`

	// TimestampMs is the capture time in milliseconds since session start.
	TimestampMs int64 `json:"timestamp_ms"`
}

// VisualSample is one aggregation tick's derived scores. Samples are appended
// to a session-scoped, append-only log and never mutated after creation.
type VisualSample struct {
	// EyeContact is the per-frame eye-contact score (0–100).
	EyeContact int `json:"eye_contact"`

	// Posture is the per-frame posture score (0–100).
	Posture int `json:"posture"`

	// TimestampMs is the sample time in milliseconds since session start.
	TimestampMs int64 `json:"timestamp_ms"`
}

// SessionMetrics is the mutable aggregate record for one practice session.
// Transcript-derived fields are updated once per completed round; visual
// fields are updated on every aggregation tick. All fields are non-negative
// and the four scores are percentages in [0,100].
type SessionMetrics struct {
	FillerWords     int `json:"filler_words"`
	TotalWords      int `json:"total_words"`
	ClarityScore    int `json:"clarity_score"`
	ConfidenceScore int `json:"confidence_score"`
	EyeContactScore int `json:"eye_contact_score"`
	PostureScore    int `json:"posture_score"`

	// Rounds counts completed rounds. It increments exactly once per
	// successfully analyzed transcript; empty transcripts do not count.
	Rounds int `json:"rounds"`
}

// TranscriptAnalysis is the immutable per-utterance result of lexical
// analysis. It is produced once per user utterance, folded into
// [SessionMetrics], and then discarded.
type TranscriptAnalysis struct {
	TotalWords      int
	FillerCount     int
	WeakCount       int
	PowerCount      int
	ClarityScore    int
	ConfidenceScore int
}

// Message is a single entry in the session transcript log. The log is
// append-only during a session and insertion order is significant.
type Message struct {
	// Role is "user" or "assistant" ("system" appears only in provider
	// requests, never in the session log).
	Role string `json:"role"`

	// Content is the text content of the message.
	Content string `json:"content"`
}

// Message role values.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// VoiceProfile describes a TTS voice configuration for an investor persona.
type VoiceProfile struct {
	// ID is the provider-specific voice identifier.
	ID string

	// Name is the human-readable voice name.
	Name string

	// Style is a free-text delivery description (e.g., "clipped, impatient").
	Style string

	// SpeedFactor adjusts speaking rate (0.5–2.0, 1.0 = default).
	SpeedFactor float64
}
