// Package vision implements the visual metrics engine: derivation of
// eye-contact and posture scores from raw face/pose landmark geometry, and
// temporal aggregation of those per-frame scores into session-level running
// values.
//
// Score derivation is stateless: both derivers are pure functions over a
// single frame's landmark set. Malformed input (missing points, sub-threshold
// visibility) never produces an error; the derivers fail closed and return 0
// so a noisy detection cycle cannot break the pipeline.
//
// Landmark index positions follow the MediaPipe topologies: FaceMesh with
// iris refinement for faces (468+ points) and the 33-point Pose model for
// bodies. The engine only consumes these coordinates; detection itself is an
// external capability.
package vision

import "github.com/pitchpartner/pitchpartner/pkg/types"

// FaceMesh indices used by the eye-contact deriver.
const (
	idxNoseTip = 1

	// Pupil centers exist only when iris refinement is active (sets of 478
	// points). Eye corners are the fallback for plain 468-point sets.
	idxLeftPupil    = 468
	idxRightPupil   = 473
	idxLeftEyeCorn  = 33
	idxRightEyeCorn = 263
)

// Pose model indices used by the posture deriver.
const (
	idxLeftEar       = 7
	idxRightEar      = 8
	idxLeftShoulder  = 11
	idxRightShoulder = 12
	idxLeftHip       = 23
	idxRightHip      = 24
)

// minFacePoints is the smallest face set the deriver accepts. Sets shorter
// than the base FaceMesh topology are treated as a failed detection.
const minFacePoints = 468

// minPosePoints is the full MediaPipe Pose topology size.
const minPosePoints = 33

// minVisibility is the per-point confidence below which a pose landmark is
// treated as absent.
const minVisibility = 0.5

// Head-angle penalty sensitivities. Yaw dominates because looking away
// sideways is the primary eye-contact failure mode; roll matters least since
// a tilted head with direct gaze still reads as eye contact.
const (
	yawSensitivity   = 15.0
	pitchSensitivity = 10.0
	rollSensitivity  = 8.0

	yawWeight   = 0.5
	pitchWeight = 0.35
	rollWeight  = 0.15
)

// Posture penalty scales and caps. The model is additive: each failure mode
// degrades the score independently and penalties may co-occur.
const (
	shoulderLevelScale = 300.0
	shoulderLevelCap   = 35.0

	headLeanScale = 200.0
	headLeanCap   = 30.0

	// Neck compression is tiered rather than continuous: "hunched" is a
	// qualitative threshold, not a linear quantity.
	neckGapSevere        = 0.10
	neckGapMild          = 0.15
	neckPenaltySevere    = 30.0
	neckPenaltyMild      = 15.0

	spineAlignScale = 100.0
	spineAlignCap   = 15.0
)

// EyeContactScore maps a single frame's face landmarks to a 0–100 eye-contact
// score using head yaw/pitch/roll proxies. It returns 0 when the set is too
// short to contain the required points.
func EyeContactScore(face types.FaceLandmarkSet) int {
	if len(face) < minFacePoints {
		return 0
	}

	nose := face[idxNoseTip]

	var left, right types.Landmark
	if len(face) > idxRightPupil {
		left = face[idxLeftPupil]
		right = face[idxRightPupil]
	} else {
		// No iris refinement; eye corners approximate the pupil positions.
		left = face[idxLeftEyeCorn]
		right = face[idxRightEyeCorn]
	}

	eyeMidX := (left.X + right.X) / 2
	eyeMidY := (left.Y + right.Y) / 2

	yaw := clamp01(abs(nose.X-eyeMidX) * yawSensitivity)
	pitch := clamp01(abs(nose.Y-eyeMidY) * pitchSensitivity)
	roll := clamp01(abs(left.Y-right.Y) * rollSensitivity)

	score := 100 * (1 - (yawWeight*yaw + pitchWeight*pitch + rollWeight*roll))
	return clampScore(score)
}

// PostureScore maps a single frame's pose landmarks to a 0–100 posture score
// from shoulder/ear/hip geometry. It returns 0 when the set is too short or
// when any of the shoulder/ear points falls below the visibility threshold.
func PostureScore(pose types.PoseLandmarkSet) int {
	if len(pose) < minPosePoints {
		return 0
	}

	lSh, rSh := pose[idxLeftShoulder], pose[idxRightShoulder]
	lEar, rEar := pose[idxLeftEar], pose[idxRightEar]

	if lSh.Visibility < minVisibility || rSh.Visibility < minVisibility ||
		lEar.Visibility < minVisibility || rEar.Visibility < minVisibility {
		return 0
	}

	shoulderMidX := (lSh.X + rSh.X) / 2
	shoulderMidY := (lSh.Y + rSh.Y) / 2
	earMidX := (lEar.X + rEar.X) / 2
	earMidY := (lEar.Y + rEar.Y) / 2

	score := 100.0

	// Uneven shoulders.
	score -= capAt(abs(lSh.Y-rSh.Y)*shoulderLevelScale, shoulderLevelCap)

	// Forward head lean: ears drifting ahead of the shoulder line.
	score -= capAt(abs(earMidX-shoulderMidX)*headLeanScale, headLeanCap)

	// Neck compression: shoulders creeping up toward the ears.
	neckGap := shoulderMidY - earMidY
	switch {
	case neckGap < neckGapSevere:
		score -= neckPenaltySevere
	case neckGap < neckGapMild:
		score -= neckPenaltyMild
	}

	// Spinal alignment, only when both hips were actually detected.
	lHip, rHip := pose[idxLeftHip], pose[idxRightHip]
	if lHip.Visibility > minVisibility && rHip.Visibility > minVisibility {
		hipMidX := (lHip.X + rHip.X) / 2
		score -= capAt(abs(shoulderMidX-hipMidX)*spineAlignScale, spineAlignCap)
	}

	return clampScore(score)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func capAt(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}

// clampScore clamps to [0,100] and rounds to the nearest integer.
func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v + 0.5)
}
