package persona

// ModeID selects a practice mode.
type ModeID string

const (
	// ModeSprint is a fixed 60-second elevator pitch.
	ModeSprint ModeID = "sprint"

	// ModeBoardroom targets five question rounds with no clock.
	ModeBoardroom ModeID = "boardroom"

	// ModeFreeform has neither a countdown nor a round target; the user ends
	// the session explicitly.
	ModeFreeform ModeID = "freeform"
)

// IsValid reports whether id is a recognised mode.
func (id ModeID) IsValid() bool {
	_, ok := modes[id]
	return ok
}

// Mode describes one practice format. DurationSeconds and RoundsTarget are
// zero when the mode does not constrain that dimension.
type Mode struct {
	// DisplayName is the user-facing mode name.
	DisplayName string

	// DurationSeconds is the countdown length; 0 means no countdown.
	DurationSeconds int

	// RoundsTarget is the suggested number of rounds; 0 means open-ended.
	RoundsTarget int

	// Description explains the format to the user.
	Description string
}

var modes = map[ModeID]Mode{
	ModeSprint: {
		DisplayName:     "Elevator Sprint",
		DurationSeconds: 60,
		Description:     "Sixty seconds on the clock. Land the hook before the doors open.",
	},
	ModeBoardroom: {
		DisplayName:  "Boardroom",
		RoundsTarget: 5,
		Description:  "Five rounds of questions. Depth over speed.",
	},
	ModeFreeform: {
		DisplayName: "Freeform",
		Description: "No clock, no round limit. Practice until you end it.",
	},
}

// GetMode returns the mode table entry for id. The second return is false
// for unknown IDs.
func GetMode(id ModeID) (Mode, bool) {
	m, ok := modes[id]
	return m, ok
}

// AllModes returns every defined mode ID in a stable order.
func AllModes() []ModeID {
	return []ModeID{ModeSprint, ModeBoardroom, ModeFreeform}
}
