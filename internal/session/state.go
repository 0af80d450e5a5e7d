package session

// State is the lifecycle phase of the practice session.
type State int

const (
	// StateIdle means no session exists. The next step is Configure.
	StateIdle State = iota

	// StateConfiguring means persona and mode have been chosen but the
	// session has not started.
	StateConfiguring

	// StateActive means the session is running: landmark frames and
	// transcripts are being scored and rounds exchanged.
	StateActive

	// StateScoring means the session has ended and the coaching report
	// is being generated.
	StateScoring

	// StateComplete means the report is ready. The next step is Reset.
	StateComplete
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfiguring:
		return "configuring"
	case StateActive:
		return "active"
	case StateScoring:
		return "scoring"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}
