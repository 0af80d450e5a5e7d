// Package persona defines the closed set of investor personas and practice
// modes. Both are fixed enumerations with lookup tables; a session can only
// be configured with values defined here, never free-form strings.
package persona

import "github.com/pitchpartner/pitchpartner/pkg/types"

// ID selects an investor persona.
type ID string

const (
	// Skeptic is a blunt profit-and-margins investor who hates fluff.
	Skeptic ID = "skeptic"

	// MicroManager drills into tiny operational details.
	MicroManager ID = "micromanager"

	// Visionary ignores details and asks about world-scale ambition.
	Visionary ID = "visionary"
)

// IsValid reports whether id is a recognised persona.
func (id ID) IsValid() bool {
	_, ok := personas[id]
	return ok
}

// Persona describes one investor character: its chat behaviour, TTS voice,
// and presentation metadata for the UI layer.
type Persona struct {
	// DisplayName is the user-facing persona name.
	DisplayName string

	// SystemPrompt drives the chat model's in-character behaviour.
	SystemPrompt string

	// Opener seeds the session message log when a session starts.
	Opener string

	// Voice is the TTS voice profile used for this persona's replies.
	Voice types.VoiceProfile

	// Color is the UI accent color (hex) associated with the persona.
	Color string
}

// roastAddendum is appended to the system prompt when roast intensity is on.
const roastAddendum = " Also, be incredibly mean and condescending. Call their ideas 'amateur hour' and look for any excuse to kick them out."

var personas = map[ID]Persona{
	Skeptic: {
		DisplayName:  "Skeptical Investor",
		SystemPrompt: "You are a blunt Shark Tank investor. You focus on profit, margins, and market gaps. You hate fluff.",
		Opener:       "I'm the investor. Pitch me your idea, and make it quick. My time is money.",
		Voice: types.VoiceProfile{
			ID:          "pNInz6obpgDQGcFmaJgB",
			Name:        "Adam",
			Style:       "clipped, impatient",
			SpeedFactor: 1.1,
		},
		Color: "#00F0FF",
	},
	MicroManager: {
		DisplayName:  "Micro-manager",
		SystemPrompt: "You focus on the tiny details. Ask about specific buttons, code libraries, and exact hourly costs.",
		Opener:       "Before we start: what's your exact burn rate per week, and which framework did you build on?",
		Voice: types.VoiceProfile{
			ID:          "EXAVITQu4vr4xnSDxMaL",
			Name:        "Bella",
			Style:       "precise, probing",
			SpeedFactor: 1.0,
		},
		Color: "#00FFD4",
	},
	Visionary: {
		DisplayName:  "The Visionary",
		SystemPrompt: "You hate details. Ask how this 'disrupts the human experience' or 'changes the galaxy'.",
		Opener:       "Forget the numbers. Tell me how this changes the galaxy.",
		Voice: types.VoiceProfile{
			ID:          "ErXwobaYiN019PkySvjV",
			Name:        "Antoni",
			Style:       "expansive, dreamy",
			SpeedFactor: 0.95,
		},
		Color: "#0095FF",
	},
}

// Get returns the persona table entry for id. The second return is false for
// unknown IDs.
func Get(id ID) (Persona, bool) {
	p, ok := personas[id]
	return p, ok
}

// SystemPrompt returns the persona's system prompt, with the roast addendum
// appended when roast intensity is enabled.
func SystemPrompt(id ID, roast bool) string {
	p := personas[id]
	if roast {
		return p.SystemPrompt + roastAddendum
	}
	return p.SystemPrompt
}

// All returns every defined persona ID in a stable order.
func All() []ID {
	return []ID{Skeptic, MicroManager, Visionary}
}
