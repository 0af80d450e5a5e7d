// Package report turns a finished practice session into a coaching
// report: a short piece of prose that tells the speaker how they did
// and what to work on next.
//
// Two generators are provided. [LLMGenerator] asks a chat model for a
// personalized report, and [RuleBased] produces a deterministic one
// from the session numbers alone. [Chain] combines them so a model
// outage still yields a usable report.
package report

import (
	"context"

	"github.com/pitchpartner/pitchpartner/internal/persona"
	"github.com/pitchpartner/pitchpartner/internal/vision"
	"github.com/pitchpartner/pitchpartner/pkg/types"
)

// Request carries everything known about a completed session.
type Request struct {
	// Metrics is the final blended session scorecard.
	Metrics types.SessionMetrics

	// Messages is the full conversation log, opener included.
	Messages []types.Message

	// Visual is the last aggregator snapshot before the session ended.
	Visual vision.Snapshot

	// Persona and Mode identify how the session was configured.
	Persona persona.ID
	Mode    persona.ModeID

	// Roast indicates the harsher investor personality was active.
	Roast bool
}

// Generator produces a coaching report for a completed session.
// Implementations must return a non-empty report or an error.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
