// Package tts defines the Provider interface for text-to-speech backends.
//
// Synthesis is per-reply: the persona's full response text is synthesized in
// one call and the resulting audio handed to the UI layer for playback. A
// synthesis failure is a silent no-op for the session; the reply text is
// still shown.
package tts

import (
	"context"

	"github.com/pitchpartner/pitchpartner/pkg/types"
)

// Audio is a synthesized speech payload.
type Audio struct {
	// Data is the encoded audio.
	Data []byte

	// MIMEType describes the encoding (e.g., "audio/mpeg").
	MIMEType string
}

// Provider is the abstraction over any TTS backend. Implementations must be
// safe for concurrent use.
type Provider interface {
	// Synthesize renders text in the given voice. The voice's SpeedFactor
	// adjusts speaking rate. Returns an error if the provider cannot be
	// reached or rejects the request.
	Synthesize(ctx context.Context, text string, voice types.VoiceProfile) (*Audio, error)
}
