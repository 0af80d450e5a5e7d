// Package stt defines the Provider interface for speech-to-text backends.
//
// The pipeline is round-based: the UI records one complete utterance and
// submits it as a single audio payload, so the interface is plain
// request/response rather than streaming. A failed transcription never kills
// the session; the controller surfaces a "didn't catch that" status and the
// round simply does not count.
package stt

import "context"

// Request is one utterance's worth of recorded audio.
type Request struct {
	// Audio is the encoded audio payload.
	Audio []byte

	// Format is the container/codec of Audio (e.g., "wav", "m4a", "webm").
	Format string

	// Language is an optional BCP-47 hint (e.g., "en"). Empty lets the
	// provider auto-detect.
	Language string
}

// Result is a completed transcription.
type Result struct {
	// Text is the transcribed speech content.
	Text string
}

// Provider is the abstraction over any STT backend. Implementations must be
// safe for concurrent use.
type Provider interface {
	// Transcribe converts one recorded utterance to text. Returns an error
	// for transport or decoding failures; an empty utterance yields an empty
	// Text with no error.
	Transcribe(ctx context.Context, req Request) (*Result, error)
}
