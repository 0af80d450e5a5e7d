// Package chat defines the Provider interface for chat-completion backends.
//
// A chat provider wraps a remote or local language model API and exposes the
// single request/response operation the session pipeline needs: given a
// system prompt and the conversation so far, produce the investor persona's
// next reply (or, at session end, the coaching report narrative).
//
// Implementations must be safe for concurrent use and must propagate context
// cancellation promptly.
package chat

import (
	"context"

	"github.com/pitchpartner/pitchpartner/pkg/types"
)

// Request carries everything the model needs to produce a reply. Messages
// must be non-empty; a zero-value request is invalid.
type Request struct {
	// SystemPrompt is the high-priority instruction injected before the
	// conversation history (the persona's character sheet, or the coaching
	// report brief).
	SystemPrompt string

	// Messages is the ordered conversation history. The last message is
	// typically the user's latest utterance.
	Messages []types.Message

	// Temperature controls output randomness in [0.0, 2.0].
	Temperature float64

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int
}

// Response is the model's reply.
type Response struct {
	// Content is the full text of the assistant's reply. It may still
	// contain model-internal reasoning markup; callers that surface the text
	// to users must sanitize it first.
	Content string
}

// Provider is the abstraction over any chat-completion backend.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	// Returns an error if the request fails or ctx is cancelled first.
	Complete(ctx context.Context, req Request) (*Response, error)
}
