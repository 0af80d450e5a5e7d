// Package mock provides a test double for the stt.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/pitchpartner/pitchpartner/pkg/provider/stt"
)

// Provider is a mock implementation of stt.Provider. Set Text for a fixed
// transcript, or Err to inject a failure.
type Provider struct {
	mu sync.Mutex

	// Text is returned as the transcript for every request.
	Text string

	// Err, if non-nil, is returned instead of a result.
	Err error

	// Calls records every request passed to Transcribe, in order.
	Calls []stt.Request
}

var _ stt.Provider = (*Provider)(nil)

// Transcribe implements stt.Provider.
func (p *Provider) Transcribe(_ context.Context, req stt.Request) (*stt.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Calls = append(p.Calls, req)
	if p.Err != nil {
		return nil, p.Err
	}
	return &stt.Result{Text: p.Text}, nil
}
