// Package mock provides a test double for the chat.Provider interface.
//
// Use Provider in unit tests to feed controlled replies without a live
// backend and to inspect the requests the pipeline sends.
package mock

import (
	"context"
	"sync"

	"github.com/pitchpartner/pitchpartner/pkg/provider/chat"
)

// Provider is a mock implementation of chat.Provider. Zero values for the
// response fields cause Complete to return an empty response and nil error.
// Set Err to inject a failure. Responses may hold a queue of replies that
// are consumed one per call; when exhausted, Response is used.
type Provider struct {
	mu sync.Mutex

	// Response is returned by Complete when Responses is empty.
	Response *chat.Response

	// Responses is an optional FIFO of replies, consumed one per call.
	Responses []*chat.Response

	// Err, if non-nil, is returned as the error from Complete.
	Err error

	// Calls records every request passed to Complete, in order.
	Calls []chat.Request
}

var _ chat.Provider = (*Provider)(nil)

// Complete implements chat.Provider.
func (p *Provider) Complete(_ context.Context, req chat.Request) (*chat.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Calls = append(p.Calls, req)
	if p.Err != nil {
		return nil, p.Err
	}
	if len(p.Responses) > 0 {
		resp := p.Responses[0]
		p.Responses = p.Responses[1:]
		return resp, nil
	}
	if p.Response != nil {
		return p.Response, nil
	}
	return &chat.Response{}, nil
}

// CallCount returns the number of Complete invocations so far.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
