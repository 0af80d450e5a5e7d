package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/pitchpartner/pitchpartner/internal/observe"
)

// Compile-time interface check.
var _ Generator = (*Chain)(nil)

// Chain tries a remote generator first and falls back to a local one
// when the remote fails or produces nothing. The fallback is expected
// to always succeed, so a session reliably ends with a report.
type Chain struct {
	remote   Generator
	fallback Generator
	log      *slog.Logger
	tel      *observe.Metrics
}

// NewChain creates a chain over the given generators. remote may be
// nil, in which case every report comes from the fallback.
func NewChain(remote, fallback Generator, log *slog.Logger) *Chain {
	if log == nil {
		log = slog.Default()
	}
	return &Chain{remote: remote, fallback: fallback, log: log}
}

// WithTelemetry records report latency and fallback counts to m.
// Returns c for chaining.
func (c *Chain) WithTelemetry(m *observe.Metrics) *Chain {
	c.tel = m
	return c
}

// Generate returns the remote report when available, otherwise the
// fallback's.
func (c *Chain) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	defer func() {
		if c.tel != nil {
			c.tel.ReportDuration.Record(ctx, time.Since(start).Seconds())
		}
	}()

	if c.remote != nil {
		text, err := c.remote.Generate(ctx, req)
		if err == nil {
			return text, nil
		}
		c.log.Warn("remote report generation failed, using rule-based fallback", "error", err)
	}
	if c.tel != nil {
		c.tel.RecordReportFallback(ctx)
	}
	return c.fallback.Generate(ctx, req)
}
