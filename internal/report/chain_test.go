package report_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pitchpartner/pitchpartner/internal/report"
)

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) Generate(context.Context, report.Request) (string, error) {
	return s.text, s.err
}

func TestChain_RemoteWins(t *testing.T) {
	t.Parallel()

	chain := report.NewChain(
		&stubGenerator{text: "remote report"},
		&stubGenerator{text: "fallback report"},
		nil,
	)

	text, err := chain.Generate(context.Background(), report.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "remote report" {
		t.Errorf("text = %q", text)
	}
}

func TestChain_FallsBackOnRemoteError(t *testing.T) {
	t.Parallel()

	chain := report.NewChain(
		&stubGenerator{err: errors.New("model offline")},
		&stubGenerator{text: "fallback report"},
		nil,
	)

	text, err := chain.Generate(context.Background(), report.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "fallback report" {
		t.Errorf("text = %q", text)
	}
}

func TestChain_NilRemoteUsesFallback(t *testing.T) {
	t.Parallel()

	chain := report.NewChain(nil, &stubGenerator{text: "fallback report"}, nil)

	text, err := chain.Generate(context.Background(), report.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "fallback report" {
		t.Errorf("text = %q", text)
	}
}
