package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestFallbackGroup_PrimarySuccess(t *testing.T) {
	g := NewFallbackGroup("primary", "primary", FallbackConfig{
		Breaker: BreakerConfig{MaxFailures: 3},
	})
	g.Add("secondary", "secondary")

	got, err := Try(g, func(v string) (string, error) {
		return v, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "primary" {
		t.Fatalf("served by %q, want primary", got)
	}
}

func TestFallbackGroup_PrimaryFailFallbackServes(t *testing.T) {
	g := NewFallbackGroup("primary", "primary", FallbackConfig{
		Breaker: BreakerConfig{MaxFailures: 3},
	})
	g.Add("secondary", "secondary")

	got, err := Try(g, func(v string) (string, error) {
		if v == "primary" {
			return "", errTest
		}
		return v, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "secondary" {
		t.Fatalf("served by %q, want secondary", got)
	}
}

func TestFallbackGroup_AllFail(t *testing.T) {
	g := NewFallbackGroup("primary", "primary", FallbackConfig{
		Breaker: BreakerConfig{MaxFailures: 3},
	})
	g.Add("secondary", "secondary")

	_, err := Try(g, func(v string) (string, error) {
		return "", errTest
	})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

func TestFallbackGroup_OpenBreakerSkipsToFallback(t *testing.T) {
	g := NewFallbackGroup("primary", "primary", FallbackConfig{
		Breaker: BreakerConfig{MaxFailures: 1, Cooldown: time.Hour},
	})
	g.Add("secondary", "secondary")

	// Trip the primary's breaker.
	_, _ = Try(g, func(v string) (string, error) {
		if v == "primary" {
			return "", errTest
		}
		return v, nil
	})

	// Primary must now be skipped without being invoked.
	var primaryCalled bool
	got, err := Try(g, func(v string) (string, error) {
		if v == "primary" {
			primaryCalled = true
			return "", errTest
		}
		return v, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primaryCalled {
		t.Error("primary was invoked despite open breaker")
	}
	if got != "secondary" {
		t.Fatalf("served by %q, want secondary", got)
	}
}
