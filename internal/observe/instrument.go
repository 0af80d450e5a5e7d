package observe

import (
	"context"
	"time"

	"github.com/pitchpartner/pitchpartner/pkg/provider/chat"
	"github.com/pitchpartner/pitchpartner/pkg/provider/stt"
	"github.com/pitchpartner/pitchpartner/pkg/provider/tts"
	"github.com/pitchpartner/pitchpartner/pkg/types"
)

// Provider decorators. Each wraps a provider so every call records its
// stage latency histogram plus the request/error counters, labeled with
// the configured provider name.

type instrumentedChat struct {
	next chat.Provider
	name string
	m    *Metrics
}

var _ chat.Provider = (*instrumentedChat)(nil)

// InstrumentChat wraps p so all completions are measured. Returns p
// unchanged when m is nil.
func InstrumentChat(p chat.Provider, name string, m *Metrics) chat.Provider {
	if m == nil {
		return p
	}
	return &instrumentedChat{next: p, name: name, m: m}
}

func (c *instrumentedChat) Complete(ctx context.Context, req chat.Request) (*chat.Response, error) {
	start := time.Now()
	resp, err := c.next.Complete(ctx, req)
	c.m.ChatDuration.Record(ctx, time.Since(start).Seconds())
	c.m.RecordProviderRequest(ctx, c.name, "chat", statusOf(err))
	if err != nil {
		c.m.RecordProviderError(ctx, c.name, "chat")
	}
	return resp, err
}

type instrumentedSTT struct {
	next stt.Provider
	name string
	m    *Metrics
}

var _ stt.Provider = (*instrumentedSTT)(nil)

// InstrumentSTT wraps p so all transcriptions are measured. Returns p
// unchanged when m is nil.
func InstrumentSTT(p stt.Provider, name string, m *Metrics) stt.Provider {
	if m == nil {
		return p
	}
	return &instrumentedSTT{next: p, name: name, m: m}
}

func (s *instrumentedSTT) Transcribe(ctx context.Context, req stt.Request) (*stt.Result, error) {
	start := time.Now()
	res, err := s.next.Transcribe(ctx, req)
	s.m.STTDuration.Record(ctx, time.Since(start).Seconds())
	s.m.RecordProviderRequest(ctx, s.name, "stt", statusOf(err))
	if err != nil {
		s.m.RecordProviderError(ctx, s.name, "stt")
	}
	return res, err
}

type instrumentedTTS struct {
	next tts.Provider
	name string
	m    *Metrics
}

var _ tts.Provider = (*instrumentedTTS)(nil)

// InstrumentTTS wraps p so all syntheses are measured. Returns p
// unchanged when m is nil.
func InstrumentTTS(p tts.Provider, name string, m *Metrics) tts.Provider {
	if m == nil {
		return p
	}
	return &instrumentedTTS{next: p, name: name, m: m}
}

func (t *instrumentedTTS) Synthesize(ctx context.Context, text string, voice types.VoiceProfile) (*tts.Audio, error) {
	start := time.Now()
	audio, err := t.next.Synthesize(ctx, text, voice)
	t.m.TTSDuration.Record(ctx, time.Since(start).Seconds())
	t.m.RecordProviderRequest(ctx, t.name, "tts", statusOf(err))
	if err != nil {
		t.m.RecordProviderError(ctx, t.name, "tts")
	}
	return audio, err
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
