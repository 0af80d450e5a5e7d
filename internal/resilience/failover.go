package resilience

import (
	"context"

	"github.com/pitchpartner/pitchpartner/pkg/provider/chat"
	"github.com/pitchpartner/pitchpartner/pkg/provider/stt"
	"github.com/pitchpartner/pitchpartner/pkg/provider/tts"
	"github.com/pitchpartner/pitchpartner/pkg/types"
)

// ChatFailover implements [chat.Provider] with automatic failover across
// multiple chat backends. Each backend has its own circuit breaker; when the
// primary fails or its breaker is open, the next healthy fallback is tried.
type ChatFailover struct {
	group *FallbackGroup[chat.Provider]
}

var _ chat.Provider = (*ChatFailover)(nil)

// NewChatFailover creates a [ChatFailover] with primary as the preferred
// backend.
func NewChatFailover(primary chat.Provider, primaryName string, cfg FallbackConfig) *ChatFailover {
	return &ChatFailover{group: NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback registers an additional chat provider.
func (f *ChatFailover) AddFallback(name string, p chat.Provider) {
	f.group.Add(name, p)
}

// States reports each backend's circuit state keyed by name.
func (f *ChatFailover) States() map[string]State {
	return f.group.States()
}

// Complete sends the request to the first healthy backend.
func (f *ChatFailover) Complete(ctx context.Context, req chat.Request) (*chat.Response, error) {
	return Try(f.group, func(p chat.Provider) (*chat.Response, error) {
		return p.Complete(ctx, req)
	})
}

// STTFailover implements [stt.Provider] with automatic failover.
type STTFailover struct {
	group *FallbackGroup[stt.Provider]
}

var _ stt.Provider = (*STTFailover)(nil)

// NewSTTFailover creates an [STTFailover] with primary as the preferred
// backend.
func NewSTTFailover(primary stt.Provider, primaryName string, cfg FallbackConfig) *STTFailover {
	return &STTFailover{group: NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback registers an additional STT provider.
func (f *STTFailover) AddFallback(name string, p stt.Provider) {
	f.group.Add(name, p)
}

// States reports each backend's circuit state keyed by name.
func (f *STTFailover) States() map[string]State {
	return f.group.States()
}

// Transcribe sends the utterance to the first healthy backend.
func (f *STTFailover) Transcribe(ctx context.Context, req stt.Request) (*stt.Result, error) {
	return Try(f.group, func(p stt.Provider) (*stt.Result, error) {
		return p.Transcribe(ctx, req)
	})
}

// TTSFailover implements [tts.Provider] with automatic failover.
type TTSFailover struct {
	group *FallbackGroup[tts.Provider]
}

var _ tts.Provider = (*TTSFailover)(nil)

// NewTTSFailover creates a [TTSFailover] with primary as the preferred
// backend.
func NewTTSFailover(primary tts.Provider, primaryName string, cfg FallbackConfig) *TTSFailover {
	return &TTSFailover{group: NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback registers an additional TTS provider.
func (f *TTSFailover) AddFallback(name string, p tts.Provider) {
	f.group.Add(name, p)
}

// States reports each backend's circuit state keyed by name.
func (f *TTSFailover) States() map[string]State {
	return f.group.States()
}

// Synthesize sends the text to the first healthy backend.
func (f *TTSFailover) Synthesize(ctx context.Context, text string, voice types.VoiceProfile) (*tts.Audio, error) {
	return Try(f.group, func(p tts.Provider) (*tts.Audio, error) {
		return p.Synthesize(ctx, text, voice)
	})
}
