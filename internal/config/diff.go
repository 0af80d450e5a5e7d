package config

import "reflect"

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked; listen address
// and TLS changes require a restart and are deliberately ignored.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// ProvidersChanged is true when any provider stage changed.
	ProvidersChanged bool

	// ProviderChanges lists the affected stages ("chat", "chat_fallbacks",
	// "stt", "tts").
	ProviderChanges []string
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if !entryEqual(old.Providers.Chat, new.Providers.Chat) {
		d.ProviderChanges = append(d.ProviderChanges, "chat")
	}
	if !entriesEqual(old.Providers.ChatFallbacks, new.Providers.ChatFallbacks) {
		d.ProviderChanges = append(d.ProviderChanges, "chat_fallbacks")
	}
	if !entryEqual(old.Providers.STT, new.Providers.STT) {
		d.ProviderChanges = append(d.ProviderChanges, "stt")
	}
	if !entryEqual(old.Providers.TTS, new.Providers.TTS) {
		d.ProviderChanges = append(d.ProviderChanges, "tts")
	}
	d.ProvidersChanged = len(d.ProviderChanges) > 0

	return d
}

// entryEqual compares two provider entries field by field. Options may hold
// nested maps, so they are compared structurally.
func entryEqual(a, b ProviderEntry) bool {
	if a.Name != b.Name || a.APIKey != b.APIKey || a.BaseURL != b.BaseURL || a.Model != b.Model {
		return false
	}
	return reflect.DeepEqual(a.Options, b.Options)
}

func entriesEqual(a, b []ProviderEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !entryEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
