// Command pitchpartner is the main entry point for the PitchPartner
// practice server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"golang.org/x/sync/errgroup"

	"github.com/pitchpartner/pitchpartner/internal/config"
	"github.com/pitchpartner/pitchpartner/internal/health"
	"github.com/pitchpartner/pitchpartner/internal/observe"
	"github.com/pitchpartner/pitchpartner/internal/report"
	"github.com/pitchpartner/pitchpartner/internal/resilience"
	"github.com/pitchpartner/pitchpartner/internal/server"
	"github.com/pitchpartner/pitchpartner/internal/session"
	"github.com/pitchpartner/pitchpartner/pkg/provider/chat"
	"github.com/pitchpartner/pitchpartner/pkg/provider/chat/anyllm"
	"github.com/pitchpartner/pitchpartner/pkg/provider/stt"
	sttopenai "github.com/pitchpartner/pitchpartner/pkg/provider/stt/openai"
	"github.com/pitchpartner/pitchpartner/pkg/provider/tts"
	"github.com/pitchpartner/pitchpartner/pkg/provider/tts/elevenlabs"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// API keys for providers conventionally live in a local .env file.
	_ = godotenv.Load()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "pitchpartner: config file %q not found, copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "pitchpartner: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logLevel := new(slog.LevelVar)
	logLevel.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("pitchpartner starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "pitchpartner"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(flushCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	metrics := observe.DefaultMetrics()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	providers, err := buildProviders(cfg, reg, metrics)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	// ── Config hot reload ─────────────────────────────────────────────────────
	// Only the log level can change at runtime; provider changes need a
	// restart because live sessions hold provider references.
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		diff := config.Diff(old, new)
		if diff.LogLevelChanged {
			logLevel.Set(slogLevel(diff.NewLogLevel))
			slog.Info("log level changed", "level", diff.NewLogLevel)
		}
		if diff.ProvidersChanged {
			slog.Warn("provider config changed, restart to apply", "sections", diff.ProviderChanges)
		}
	})
	if err != nil {
		slog.Error("failed to start config watcher", "err", err)
		return 1
	}
	defer watcher.Stop()

	// ── Session pipeline ──────────────────────────────────────────────────────
	var remote report.Generator
	if providers.Chat != nil {
		remote = report.NewLLMGenerator(providers.Chat, logger)
	}
	reports := report.NewChain(remote, report.NewRuleBased(), logger).WithTelemetry(metrics)

	// The active-session gauge follows controller state transitions so
	// timer-driven completions are counted the same as explicit ends.
	var sessionActive bool
	controller := session.New(session.Config{
		Chat:    providers.Chat,
		STT:     providers.STT,
		TTS:     providers.TTS,
		Reports: reports,
		Log:     logger,
		OnStateChange: func(s session.State) {
			active := s == session.StateActive
			if active && !sessionActive {
				metrics.ActiveSessions.Add(context.Background(), 1)
			} else if !active && sessionActive {
				metrics.ActiveSessions.Add(context.Background(), -1)
			}
			sessionActive = active
		},
	})

	// ── HTTP server ───────────────────────────────────────────────────────────
	checkers := providerCheckers(providers)
	srv := server.New(server.Config{
		Controller: controller,
		Metrics:    metrics,
		Health:     health.New(checkers...),
		Log:        logger,
	})

	printStartupSummary(cfg)

	httpSrv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server ready, press Ctrl+C to shut down", "addr", cfg.Server.ListenAddr)
		var err error
		if tls := cfg.Server.TLS; tls != nil {
			err = httpSrv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = httpSrv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// providerSet holds the instantiated providers for the session pipeline.
// Any field may be nil when the corresponding config section is absent.
type providerSet struct {
	Chat chat.Provider
	STT  stt.Provider
	TTS  tts.Provider

	// The failover wrappers behind each provider, retained for readiness
	// checks. STT and TTS run a single backend today, so their groups
	// contribute circuit breaking rather than an alternate route.
	ChatFailover *resilience.ChatFailover
	STTFailover  *resilience.STTFailover
	TTSFailover  *resilience.TTSFailover
}

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the provider
// from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── Chat ──────────────────────────────────────────────────────────────────
	// All any-llm backends share the same pattern: optional APIKey plus
	// optional BaseURL.
	for _, providerName := range []string{
		"openai", "anthropic", "gemini",
		"deepseek", "mistral", "groq", "llamacpp",
	} {
		reg.RegisterChat(providerName, func(entry config.ProviderEntry) (chat.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterChat("ollama", func(entry config.ProviderEntry) (chat.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})

	// ── STT ───────────────────────────────────────────────────────────────────

	reg.RegisterSTT("openai", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []sttopenai.Option
		if entry.BaseURL != "" {
			opts = append(opts, sttopenai.WithBaseURL(entry.BaseURL))
		}
		return sttopenai.New(entry.APIKey, entry.Model, opts...)
	})

	// ── TTS ───────────────────────────────────────────────────────────────────

	reg.RegisterTTS("elevenlabs", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []elevenlabs.Option
		if entry.Model != "" {
			opts = append(opts, elevenlabs.WithModel(entry.Model))
		}
		if outputFmt := optString(entry.Options, "output_format"); outputFmt != "" {
			opts = append(opts, elevenlabs.WithOutputFormat(outputFmt))
		}
		return elevenlabs.New(entry.APIKey, opts...)
	})
}

// buildProviders instantiates all providers named in cfg using the registry.
// Every provider is wrapped for latency/error metrics and a circuit-breaking
// failover group; chat additionally picks up the configured fallback
// backends.
func buildProviders(cfg *config.Config, reg *config.Registry, metrics *observe.Metrics) (*providerSet, error) {
	ps := &providerSet{}

	if name := cfg.Providers.Chat.Name; name != "" {
		p, err := reg.CreateChat(cfg.Providers.Chat)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Debug("provider not implemented, skipping", "kind", "chat", "name", name)
		} else if err != nil {
			return nil, fmt.Errorf("create chat provider %q: %w", name, err)
		} else {
			inst := observe.InstrumentChat(p, name, metrics)
			ps.ChatFailover = resilience.NewChatFailover(inst, name, resilience.FallbackConfig{})
			ps.Chat = ps.ChatFailover
			slog.Info("provider created", "kind", "chat", "name", name)
		}
	}

	if ps.ChatFailover != nil {
		for _, entry := range cfg.Providers.ChatFallbacks {
			p, err := reg.CreateChat(entry)
			if err != nil {
				return nil, fmt.Errorf("create chat fallback %q: %w", entry.Name, err)
			}
			ps.ChatFailover.AddFallback(entry.Name, observe.InstrumentChat(p, entry.Name, metrics))
			slog.Info("provider created", "kind", "chat_fallback", "name", entry.Name)
		}
	}

	if name := cfg.Providers.STT.Name; name != "" {
		p, err := reg.CreateSTT(cfg.Providers.STT)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Debug("provider not implemented, skipping", "kind", "stt", "name", name)
		} else if err != nil {
			return nil, fmt.Errorf("create stt provider %q: %w", name, err)
		} else {
			inst := observe.InstrumentSTT(p, name, metrics)
			ps.STTFailover = resilience.NewSTTFailover(inst, name, resilience.FallbackConfig{})
			ps.STT = ps.STTFailover
			slog.Info("provider created", "kind", "stt", "name", name)
		}
	}

	if name := cfg.Providers.TTS.Name; name != "" {
		p, err := reg.CreateTTS(cfg.Providers.TTS)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Debug("provider not implemented, skipping", "kind", "tts", "name", name)
		} else if err != nil {
			return nil, fmt.Errorf("create tts provider %q: %w", name, err)
		} else {
			inst := observe.InstrumentTTS(p, name, metrics)
			ps.TTSFailover = resilience.NewTTSFailover(inst, name, resilience.FallbackConfig{})
			ps.TTS = ps.TTSFailover
			slog.Info("provider created", "kind", "tts", "name", name)
		}
	}

	return ps, nil
}

// providerCheckers builds readiness checkers for the configured providers.
func providerCheckers(ps *providerSet) []health.Checker {
	var checkers []health.Checker
	if ps.ChatFailover != nil {
		checkers = append(checkers, health.FailoverChecker("chat", ps.ChatFailover.States))
	}
	if ps.STTFailover != nil {
		checkers = append(checkers, health.FailoverChecker("stt", ps.STTFailover.States))
	}
	if ps.TTSFailover != nil {
		checkers = append(checkers, health.FailoverChecker("tts", ps.TTSFailover.States))
	}
	return checkers
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║       PitchPartner startup summary    ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printProvider("Chat", cfg.Providers.Chat.Name, cfg.Providers.Chat.Model)
	fmt.Printf("║  Chat fallbacks : %-20d ║\n", len(cfg.Providers.ChatFallbacks))
	printProvider("STT", cfg.Providers.STT.Name, cfg.Providers.STT.Model)
	printProvider("TTS", cfg.Providers.TTS.Name, cfg.Providers.TTS.Model)
	if cfg.Server.ListenAddr != "" {
		fmt.Printf("║  Listen addr    : %-20s ║\n", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	if len(value) > 20 {
		value = value[:17] + "…"
	}
	fmt.Printf("║  %-13s  : %-20s ║\n", kind, value)
}

// ── Logger ────────────────────────────────────────────────────────────────────

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optString extracts a string value from a provider Options map.
// Returns "" if the map is nil, the key is absent, or the value is not a
// string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
