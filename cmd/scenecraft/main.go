// Command scenecraft is the main entry point for the scenecraft short-form
// video generation pipeline server.
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
	"path/filepath"
	"syscall"
	"time"

	"github.com/shortform/scenecraft/internal/assetcache"
	"github.com/shortform/scenecraft/internal/cleanup"
	"github.com/shortform/scenecraft/internal/config"
	"github.com/shortform/scenecraft/internal/health"
	"github.com/shortform/scenecraft/internal/httpapi"
	"github.com/shortform/scenecraft/internal/job"
	"github.com/shortform/scenecraft/internal/observe"
	"github.com/shortform/scenecraft/internal/oracle"
	"github.com/shortform/scenecraft/internal/oracle/gemini"
	"github.com/shortform/scenecraft/internal/oracle/groq"
	"github.com/shortform/scenecraft/internal/render"
	"github.com/shortform/scenecraft/internal/sceneproc"
	"github.com/shortform/scenecraft/internal/stockprovider"
	"github.com/shortform/scenecraft/internal/stockprovider/pexels"
	"github.com/shortform/scenecraft/internal/tts"
	"github.com/shortform/scenecraft/internal/tts/elevenlabs"
	"github.com/shortform/scenecraft/internal/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "scenecraft: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "scenecraft: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("scenecraft starting",
		"config", *configPath,
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"environment", cfg.Server.Environment,
	)

	if err := httpapi.EnsureDirs(cfg.Pipeline.OutputDir, cfg.Pipeline.ScratchDir, cfg.Pipeline.CacheDir); err != nil {
		slog.Error("failed to create pipeline directories", "err", err)
		return 1
	}

	reg := config.NewRegistry()
	registerBuiltinProviders(reg, cfg.Pipeline.CacheDir)

	oracleAdapter, err := buildOracle(cfg, reg)
	if err != nil {
		slog.Error("failed to build oracle backends", "err", err)
		return 1
	}

	ttsProvider, err := buildTTS(cfg, reg)
	if err != nil {
		slog.Error("failed to build TTS provider", "err", err)
		return 1
	}

	stockProvider, err := buildStock(cfg, reg)
	if err != nil {
		slog.Error("failed to build stock provider", "err", err)
		return 1
	}

	renderer := render.New(cfg.Pipeline.FFmpegPath, cfg.Pipeline.ScratchDir)

	marksPath := cfg.Retention.MarksFile
	if marksPath == "" {
		marksPath = filepath.Join(cfg.Pipeline.OutputDir, "marked_assets.json")
	}
	marker, err := cleanup.NewMarker(marksPath)
	if err != nil {
		slog.Error("failed to load retention marks", "err", err)
		return 1
	}

	store := job.NewStore()

	newProcessor := func() *sceneproc.Processor {
		var providers []tts.Provider
		if ttsProvider != nil {
			providers = append(providers, ttsProvider)
		}
		return &sceneproc.Processor{
			Cache:    assetcache.New(),
			Provider: stockProvider,
			TTS:      tts.NewCascade(slog.Default(), providers...),
			Renderer: renderer,
			Log:      slog.Default(),
		}
	}

	pool := worker.New(store, oracleAdapter, newProcessor, renderer, cfg.Pipeline.OutputDir, cfg.Pipeline.MaxConcurrent(), slog.Default())

	sweeper := cleanup.NewSweeper([]string{cfg.Pipeline.OutputDir, cfg.Pipeline.CacheDir}, marker, slog.Default())

	mux := http.NewServeMux()
	health.New().Register(mux)
	httpapi.New(store, marker, cfg.Pipeline.OutputDir, cfg.Pipeline.OutputDir, cfg.Pipeline.CacheDir, slog.Default()).Register(mux)

	metrics := observe.DefaultMetrics()
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: observe.Middleware(metrics)(mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go pool.Run(ctx)
	go sweeper.RunPeriodically(ctx, cfg.Retention.SweepInterval())

	go func() {
		slog.Info("server ready", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received, stopping…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// registerBuiltinProviders wires the oracle/TTS/stock factories that ship
// with scenecraft into reg, keyed by the provider name used in config.yaml.
func registerBuiltinProviders(reg *config.Registry, cacheDir string) {
	reg.RegisterOracle("gemini", func(entry config.ProviderEntry) (oracle.Backend, error) {
		keys := append([]string{entry.APIKey}, entry.ExtraKeys...)
		return gemini.New(context.Background(), entry.Model, keys...)
	})
	reg.RegisterOracle("groq", func(entry config.ProviderEntry) (oracle.Backend, error) {
		return groq.New(entry.APIKey, entry.Model)
	})

	reg.RegisterTTS("elevenlabs", func(entry config.ProviderEntry) (tts.Provider, error) {
		return elevenlabs.New(entry.APIKey)
	})

	reg.RegisterStock("pexels", func(entry config.ProviderEntry) (stockprovider.Provider, error) {
		return pexels.New(entry.APIKey, cacheDir, 4), nil
	})
}

// buildOracle instantiates the primary/secondary oracle backends named in
// cfg and wraps them in an [oracle.Adapter]. Either backend may be absent
// (empty Name) — when both are unset, GenerateScript returns the
// deterministic fallback skeleton if allow_fallback is set, and an
// oracle.ErrFatal error otherwise.
func buildOracle(cfg *config.Config, reg *config.Registry) (*oracle.Adapter, error) {
	var primary, secondary oracle.Backend

	if name := cfg.Providers.Oracle.Primary.Name; name != "" && cfg.Providers.Oracle.Primary.Enabled {
		p, err := reg.CreateOracle(cfg.Providers.Oracle.Primary)
		if err != nil {
			return nil, fmt.Errorf("create primary oracle %q: %w", name, err)
		}
		primary = p
		slog.Info("oracle backend created", "role", "primary", "name", name)
	}
	if name := cfg.Providers.Oracle.Secondary.Name; name != "" {
		p, err := reg.CreateOracle(cfg.Providers.Oracle.Secondary)
		if err != nil {
			return nil, fmt.Errorf("create secondary oracle %q: %w", name, err)
		}
		secondary = p
		slog.Info("oracle backend created", "role", "secondary", "name", name)
	}

	adapter := oracle.New(primary, secondary, cfg.Providers.Oracle.MinInterval())
	adapter.AllowFallback = cfg.Providers.Oracle.AllowFallback
	return adapter, nil
}

func buildTTS(cfg *config.Config, reg *config.Registry) (tts.Provider, error) {
	name := cfg.Providers.TTS.Name
	if name == "" {
		return nil, nil
	}
	p, err := reg.CreateTTS(cfg.Providers.TTS)
	if err != nil {
		return nil, fmt.Errorf("create tts provider %q: %w", name, err)
	}
	slog.Info("tts provider created", "name", name)
	return p, nil
}

func buildStock(cfg *config.Config, reg *config.Registry) (stockprovider.Provider, error) {
	name := cfg.Providers.Stock.Name
	if name == "" {
		return nil, fmt.Errorf("providers.stock.name must be configured")
	}
	p, err := reg.CreateStock(cfg.Providers.Stock)
	if err != nil {
		return nil, fmt.Errorf("create stock provider %q: %w", name, err)
	}
	slog.Info("stock provider created", "name", name)
	return p, nil
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogLevelDebug:
		lvl = slog.LevelDebug
	case config.LogLevelWarn:
		lvl = slog.LevelWarn
	case config.LogLevelError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
