package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"modelmgrd/internal/config"
	"modelmgrd/internal/download"
	"modelmgrd/internal/httpapi"
	"modelmgrd/internal/manager"
	"modelmgrd/internal/registry"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	addr := flag.String("addr", "", "HTTP listen address, e.g. :8080 (defaults MODELMGRD_ADDR or :8080)")
	configPath := flag.String("config", "", "Optional config file (.yaml/.json/.toml)")
	dataDir := flag.String("data-dir", "", "Directory for the registry document (default ~/.modelmgrd)")
	modelsDir := flag.String("models-dir", "", "Directory for downloaded model artifacts (default <data-dir>/models)")
	cacheDir := flag.String("cache-dir", "", "Directory for partial downloads (default <data-dir>/cache)")
	hubURL := flag.String("hub-url", "", "Artifact repository base URL")
	maxDownloads := flag.Int("max-downloads", 0, "Max concurrent downloads (default 4)")
	logLevel := flag.String("log-level", "", "Log level: debug|info|warn|error")
	flag.Parse()

	var cfg config.Config
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			bootLog := zerolog.New(os.Stderr)
			bootLog.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
		}
	}

	// Flags override file values; env vars fill remaining gaps.
	if *addr != "" {
		cfg.Addr = *addr
	}
	if cfg.Addr == "" {
		cfg.Addr = envOr("MODELMGRD_ADDR", ":8080")
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "~/.modelmgrd"
	}
	if *modelsDir != "" {
		cfg.ModelsDir = *modelsDir
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}
	if *hubURL != "" {
		cfg.HubBaseURL = *hubURL
	}
	if cfg.HubToken == "" {
		cfg.HubToken = os.Getenv("MODELMGRD_HUB_TOKEN")
	}
	if *maxDownloads > 0 {
		cfg.MaxConcurrentDownloads = *maxDownloads
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = envOr("MODELMGRD_LOG_LEVEL", "info")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	dd, err := config.ExpandHome(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve data dir")
	}
	cfg.DataDir = dd
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = filepath.Join(cfg.DataDir, "models")
	} else if md, err := config.ExpandHome(cfg.ModelsDir); err == nil {
		cfg.ModelsDir = md
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(cfg.DataDir, "cache")
	} else if cd, err := config.ExpandHome(cfg.CacheDir); err == nil {
		cfg.CacheDir = cd
	}

	reg := registry.Open(filepath.Join(cfg.DataDir, registry.DocumentName), log)
	tracker := download.NewTracker(download.TrackerConfig{
		Fetcher:       download.NewHubFetcher(cfg.HubBaseURL, log),
		ModelsDir:     cfg.ModelsDir,
		CacheDir:      cfg.CacheDir,
		Token:         cfg.HubToken,
		MaxConcurrent: cfg.MaxConcurrentDownloads,
		Logger:        log,
	})
	mgr := manager.New(manager.Config{
		Registry:     reg,
		Tracker:      tracker,
		Instantiator: manager.NewLlamaInstantiator(0),
		ModelsDir:    cfg.ModelsDir,
		Logger:       log,
	})

	httpapi.SetLogger(log)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSAllowedOrigins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders)

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(mgr)}
	go func() {
		log.Info().
			Str("addr", cfg.Addr).
			Str("models_dir", cfg.ModelsDir).
			Int("registered", reg.Len()).
			Bool("llama_runtime", manager.RuntimeBuilt()).
			Msg("modelmgrd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	tracker.Close()
}
