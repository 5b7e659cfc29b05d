package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/matsen/doibadge/internal/cache"
	"github.com/matsen/doibadge/internal/classify"
	"github.com/matsen/doibadge/internal/config"
	"github.com/matsen/doibadge/internal/crossref"
	"github.com/matsen/doibadge/internal/logging"
	"github.com/matsen/doibadge/internal/pipeline"
)

// app bundles the wired pipeline for a single command invocation.
type app struct {
	cfg        *config.Config
	log        *slog.Logger
	store      *cache.Store
	classifier *classify.Client
	processor  *pipeline.Processor
}

// mustLoadConfig loads configuration and applies global flags, exiting on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if cacheFlag != "" {
		cfg.CachePath = config.ExpandPath(cacheFlag)
	}
	if debugFlag {
		cfg.Debug = true
	}
	return cfg
}

// newLogger builds the stderr logger from global flags.
func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(os.Stderr, logging.Options{Debug: cfg.Debug, JSON: logJSON})
}

// openStore loads the cache named by the config.
func openStore(cfg *config.Config, log *slog.Logger) *cache.Store {
	store := cache.New(cfg.CachePath,
		cache.WithCreditLimit(cfg.CreditLimit),
		cache.WithLogger(log))
	store.Load()
	return store
}

// newApp wires config, cache, Crossref, classifier and processor.
func newApp() *app {
	cfg := mustLoadConfig()
	log := newLogger(cfg)
	store := openStore(cfg, log)

	fetcher := crossref.NewClient(
		crossref.WithBaseURL(cfg.CrossrefURL),
		crossref.WithMailto(cfg.ContactEmail),
		crossref.WithUserAgent("doibadge/"+Version),
		crossref.WithLogger(log))

	classifier := classify.NewClient(store,
		classify.WithEndpoint(cfg.ClassifierURL),
		classify.WithAPIKey(cfg.ClassifierAPIKey),
		classify.WithMailto(cfg.ContactEmail),
		classify.WithCreditLimit(cfg.CreditLimit),
		classify.WithLogger(log))

	if !cfg.ClassifierConfigured() {
		log.Warn("classifier.not_configured", "hint", "set CLASSIFIER_API_KEY and CLASSIFIER_URL")
	}

	return &app{
		cfg:        cfg,
		log:        log,
		store:      store,
		classifier: classifier,
		processor:  pipeline.New(store, fetcher, classifier, pipeline.WithLogger(log)),
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
