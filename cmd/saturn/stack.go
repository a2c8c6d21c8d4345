package main

import (
	"fmt"
	"log/slog"

	"aurora-hq/saturn/pkg/config"
	"aurora-hq/saturn/pkg/discovery"
	"aurora-hq/saturn/pkg/history"
	"aurora-hq/saturn/pkg/providers"
	"aurora-hq/saturn/pkg/providers/anthropic"
	"aurora-hq/saturn/pkg/providers/gemini"
	"aurora-hq/saturn/pkg/providers/huggingface"
	"aurora-hq/saturn/pkg/providers/openai"
	"aurora-hq/saturn/pkg/registry"
	"aurora-hq/saturn/pkg/routing"
	"aurora-hq/saturn/pkg/telemetry/logging"
	"aurora-hq/saturn/pkg/telemetry/metrics"
)

// stack holds the wired application components shared by the serve and
// providers commands.
type stack struct {
	cfg       *config.Config
	log       *slog.Logger
	clients   providers.ClientSet
	scanner   *registry.Scanner
	verifier  *discovery.Verifier
	cache     *discovery.Cache
	router    *routing.Router
	store     history.Store
	collector *metrics.Collector
}

// loadConfig resolves the active configuration from the --config flag
// or, when absent, from defaults plus SATURN_* environment overrides.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadConfigWithEnvOverrides(cfgFile)
	}
	return config.DefaultConfigWithEnvOverrides()
}

// newStack wires the full discovery and routing pipeline from a
// configuration.
func newStack(cfg *config.Config) (*stack, error) {
	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{
		Level:     level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}
	slog.SetDefault(logger)

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics.Namespace)
	}

	store, err := newHistoryStore(cfg)
	if err != nil {
		return nil, err
	}

	clients, err := buildClients(cfg)
	if err != nil {
		return nil, err
	}

	scanner := registry.NewScanner(cfg.Discovery.ModelOverrides, logger)
	verifier := discovery.NewVerifier(clients, discovery.VerifierOptions{
		Concurrency:  cfg.Discovery.Concurrency,
		ProbeTimeout: cfg.Discovery.ProbeTimeout,
		Eager:        cfg.Discovery.Eager,
		Logger:       logger,
		Metrics:      collector,
		History:      store,
	})
	cache := discovery.NewCache(scanner, verifier, discovery.CacheOptions{
		TTL:     cfg.Discovery.TTL,
		Logger:  logger,
		Metrics: collector,
	})
	router := routing.NewRouter(cache, verifier, clients, routing.Options{
		ConfirmFirstUse: cfg.EagerConfirmFor,
		MaxFallbacks:    cfg.Discovery.MaxFallbacks,
		Logger:          logger,
		Metrics:         collector,
		History:         store,
	})

	return &stack{
		cfg:       cfg,
		log:       logger,
		clients:   clients,
		scanner:   scanner,
		verifier:  verifier,
		cache:     cache,
		router:    router,
		store:     store,
		collector: collector,
	}, nil
}

func (s *stack) close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Warn("history store close failed", slog.String("error", err.Error()))
		}
	}
}

// buildClients constructs one backend client per provider type,
// applying configured endpoint overrides.
func buildClients(cfg *config.Config) (providers.ClientSet, error) {
	g := gemini.New()
	o := openai.New()
	a := anthropic.New()
	h := huggingface.New()
	if u := cfg.BaseURLFor(string(registry.TypeGemini)); u != "" {
		g.BaseURL = u
	}
	if u := cfg.BaseURLFor(string(registry.TypeOpenAI)); u != "" {
		o.BaseURL = u
	}
	if u := cfg.BaseURLFor(string(registry.TypeAnthropic)); u != "" {
		a.BaseURL = u
	}
	if u := cfg.BaseURLFor(string(registry.TypeHuggingFace)); u != "" {
		h.BaseURL = u
	}
	return providers.NewClientSet(g, o, a, h)
}

func newHistoryStore(cfg *config.Config) (history.Store, error) {
	switch cfg.History.Backend {
	case "sqlite":
		return history.NewSQLiteStore(cfg.History.Path)
	default:
		return history.NewMemoryStore(cfg.History.MaxEntries), nil
	}
}
