package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ezBadminton/gobattle/core"
	"github.com/ezBadminton/gobattle/internal/config"
	"github.com/ezBadminton/gobattle/internal/logging"
	"github.com/ezBadminton/gobattle/internal/media"
	"github.com/ezBadminton/gobattle/internal/metrics"
	"github.com/ezBadminton/gobattle/internal/session"
	"github.com/ezBadminton/gobattle/internal/store"
)

// Everything a command needs to work on the library
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	library *media.Library
	scanner *media.Scanner
	session *session.Session

	registry  *prometheus.Registry
	collector *metrics.Collector
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	if flags.root != "" {
		cfg.Library.Root = flags.root
	}
	if flags.backend != "" {
		cfg.Store.Backend = flags.backend
	}
	if flags.strategy != "" {
		cfg.Battle.Strategy = flags.strategy
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Loads the configuration and opens the session of the library
func openApp(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.LoggerConfig()
	logCfg.Output = os.Stderr
	logger := logging.New(logCfg)

	library := media.NewLibrary(cfg.Library.Root)

	st, err := store.Open(cfg.Store, cfg.Library.Root, logger)
	if err != nil {
		return nil, err
	}

	registry := core.DefaultRegistry(core.NewRand(cfg.Battle.Seed), library)
	if err := registry.Use(cfg.Battle.Strategy); err != nil {
		st.Close()
		return nil, err
	}

	promRegistry := prometheus.NewRegistry()
	collector := metrics.NewCollector(promRegistry)

	s, err := session.Open(ctx, st,
		session.WithLogger(logger),
		session.WithBattleOptions(
			core.WithRegistry(registry),
			core.WithExistenceCheck(library.Exists),
			core.WithObserver(collector),
		),
	)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		cfg:       cfg,
		log:       logger,
		library:   library,
		scanner:   media.NewScanner(library, cfg.Library.Kinds, logger),
		session:   s,
		registry:  promRegistry,
		collector: collector,
	}, nil
}

func (a *app) Close() error {
	return a.session.Close()
}

// Adds new files and forgets deleted ones
func (a *app) sync(ctx context.Context) (session.SyncReport, error) {
	report, err := a.session.Sync(ctx, a.scanner)
	if err != nil {
		return report, fmt.Errorf("sync library: %w", err)
	}
	return report, nil
}

// Writes the metrics of this run to a file that the node
// exporter textfile collector can pick up
func (a *app) writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, a.registry)
}
