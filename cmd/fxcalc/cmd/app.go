package cmd

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/fxtools/calculator"
	"github.com/rustyeddy/fxtools/config"
	"github.com/rustyeddy/fxtools/internal/server"
	"github.com/rustyeddy/fxtools/journal"
	"github.com/rustyeddy/fxtools/market"
	"github.com/rustyeddy/fxtools/pkg/logger"
	"github.com/rustyeddy/fxtools/pricing"
)

// app is the wiring shared by the commands: one quote client, one
// catalog and, when enabled, one in-memory calculation log.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	catalog *market.Catalog
	client  *pricing.Client
	health  server.HealthChecker // nil in mock mode
	journal *journal.SQLite      // nil when disabled
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logPretty {
		cfg.Log.Pretty = true
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)

	cat, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	a := &app{cfg: cfg, log: log, catalog: cat}

	t, err := a.transport()
	if err != nil {
		return nil, err
	}
	a.client = pricing.NewClient(t, cfg.PricingOptions(), log)

	if cfg.Journal.Enabled {
		j, err := journal.NewMemory()
		if err != nil {
			return nil, fmt.Errorf("open calculation log: %w", err)
		}
		a.journal = j
	}
	return a, nil
}

func (a *app) transport() (pricing.Transport, error) {
	cfg := a.cfg
	switch cfg.API.Env {
	case config.EnvMock:
		a.log.Debug().Msg("using mock quote transport")
		return pricing.NewStaticTransport(pricing.MockRates(), cfg.API.Venue), nil
	case config.EnvOANDA:
		base, err := pricing.OANDABaseURL(cfg.OANDA.Env)
		if err != nil {
			return nil, err
		}
		o := pricing.NewOANDATransport(base, cfg.OANDA.Token, cfg.OANDA.AccountID, cfg.RequestTimeout(), a.log)
		a.health = o
		a.log.Debug().Str("base_url", base).Msg("using OANDA quote transport")
		return o, nil
	}
	g := pricing.NewGraphQLTransport(cfg.Endpoint(), cfg.RequestTimeout(), a.log)
	a.health = g
	a.log.Debug().Str("endpoint", cfg.Endpoint()).Str("env", cfg.API.Env).Msg("using GraphQL quote transport")
	return g, nil
}

func (a *app) deps() calculator.Deps {
	d := calculator.Deps{Catalog: a.catalog, Quotes: a.client}
	// A nil *SQLite in a non-nil interface would still be called.
	if a.journal != nil {
		d.Recorder = a.journal
	}
	return d
}

func (a *app) Close() {
	if a.journal != nil {
		_ = a.journal.Close()
	}
}
