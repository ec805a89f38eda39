package main

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/underwrite-cli/internal/comps"
	"github.com/sells-group/underwrite-cli/internal/config"
	"github.com/sells-group/underwrite-cli/internal/fixtures"
	"github.com/sells-group/underwrite-cli/internal/metrics"
	"github.com/sells-group/underwrite-cli/internal/screening"
)

// appEnv holds the seed catalog and the services built on it.
type appEnv struct {
	Catalog  *fixtures.Catalog
	Comps    *comps.Service
	Store    *screening.Store
	Registry *prometheus.Registry
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates c for mode, loads the catalog and builds the comp service
// and screening store. Callers should defer env.Close().
func initEnv(c *config.Config, mode string, clock clockwork.Clock) (*appEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	cat, err := fixtures.LoadFile(c.Fixtures.Path)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return nil, eris.Wrap(err, "register metrics")
	}

	svc, err := comps.NewService(cat.Subject, cat.SaleComps, cat.RentComps, c.Comps.Similarity,
		comps.WithClock(clock),
		comps.WithCacheTTL(time.Duration(c.Comps.CacheTTLMins)*time.Minute),
		comps.WithRecorder(m),
	)
	if err != nil {
		return nil, err
	}

	store := screening.New(cat, screening.Config{
		RunLatency:   time.Duration(c.Screening.RunLatencyMs) * time.Millisecond,
		DefaultTerms: c.Screening.DefaultTerms,
	},
		screening.WithClock(clock),
		screening.WithRecorder(m),
	)

	zap.L().Debug("environment ready",
		zap.String("deal", cat.Deal.Name),
		zap.Int("sale_comps", len(cat.SaleComps)),
		zap.Int("rent_comps", len(cat.RentComps)),
		zap.Int("entities", len(cat.Entities)),
	)

	return &appEnv{Catalog: cat, Comps: svc, Store: store, Registry: registry}, nil
}
