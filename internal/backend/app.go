package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/events"
	"github.com/claude/liftlog/internal/logbook"
	"github.com/claude/liftlog/internal/observability"
)

// App is a logbook service wired to the configured store and publisher.
type App struct {
	Service   *logbook.Service
	Registry  *prometheus.Registry
	Metrics   *observability.Metrics
	store     *Result
	publisher events.Publisher
}

// Open builds the store, publisher and metrics named by cfg and returns the
// service over them. Callers must Close the returned App.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	loc, err := cfg.Calendar.Location()
	if err != nil {
		return nil, err
	}

	res, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	pub, err := OpenPublisher(cfg.Events, log)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("opening publisher: %w", err), res.Store.Close())
	}

	reg := observability.NewRegistry(res.Collectors...)
	metrics := observability.NewMetrics(reg)

	svc := logbook.New(logbook.Options{
		Store:     res.Store,
		ImportLog: res.ImportLog,
		Location:  loc,
		Publisher: pub,
		Metrics:   metrics,
		Logger:    log,
	})
	return &App{
		Service:   svc,
		Registry:  reg,
		Metrics:   metrics,
		store:     res,
		publisher: pub,
	}, nil
}

// Close releases the publisher and the store.
func (a *App) Close() error {
	return multierr.Combine(a.publisher.Close(), a.store.Store.Close())
}
