// Package backend builds the configured session store and event publisher.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/events"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/storage/memory"
	"github.com/claude/liftlog/internal/storage/postgres"
	"github.com/claude/liftlog/internal/storage/redisstore"
	"github.com/claude/liftlog/internal/storage/sqlite"
	"github.com/claude/liftlog/internal/workout"
)

// Result is an opened backend.
type Result struct {
	Store storage.Store
	// ImportLog is nil for backends without an import history.
	ImportLog storage.ImportLogger
	// Collectors are backend-specific metrics to register.
	Collectors []prometheus.Collector
}

// OpenStore opens the store named by cfg.Storage.Backend, wrapped in a read
// cache when cfg.Storage.CacheMB is positive.
func OpenStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Result, error) {
	res, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.CacheMB > 0 {
		res.Store = storage.NewCached(res.Store, cfg.Storage.CacheMB, log)
		log.Info("session list cache enabled", "size_mb", cfg.Storage.CacheMB)
	}
	return res, nil
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Result, error) {
	sc := cfg.Storage
	switch sc.Backend {
	case config.BackendMemory:
		store := memory.New()
		if sc.Fixtures != "" {
			loc, err := cfg.Calendar.Location()
			if err != nil {
				return nil, err
			}
			n, err := store.LoadFixtures(sc.Fixtures, workout.UserID(cfg.Auth.DevUser), loc)
			if err != nil {
				return nil, err
			}
			log.Info("loaded fixtures", "path", sc.Fixtures, "sessions", n)
		}
		log.Info("initialized memory backend")
		return &Result{Store: store}, nil

	case config.BackendSQLite:
		store, err := sqlite.Open(sc.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		log.Info("initialized sqlite backend", "path", sc.SQLite.Path)
		return &Result{Store: store}, nil

	case config.BackendPostgres:
		dsn := sc.Postgres.DSN()
		if err := postgres.RunMigrations(dsn); err != nil {
			return nil, err
		}
		log.Info("migrations applied")
		db, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connecting database: %w", err)
		}
		log.Info("initialized postgres backend", "host", sc.Postgres.Host, "db", sc.Postgres.Name)
		return &Result{
			Store:     db,
			ImportLog: db,
			Collectors: []prometheus.Collector{
				pgxpoolprometheus.NewCollector(db.Pool, map[string]string{"db_name": sc.Postgres.Name}),
			},
		}, nil

	case config.BackendRedis:
		store, err := redisstore.Dial(ctx, sc.Redis.Addr, sc.Redis.Password, sc.Redis.DB)
		if err != nil {
			return nil, err
		}
		log.Info("initialized redis backend", "addr", sc.Redis.Addr)
		return &Result{Store: store}, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", sc.Backend)
	}
}

// OpenPublisher returns the configured event publisher, or events.Nop when
// publishing is disabled.
func OpenPublisher(cfg config.EventsConfig, log *slog.Logger) (events.Publisher, error) {
	switch cfg.Backend {
	case "":
		return events.Nop{}, nil
	case config.EventsKafka:
		log.Info("publishing session events to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
		return events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic), nil
	case config.EventsAMQP:
		p, err := events.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
		if err != nil {
			return nil, err
		}
		log.Info("publishing session events to amqp", "exchange", cfg.AMQP.Exchange)
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported events backend: %s", cfg.Backend)
	}
}
