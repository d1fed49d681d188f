package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/warp/division-ops/config"
	"github.com/warp/division-ops/discipline"
	"github.com/warp/division-ops/document"
	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/notify"
	"github.com/warp/division-ops/operations"
	"github.com/warp/division-ops/rules"
	"github.com/warp/division-ops/store/sqlite"
)

// queue is what the service publishes to and the worker drains.
type queue interface {
	notify.Publisher
	notify.Source
}

// app holds the dependencies every command shares.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	store   *sqlite.Store
	svc     *operations.Service
	builder *operations.DocumentBuilder
	pdf     *document.PDFGenerator
	queue   queue
	worker  *notify.Worker
	redis   *redis.Client
}

// newApp opens the database and the queue and wires the service.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := cfg.Log.Logger(os.Stderr)
	slog.SetDefault(log)

	rs, err := rules.Load(cfg.Rules.Path)
	if err != nil {
		return nil, err
	}
	rs = rs.WithCompany(cfg.Company)

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a := &app{cfg: cfg, log: log, store: store, pdf: document.NewPDFGenerator()}

	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.redis.Ping(pingCtx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.queue = notify.NewRedisQueue(a.redis, cfg.Redis.QueueKey)
		log.Info("notifications queued in redis", "addr", cfg.Redis.Addr, "key", cfg.Redis.QueueKey)
	} else {
		a.queue = notify.NewMemoryQueue()
		log.Info("notifications queued in memory")
	}
	a.worker = notify.NewWorker(a.queue, notify.LogMailer{Log: log}, log)

	engine := discipline.New(rs)
	a.builder = operations.NewDocumentBuilder(store, engine, cfg.Company)
	pipeline := operations.NewPipeline(log,
		&operations.DocumentReaction{
			Builder:   a.builder,
			Generator: a.pdf,
			Store:     store,
			Clock:     hr.SystemClock,
		},
		&operations.NotificationReaction{Employees: store, Publisher: a.queue},
	)
	a.svc = operations.NewService(store, engine,
		operations.WithLogger(log),
		operations.WithPipeline(pipeline),
	)
	log.Info("rules loaded", "version", rs.Version, "company", cfg.Company)
	return a, nil
}

// flush delivers what a one-shot command queued in memory. A redis queue
// is left for the serving worker.
func (a *app) flush(ctx context.Context) {
	if _, ok := a.queue.(*notify.MemoryQueue); !ok {
		return
	}
	n, err := a.worker.Drain(ctx)
	if err != nil {
		a.log.Error("failed to deliver notifications", "err", err)
		return
	}
	if n > 0 {
		a.log.Info("notifications delivered", "count", n)
	}
}

// Close releases the database and redis connections.
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if err := a.store.Close(); err != nil {
		a.log.Error("failed to close database", "err", err)
	}
}

// setup loads the configuration and builds the app.
func setup(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg)
}

// parseAsOf reads an --as-of flag, defaulting to the service's today.
func (a *app) parseAsOf(raw string) (time.Time, error) {
	if raw == "" {
		return a.svc.Today(), nil
	}
	d, err := hr.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q (use YYYY-MM-DD): %w", raw, err)
	}
	return d, nil
}
