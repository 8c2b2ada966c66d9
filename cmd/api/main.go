package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"backend-mapty/internal/config"
	"backend-mapty/internal/db"
	"backend-mapty/internal/mapview"
	"backend-mapty/internal/server"
	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/storage"
	"backend-mapty/internal/stream"
	"backend-mapty/internal/tracker"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

// Backends are the optional connections a store driver may need.
type Backends struct {
	Postgres *pgxpool.Pool
	Redis    *redis.Client
	SQLite   *sql.DB
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	openSQLite      func(config.Config) (*sql.DB, error)
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, Backends, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		openSQLite:      db.OpenSQLite,
		notify:          signal.Notify,
		run:             Run,
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})).With("service", "mapty")
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()
	slog.SetDefault(newLogger(cfg.LogLevel))

	backends := Backends{Redis: deps.connectRedis(cfg)}
	switch cfg.StoreDriver {
	case "postgres":
		pg, err := deps.connectPostgres(cfg)
		if err != nil {
			slog.Error("postgres connection failed", "error", err)
		}
		backends.Postgres = pg
	case "sqlite":
		conn, err := deps.openSQLite(cfg)
		if err != nil {
			slog.Error("sqlite open failed", "path", cfg.SQLitePath, "error", err)
		}
		backends.SQLite = conn
	}

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, backends, signals, nil); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// openStore picks the key/value backend named by STORE_DRIVER.
func openStore(ctx context.Context, cfg config.Config, b Backends) (storage.KV, error) {
	switch cfg.StoreDriver {
	case "", "memory":
		return storage.NewMemoryKV(), nil
	case "redis":
		if b.Redis == nil {
			return nil, fmt.Errorf("store driver redis: no redis client")
		}
		return storage.NewRedisKV(b.Redis), nil
	case "postgres":
		if b.Postgres == nil {
			return nil, fmt.Errorf("store driver postgres: no connection")
		}
		kv := storage.NewPostgresKV(b.Postgres)
		if err := kv.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		return kv, nil
	case "sqlite":
		if b.SQLite == nil {
			return nil, fmt.Errorf("store driver sqlite: no database")
		}
		kv := storage.NewSQLiteKV(b.SQLite)
		if err := kv.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("sqlite schema: %w", err)
		}
		return kv, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// Run starts the tracker and the HTTP server and waits for termination
// signals.
func Run(ctx context.Context, cfg config.Config, b Backends, signals <-chan os.Signal, listen ListenFunc) error {
	defer closeBackends(b)

	kv, err := openStore(ctx, cfg, b)
	if err != nil {
		return err
	}

	hub := stream.NewHub(b.Redis)
	defer hub.Close()

	var client *geo.ClientLocator
	var locator geo.Locator
	if cfg.HasStartPosition() {
		locator = geo.NewStaticLocator(cfg.StartLat, cfg.StartLng)
	} else {
		client = geo.NewClientLocator()
		locator = client
	}

	logger := slog.Default()
	ctrl := tracker.NewController(tracker.Options{
		View:     mapview.NewStreamView(hub, cfg.StreamTopic),
		Locator:  locator,
		Store:    storage.NewRepository(kv, cfg.StorageKey, logger),
		Fallback: geo.NewCoords(cfg.FallbackLat, cfg.FallbackLng),
		Zoom:     cfg.MapZoom,
		Logger:   logger,
	})

	trackerCtx, stopTracker := context.WithCancel(ctx)
	trackerDone := make(chan struct{})
	go func() {
		defer close(trackerDone)
		_ = ctrl.Run(trackerCtx)
	}()
	defer func() {
		stopTracker()
		<-trackerDone
	}()

	srv := server.NewServer(cfg, ctrl, hub, client)
	logger.Info("starting server", "addr", cfg.ServerPort, "store", cfg.StoreDriver, "topic", cfg.StreamTopic)

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return shutdownFn(srv.App, shutdownCtx)
}

func closeBackends(b Backends) {
	if b.Postgres != nil {
		b.Postgres.Close()
	}
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
	if b.SQLite != nil {
		_ = b.SQLite.Close()
	}
}
