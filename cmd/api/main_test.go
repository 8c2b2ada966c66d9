package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"backend-mapty/internal/config"
	"backend-mapty/internal/db"
	"backend-mapty/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func testConfig() config.Config {
	return config.Config{ServerPort: ":0", StoreDriver: "memory", StreamTopic: "main", MapZoom: 13, FallbackLat: 51.505, FallbackLng: -0.09}
}

func TestRunHandlesSignal(t *testing.T) {
	signals := make(chan os.Signal, 1)

	listenCalled := make(chan struct{}, 1)
	listen := func(_ *fiber.App, _ string) error {
		listenCalled <- struct{}{}
		return nil
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		signals <- syscall.SIGINT
	}()

	if err := Run(context.Background(), testConfig(), Backends{}, signals, listen); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	select {
	case <-listenCalled:
	case <-time.After(time.Second):
		t.Fatalf("expected listen to be called")
	}
}

func TestRunContextCancel(t *testing.T) {
	signals := make(chan os.Signal, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Run(ctx, testConfig(), Backends{}, signals, func(_ *fiber.App, _ string) error { return nil }); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
}

func TestRunListenError(t *testing.T) {
	signals := make(chan os.Signal, 1)

	err := Run(context.Background(), testConfig(), Backends{}, signals, func(_ *fiber.App, _ string) error {
		return errListen
	})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestRunDefaultListen(t *testing.T) {
	signals := make(chan os.Signal, 1)

	oldListen := defaultListen
	defaultListen = func(_ *fiber.App, _ string) error { return nil }
	defer func() { defaultListen = oldListen }()

	go func() {
		signals <- syscall.SIGINT
	}()

	if err := Run(context.Background(), testConfig(), Backends{}, signals, nil); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
}

func TestRunUnknownStoreDriver(t *testing.T) {
	cfg := testConfig()
	cfg.StoreDriver = "cassandra"

	if err := Run(context.Background(), cfg, Backends{}, make(chan os.Signal, 1), nil); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestRunMissingBackend(t *testing.T) {
	for _, driver := range []string{"redis", "postgres", "sqlite"} {
		cfg := testConfig()
		cfg.StoreDriver = driver
		if err := Run(context.Background(), cfg, Backends{}, make(chan os.Signal, 1), nil); err == nil {
			t.Fatalf("expected error for %s without a backend", driver)
		}
	}
}

var errListen = context.Canceled

func TestRealMainHandlesErrors(t *testing.T) {
	calledNotify := false
	calledRun := false
	deps := mainDeps{
		loadConfig: func() config.Config {
			cfg := testConfig()
			cfg.StoreDriver = "postgres"
			return cfg
		},
		connectPostgres: func(config.Config) (*pgxpool.Pool, error) { return nil, errListen },
		connectRedis:    func(config.Config) *redis.Client { return nil },
		openSQLite:      func(config.Config) (*sql.DB, error) { return nil, errListen },
		notify: func(ch chan<- os.Signal, _ ...os.Signal) {
			calledNotify = true
			close(ch)
		},
		run: func(context.Context, config.Config, Backends, <-chan os.Signal, ListenFunc) error {
			calledRun = true
			return errListen
		},
	}

	realMain(deps)
	if !calledNotify {
		t.Fatalf("expected notify to be called")
	}
	if !calledRun {
		t.Fatalf("expected run to be called")
	}
}

func TestRealMainOpensSQLite(t *testing.T) {
	var got Backends
	deps := mainDeps{
		loadConfig: func() config.Config {
			cfg := testConfig()
			cfg.StoreDriver = "sqlite"
			cfg.SQLitePath = filepath.Join(t.TempDir(), "mapty.db")
			return cfg
		},
		connectRedis: func(config.Config) *redis.Client { return nil },
		openSQLite:   db.OpenSQLite,
		notify:       func(chan<- os.Signal, ...os.Signal) {},
		run: func(_ context.Context, _ config.Config, b Backends, _ <-chan os.Signal, _ ListenFunc) error {
			got = b
			return nil
		},
	}

	realMain(deps)
	if got.SQLite == nil {
		t.Fatalf("expected sqlite database to be opened")
	}
	_ = got.SQLite.Close()
}

func TestDefaultDeps(t *testing.T) {
	deps := defaultDeps()
	if deps.loadConfig == nil || deps.connectPostgres == nil || deps.connectRedis == nil || deps.openSQLite == nil || deps.notify == nil || deps.run == nil {
		t.Fatalf("expected default deps to be set")
	}
}

func TestMainUsesOverrides(t *testing.T) {
	oldProvider := mainDepsProvider
	oldRunner := mainRunner
	defer func() {
		mainDepsProvider = oldProvider
		mainRunner = oldRunner
	}()

	called := false
	mainDepsProvider = func() mainDeps { return mainDeps{} }
	mainRunner = func(mainDeps) { called = true }

	main()
	if !called {
		t.Fatalf("expected main runner to be called")
	}
}

func TestRunWithRedisStore(t *testing.T) {
	signals := make(chan os.Signal, 1)

	redisServer := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: redisServer.Addr()})

	cfg := testConfig()
	cfg.StoreDriver = "redis"
	cfg.StorageKey = storage.DefaultKey

	listen := func(_ *fiber.App, _ string) error {
		signals <- syscall.SIGINT
		return nil
	}

	if err := Run(context.Background(), cfg, Backends{Redis: client}, signals, listen); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
}

func TestRunWithSQLiteStore(t *testing.T) {
	signals := make(chan os.Signal, 1)

	cfg := testConfig()
	cfg.StoreDriver = "sqlite"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "mapty.db")
	conn, err := db.OpenSQLite(cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	listen := func(_ *fiber.App, _ string) error {
		signals <- syscall.SIGINT
		return nil
	}
	if err := Run(context.Background(), cfg, Backends{SQLite: conn}, signals, listen); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
}

func TestRunShutdownError(t *testing.T) {
	signals := make(chan os.Signal, 1)

	oldShutdown := shutdownFn
	shutdownFn = func(_ *fiber.App, _ context.Context) error { return errListen }
	defer func() { shutdownFn = oldShutdown }()

	go func() {
		signals <- syscall.SIGINT
	}()

	if err := Run(context.Background(), testConfig(), Backends{}, signals, func(_ *fiber.App, _ string) error { return nil }); err == nil {
		t.Fatalf("expected shutdown error")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	if !newLogger("debug").Enabled(context.Background(), -4) {
		t.Fatalf("expected debug enabled")
	}
	if newLogger("error").Enabled(context.Background(), 0) {
		t.Fatalf("expected info disabled at error level")
	}
	if !newLogger("").Enabled(context.Background(), 0) {
		t.Fatalf("expected info enabled by default")
	}
}
