package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"backend-mapty/internal/config"

	_ "modernc.org/sqlite"
)

const sqliteBusyTimeout = 5 * time.Second

// OpenSQLite opens (creating if needed) the file-backed store used when
// STORE_DRIVER=sqlite.
func OpenSQLite(cfg config.Config) (*sql.DB, error) {
	if cfg.SQLitePath == "" {
		return nil, fmt.Errorf("sqlite path not configured")
	}
	if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("ensure sqlite dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", filepath.ToSlash(cfg.SQLitePath), int(sqliteBusyTimeout/time.Millisecond))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer
	conn.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), sqliteBusyTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return conn, nil
}
