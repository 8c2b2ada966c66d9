package storage

import (
	"context"
	"errors"

	"backend-mapty/internal/db"

	"github.com/jackc/pgx/v5"
)

type PostgresKV struct {
	db db.Querier
}

func NewPostgresKV(q db.Querier) *PostgresKV {
	return &PostgresKV{db: q}
}

func (p *PostgresKV) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

func (p *PostgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key=$1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value=EXCLUDED.value, updated_at=now()
	`, key, value)
	return err
}

func (p *PostgresKV) Delete(ctx context.Context, key string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM kv_entries WHERE key=$1`, key)
	return err
}
