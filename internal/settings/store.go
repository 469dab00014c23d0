package settings

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store persists setting rows.
type Store interface {
	ListRows(ctx context.Context) ([]Row, error)
	Upsert(ctx context.Context, rows []Row) error
}

// DB is the subset of pgxpool.Pool used by PGStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PGStore keeps settings in the site_settings table.
type PGStore struct {
	DB DB
}

// ListRows implements Store.
func (s PGStore) ListRows(ctx context.Context) ([]Row, error) {
	rows, err := s.DB.Query(ctx, `SELECT id, value FROM site_settings ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Row, error) {
		var r Row
		err := row.Scan(&r.ID, &r.Value)
		return r, err
	})
}

// Upsert writes every row in one transaction.
func (s PGStore) Upsert(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range rows {
			batch.Queue(`INSERT INTO site_settings (id, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, r.ID, r.Value)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}
