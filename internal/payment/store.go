package payment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store persists payment methods.
type Store interface {
	List(ctx context.Context) ([]Method, error)
	Save(ctx context.Context, m Method) error
	Delete(ctx context.Context, id string) error
}

// DB is the subset of pgxpool.Pool used by PGStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PGStore keeps methods in the payment_methods table.
type PGStore struct {
	DB DB
}

// List implements Store.
func (s PGStore) List(ctx context.Context) ([]Method, error) {
	rows, err := s.DB.Query(ctx, `SELECT id, name, account_number, account_name, qr_code_url, active, sort_order
FROM payment_methods ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[Method])
}

// Save implements Store.
func (s PGStore) Save(ctx context.Context, m Method) error {
	_, err := s.DB.Exec(ctx, `INSERT INTO payment_methods (id, name, account_number, account_name, qr_code_url, active, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, account_number = EXCLUDED.account_number,
	account_name = EXCLUDED.account_name, qr_code_url = EXCLUDED.qr_code_url,
	active = EXCLUDED.active, sort_order = EXCLUDED.sort_order, updated_at = now()`,
		m.ID, m.Name, m.AccountNumber, m.AccountName, m.QRCodeURL, m.Active, m.SortOrder)
	return err
}

// Delete implements Store.
func (s PGStore) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM payment_methods WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}
