package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filmrate/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, namespace string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE namespace = ?`, namespace).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get storage[%s]: %w", namespace, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, namespace string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO local_storage (namespace, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(namespace) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, namespace, value)
	if err != nil {
		return fmt.Errorf("failed to set storage[%s]: %w", namespace, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, namespace string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM local_storage WHERE namespace = ?`, namespace)
	if err != nil {
		return fmt.Errorf("failed to delete storage[%s]: %w", namespace, err)
	}
	return nil
}

var _ Repository = (*SQLiteRepository)(nil)
