package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSecretNotFound is returned when no secret exists under the given name.
var ErrSecretNotFound = errors.New("store: secret not found")

// SecretRepo stores named secrets as opaque codec envelopes.
//
// Expected schema:
//
//	CREATE TABLE secrets (
//	    name       TEXT PRIMARY KEY,
//	    payload    TEXT NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type SecretRepo struct {
	pool *pgxpool.Pool
}

func NewSecretRepo(pool *pgxpool.Pool) *SecretRepo {
	return &SecretRepo{pool: pool}
}

// Upsert writes the envelope under name, replacing any previous version.
func (r *SecretRepo) Upsert(ctx context.Context, name, payload string) error {
	const query = `
		INSERT INTO secrets (name, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = now()
	`

	if _, err := r.pool.Exec(ctx, query, name, payload); err != nil {
		return fmt.Errorf("store: upsert secret %q: %w", name, err)
	}
	return nil
}

// Get fetches the envelope stored under name.
func (r *SecretRepo) Get(ctx context.Context, name string) (string, error) {
	const query = `SELECT payload FROM secrets WHERE name = $1`

	var payload string
	err := r.pool.QueryRow(ctx, query, name).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrSecretNotFound
		}
		return "", fmt.Errorf("store: get secret %q: %w", name, err)
	}

	return payload, nil
}

// Delete removes the secret; deleting a missing name is not an error.
func (r *SecretRepo) Delete(ctx context.Context, name string) error {
	const query = `DELETE FROM secrets WHERE name = $1`

	if _, err := r.pool.Exec(ctx, query, name); err != nil {
		return fmt.Errorf("store: delete secret %q: %w", name, err)
	}
	return nil
}
