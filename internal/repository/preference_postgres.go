package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresPreferenceRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPreferenceRepository returns a Postgres-backed implementation.
// The view_preferences table comes from the migrations directory.
func NewPostgresPreferenceRepository(pool *pgxpool.Pool) PreferenceRepository {
	return &postgresPreferenceRepository{pool: pool}
}

func (r *postgresPreferenceRepository) Get(ctx context.Context, scope, key string) (string, bool, error) {
	if r.pool == nil {
		return "", false, ErrPreferenceStoreUnavailable
	}
	const query = `
        SELECT value FROM view_preferences
        WHERE scope=$1 AND key=$2`

	var value string
	if err := r.pool.QueryRow(ctx, query, scope, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *postgresPreferenceRepository) Set(ctx context.Context, scope, key, value string) error {
	if r.pool == nil {
		return ErrPreferenceStoreUnavailable
	}
	const query = `
        INSERT INTO view_preferences (scope, key, value)
        VALUES ($1, $2, $3)
        ON CONFLICT (scope, key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`

	_, err := r.pool.Exec(ctx, query, scope, key, value)
	return err
}

func (r *postgresPreferenceRepository) Ping(ctx context.Context) error {
	if r.pool == nil {
		return ErrPreferenceStoreUnavailable
	}
	return r.pool.Ping(ctx)
}
