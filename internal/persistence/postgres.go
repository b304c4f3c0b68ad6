package persistence

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/kanban-board/internal/config"
)

const (
	preferencePoolMaxConns = 4
	preferenceAppName      = "kanban-board-preferences"
)

// PreferencePool owns the pgx pool behind the postgres preference store. A
// zero PreferencePool has no pool and the store reports itself unavailable.
type PreferencePool struct {
	pool *pgxpool.Pool
}

// preferencePoolConfig parses the DSN and applies pool limits. The store only
// issues single-row reads and upserts, so the pool stays small by default.
func preferencePoolConfig(cfg config.PostgresConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	poolCfg.MaxConns = preferencePoolMaxConns
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= poolCfg.MaxConns {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}
	if _, ok := poolCfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = preferenceAppName
	}
	return poolCfg, nil
}

// OpenPreferencePool connects when a DSN is configured.
func OpenPreferencePool(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*PreferencePool, error) {
	if cfg.DSN == "" {
		logger.Warn("POSTGRES_DSN not provided; postgres preference store disabled")
		return &PreferencePool{}, nil
	}

	poolCfg, err := preferencePoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres", zap.Int32("max_conns", poolCfg.MaxConns))
	return &PreferencePool{pool: pool}, nil
}

// Pool returns the pgx pool, nil when postgres is not configured.
func (p *PreferencePool) Pool() *pgxpool.Pool {
	if p == nil {
		return nil
	}
	return p.pool
}

// Close releases pool resources.
func (p *PreferencePool) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}
