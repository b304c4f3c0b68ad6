package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/kanban-board/internal/config"
	"github.com/spec-kit/kanban-board/internal/repository"
)

// OpenPreferenceStore connects the preference backend selected by
// cfg.Preferences.Backend. The returned close function releases whatever
// connection was opened and is never nil.
func OpenPreferenceStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.PreferenceRepository, func(), error) {
	logger = logger.With(zap.String("backend", cfg.Preferences.Backend))

	switch cfg.Preferences.Backend {
	case config.PrefsBackendMemory:
		logger.Info("using in-memory preference store; preferences will not survive a restart")
		return repository.NewMemoryPreferenceRepository(), func() {}, nil

	case config.PrefsBackendSQLite:
		repo, err := repository.NewSQLitePreferenceRepository(cfg.Preferences.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite preference store: %w", err)
		}
		logger.Info("opened sqlite preference store", zap.String("path", cfg.Preferences.SQLitePath))
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.Warn("close sqlite preference store", zap.Error(err))
			}
		}, nil

	case config.PrefsBackendRedis:
		redis := NewRedis(cfg.Redis, logger)
		return repository.NewRedisPreferenceRepository(redis.Client, cfg.Redis.KeyPrefix), redis.Close, nil

	case config.PrefsBackendPostgres:
		pg, err := OpenPreferencePool(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres preference store: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.Pool(), cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return repository.NewPostgresPreferenceRepository(pg.Pool()), pg.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown preference backend %q", cfg.Preferences.Backend)
}
