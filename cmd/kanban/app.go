package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/kanban-board/internal/auth"
	"github.com/spec-kit/kanban-board/internal/config"
	"github.com/spec-kit/kanban-board/internal/events"
	"github.com/spec-kit/kanban-board/internal/observability"
	"github.com/spec-kit/kanban-board/internal/persistence"
	"github.com/spec-kit/kanban-board/internal/remote"
	"github.com/spec-kit/kanban-board/internal/service"
	"github.com/spec-kit/kanban-board/internal/view"
	"github.com/spec-kit/kanban-board/internal/worker"
)

// application holds the wired board and its collaborators.
type application struct {
	cfg         *config.Config
	logger      *zap.Logger
	metrics     *observability.Metrics
	preferences *service.PreferenceService
	board       *service.BoardService
	activity    *service.ActivityService
	closeStore  func()
}

func newApplication(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*application, error) {
	store, closeStore, err := persistence.OpenPreferenceStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics()
	opts := []remote.Option{remote.WithMetrics(metrics), remote.WithLogger(logger)}
	if cfg.API.TokenSecret != "" {
		tokens := auth.NewTokenManager(cfg.API.TokenSecret, cfg.Auth.AccessTokenTTLMinutes)
		opts = append(opts, remote.WithTokenSource(auth.NewTokenSource(tokens, cfg.API.TokenSubject)))
	}
	client := remote.NewClient(cfg.API, opts...)

	dispatcher := events.NewInMemoryDispatcher()
	activity := service.NewActivityService(dispatcher, logger, 0)
	worker.StartActivityWorker(activity)

	prefs := service.NewPreferenceService(store, cfg.Preferences.Scope, logger)
	board := service.NewBoardService(service.BoardDependencies{
		API:         client,
		Preferences: prefs,
		Engine:      view.NewEngine(cfg.View.Locale),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	return &application{
		cfg:         cfg,
		logger:      logger,
		metrics:     metrics,
		preferences: prefs,
		board:       board,
		activity:    activity,
		closeStore:  closeStore,
	}, nil
}

func (a *application) Close() {
	a.closeStore()
}
