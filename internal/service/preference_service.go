package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/kanban-board/internal/domain"
	"github.com/spec-kit/kanban-board/internal/repository"
	apperrors "github.com/spec-kit/kanban-board/pkg/util/errorutil"
)

// PreferenceService reads and writes the view preferences of one scope.
type PreferenceService struct {
	repo   repository.PreferenceRepository
	scope  string
	logger *zap.Logger
}

// NewPreferenceService constructs the service.
func NewPreferenceService(repo repository.PreferenceRepository, scope string, logger *zap.Logger) *PreferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if scope == "" {
		scope = "default"
	}
	return &PreferenceService{
		repo:   repo,
		scope:  scope,
		logger: logger.With(zap.String("component", "preferences"), zap.String("scope", scope)),
	}
}

// Scope returns the scope preferences are stored under.
func (s *PreferenceService) Scope() string {
	return s.scope
}

// Load restores the stored preferences. Missing or unparsable values fall
// back to the defaults. A store failure is returned together with the
// defaults so callers can keep going.
func (s *PreferenceService) Load(ctx context.Context) (domain.ViewPrefs, error) {
	prefs := domain.DefaultViewPrefs()

	raw, found, err := s.repo.Get(ctx, s.scope, domain.PrefKeyGroupBy)
	if err != nil {
		return prefs, apperrors.NewPreferencesError(err)
	}
	if found {
		if g, perr := domain.ParseGroupBy(raw); perr == nil {
			prefs.GroupBy = g
		} else {
			s.logger.Warn("ignoring stored grouping", zap.String("value", raw), zap.Error(perr))
		}
	}

	raw, found, err = s.repo.Get(ctx, s.scope, domain.PrefKeySortBy)
	if err != nil {
		return prefs, apperrors.NewPreferencesError(err)
	}
	if found {
		if o, perr := domain.ParseSortBy(raw); perr == nil {
			prefs.SortBy = o
		} else {
			s.logger.Warn("ignoring stored ordering", zap.String("value", raw), zap.Error(perr))
		}
	}

	return prefs, nil
}

// SaveGroupBy persists the grouping.
func (s *PreferenceService) SaveGroupBy(ctx context.Context, g domain.GroupBy) error {
	return s.save(ctx, domain.PrefKeyGroupBy, string(g))
}

// SaveSortBy persists the ordering.
func (s *PreferenceService) SaveSortBy(ctx context.Context, o domain.SortBy) error {
	return s.save(ctx, domain.PrefKeySortBy, string(o))
}

func (s *PreferenceService) save(ctx context.Context, key, value string) error {
	if err := s.repo.Set(ctx, s.scope, key, value); err != nil {
		s.logger.Warn("persist preference failed", zap.String("key", key), zap.Error(err))
		return apperrors.NewPreferencesError(err)
	}
	return nil
}

// Ping checks the backing store.
func (s *PreferenceService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
