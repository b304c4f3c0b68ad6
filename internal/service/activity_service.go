package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/kanban-board/internal/events"
)

const defaultActivityCapacity = 50

// ActivityService records board events in a bounded feed and logs them.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	capacity   int

	mu     sync.RWMutex
	recent []events.Event
}

// NewActivityService creates the service. A non-positive capacity uses the default.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, capacity int) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity <= 0 {
		capacity = defaultActivityCapacity
	}
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     logger.With(zap.String("component", "activity")),
		capacity:   capacity,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventBoardLoaded, a.handleBoardLoaded)
	a.dispatcher.Subscribe(events.EventTicketCreated, a.handleTicketChanged)
	a.dispatcher.Subscribe(events.EventTicketUpdated, a.handleTicketChanged)
	a.dispatcher.Subscribe(events.EventTicketDeleted, a.handleTicketDeleted)
	a.dispatcher.Subscribe(events.EventPreferencesChanged, a.handlePreferencesChanged)
}

func (a *ActivityService) handleBoardLoaded(_ context.Context, event events.Event) error {
	a.logger.Debug("BoardLoaded", zap.Any("payload", event.Payload))
	a.record(event)
	return nil
}

func (a *ActivityService) handleTicketChanged(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), zap.String("ticket_id", event.TicketID))
	a.record(event)
	return nil
}

func (a *ActivityService) handleTicketDeleted(_ context.Context, event events.Event) error {
	a.logger.Info("TicketDeleted", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	a.record(event)
	return nil
}

func (a *ActivityService) handlePreferencesChanged(_ context.Context, event events.Event) error {
	a.logger.Debug("PreferencesChanged", zap.String("scope", event.Scope), zap.Any("payload", event.Payload))
	a.record(event)
	return nil
}

func (a *ActivityService) record(event events.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recent = append(a.recent, event)
	if over := len(a.recent) - a.capacity; over > 0 {
		a.recent = append([]events.Event(nil), a.recent[over:]...)
	}
}

// Recent returns the recorded events, newest first.
func (a *ActivityService) Recent() []events.Event {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]events.Event, 0, len(a.recent))
	for i := len(a.recent) - 1; i >= 0; i-- {
		out = append(out, a.recent[i])
	}
	return out
}
