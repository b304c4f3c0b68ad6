package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/kanban-board/internal/domain"
	"github.com/spec-kit/kanban-board/internal/events"
	"github.com/spec-kit/kanban-board/internal/view"
	apperrors "github.com/spec-kit/kanban-board/pkg/util/errorutil"
)

// TicketAPI is the backend surface the board depends on. *remote.Client
// implements it.
type TicketAPI interface {
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateTicket(ctx context.Context, draft domain.Ticket) (domain.Ticket, error)
	UpdateTicket(ctx context.Context, id string, patch domain.TicketPatch) (domain.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
}

// ModalMode is the state of the card modal.
type ModalMode string

const (
	ModalClosed   ModalMode = "closed"
	ModalCreating ModalMode = "creating"
	ModalEditing  ModalMode = "editing"
)

// Modal describes the card modal and the defaults its form starts from.
type Modal struct {
	Mode   ModalMode         `json:"mode"`
	Ticket *domain.Ticket    `json:"ticket,omitempty"`
	Form   domain.TicketForm `json:"form"`
}

// BoardState is a point-in-time copy of the controller state.
type BoardState struct {
	Tickets   []domain.Ticket
	Users     []domain.User
	Prefs     domain.ViewPrefs
	EditMode  bool
	Modal     Modal
	Loading   bool
	LastError error
}

// BoardDependencies bundles collaborators for the board service.
type BoardDependencies struct {
	API         TicketAPI
	Preferences *PreferenceService
	Engine      *view.Engine
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	// IDGenerator assigns identifiers to new tickets. Defaults to TKT-<uuid>.
	IDGenerator func() string
}

// BoardService owns the canonical tickets and users plus the view state
// around them. Remote calls run outside the lock; confirmed results are
// applied under it.
type BoardService struct {
	api        TicketAPI
	prefs      *PreferenceService
	engine     *view.Engine
	dispatcher events.Dispatcher
	logger     *zap.Logger
	newID      func() string

	mu        sync.Mutex
	tickets   []domain.Ticket
	users     []domain.User
	viewPrefs domain.ViewPrefs
	editMode  bool
	modal     Modal
	inFlight  int
	lastError error
}

// NewBoardService constructs the service.
func NewBoardService(deps BoardDependencies) *BoardService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := deps.Engine
	if engine == nil {
		engine = view.NewEngine("")
	}
	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return "TKT-" + uuid.NewString() }
	}
	return &BoardService{
		api:        deps.API,
		prefs:      deps.Preferences,
		engine:     engine,
		dispatcher: deps.Dispatcher,
		logger:     logger.With(zap.String("component", "board")),
		newID:      newID,
		tickets:    []domain.Ticket{},
		users:      []domain.User{},
		viewPrefs:  domain.DefaultViewPrefs(),
		modal:      Modal{Mode: ModalClosed},
	}
}

// Initialize restores view preferences and loads tickets and users in
// parallel. On failure the collections and preferences keep what they held
// before.
func (s *BoardService) Initialize(ctx context.Context) error {
	defer s.begin()()

	if s.prefs != nil {
		if prefs, err := s.prefs.Load(ctx); err != nil {
			s.logger.Warn("restoring view preferences failed; keeping current", zap.Error(err))
		} else {
			s.mu.Lock()
			s.viewPrefs = prefs
			s.mu.Unlock()
		}
	}

	var (
		tickets []domain.Ticket
		users   []domain.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tickets, err = s.api.ListTickets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.api.ListUsers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.fail("load board", err)
	}

	s.mu.Lock()
	s.tickets = cloneTickets(tickets)
	s.users = append([]domain.User{}, users...)
	s.lastError = nil
	s.mu.Unlock()

	s.logger.Info("board loaded", zap.Int("tickets", len(tickets)), zap.Int("users", len(users)))
	s.publish(ctx, events.Event{
		Type:    events.EventBoardLoaded,
		Payload: events.BoardLoadedPayload{Tickets: len(tickets), Users: len(users)},
	})
	return nil
}

// OpenCreateModal opens the modal with empty-form defaults.
func (s *BoardService) OpenCreateModal() Modal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modal = Modal{Mode: ModalCreating, Form: domain.NewTicketForm(s.users)}
	return cloneModal(s.modal)
}

// OpenEditModal opens the modal pre-filled with the ticket identified by id.
func (s *BoardService) OpenEditModal(id string) (Modal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexOfTicket(s.tickets, id)
	if idx < 0 {
		return Modal{}, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	t := s.tickets[idx].Clone()
	s.modal = Modal{Mode: ModalEditing, Ticket: &t, Form: domain.FormFromTicket(t)}
	return cloneModal(s.modal), nil
}

// CloseModal discards the modal without saving.
func (s *BoardService) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modal = Modal{Mode: ModalClosed}
}

// SaveCard validates the form and then updates or creates the ticket. The
// canonical collection only changes once the backend confirmed the write.
func (s *BoardService) SaveCard(ctx context.Context, form domain.TicketForm) (domain.Ticket, error) {
	draft := form.Ticket()
	if err := validateDraft(draft); err != nil {
		return domain.Ticket{}, s.fail("validate card", err)
	}

	s.mu.Lock()
	editing := false
	if s.modal.Mode == ModalEditing && s.modal.Ticket != nil {
		editing = true
		if draft.ID == "" {
			draft.ID = s.modal.Ticket.ID
		}
	} else if draft.ID != "" {
		editing = indexOfTicket(s.tickets, draft.ID) >= 0
	}
	s.mu.Unlock()

	if editing {
		return s.updateCard(ctx, draft)
	}
	return s.createCard(ctx, draft)
}

func (s *BoardService) updateCard(ctx context.Context, draft domain.Ticket) (domain.Ticket, error) {
	defer s.begin()()

	updated, err := s.api.UpdateTicket(ctx, draft.ID, domain.FullPatch(draft))
	if err != nil {
		return domain.Ticket{}, s.fail("update ticket", err, zap.String("ticket_id", draft.ID))
	}

	if updated.ID == "" {
		updated.ID = draft.ID
	}

	s.mu.Lock()
	previous := s.replaceLocked(draft.ID, updated)
	s.modal = Modal{Mode: ModalClosed}
	s.lastError = nil
	s.mu.Unlock()

	s.publish(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: updated.ID,
		Payload:  events.TicketChangedPayload{Ticket: updated.Clone(), Previous: previous},
	})
	return updated.Clone(), nil
}

func (s *BoardService) createCard(ctx context.Context, draft domain.Ticket) (domain.Ticket, error) {
	defer s.begin()()

	if draft.ID == "" {
		draft.ID = s.newID()
	}
	created, err := s.api.CreateTicket(ctx, draft)
	if err != nil {
		return domain.Ticket{}, s.fail("create ticket", err, zap.String("ticket_id", draft.ID))
	}

	s.mu.Lock()
	s.replaceLocked(created.ID, created)
	s.modal = Modal{Mode: ModalClosed}
	s.lastError = nil
	s.mu.Unlock()

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: created.ID,
		Payload:  events.TicketChangedPayload{Ticket: created.Clone()},
	})
	return created.Clone(), nil
}

// replaceLocked puts t in place of the ticket identified by id, appending it
// when id is unknown. It returns the replaced ticket, if any.
func (s *BoardService) replaceLocked(id string, t domain.Ticket) *domain.Ticket {
	next := cloneTickets(s.tickets)
	if idx := indexOfTicket(next, id); idx >= 0 {
		previous := next[idx]
		next[idx] = t.Clone()
		s.tickets = next
		return &previous
	}
	s.tickets = append(next, t.Clone())
	return nil
}

// DeleteCard removes the ticket on the backend and then locally.
func (s *BoardService) DeleteCard(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return s.fail("delete ticket", apperrors.NewValidationError("ticket id is required", map[string]any{"field": "id"}))
	}

	defer s.begin()()

	if err := s.api.DeleteTicket(ctx, id); err != nil {
		return s.fail("delete ticket", err, zap.String("ticket_id", id))
	}

	var title string
	s.mu.Lock()
	if idx := indexOfTicket(s.tickets, id); idx >= 0 {
		title = s.tickets[idx].Title
		next := make([]domain.Ticket, 0, len(s.tickets)-1)
		next = append(next, s.tickets[:idx]...)
		s.tickets = append(next, s.tickets[idx+1:]...)
	}
	if s.modal.Mode == ModalEditing && s.modal.Ticket != nil && s.modal.Ticket.ID == id {
		s.modal = Modal{Mode: ModalClosed}
	}
	s.mu.Unlock()

	s.publish(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
		Payload:  events.TicketDeletedPayload{Title: title},
	})
	return nil
}

// SetGroupBy switches the column grouping and persists it.
func (s *BoardService) SetGroupBy(ctx context.Context, groupBy domain.GroupBy) error {
	g, err := domain.ParseGroupBy(string(groupBy))
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"field": domain.PrefKeyGroupBy})
	}

	s.mu.Lock()
	s.viewPrefs.GroupBy = g
	prefs := s.viewPrefs
	s.mu.Unlock()

	if s.prefs != nil {
		if err := s.prefs.SaveGroupBy(ctx, g); err != nil {
			return s.fail("persist grouping", err)
		}
	}
	s.publishPrefs(ctx, domain.PrefKeyGroupBy, prefs)
	return nil
}

// SetSortBy switches the in-column ordering and persists it.
func (s *BoardService) SetSortBy(ctx context.Context, sortBy domain.SortBy) error {
	o, err := domain.ParseSortBy(string(sortBy))
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"field": domain.PrefKeySortBy})
	}

	s.mu.Lock()
	s.viewPrefs.SortBy = o
	prefs := s.viewPrefs
	s.mu.Unlock()

	if s.prefs != nil {
		if err := s.prefs.SaveSortBy(ctx, o); err != nil {
			return s.fail("persist ordering", err)
		}
	}
	s.publishPrefs(ctx, domain.PrefKeySortBy, prefs)
	return nil
}

// ToggleEditMode flips edit mode and returns the new value.
func (s *BoardService) ToggleEditMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editMode = !s.editMode
	return s.editMode
}

// DismissError clears the last error.
func (s *BoardService) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = nil
}

// Snapshot returns a deep copy of the current state.
func (s *BoardService) Snapshot() BoardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BoardState{
		Tickets:   cloneTickets(s.tickets),
		Users:     append([]domain.User{}, s.users...),
		Prefs:     s.viewPrefs,
		EditMode:  s.editMode,
		Modal:     cloneModal(s.modal),
		Loading:   s.inFlight > 0,
		LastError: s.lastError,
	}
}

// View derives the board for the current state.
func (s *BoardService) View() view.Board {
	_, board := s.SnapshotView()
	return board
}

// SnapshotView returns a snapshot together with the board derived from that
// same snapshot.
func (s *BoardService) SnapshotView() (BoardState, view.Board) {
	state := s.Snapshot()
	groups := s.engine.Derive(state.Tickets, state.Users, state.Prefs.GroupBy, state.Prefs.SortBy)
	return state, view.BuildBoard(groups, state.Users, state.Prefs, state.EditMode)
}

// begin marks an operation in flight; the returned func ends it.
func (s *BoardService) begin() func() {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}
}

// fail records err as the last error and returns it.
func (s *BoardService) fail(op string, err error, fields ...zap.Field) error {
	s.mu.Lock()
	s.lastError = err
	s.mu.Unlock()

	fields = append(fields, zap.String("op", op), zap.Error(err))
	if apperrors.IsCode(err, apperrors.CodeValidation) {
		s.logger.Debug("board operation rejected", fields...)
	} else {
		s.logger.Warn("board operation failed", fields...)
	}
	return err
}

func (s *BoardService) publishPrefs(ctx context.Context, key string, prefs domain.ViewPrefs) {
	s.publish(ctx, events.Event{
		Type:    events.EventPreferencesChanged,
		Payload: events.PreferencesChangedPayload{Key: key, Prefs: prefs},
	})
}

func (s *BoardService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	if s.prefs != nil {
		event.Scope = s.prefs.Scope()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func validateDraft(t domain.Ticket) error {
	switch {
	case t.Title == "":
		return apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	case t.UserID == "":
		return apperrors.NewValidationError("an assignee is required", map[string]any{"field": "userId"})
	case !t.Status.Valid():
		return apperrors.NewValidationError("unknown status", map[string]any{"field": "status", "value": string(t.Status)})
	case !t.Priority.Valid():
		return apperrors.NewValidationError("priority out of range", map[string]any{"field": "priority", "value": int(t.Priority)})
	}
	return nil
}

func indexOfTicket(tickets []domain.Ticket, id string) int {
	for i, t := range tickets {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func cloneTickets(tickets []domain.Ticket) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.Clone())
	}
	return out
}

func cloneModal(m Modal) Modal {
	if m.Ticket != nil {
		t := m.Ticket.Clone()
		m.Ticket = &t
	}
	m.Form.Tags = append(domain.Tags{}, m.Form.Tags...)
	return m
}
