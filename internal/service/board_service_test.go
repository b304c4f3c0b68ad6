package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/kanban-board/internal/domain"
	"github.com/spec-kit/kanban-board/internal/events"
	"github.com/spec-kit/kanban-board/internal/repository"
	apperrors "github.com/spec-kit/kanban-board/pkg/util/errorutil"
)

type fakeAPI struct {
	mu      sync.Mutex
	tickets []domain.Ticket
	users   []domain.User
	calls   []string

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	// updateEcho, when set, replaces the id the backend reports for updates.
	updateEcho *string

	// release, when set, blocks ListTickets until closed.
	release chan struct{}
	started chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		tickets: []domain.Ticket{
			{ID: "CAM-1", Title: "Update user profile page UI", Status: domain.StatusTodo, Priority: domain.PriorityUrgent, Tags: domain.Tags{"Feature request"}, UserID: "usr-1"},
			{ID: "CAM-2", Title: "Add multi-language support", Status: domain.StatusInProgress, Priority: domain.PriorityHigh, Tags: domain.Tags{"Feature request"}, UserID: "usr-2"},
		},
		users: []domain.User{{ID: "usr-1", Name: "Anoop Sharma"}, {ID: "usr-2", Name: "Yogesh"}},
	}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func (f *fakeAPI) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	f.record("list_tickets")
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Ticket{}, f.tickets...), nil
}

func (f *fakeAPI) ListUsers(ctx context.Context) ([]domain.User, error) {
	f.record("list_users")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.User{}, f.users...), nil
}

func (f *fakeAPI) CreateTicket(ctx context.Context, draft domain.Ticket) (domain.Ticket, error) {
	f.record("create:" + draft.ID)
	if f.createErr != nil {
		return domain.Ticket{}, f.createErr
	}
	return draft, nil
}

func (f *fakeAPI) UpdateTicket(ctx context.Context, id string, patch domain.TicketPatch) (domain.Ticket, error) {
	f.record("update:" + id)
	if f.updateErr != nil {
		return domain.Ticket{}, f.updateErr
	}
	out := domain.Ticket{ID: id}
	if f.updateEcho != nil {
		out.ID = *f.updateEcho
	}
	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Status != nil {
		out.Status = *patch.Status
	}
	if patch.Priority != nil {
		out.Priority = *patch.Priority
	}
	if patch.Tags != nil {
		out.Tags = domain.Tags(*patch.Tags)
	}
	if patch.UserID != nil {
		out.UserID = *patch.UserID
	}
	return out, nil
}

func (f *fakeAPI) DeleteTicket(ctx context.Context, id string) error {
	f.record("delete:" + id)
	return f.deleteErr
}

func newBoard(t *testing.T, api *fakeAPI, prefs repository.PreferenceRepository) (*BoardService, events.Dispatcher) {
	t.Helper()
	if prefs == nil {
		prefs = repository.NewMemoryPreferenceRepository()
	}
	dispatcher := events.NewInMemoryDispatcher()
	seq := 0
	svc := NewBoardService(BoardDependencies{
		API:         api,
		Preferences: NewPreferenceService(prefs, "test", nil),
		Dispatcher:  dispatcher,
		IDGenerator: func() string {
			seq++
			return fmt.Sprintf("TKT-%d", seq)
		},
	})
	return svc, dispatcher
}

func loadedBoard(t *testing.T) (*BoardService, *fakeAPI) {
	t.Helper()
	api := newFakeAPI()
	svc, _ := newBoard(t, api, nil)
	require.NoError(t, svc.Initialize(context.Background()))
	return svc, api
}

func TestInitializeLoadsTicketsAndUsers(t *testing.T) {
	svc, api := loadedBoard(t)

	state := svc.Snapshot()
	assert.Len(t, state.Tickets, 2)
	assert.Len(t, state.Users, 2)
	assert.False(t, state.Loading)
	assert.NoError(t, state.LastError)
	assert.ElementsMatch(t, []string{"list_tickets", "list_users"}, api.Calls())
	assert.Equal(t, domain.DefaultViewPrefs(), state.Prefs)
}

func TestInitializeFailureLeavesBoardEmpty(t *testing.T) {
	api := newFakeAPI()
	api.listErr = apperrors.NewRemoteError(apperrors.CodeFetchFailed, "failed to fetch tickets", 500, errors.New("boom"))
	svc, _ := newBoard(t, api, nil)

	err := svc.Initialize(context.Background())
	require.Error(t, err)

	state := svc.Snapshot()
	assert.Empty(t, state.Tickets)
	assert.Empty(t, state.Users)
	assert.False(t, state.Loading)
	assert.True(t, apperrors.IsCode(state.LastError, apperrors.CodeFetchFailed))
}

func TestLoadingWhileFetchOutstanding(t *testing.T) {
	api := newFakeAPI()
	api.release = make(chan struct{})
	api.started = make(chan struct{})
	svc, _ := newBoard(t, api, nil)

	done := make(chan error, 1)
	go func() { done <- svc.Initialize(context.Background()) }()

	<-api.started
	assert.True(t, svc.Snapshot().Loading)
	close(api.release)
	require.NoError(t, <-done)
	assert.False(t, svc.Snapshot().Loading)
}

func TestSaveRoundTripCreatesExactlyOnce(t *testing.T) {
	svc, api := loadedBoard(t)
	svc.OpenCreateModal()

	form := domain.TicketForm{
		Title:    "  Fix login bug  ",
		Status:   domain.StatusTodo,
		Priority: domain.PriorityHigh,
		Tags:     domain.Tags{"bug", "bug", " "},
		UserID:   "usr-1",
	}
	created, err := svc.SaveCard(context.Background(), form)
	require.NoError(t, err)

	assert.Equal(t, "TKT-1", created.ID)
	assert.Equal(t, "Fix login bug", created.Title)
	assert.Equal(t, domain.Tags{"bug"}, created.Tags)
	assert.Contains(t, api.Calls(), "create:TKT-1")

	state := svc.Snapshot()
	matches := 0
	for _, tk := range state.Tickets {
		if tk.ID == created.ID {
			matches++
			assert.Equal(t, created, tk)
		}
	}
	assert.Equal(t, 1, matches)
	assert.Equal(t, ModalClosed, state.Modal.Mode)
	assert.NoError(t, state.LastError)
}

func TestSaveEditReplacesByID(t *testing.T) {
	svc, api := loadedBoard(t)

	modal, err := svc.OpenEditModal("CAM-2")
	require.NoError(t, err)
	assert.Equal(t, ModalEditing, modal.Mode)
	assert.Equal(t, "Add multi-language support", modal.Form.Title)

	form := modal.Form
	form.Title = "Add i18n"
	form.Status = domain.StatusDone
	updated, err := svc.SaveCard(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "Add i18n", updated.Title)
	assert.Contains(t, api.Calls(), "update:CAM-2")

	state := svc.Snapshot()
	require.Len(t, state.Tickets, 2)
	assert.Equal(t, "CAM-2", state.Tickets[1].ID)
	assert.Equal(t, domain.StatusDone, state.Tickets[1].Status)
	assert.Equal(t, ModalClosed, state.Modal.Mode)
}

func TestSaveEditReplacesTheEditedTicket(t *testing.T) {
	for name, echo := range map[string]string{"empty": "", "normalised": "cam-2"} {
		t.Run(name, func(t *testing.T) {
			svc, api := loadedBoard(t)
			api.updateEcho = &echo

			modal, err := svc.OpenEditModal("CAM-2")
			require.NoError(t, err)
			form := modal.Form
			form.Title = "Add i18n"
			_, err = svc.SaveCard(context.Background(), form)
			require.NoError(t, err)

			state := svc.Snapshot()
			require.Len(t, state.Tickets, 2)
			assert.Equal(t, "CAM-1", state.Tickets[0].ID)
			assert.Equal(t, "Add i18n", state.Tickets[1].Title)
			if echo == "" {
				assert.Equal(t, "CAM-2", state.Tickets[1].ID)
			}
		})
	}
}

func TestSaveWithExistingIDEditsEvenWithoutModal(t *testing.T) {
	svc, api := loadedBoard(t)

	_, err := svc.SaveCard(context.Background(), domain.TicketForm{ID: "CAM-1", Title: "Renamed", Status: domain.StatusTodo, UserID: "usr-1"})
	require.NoError(t, err)
	assert.Contains(t, api.Calls(), "update:CAM-1")
	assert.Len(t, svc.Snapshot().Tickets, 2)
}

func TestValidationShortCircuit(t *testing.T) {
	svc, api := loadedBoard(t)
	svc.OpenCreateModal()
	before := api.Calls()

	cases := []domain.TicketForm{
		{Title: "", Status: domain.StatusTodo, UserID: "u1"},
		{Title: "   ", Status: domain.StatusTodo, UserID: "u1"},
		{Title: "No assignee", Status: domain.StatusTodo},
		{Title: "Bad status", Status: "Blocked", UserID: "u1"},
		{Title: "Bad priority", Status: domain.StatusTodo, Priority: 7, UserID: "u1"},
	}
	for _, form := range cases {
		_, err := svc.SaveCard(context.Background(), form)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation), form.Title)

		state := svc.Snapshot()
		assert.True(t, apperrors.IsCode(state.LastError, apperrors.CodeValidation))
		assert.Equal(t, ModalCreating, state.Modal.Mode)
	}
	assert.Equal(t, before, api.Calls())
}

func TestSaveFailureKeepsModalAndTickets(t *testing.T) {
	svc, api := loadedBoard(t)
	api.createErr = apperrors.NewRemoteError(apperrors.CodeCreateFailed, "failed to create ticket", 500, nil)
	svc.OpenCreateModal()
	before := svc.Snapshot().Tickets

	_, err := svc.SaveCard(context.Background(), domain.TicketForm{Title: "x", Status: domain.StatusTodo, UserID: "usr-1"})
	require.Error(t, err)

	state := svc.Snapshot()
	assert.Equal(t, before, state.Tickets)
	assert.Equal(t, ModalCreating, state.Modal.Mode)
	assert.True(t, apperrors.IsCode(state.LastError, apperrors.CodeCreateFailed))
	assert.False(t, state.Loading)

	svc.DismissError()
	assert.NoError(t, svc.Snapshot().LastError)
}

func TestDeleteRemovesOnlyOnSuccess(t *testing.T) {
	svc, api := loadedBoard(t)

	require.NoError(t, svc.DeleteCard(context.Background(), "CAM-1"))
	state := svc.Snapshot()
	require.Len(t, state.Tickets, 1)
	assert.Equal(t, "CAM-2", state.Tickets[0].ID)

	api.deleteErr = apperrors.NewRemoteError(apperrors.CodeDeleteFailed, "failed to delete ticket", 404, nil)
	err := svc.DeleteCard(context.Background(), "CAM-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(svc.Snapshot().LastError, apperrors.CodeDeleteFailed))
	assert.Len(t, svc.Snapshot().Tickets, 1)
	assert.Equal(t, []string{"delete:CAM-1", "delete:CAM-1"}, api.Calls()[2:])
}

func TestDeleteClosesModalEditingTheTicket(t *testing.T) {
	svc, _ := loadedBoard(t)
	_, err := svc.OpenEditModal("CAM-1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCard(context.Background(), "CAM-1"))
	assert.Equal(t, ModalClosed, svc.Snapshot().Modal.Mode)
}

func TestOpenEditModalUnknownTicket(t *testing.T) {
	svc, _ := loadedBoard(t)
	_, err := svc.OpenEditModal("nope")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	assert.Equal(t, ModalClosed, svc.Snapshot().Modal.Mode)
}

func TestCreateModalDefaults(t *testing.T) {
	svc, _ := loadedBoard(t)
	modal := svc.OpenCreateModal()
	assert.Equal(t, ModalCreating, modal.Mode)
	assert.Equal(t, domain.StatusTodo, modal.Form.Status)
	assert.Equal(t, domain.PriorityNone, modal.Form.Priority)
	assert.Equal(t, "usr-1", modal.Form.UserID)

	svc.CloseModal()
	assert.Equal(t, ModalClosed, svc.Snapshot().Modal.Mode)
}

func TestPreferencesPersistAcrossInitialize(t *testing.T) {
	store := repository.NewMemoryPreferenceRepository()
	first, _ := newBoard(t, newFakeAPI(), store)
	require.NoError(t, first.SetGroupBy(context.Background(), domain.GroupByUser))
	require.NoError(t, first.SetSortBy(context.Background(), domain.SortByTitle))

	second, _ := newBoard(t, newFakeAPI(), store)
	require.NoError(t, second.Initialize(context.Background()))
	assert.Equal(t, domain.ViewPrefs{GroupBy: domain.GroupByUser, SortBy: domain.SortByTitle}, second.Snapshot().Prefs)
}

func TestInvalidStoredPreferencesFallBack(t *testing.T) {
	store := repository.NewMemoryPreferenceRepository()
	require.NoError(t, store.Set(context.Background(), "test", domain.PrefKeyGroupBy, "team"))
	require.NoError(t, store.Set(context.Background(), "test", domain.PrefKeySortBy, "title"))

	svc, _ := newBoard(t, newFakeAPI(), store)
	require.NoError(t, svc.Initialize(context.Background()))
	assert.Equal(t, domain.ViewPrefs{GroupBy: domain.GroupByStatus, SortBy: domain.SortByTitle}, svc.Snapshot().Prefs)
}

type failingStore struct{ repository.PreferenceRepository }

func (failingStore) Set(context.Context, string, string, string) error {
	return errors.New("disk full")
}

type unreadableStore struct {
	repository.PreferenceRepository
	mu      sync.Mutex
	failGet bool
}

func (u *unreadableStore) Get(ctx context.Context, scope, key string) (string, bool, error) {
	u.mu.Lock()
	fail := u.failGet
	u.mu.Unlock()
	if fail {
		return "", false, errors.New("connection reset")
	}
	return u.PreferenceRepository.Get(ctx, scope, key)
}

func TestReloadWithUnreadableStoreKeepsPreferences(t *testing.T) {
	store := &unreadableStore{PreferenceRepository: repository.NewMemoryPreferenceRepository()}
	svc, _ := newBoard(t, newFakeAPI(), store)
	require.NoError(t, svc.Initialize(context.Background()))
	require.NoError(t, svc.SetGroupBy(context.Background(), domain.GroupByUser))
	require.NoError(t, svc.SetSortBy(context.Background(), domain.SortByTitle))

	store.mu.Lock()
	store.failGet = true
	store.mu.Unlock()

	require.NoError(t, svc.Initialize(context.Background()))
	state := svc.Snapshot()
	assert.Equal(t, domain.ViewPrefs{GroupBy: domain.GroupByUser, SortBy: domain.SortByTitle}, state.Prefs)
	assert.Len(t, state.Tickets, 2)
}

func TestFirstLoadWithUnreadableStoreUsesDefaults(t *testing.T) {
	store := &unreadableStore{PreferenceRepository: repository.NewMemoryPreferenceRepository(), failGet: true}
	svc, _ := newBoard(t, newFakeAPI(), store)

	require.NoError(t, svc.Initialize(context.Background()))
	assert.Equal(t, domain.DefaultViewPrefs(), svc.Snapshot().Prefs)
}

func TestPersistFailureKeepsInMemoryValue(t *testing.T) {
	svc, _ := newBoard(t, newFakeAPI(), failingStore{repository.NewMemoryPreferenceRepository()})

	err := svc.SetGroupBy(context.Background(), domain.GroupByPriority)
	require.Error(t, err)
	state := svc.Snapshot()
	assert.Equal(t, domain.GroupByPriority, state.Prefs.GroupBy)
	assert.True(t, apperrors.IsCode(state.LastError, apperrors.CodePrefsUnavailable))
}

func TestSetGroupByRejectsUnknown(t *testing.T) {
	svc, _ := loadedBoard(t)
	err := svc.SetGroupBy(context.Background(), "team")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.Equal(t, domain.GroupByStatus, svc.Snapshot().Prefs.GroupBy)
}

func TestToggleEditModeAndView(t *testing.T) {
	svc, _ := loadedBoard(t)
	assert.True(t, svc.ToggleEditMode())

	board := svc.View()
	assert.True(t, board.EditMode)
	require.Len(t, board.Columns, 5)
	assert.Equal(t, "Todo", board.Columns[1].Label)
	require.Len(t, board.Columns[1].Cards, 1)
	assert.True(t, board.Columns[1].Cards[0].Editable)

	assert.False(t, svc.ToggleEditMode())
}

func TestSnapshotViewDerivesFromOneSnapshot(t *testing.T) {
	svc, _ := loadedBoard(t)
	require.NoError(t, svc.SetGroupBy(context.Background(), domain.GroupByUser))
	svc.ToggleEditMode()

	state, board := svc.SnapshotView()
	assert.Equal(t, state.Prefs.GroupBy, board.GroupBy)
	assert.Equal(t, state.EditMode, board.EditMode)
	cards := 0
	for _, col := range board.Columns {
		cards += len(col.Cards)
	}
	assert.Equal(t, len(state.Tickets), cards)
	require.Len(t, board.Columns, len(state.Users))
	assert.Equal(t, "Anoop Sharma", board.Columns[0].Label)
}

func TestSnapshotIsACopy(t *testing.T) {
	svc, _ := loadedBoard(t)
	state := svc.Snapshot()
	state.Tickets[0].Title = "mutated"
	state.Tickets[0].Tags[0] = "mutated"
	state.Users[0].Name = "mutated"

	again := svc.Snapshot()
	assert.Equal(t, "Update user profile page UI", again.Tickets[0].Title)
	assert.Equal(t, domain.Tags{"Feature request"}, again.Tickets[0].Tags)
	assert.Equal(t, "Anoop Sharma", again.Users[0].Name)
}

func TestEventsAreRecordedInActivityFeed(t *testing.T) {
	api := newFakeAPI()
	svc, dispatcher := newBoard(t, api, nil)
	activity := NewActivityService(dispatcher, nil, 3)
	activity.RegisterHandlers()

	require.NoError(t, svc.Initialize(context.Background()))
	require.NoError(t, svc.SetSortBy(context.Background(), domain.SortByTitle))
	_, err := svc.SaveCard(context.Background(), domain.TicketForm{Title: "New", Status: domain.StatusBacklog, UserID: "usr-2"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCard(context.Background(), "CAM-1"))

	recent := activity.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, events.EventTicketDeleted, recent[0].Type)
	assert.Equal(t, "CAM-1", recent[0].TicketID)
	assert.Equal(t, events.EventTicketCreated, recent[1].Type)
	assert.Equal(t, events.EventPreferencesChanged, recent[2].Type)
	assert.Equal(t, "test", recent[2].Scope)
	assert.NotEmpty(t, recent[0].ID)
}
