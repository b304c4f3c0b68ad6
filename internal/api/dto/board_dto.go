package dto

import (
	"github.com/spec-kit/kanban-board/internal/domain"
	"github.com/spec-kit/kanban-board/internal/service"
	"github.com/spec-kit/kanban-board/internal/view"
	apperrors "github.com/spec-kit/kanban-board/pkg/util/errorutil"
)

// ErrorView is the JSON form of the controller's last error.
type ErrorView struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// BoardStateView summarises the controller state next to the board.
type BoardStateView struct {
	Prefs    domain.ViewPrefs `json:"prefs"`
	EditMode bool             `json:"editMode"`
	Loading  bool             `json:"loading"`
	Modal    service.Modal    `json:"modal"`
	Users    []domain.User    `json:"users"`
	Tickets  int              `json:"tickets"`
	Error    *ErrorView       `json:"error,omitempty"`
}

// BoardResponse is returned by GET /api/board and by mutating board routes.
type BoardResponse struct {
	State BoardStateView `json:"state"`
	Board view.Board     `json:"board"`
}

// PreferencesRequest payload; absent fields are left unchanged.
type PreferencesRequest struct {
	GroupBy *string `json:"groupBy"`
	SortBy  *string `json:"sortBy"`
}

// CardRequest is the modal form submitted by POST /api/board/cards.
type CardRequest struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Status   string   `json:"status"`
	Priority int      `json:"priority"`
	Tags     []string `json:"tags"`
	Tag      []string `json:"tag"`
	UserID   string   `json:"userId"`
}

// EditModeResponse payload.
type EditModeResponse struct {
	EditMode bool `json:"editMode"`
}

// Form converts the request into the controller's form type.
func (r CardRequest) Form() domain.TicketForm {
	tags := r.Tags
	if len(tags) == 0 {
		tags = r.Tag
	}
	return domain.TicketForm{
		ID:       r.ID,
		Title:    r.Title,
		Status:   domain.Status(r.Status),
		Priority: domain.Priority(r.Priority),
		Tags:     append(domain.Tags{}, tags...),
		UserID:   r.UserID,
	}
}

// NewBoardResponse combines a snapshot with its derived board.
func NewBoardResponse(state service.BoardState, board view.Board) BoardResponse {
	return BoardResponse{
		State: BoardStateView{
			Prefs:    state.Prefs,
			EditMode: state.EditMode,
			Loading:  state.Loading,
			Modal:    state.Modal,
			Users:    state.Users,
			Tickets:  len(state.Tickets),
			Error:    NewErrorView(state.LastError),
		},
		Board: board,
	}
}

// NewErrorView renders err, or nil when there is none.
func NewErrorView(err error) *ErrorView {
	if err == nil {
		return nil
	}
	domainErr := apperrors.ToDomainError(err)
	return &ErrorView{Code: domainErr.Code, Message: domainErr.Message, Details: domainErr.Details}
}
