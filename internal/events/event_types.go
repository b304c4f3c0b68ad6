package events

import (
	"time"

	"github.com/spec-kit/kanban-board/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBoardLoaded        EventType = "board_loaded"
	EventTicketCreated      EventType = "ticket_created"
	EventTicketUpdated      EventType = "ticket_updated"
	EventTicketDeleted      EventType = "ticket_deleted"
	EventPreferencesChanged EventType = "preferences_changed"
)

// Event represents a board event emitted by the controller after the
// backend confirmed a change.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Scope     string      `json:"scope,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// BoardLoadedPayload payload.
type BoardLoadedPayload struct {
	Tickets int `json:"tickets"`
	Users   int `json:"users"`
}

// TicketChangedPayload carries the server record for create and update.
type TicketChangedPayload struct {
	Ticket   domain.Ticket  `json:"ticket"`
	Previous *domain.Ticket `json:"previous,omitempty"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Title string `json:"title,omitempty"`
}

// PreferencesChangedPayload payload.
type PreferencesChangedPayload struct {
	Key   string           `json:"key"`
	Prefs domain.ViewPrefs `json:"prefs"`
}
