package domain

import (
	"encoding/json"
	"strings"
)

// Status enumerates the board columns a ticket moves through.
type Status string

const (
	StatusBacklog    Status = "Backlog"
	StatusTodo       Status = "Todo"
	StatusInProgress Status = "In progress"
	StatusDone       Status = "Done"
	StatusCancelled  Status = "Cancelled"
)

// Statuses lists every status in board order.
var Statuses = []Status{StatusBacklog, StatusTodo, StatusInProgress, StatusDone, StatusCancelled}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Priority is a numeric urgency; higher is more urgent.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

var priorityLabels = [...]string{"No priority", "Low", "Medium", "High", "Urgent"}

// Priorities lists every priority in ascending severity.
var Priorities = []Priority{PriorityNone, PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Valid reports whether p is within [PriorityNone, PriorityUrgent].
func (p Priority) Valid() bool {
	return p >= PriorityNone && p <= PriorityUrgent
}

// Label returns the display label, or "" when p is out of range.
func (p Priority) Label() string {
	if !p.Valid() {
		return ""
	}
	return priorityLabels[p]
}

// Tags is an insertion-ordered set of labels.
type Tags []string

// Add appends tag unless it is blank or already present.
func (t Tags) Add(tag string) Tags {
	tag = strings.TrimSpace(tag)
	if tag == "" || t.Contains(tag) {
		return t
	}
	return append(t, tag)
}

// Remove drops tag, keeping the order of the rest.
func (t Tags) Remove(tag string) Tags {
	out := make(Tags, 0, len(t))
	for _, existing := range t {
		if existing != tag {
			out = append(out, existing)
		}
	}
	return out
}

// Contains reports whether tag is present.
func (t Tags) Contains(tag string) bool {
	for _, existing := range t {
		if existing == tag {
			return true
		}
	}
	return false
}

// NormalizeTags rebuilds tags through Add, dropping blanks and duplicates.
func NormalizeTags(tags []string) Tags {
	out := make(Tags, 0, len(tags))
	for _, tag := range tags {
		out = out.Add(tag)
	}
	return out
}

// Ticket is a unit of work on the board.
type Ticket struct {
	ID       string
	Title    string
	Status   Status
	Priority Priority
	Tags     Tags
	UserID   string
}

// ticketWire is the backend representation. The backend stores tags under
// "tag"; some payloads use "tags".
type ticketWire struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`
	Tag      []string `json:"tag"`
	Tags     []string `json:"tags,omitempty"`
	UserID   string   `json:"userId"`
}

// MarshalJSON writes the backend representation.
func (t Ticket) MarshalJSON() ([]byte, error) {
	tags := t.Tags
	if tags == nil {
		tags = Tags{}
	}
	return json.Marshal(ticketWire{
		ID:       t.ID,
		Title:    t.Title,
		Status:   t.Status,
		Priority: t.Priority,
		Tag:      tags,
		UserID:   t.UserID,
	})
}

// UnmarshalJSON accepts both "tag" and "tags".
func (t *Ticket) UnmarshalJSON(data []byte) error {
	var wire ticketWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	tags := wire.Tag
	if len(tags) == 0 {
		tags = wire.Tags
	}
	*t = Ticket{
		ID:       wire.ID,
		Title:    wire.Title,
		Status:   wire.Status,
		Priority: wire.Priority,
		Tags:     append(Tags(nil), tags...),
		UserID:   wire.UserID,
	}
	return nil
}

// Clone returns a copy that shares no backing arrays with t.
func (t Ticket) Clone() Ticket {
	if t.Tags != nil {
		t.Tags = append(Tags(nil), t.Tags...)
	}
	return t
}

// TicketPatch carries the fields of a partial update; nil fields are left untouched.
type TicketPatch struct {
	Title    *string   `json:"title,omitempty"`
	Status   *Status   `json:"status,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
	Tags     *[]string `json:"tag,omitempty"`
	UserID   *string   `json:"userId,omitempty"`
}

// FullPatch builds a patch that sets every editable field of t.
func FullPatch(t Ticket) TicketPatch {
	title := t.Title
	status := t.Status
	priority := t.Priority
	tags := []string(t.Tags)
	if tags == nil {
		tags = []string{}
	}
	userID := t.UserID
	return TicketPatch{
		Title:    &title,
		Status:   &status,
		Priority: &priority,
		Tags:     &tags,
		UserID:   &userID,
	}
}
