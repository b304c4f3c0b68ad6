package domain

import "strings"

// TicketForm is what the card modal collects before a save.
type TicketForm struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title"`
	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`
	Tags     Tags     `json:"tags"`
	UserID   string   `json:"userId"`
}

// NewTicketForm returns the defaults of an empty create form: Todo, no
// priority, no tags, first known user preselected.
func NewTicketForm(users []User) TicketForm {
	form := TicketForm{Status: StatusTodo, Priority: PriorityNone, Tags: Tags{}}
	if len(users) > 0 {
		form.UserID = users[0].ID
	}
	return form
}

// FormFromTicket pre-fills the form for editing t.
func FormFromTicket(t Ticket) TicketForm {
	tags := append(Tags{}, t.Tags...)
	return TicketForm{
		ID:       t.ID,
		Title:    t.Title,
		Status:   t.Status,
		Priority: t.Priority,
		Tags:     tags,
		UserID:   t.UserID,
	}
}

// Ticket converts the form into a ticket with a trimmed title and
// de-duplicated tags. It does not validate.
func (f TicketForm) Ticket() Ticket {
	return Ticket{
		ID:       strings.TrimSpace(f.ID),
		Title:    strings.TrimSpace(f.Title),
		Status:   f.Status,
		Priority: f.Priority,
		Tags:     NormalizeTags(f.Tags),
		UserID:   strings.TrimSpace(f.UserID),
	}
}
