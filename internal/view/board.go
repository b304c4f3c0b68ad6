package view

import (
	"strings"

	"github.com/spec-kit/kanban-board/internal/domain"
)

// Board is the render-ready projection consumed by presentation surfaces.
type Board struct {
	GroupBy  domain.GroupBy `json:"groupBy"`
	SortBy   domain.SortBy  `json:"sortBy"`
	EditMode bool           `json:"editMode"`
	Columns  []Column       `json:"columns"`
}

// Column is a rendered group.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Count int    `json:"count"`
	Cards []Card `json:"cards"`
}

// Card is a rendered ticket. The Show* flags hide whatever the current
// grouping already conveys through the column.
type Card struct {
	Ticket       domain.Ticket `json:"ticket"`
	AssigneeName string        `json:"assigneeName,omitempty"`
	Initials     string        `json:"initials"`
	Color        string        `json:"color"`
	StatusIcon   string        `json:"statusIcon,omitempty"`
	PriorityIcon string        `json:"priorityIcon,omitempty"`
	ShowAvatar   bool          `json:"showAvatar"`
	ShowStatus   bool          `json:"showStatus"`
	ShowPriority bool          `json:"showPriority"`
	Editable     bool          `json:"editable"`
}

// BuildBoard turns derived groups into columns and cards.
func BuildBoard(groups []Group, users []domain.User, prefs domain.ViewPrefs, editMode bool) Board {
	board := Board{
		GroupBy:  prefs.GroupBy,
		SortBy:   prefs.SortBy,
		EditMode: editMode,
		Columns:  make([]Column, 0, len(groups)),
	}
	for _, g := range groups {
		col := Column{
			Key:   g.Key,
			Label: g.Label,
			Count: len(g.Tickets),
			Cards: make([]Card, 0, len(g.Tickets)),
		}
		if prefs.GroupBy != domain.GroupByUser {
			col.Icon = IconFor(g.Label)
		}
		for _, t := range g.Tickets {
			col.Cards = append(col.Cards, buildCard(t, users, prefs.GroupBy, editMode))
		}
		board.Columns = append(board.Columns, col)
	}
	return board
}

func buildCard(t domain.Ticket, users []domain.User, groupBy domain.GroupBy, editMode bool) Card {
	card := Card{
		Ticket:       t,
		Initials:     domain.UnknownInitials,
		Color:        domain.UnknownColor,
		StatusIcon:   IconFor(string(t.Status)),
		PriorityIcon: IconFor(t.Priority.Label()),
		ShowAvatar:   groupBy != domain.GroupByUser,
		ShowStatus:   groupBy != domain.GroupByStatus,
		ShowPriority: groupBy != domain.GroupByPriority,
		Editable:     editMode,
	}
	if user, ok := domain.FindUser(users, t.UserID); ok {
		card.AssigneeName = user.Name
		card.Initials = domain.Initials(user.Name)
		card.Color = domain.ColorFromName(user.Name)
	}
	return card
}

// IconFor maps a status or priority label onto its icon key. Unknown labels
// have no icon.
func IconFor(label string) string {
	switch strings.ToLower(label) {
	case "backlog":
		return "backlog"
	case "todo":
		return "todo"
	case "in progress":
		return "in-progress"
	case "done":
		return "done"
	case "cancelled":
		return "cancelled"
	case "no priority":
		return "no-priority"
	case "low":
		return "low-priority"
	case "medium":
		return "medium-priority"
	case "high":
		return "high-priority"
	case "urgent":
		return "urgent-priority"
	}
	return ""
}
