// Package view derives the grouped, sorted projection of the board from the
// canonical ticket and user collections.
package view

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/spec-kit/kanban-board/internal/domain"
)

// Group is one column of the derived board. Key identifies the group
// (status, user id or priority label); Label is what gets displayed.
type Group struct {
	Key     string
	Label   string
	Tickets []domain.Ticket
}

// Engine derives board projections. The zero value collates titles with
// the root locale.
type Engine struct {
	locale language.Tag
}

// NewEngine builds an engine that compares titles in the given locale.
// Unparseable locales fall back to the root locale.
func NewEngine(locale string) *Engine {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &Engine{locale: tag}
}

// Derive partitions tickets by groupBy and orders each group by sortBy.
// Inputs are never modified; every group owns its ticket slice.
//
// Status and priority groupings always return their five fixed groups.
// User grouping returns one group per user in users order, and drops
// tickets whose assignee is not among users. An unknown groupBy yields no
// groups.
func (e *Engine) Derive(tickets []domain.Ticket, users []domain.User, groupBy domain.GroupBy, sortBy domain.SortBy) []Group {
	var groups []Group
	switch groupBy {
	case domain.GroupByStatus:
		groups = make([]Group, 0, len(domain.Statuses))
		for _, status := range domain.Statuses {
			groups = append(groups, Group{
				Key:     string(status),
				Label:   string(status),
				Tickets: filter(tickets, func(t domain.Ticket) bool { return t.Status == status }),
			})
		}
	case domain.GroupByUser:
		groups = make([]Group, 0, len(users))
		for _, user := range users {
			groups = append(groups, Group{
				Key:     user.ID,
				Label:   user.Name,
				Tickets: filter(tickets, func(t domain.Ticket) bool { return t.UserID == user.ID }),
			})
		}
	case domain.GroupByPriority:
		groups = make([]Group, 0, len(domain.Priorities))
		for _, priority := range domain.Priorities {
			groups = append(groups, Group{
				Key:     priority.Label(),
				Label:   priority.Label(),
				Tickets: filter(tickets, func(t domain.Ticket) bool { return t.Priority == priority }),
			})
		}
	default:
		return []Group{}
	}

	less := e.comparator(sortBy)
	if less != nil {
		for i := range groups {
			slices.SortStableFunc(groups[i].Tickets, less)
		}
	}
	return groups
}

func (e *Engine) comparator(sortBy domain.SortBy) func(a, b domain.Ticket) int {
	switch sortBy {
	case domain.SortByPriority:
		return func(a, b domain.Ticket) int {
			return cmp.Compare(b.Priority, a.Priority)
		}
	case domain.SortByTitle:
		// Collators keep scratch buffers; one per call keeps Derive safe to
		// run from concurrent requests.
		collator := collate.New(e.locale)
		return func(a, b domain.Ticket) int {
			return collator.CompareString(a.Title, b.Title)
		}
	}
	return nil
}

func filter(tickets []domain.Ticket, keep func(domain.Ticket) bool) []domain.Ticket {
	out := make([]domain.Ticket, 0)
	for _, t := range tickets {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Count returns the number of tickets across groups.
func Count(groups []Group) int {
	total := 0
	for _, g := range groups {
		total += len(g.Tickets)
	}
	return total
}
