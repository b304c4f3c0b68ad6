package domain

import (
	"fmt"
	"strings"
)

// GroupBy selects the column partition of the board.
type GroupBy string

const (
	GroupByStatus   GroupBy = "status"
	GroupByUser     GroupBy = "user"
	GroupByPriority GroupBy = "priority"
)

// SortBy selects the card order inside a column.
type SortBy string

const (
	SortByPriority SortBy = "priority"
	SortByTitle    SortBy = "title"
)

// Preference keys as stored in the preference repository.
const (
	PrefKeyGroupBy = "groupBy"
	PrefKeySortBy  = "sortBy"
)

// ParseGroupBy accepts the grouping names case-insensitively.
func ParseGroupBy(raw string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(strings.TrimSpace(raw))); g {
	case GroupByStatus, GroupByUser, GroupByPriority:
		return g, nil
	}
	return "", fmt.Errorf("unknown grouping %q", raw)
}

// ParseSortBy accepts the ordering names case-insensitively.
func ParseSortBy(raw string) (SortBy, error) {
	switch s := SortBy(strings.ToLower(strings.TrimSpace(raw))); s {
	case SortByPriority, SortByTitle:
		return s, nil
	}
	return "", fmt.Errorf("unknown ordering %q", raw)
}

// ViewPrefs are the persisted display choices of a board user.
type ViewPrefs struct {
	GroupBy GroupBy `json:"groupBy"`
	SortBy  SortBy  `json:"sortBy"`
}

// DefaultViewPrefs groups by status and sorts by priority.
func DefaultViewPrefs() ViewPrefs {
	return ViewPrefs{GroupBy: GroupByStatus, SortBy: SortByPriority}
}
