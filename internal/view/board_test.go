package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/kanban-board/internal/domain"
)

func TestBuildBoardHidesWhatTheColumnConveys(t *testing.T) {
	engine := NewEngine("en")
	prefs := domain.ViewPrefs{GroupBy: domain.GroupByStatus, SortBy: domain.SortByPriority}

	board := BuildBoard(engine.Derive(sampleTickets(), testUsers, prefs.GroupBy, prefs.SortBy), testUsers, prefs, false)

	require.Len(t, board.Columns, 5)
	todo := board.Columns[1]
	assert.Equal(t, "todo", todo.Icon)
	assert.Equal(t, 3, todo.Count)

	card := todo.Cards[0]
	assert.Equal(t, "CAM-1", card.Ticket.ID)
	assert.False(t, card.ShowStatus)
	assert.True(t, card.ShowPriority)
	assert.True(t, card.ShowAvatar)
	assert.False(t, card.Editable)
	assert.Equal(t, "AS", card.Initials)
	assert.Equal(t, domain.ColorFromName("Anoop Sharma"), card.Color)
	assert.Equal(t, "urgent-priority", card.PriorityIcon)
}

func TestBuildBoardUnknownAssignee(t *testing.T) {
	engine := NewEngine("en")
	prefs := domain.ViewPrefs{GroupBy: domain.GroupByPriority, SortBy: domain.SortByTitle}

	board := BuildBoard(engine.Derive(sampleTickets(), testUsers, prefs.GroupBy, prefs.SortBy), testUsers, prefs, true)

	low := board.Columns[1]
	require.Len(t, low.Cards, 1)
	card := low.Cards[0]
	assert.Equal(t, "CAM-4", card.Ticket.ID)
	assert.Equal(t, domain.UnknownInitials, card.Initials)
	assert.Equal(t, domain.UnknownColor, card.Color)
	assert.Empty(t, card.AssigneeName)
	assert.False(t, card.ShowPriority)
	assert.True(t, card.ShowStatus)
	assert.True(t, card.Editable)
	assert.Equal(t, "low-priority", low.Icon)
}

func TestBuildBoardByUserHasNoColumnIcons(t *testing.T) {
	engine := NewEngine("en")
	prefs := domain.ViewPrefs{GroupBy: domain.GroupByUser, SortBy: domain.SortByPriority}

	board := BuildBoard(engine.Derive(sampleTickets(), testUsers, prefs.GroupBy, prefs.SortBy), testUsers, prefs, false)

	require.Len(t, board.Columns, 2)
	for _, col := range board.Columns {
		assert.Empty(t, col.Icon)
		for _, card := range col.Cards {
			assert.False(t, card.ShowAvatar)
		}
	}
}

func TestIconFor(t *testing.T) {
	assert.Equal(t, "in-progress", IconFor("In progress"))
	assert.Equal(t, "no-priority", IconFor("No priority"))
	assert.Empty(t, IconFor("Anoop Sharma"))
}
