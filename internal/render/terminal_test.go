package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/kanban-board/internal/domain"
	"github.com/spec-kit/kanban-board/internal/view"
)

func sampleBoard(groupBy domain.GroupBy, editMode bool) view.Board {
	users := []domain.User{{ID: "usr-1", Name: "Anoop Sharma"}}
	tickets := []domain.Ticket{
		{ID: "CAM-1", Title: "Update user profile page UI", Status: domain.StatusTodo, Priority: domain.PriorityUrgent, Tags: domain.Tags{"Feature request"}, UserID: "usr-1"},
		{ID: "CAM-2", Title: "Ghost ticket", Status: domain.StatusDone, UserID: "usr-404"},
	}
	prefs := domain.ViewPrefs{GroupBy: groupBy, SortBy: domain.SortByPriority}
	groups := view.NewEngine("en").Derive(tickets, users, prefs.GroupBy, prefs.SortBy)
	return view.BuildBoard(groups, users, prefs, editMode)
}

func TestRenderStatusBoard(t *testing.T) {
	out := NewTerminal(&bytes.Buffer{}, 32).Render(sampleBoard(domain.GroupByStatus, false), "")

	assert.Contains(t, out, "Grouping: status  Ordering: priority")
	assert.Contains(t, out, "○ Todo 1")
	assert.Contains(t, out, "✓ Done 1")
	assert.Contains(t, out, "CAM-1  AS")
	assert.Contains(t, out, "CAM-2  ?")
	assert.Contains(t, out, "#Feature request")
	assert.Contains(t, out, "empty")
	assert.NotContains(t, out, "[e]dit")
}

func TestRenderEditModeAndError(t *testing.T) {
	out := NewTerminal(&bytes.Buffer{}, 0).Render(sampleBoard(domain.GroupByPriority, true), "failed to fetch tickets")

	assert.Contains(t, out, "[edit]")
	assert.Contains(t, out, "error: failed to fetch tickets")
	assert.Contains(t, out, "[e]dit [d]elete")
}

func TestRenderColumnsShareRows(t *testing.T) {
	out := NewTerminal(&bytes.Buffer{}, 20).Render(sampleBoard(domain.GroupByStatus, false), "")
	lines := strings.Split(out, "\n")
	widest := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > widest {
			widest = w
		}
	}
	assert.GreaterOrEqual(t, widest, 5*20)
}

func TestRenderWithoutColumns(t *testing.T) {
	out := NewTerminal(&bytes.Buffer{}, 20).Render(view.Board{GroupBy: "team"}, "")
	assert.Contains(t, out, "no columns")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Update u…", truncate("Update user profile", 9))
	assert.Equal(t, 9, lipgloss.Width(truncate("Update user profile", 9)))
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, "◐", Glyph(view.IconFor("In progress")))
	assert.Equal(t, "", Glyph("unknown"))
}
