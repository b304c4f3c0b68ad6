// Package render draws a derived board for terminals.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/kanban-board/internal/view"
)

const defaultColumnWidth = 30

var iconGlyphs = map[string]string{
	"backlog":         "◌",
	"todo":            "○",
	"in-progress":     "◐",
	"done":            "✓",
	"cancelled":       "✕",
	"no-priority":     "···",
	"low-priority":    "▂",
	"medium-priority": "▂▄",
	"high-priority":   "▂▄▆",
	"urgent-priority": "!",
}

// Glyph returns the terminal symbol for an icon key, or "" when unknown.
func Glyph(icon string) string {
	return iconGlyphs[icon]
}

// Terminal renders boards as side-by-side lipgloss columns.
type Terminal struct {
	renderer    *lipgloss.Renderer
	columnWidth int
}

// NewTerminal builds a renderer that detects colour support from w.
// A non-positive columnWidth uses the default.
func NewTerminal(w io.Writer, columnWidth int) *Terminal {
	if columnWidth <= 0 {
		columnWidth = defaultColumnWidth
	}
	return &Terminal{renderer: lipgloss.NewRenderer(w), columnWidth: columnWidth}
}

// Render draws the board. errMessage, when non-empty, is shown above it.
func (t *Terminal) Render(board view.Board, errMessage string) string {
	var sections []string

	header := t.renderer.NewStyle().Bold(true).Render(
		fmt.Sprintf("Grouping: %s  Ordering: %s", board.GroupBy, board.SortBy))
	if board.EditMode {
		header += t.renderer.NewStyle().Faint(true).Render("  [edit]")
	}
	sections = append(sections, header)

	if errMessage != "" {
		sections = append(sections, t.renderer.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Render("error: "+errMessage))
	}

	if len(board.Columns) == 0 {
		sections = append(sections, t.renderer.NewStyle().Faint(true).Render("no columns"))
		return strings.Join(sections, "\n")
	}

	columns := make([]string, 0, len(board.Columns))
	for _, col := range board.Columns {
		columns = append(columns, t.renderColumn(col))
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	return strings.Join(sections, "\n")
}

func (t *Terminal) renderColumn(col view.Column) string {
	title := col.Label
	if glyph := Glyph(col.Icon); glyph != "" {
		title = glyph + " " + title
	}
	title = fmt.Sprintf("%s %d", title, col.Count)

	lines := []string{t.renderer.NewStyle().Bold(true).Render(truncate(title, t.columnWidth-2))}
	for _, card := range col.Cards {
		lines = append(lines, t.renderCard(card))
	}
	if len(col.Cards) == 0 {
		lines = append(lines, t.renderer.NewStyle().Faint(true).Render("empty"))
	}

	return t.renderer.NewStyle().
		Width(t.columnWidth).
		PaddingRight(1).
		Render(strings.Join(lines, "\n"))
}

func (t *Terminal) renderCard(card view.Card) string {
	inner := t.columnWidth - 4

	idLine := card.Ticket.ID
	if card.ShowAvatar {
		avatar := t.renderer.NewStyle().
			Foreground(lipgloss.Color(card.Color)).
			Bold(true).
			Render(card.Initials)
		idLine = fmt.Sprintf("%s  %s", idLine, avatar)
	}

	titleLine := card.Ticket.Title
	if card.ShowStatus {
		titleLine = Glyph(card.StatusIcon) + " " + titleLine
	}
	lines := []string{idLine, truncate(titleLine, inner)}

	var meta []string
	if card.ShowPriority {
		meta = append(meta, Glyph(card.PriorityIcon))
	}
	for _, tag := range card.Ticket.Tags {
		meta = append(meta, "#"+tag)
	}
	if len(meta) > 0 {
		lines = append(lines, t.renderer.NewStyle().Faint(true).Render(truncate(strings.Join(meta, " "), inner)))
	}
	if card.Editable {
		lines = append(lines, t.renderer.NewStyle().Faint(true).Render("[e]dit [d]elete"))
	}

	return t.renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(t.columnWidth - 3).
		Render(strings.Join(lines, "\n"))
}

// truncate shortens s to at most width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for i := len(runes); i > 0; i-- {
		candidate := string(runes[:i]) + "…"
		if lipgloss.Width(candidate) <= width {
			return candidate
		}
	}
	return "…"
}
