package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Column is one fixed-width table column.
type Column struct {
	Title string
	Width int
}

// tableStyles is the read-only look: bold underlined header, no selection.
func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorGlassBorder).
		BorderBottom(true)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	s.Selected = s.Cell
	return s
}

// RenderTable renders rows under the given columns as a static table.
// Rows shorter than the column list are padded with empty cells. It
// returns "" when there are no rows.
func RenderTable(columns []Column, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	cols := make([]table.Column, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, table.Column{Title: c.Title, Width: c.Width})
	}

	body := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		cells := make(table.Row, len(columns))
		copy(cells, row)
		body = append(body, cells)
	}

	// The height is fixed before the bordered styles apply, so every row
	// stays visible below the header.
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(body),
		table.WithHeight(len(body)+1),
	)
	t.Blur()
	t.SetStyles(tableStyles())
	return t.View()
}
