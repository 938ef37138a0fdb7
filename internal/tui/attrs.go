package tui

import (
	"fmt"
	"path/filepath"

	table "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const maxColWidth = 24

// refreshAttrs rebuilds the table from the dataset's attribute rows.
func (m *Model) refreshAttrs() {
	cols, rows := m.attributes()
	// If there are no columns or rows, disable attributes view to avoid rendering panics
	if len(cols) == 0 || len(rows) == 0 {
		m.showAttrs = false
		m.status = "no attributes for current dataset"
		return
	}
	tcols := make([]table.Column, 0, len(cols)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	for _, c := range cols {
		tcols = append(tcols, table.Column{Title: clip(c, maxColWidth), Width: min(lipgloss.Width(c)+2, maxColWidth)})
	}
	trows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		cells := make([]string, len(tcols))
		cells[0] = fmt.Sprintf("%d", i+1)
		for j := 1; j < len(cells) && j-1 < len(r); j++ {
			cells[j] = clip(r[j-1], maxColWidth)
		}
		trows = append(trows, table.Row(cells))
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
}

// attributes returns the dataset's table, or a one-row summary when the
// source carries none.
func (m *Model) attributes() ([]string, [][]string) {
	if len(m.data.Columns) > 0 {
		return m.data.Columns, m.data.Rows
	}
	if m.data.Empty() {
		return nil, nil
	}
	name := "<pasted>"
	if m.selPath != "" {
		name = filepath.Base(m.selPath)
	}
	b := m.data.BBox
	pts, ls, polys := m.data.Counts()
	cols := []string{"name", "bbox", "points", "lines", "polygons"}
	vals := []string{
		name,
		fmt.Sprintf("[%.5f,%.5f,%.5f,%.5f]", b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()),
		fmt.Sprintf("%d", pts), fmt.Sprintf("%d", ls), fmt.Sprintf("%d", polys),
	}
	return cols, [][]string{vals}
}
