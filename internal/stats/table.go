package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"
)

type column struct {
	title string
	right bool
}

// textTable lays out rows in columns sized by display width.
type textTable struct {
	cols []column
	rows [][]string
}

func newTextTable(cols ...column) *textTable {
	return &textTable{cols: cols}
}

func (t *textTable) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *textTable) lines() []string {
	widths := lo.Map(t.cols, func(c column, _ int) int { return runewidth.StringWidth(c.title) })
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}
	titles := lo.Map(t.cols, func(c column, _ int) string { return c.title })
	out := make([]string, 0, len(t.rows)+1)
	out = append(out, t.line(titles, widths))
	for _, row := range t.rows {
		out = append(out, t.line(row, widths))
	}
	return out
}

func (t *textTable) line(cells []string, widths []int) string {
	padded := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if t.cols[i].right {
			padded[i] = runewidth.FillLeft(cell, width)
		} else {
			padded[i] = runewidth.FillRight(cell, width)
		}
	}
	return strings.TrimRight(strings.Join(padded, " "), " ")
}

// write prints the table followed by a blank line.
func (t *textTable) write(w io.Writer) error {
	for _, line := range t.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
