package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/mattn/go-runewidth"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/models"
)

type align int

const (
	alignLeft align = iota
	alignCenter
)

type column struct {
	title string
	align align
}

var exportColumns = []column{
	{"ID", alignLeft},
	{"Resource type", alignLeft},
	{"Status", alignCenter},
	{"Items", alignCenter},
	{"Format", alignCenter},
	{"Dry data", alignCenter},
	{"Started at", alignLeft},
}

// cellWidth is the printed width of s, ignoring color escapes.
func cellWidth(s string) int {
	return runewidth.StringWidth(stripansi.Strip(s))
}

func pad(s string, width int, a align) string {
	gap := width - cellWidth(s)
	if gap <= 0 {
		return s
	}
	if a == alignCenter {
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	}
	return s + strings.Repeat(" ", gap)
}

// RenderExportsTable writes items as a boxed table.
func RenderExportsTable(w io.Writer, items []models.Export, color bool) error {
	c := Colorizer(color)

	rows := make([][]string, 0, len(items))
	for _, e := range items {
		dry := ""
		if e.DryData {
			dry = "✓"
		}
		rows = append(rows, []string{
			c.Color("[light_blue]" + e.ID),
			e.ResourceType,
			c.Color(StatusColor(e.Status) + Humanize(e.Status)),
			FormatCount(e.RecordsCount),
			e.Format,
			dry,
			FormatTime(e.StartedAt),
		})
	}

	widths := make([]int, len(exportColumns))
	for i, col := range exportColumns {
		widths[i] = cellWidth(col.title)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], cellWidth(cell))
		}
	}

	rule := func(left, mid, right string) string {
		parts := make([]string, len(widths))
		for i, wd := range widths {
			parts[i] = strings.Repeat("─", wd+2)
		}
		return left + strings.Join(parts, mid) + right + "\n"
	}
	line := func(cells []string, header bool) string {
		var b strings.Builder
		b.WriteString("│")
		for i, cell := range cells {
			a := exportColumns[i].align
			if header {
				cell = c.Color("[light_yellow]" + cell)
				a = alignLeft
			}
			b.WriteString(" " + pad(cell, widths[i], a) + " │")
		}
		b.WriteString("\n")
		return b.String()
	}

	var b strings.Builder
	b.WriteString(rule("┌", "┬", "┐"))
	titles := make([]string, len(exportColumns))
	for i, col := range exportColumns {
		titles[i] = col.title
	}
	b.WriteString(line(titles, true))
	for _, row := range rows {
		b.WriteString(rule("├", "┼", "┤"))
		b.WriteString(line(row, false))
	}
	b.WriteString(rule("└", "┴", "┘"))

	_, err := fmt.Fprint(w, b.String())
	return err
}
