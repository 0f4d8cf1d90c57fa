// Package render formats query results as bordered terminal tables.
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mfiorillo/ledgerlens/internal/database"
)

// Color palette — minimalist, terminal-friendly.
var (
	colorPrimary = lipgloss.Color("63")  // Purple
	colorBorder  = lipgloss.Color("238") // Dark gray
	colorMuted   = lipgloss.Color("245") // Light gray
)

var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBorder = lipgloss.NewStyle().
			Foreground(colorBorder)
)

// Max cell width before truncation.
const maxColWidth = 40

// Table renders a result set as an aligned text table with a stats
// line. An empty set renders a short notice instead.
func Table(set *database.RowSet) string {
	if set == nil || len(set.Columns) == 0 {
		return styleMuted.Render("  (no rows)")
	}

	cells := make([][]string, len(set.Rows))
	for i, row := range set.Rows {
		line := make([]string, len(set.Columns))
		for j, col := range set.Columns {
			line[j] = formatValue(row[col])
		}
		cells[i] = line
	}

	widths := columnWidths(set.Columns, cells)

	var b strings.Builder
	stats := fmt.Sprintf("%d row(s) | %s", set.RowCount, set.Duration.Round(time.Millisecond))
	b.WriteString(styleMuted.Render(stats))
	b.WriteString("\n")

	b.WriteString(renderLine(set.Columns, widths, true))
	b.WriteString("\n")
	b.WriteString(renderSeparator(widths))

	for _, line := range cells {
		b.WriteString("\n")
		b.WriteString(renderLine(line, widths, false))
	}

	return b.String()
}

// Rows renders a list of repository rows using the key order of the
// first row's sorted column names when no projection is available.
func Rows(columns []string, rows []database.Row) string {
	set := &database.RowSet{
		Columns:  columns,
		Rows:     rows,
		RowCount: len(rows),
	}
	return Table(set)
}

// Detail renders a single row as a key/value listing, keys sorted.
func Detail(row database.Row) string {
	if len(row) == 0 {
		return styleMuted.Render("  (not found)")
	}

	keys := make([]string, 0, len(row))
	width := 0
	for k := range row {
		keys = append(keys, k)
		if w := lipgloss.Width(k); w > width {
			width = w
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("\n")
		}
		label := k + strings.Repeat(" ", width-lipgloss.Width(k))
		b.WriteString("  " + styleHeader.Render(label) + "  " + formatValue(row[k]))
	}
	return b.String()
}

// Schema renders reflected table metadata.
func Schema(schema *database.TableSchema) string {
	columns := []string{"column", "type", "nullable", "primary", "default"}
	rows := make([]database.Row, len(schema.Columns))
	for i, c := range schema.Columns {
		rows[i] = database.Row{
			"column":   c.Name,
			"type":     c.DataType,
			"nullable": c.IsNullable,
			"primary":  c.IsPrimary,
			"default":  c.Default,
		}
	}
	return styleHeader.Render(schema.Name) + "\n" + Rows(columns, rows)
}

func columnWidths(columns []string, cells [][]string) []int {
	widths := make([]int, len(columns))

	// Use display width (not byte length) for accurate measurement
	for i, col := range columns {
		widths[i] = lipgloss.Width(col)
	}
	for _, row := range cells {
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i := range widths {
		if widths[i] < 1 {
			widths[i] = 1
		}
		if widths[i] > maxColWidth {
			widths[i] = maxColWidth
		}
	}
	return widths
}

func renderLine(cells []string, widths []int, isHeader bool) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		width := 10
		if i < len(widths) {
			width = widths[i]
		}

		display := cell
		displayWidth := lipgloss.Width(display)

		// Truncate if display is wider than column
		if displayWidth > width {
			runes := []rune(display)
			if width > 1 && len(runes) > 0 {
				trimmed := runes
				for lipgloss.Width(string(trimmed)) >= width && len(trimmed) > 0 {
					trimmed = trimmed[:len(trimmed)-1]
				}
				display = string(trimmed) + "…"
			} else {
				display = "…"
			}
			displayWidth = lipgloss.Width(display)
		}

		if pad := width - displayWidth; pad > 0 {
			display += strings.Repeat(" ", pad)
		}

		if isHeader {
			parts[i] = styleHeader.Render(display)
		} else {
			parts[i] = display
		}
	}
	return "  " + strings.Join(parts, " │ ")
}

func renderSeparator(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		if w < 1 {
			w = 1
		}
		parts[i] = strings.Repeat("─", w)
	}
	return "  " + styleBorder.Render(strings.Join(parts, "─┼─"))
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
