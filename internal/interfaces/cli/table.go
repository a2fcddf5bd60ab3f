package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type tableStyles struct {
	title  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	sep    lipgloss.Style
}

func newTableStyles(noColor bool) tableStyles {
	if noColor {
		return tableStyles{
			title:  lipgloss.NewStyle(),
			header: lipgloss.NewStyle().Padding(0, 1),
			cell:   lipgloss.NewStyle().Padding(0, 1),
			sep:    lipgloss.NewStyle(),
		}
	}
	return tableStyles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		cell:   lipgloss.NewStyle().Padding(0, 1),
		sep:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// FormatTable renders headers and rows as an aligned table.  Short rows are
// padded with blank cells; cells beyond the header count are dropped.
func FormatTable(title string, headers []string, rows [][]string, noColor bool) string {
	if len(headers) == 0 {
		return ""
	}
	styles := newTableStyles(noColor)

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	// Style widths include the horizontal padding.
	total := len(headers) - 1
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(styles.title.Render(title))
		sb.WriteString("\n")
	}

	writeRow := func(style lipgloss.Style, cells []string) {
		for i := range headers {
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			sb.WriteString(style.Width(widths[i]).Render(val))
			if i < len(headers)-1 {
				sb.WriteString(styles.sep.Render("|"))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(styles.header, headers)
	sb.WriteString(styles.sep.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")
	for _, row := range rows {
		writeRow(styles.cell, row)
	}
	return sb.String()
}

//Personal.AI order the ending
