package types

import (
	"fmt"
	"strings"
)

// MarkdownTable is the unit the Markdown outputter knows how to render.
type MarkdownTable struct {
	TableHeading string
	Headers      []string
	Rows         [][]string
}

// AddRow appends one row, padding or truncating to the header width.
func (t *MarkdownTable) AddRow(cells ...string) {
	row := make([]string, len(t.Headers))
	for i := range row {
		if i < len(cells) {
			row[i] = escapeCell(cells[i])
		}
	}
	t.Rows = append(t.Rows, row)
}

// ToString renders the table with columns padded to their widest cell.
func (t MarkdownTable) ToString() string {
	var result strings.Builder

	if t.TableHeading != "" {
		result.WriteString("# " + t.TableHeading + "\n\n")
	}

	if len(t.Headers) == 0 {
		return result.String()
	}

	widths := make([]int, len(t.Headers))
	for i, header := range t.Headers {
		widths[i] = len(header)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var header, divider strings.Builder
	header.WriteString("|")
	divider.WriteString("|")
	for i, h := range t.Headers {
		header.WriteString(fmt.Sprintf(" %-*s |", widths[i], h))
		divider.WriteString(fmt.Sprintf(" %s |", strings.Repeat("-", widths[i])))
	}
	result.WriteString(header.String() + "\n")
	result.WriteString(divider.String() + "\n")

	for _, row := range t.Rows {
		result.WriteString("|")
		for i := range t.Headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			result.WriteString(fmt.Sprintf(" %-*s |", widths[i], cell))
		}
		result.WriteString("\n")
	}

	return result.String()
}

// escapeCell keeps literal pipes from breaking the table layout.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
