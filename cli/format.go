package cli

import (
	"strings"
	"unicode/utf8"
)

// formatResult returns the result column of a check.
func formatResult(r checkResult) string {
	if r.passed {
		return "PASS"
	}
	return "FAIL"
}

func newTable(headers ...string) table {
	separators := make([]string, len(headers))
	for i, header := range headers {
		separators[i] = strings.Repeat("-", utf8.RuneCountInString(header))
	}

	return table{rows: [][]string{headers, separators}}
}

// table formats rows as left aligned columns. The last column is not padded.
type table struct {
	rows [][]string
}

func (t *table) addRow(values ...string) {
	t.rows = append(t.rows, values)
}

func (t *table) format() string {
	widths := make([]int, len(t.rows[0]))
	for _, row := range t.rows {
		for i, value := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(value))
		}
	}

	var sb strings.Builder
	for _, row := range t.rows {
		last := len(row) - 1
		for i, value := range row {
			sb.WriteString(value)
			if i == last {
				break
			}

			sb.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(value)+3))
		}
		sb.WriteRune('\n')
	}

	return sb.String()
}
