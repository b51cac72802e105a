package executor

import (
	"fmt"
	"strings"

	"github.com/cabewaldrop/pagedb/internal/value"
)

// Result is the output of running one statement: either a tabular row set
// (Columns/Rows/RowCount) or a one-line status Message.
type Result struct {
	Columns  []string
	Rows     [][]value.Value
	RowCount int
	Message  string
}

// message builds a Result carrying only a status line, used for DDL and
// database-level statements that don't produce rows.
func message(format string, args ...any) *Result {
	return &Result{Message: fmt.Sprintf(format, args...)}
}

// String renders r as an ASCII table, or the bare status message when one
// was set instead of a row set.
func (r *Result) String() string {
	if r.Message != "" {
		return r.Message
	}
	if len(r.Rows) == 0 {
		return "(no rows)"
	}

	widths := make([]int, len(r.Columns))
	for i, col := range r.Columns {
		widths[i] = len(col)
	}
	for _, row := range r.Rows {
		for i, val := range row {
			if n := len(val.String()); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var sb strings.Builder
	border := func() {
		sb.WriteString("+")
		for _, w := range widths {
			sb.WriteString(strings.Repeat("-", w+2))
			sb.WriteString("+")
		}
		sb.WriteString("\n")
	}

	border()
	sb.WriteString("|")
	for i, col := range r.Columns {
		sb.WriteString(fmt.Sprintf(" %-*s |", widths[i], col))
	}
	sb.WriteString("\n")
	border()
	for _, row := range r.Rows {
		sb.WriteString("|")
		for i, val := range row {
			sb.WriteString(fmt.Sprintf(" %-*s |", widths[i], val.String()))
		}
		sb.WriteString("\n")
	}
	border()
	sb.WriteString(fmt.Sprintf("(%d rows)\n", len(r.Rows)))
	return sb.String()
}
