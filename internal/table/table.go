// Package table turns rows of any type into a header/cell grid that both the
// HTML pages and the CLI render.
package table

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Placeholder is rendered for empty cells
const Placeholder = "-"

// EmptyMessage is shown instead of rows when there is nothing to display
const EmptyMessage = "No data found"

// Column describes one table column
type Column[T any] struct {
	Title string
	Value func(T) string
}

// View is a rendered table
type View struct {
	Title   string
	Headers []string
	Rows    [][]string
	Empty   string // set when Rows is empty
}

// Build renders rows through columns
func Build[T any](title string, columns []Column[T], rows []T) View {
	view := View{
		Title:   title,
		Headers: make([]string, len(columns)),
		Rows:    make([][]string, 0, len(rows)),
	}

	for i, col := range columns {
		view.Headers[i] = col.Title
	}

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			value := ""
			if col.Value != nil {
				value = col.Value(row)
			}
			if strings.TrimSpace(value) == "" {
				value = Placeholder
			}
			cells[i] = value
		}
		view.Rows = append(view.Rows, cells)
	}

	if len(view.Rows) == 0 {
		view.Empty = EmptyMessage
	}

	return view
}

// Filter keeps rows where any field contains query, ignoring case. An empty
// query keeps everything.
func Filter[T any](rows []T, query string, fields func(T) []string) []T {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return rows
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		for _, field := range fields(row) {
			if strings.Contains(strings.ToLower(field), query) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// Write prints a view as aligned text columns
func Write(w io.Writer, view View) error {
	if view.Empty != "" {
		_, err := fmt.Fprintln(w, view.Empty)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	underline := make([]string, len(view.Headers))
	for i, h := range view.Headers {
		underline[i] = strings.Repeat("─", len([]rune(h)))
	}

	fmt.Fprintln(tw, strings.Join(upper(view.Headers), "\t"))
	fmt.Fprintln(tw, strings.Join(underline, "\t"))
	for _, row := range view.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

func upper(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}
