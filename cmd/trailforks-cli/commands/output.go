package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

var output io.Writer = os.Stdout

func render(header table.Row, rows []table.Row) error {
	t := table.NewWriter()
	t.SetOutputMirror(output)
	t.AppendHeader(header)
	t.AppendRows(rows)

	switch format {
	case "table":
		t.SetStyle(table.StyleRounded)
		t.Render()
	case "csv":
		t.RenderCSV()
	default:
		return fmt.Errorf("unknown output format %q, expected 'table' or 'csv'", format)
	}
	return nil
}

// renderPairs renders a single record as a two column key/value table.
func renderPairs(pairs [][2]any) error {
	rows := make([]table.Row, len(pairs))
	for i, p := range pairs {
		rows[i] = table.Row{p[0], p[1]}
	}
	return render(table.Row{"Field", "Value"}, rows)
}

func renderList(title string, values []string) error {
	rows := make([]table.Row, len(values))
	for i, v := range values {
		rows[i] = table.Row{v}
	}
	return render(table.Row{title}, rows)
}
