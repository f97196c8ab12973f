package htmlutil

import (
	"strconv"
	"trailforks-scraper/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// Table is a rendered html table read into columns and rows of cell text.
type Table struct {
	Columns []string
	Rows    [][]string
	// RowNodes holds the <tr> of each row, so callers can dig into
	// markup that the cell text loses (links, attributes).
	RowNodes []*goquery.Selection
}

// Column returns the index of the column with the normalized name, or -1.
func (t Table) Column(name string) int {
	name = textutil.NormalizeColumn(name)
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the cell in `row` under `column`, "" when either is missing.
func (t Table) Value(row int, column string) string {
	idx := t.Column(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][idx]
}

// ColumnValues returns every cell of a column, ok is false if the column
// does not exist.
func (t Table) ColumnValues(column string) (values []string, ok bool) {
	idx := t.Column(column)
	if idx < 0 {
		return nil, false
	}
	values = make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, true
}

// Records returns the rows as column -> cell maps.
func (t Table) Records() []map[string]string {
	records := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		record := make(map[string]string, len(t.Columns))
		for j, c := range t.Columns {
			record[c] = row[j]
		}
		records[i] = record
	}
	return records
}

func cellTexts(row *goquery.Selection) []string {
	var cells []string
	row.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, textutil.CleanText(GetText(cell.Get(0))))
	})
	return cells
}

func headerRow(table *goquery.Selection) (*goquery.Selection, bool) {
	head := table.Find("thead tr")
	if head.Length() > 0 {
		return head.Last(), true
	}
	first := table.Find("tr").First()
	if first.Length() > 0 && first.ChildrenFiltered("th").Length() > 0 {
		return first, true
	}
	return nil, false
}

// ParseTable reads a <table> element. The header comes from the last row of
// <thead>, or from the first row if it is made of <th> cells; without either
// the columns are named by position ("0", "1", ...).
func ParseTable(table *goquery.Selection) Table {
	var result Table

	header, hasHeader := headerRow(table)
	if hasHeader {
		for _, name := range cellTexts(header) {
			result.Columns = append(result.Columns, textutil.NormalizeColumn(name))
		}
	}

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if hasHeader && row.IsSelection(header) {
			return
		}
		if row.ParentsFiltered("thead").Length() > 0 {
			return
		}
		// rows of nested tables belong to those tables
		if row.Closest("table").Get(0) != table.Get(0) {
			return
		}

		cells := cellTexts(row)
		if len(cells) == 0 {
			return
		}
		result.Rows = append(result.Rows, cells)
		result.RowNodes = append(result.RowNodes, row)
	})

	width := len(result.Columns)
	for _, row := range result.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i := len(result.Columns); i < width; i++ {
		result.Columns = append(result.Columns, strconv.Itoa(i))
	}
	for i, row := range result.Rows {
		for len(row) < width {
			row = append(row, "")
		}
		result.Rows[i] = row
	}

	return result
}

// FirstTable parses the first <table> of the document, ok is false when
// the document has none.
func FirstTable(doc *goquery.Document) (Table, bool) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return Table{}, false
	}
	return ParseTable(table), true
}
