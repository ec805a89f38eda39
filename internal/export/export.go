// Package export renders comp sets and entity lists as aligned text tables,
// CSV or XLSX workbooks.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format is an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatXLSX:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", eris.Errorf("export: unknown format %q (want table, csv or xlsx)", s)
	}
}

// Kind controls how a column's values are rendered.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindCurrency
	KindPercent
)

// Column is a table header plus its rendering kind.
type Column struct {
	Name string
	Kind Kind
}

// Table is a format-agnostic grid. Cell values are string, int, float64 or
// nil for a missing value.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// missing is shown in text tables for nil cells.
const missing = "-"

var printer = message.NewPrinter(language.English)

// Write encodes t to w in the given format.
func Write(w io.Writer, t Table, f Format) error {
	switch f {
	case FormatTable, "":
		return WriteTable(w, t)
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	default:
		return eris.Errorf("export: unknown format %q", f)
	}
}

// WriteTable writes t as a tab-aligned text table with human formatting.
func WriteTable(out io.Writer, t Table) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	headers := make([]string, len(t.Columns))
	rules := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = strings.ToUpper(c.Name)
		rules[i] = strings.Repeat("-", len(c.Name))
	}
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	_, _ = fmt.Fprintln(w, strings.Join(rules, "\t"))

	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cells[i] = display(cell(row, i), c.Kind)
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return eris.Wrap(w.Flush(), "export: flush table")
}

// WriteCSV writes t as CSV with raw, unformatted values.
func WriteCSV(out io.Writer, t Table) error {
	w := csv.NewWriter(out)

	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}

	for _, row := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i := range t.Columns {
			rec[i] = raw(cell(row, i))
		}
		if err := w.Write(rec); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "export: flush csv")
}

// WriteXLSX writes t as a single-sheet workbook. Numbers stay numeric.
func WriteXLSX(out io.Writer, t Table) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName(t.Name))
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, c := range t.Columns {
		header.AddCell().SetString(c.Name)
	}

	for _, row := range t.Rows {
		r := sheet.AddRow()
		for i := range t.Columns {
			xc := r.AddCell()
			switch v := cell(row, i).(type) {
			case nil:
			case int:
				xc.SetInt(v)
			case float64:
				xc.SetFloat(v)
			case string:
				xc.SetString(v)
			default:
				xc.SetString(fmt.Sprint(v))
			}
		}
	}

	return eris.Wrap(f.Write(out), "export: write xlsx")
}

// sheetName trims to the 31-character XLSX limit.
func sheetName(name string) string {
	if name == "" {
		return "Sheet1"
	}
	if len(name) > 31 {
		return name[:31]
	}
	return name
}

func cell(row []any, i int) any {
	if i >= len(row) {
		return nil
	}
	return row[i]
}

func raw(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func display(v any, k Kind) string {
	var f float64
	switch v := v.(type) {
	case nil:
		return missing
	case string:
		if v == "" {
			return missing
		}
		return v
	case int:
		f = float64(v)
	case float64:
		f = v
	default:
		return fmt.Sprint(v)
	}

	switch k {
	case KindCurrency:
		return printer.Sprintf("$%d", int64(math.Round(f)))
	case KindPercent:
		return strconv.FormatFloat(f, 'f', 1, 64) + "%"
	default:
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return printer.Sprintf("%d", int64(f))
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// num unwraps an optional field into a cell value.
func num(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
