package output

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/models"
)

// TableWriter renders sheets as aligned plain-text tables.
type TableWriter struct {
	printer *message.Printer
}

// NewTableWriter creates a table writer that formats numbers for the
// given language tag, e.g. "en" or "de". Unknown tags fall back to English.
func NewTableWriter(lang string) *TableWriter {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &TableWriter{printer: message.NewPrinter(tag)}
}

// WriteWorkbook renders every sheet of wb, separated by a blank line.
func (t *TableWriter) WriteWorkbook(w io.Writer, wb *models.Workbook) error {
	for i := range wb.Sheets {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := t.WriteSheet(w, &wb.Sheets[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteSheet renders one sheet: an optional name line, the header, then
// one line per row.
func (t *TableWriter) WriteSheet(w io.Writer, sheet *models.Sheet) error {
	if sheet.Name != "" {
		if _, err := fmt.Fprintf(w, "# %s\n", sheet.Name); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	titles := make([]string, len(sheet.Columns))
	for i, col := range sheet.Columns {
		titles[i] = col.Title
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))

	for _, row := range sheet.Rows {
		cells := make([]string, len(sheet.Columns))
		for i, col := range sheet.Columns {
			cells[i] = t.FormatValue(row[col.ID])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// FormatValue renders a cell value for display. Numbers get locale digit
// grouping; integral values print without a fraction.
func (t *TableWriter) FormatValue(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return sanitize(n)
	case bool:
		if n {
			return "true"
		}
		return "false"
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1e15 {
			return t.printer.Sprintf("%d", int64(n))
		}
		return t.printer.Sprintf("%v", n)
	case int, int64, int32:
		return t.printer.Sprintf("%d", n)
	}
	return sanitize(fmt.Sprint(v))
}

// sanitize keeps cell text on one table line.
func sanitize(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}
