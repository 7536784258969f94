package parser

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/formula"
	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/models"
)

// ReadXLSX reads every worksheet of an Excel file.
func ReadXLSX(path string) (*models.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readWorkbook(f, filepath.Base(path))
}

// ReadXLSXFrom reads every worksheet of an Excel file from r.
func ReadXLSXFrom(r io.Reader, name string) (*models.Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readWorkbook(f, name)
}

func readWorkbook(f *excelize.File, name string) (*models.Workbook, error) {
	wb := &models.Workbook{Name: name}
	for _, sheetName := range f.GetSheetList() {
		sheet, err := ExtractSheet(f, sheetName)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

// ExtractSheet reads one worksheet. The first non-empty row holds the
// column titles and every following non-blank row becomes a sheet row.
// A column titled "id" supplies row ids; rows without one get a new UUID.
func ExtractSheet(f *excelize.File, sheetName string) (models.Sheet, error) {
	sheet := models.Sheet{
		ID:      slug(sheetName),
		Name:    sheetName,
		Columns: []models.Column{},
		Rows:    []models.Row{},
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return sheet, err
	}

	minRow, maxRow, minCol, maxCol := findDataBounds(rows)
	if minRow < 0 {
		return sheet, nil
	}

	// header row
	idCol := -1
	keys := make(map[int]string)
	used := map[string]bool{
		models.KeyID:           true,
		models.KeyComments:     true,
		models.KeyAttachments:  true,
		models.KeyDependencies: true,
	}
	for col := minCol; col <= maxCol; col++ {
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return sheet, err
		}
		title := strings.TrimSpace(cellAt(rows, minRow, col))
		if title == "" {
			title = colName
		}
		if strings.EqualFold(title, models.KeyID) && idCol < 0 {
			idCol = col
			continue
		}

		width := DefaultColumnWidth
		if chars, err := f.GetColWidth(sheetName, colName); err == nil {
			width = CharsToPixels(chars)
		}

		id := uniqueKey(slug(title), used)
		keys[col] = id
		sheet.Columns = append(sheet.Columns, models.Column{
			ID:    id,
			Title: title,
			Type:  models.ColumnText,
			Width: width,
		})
	}

	// data rows
	for rowIdx := minRow + 1; rowIdx <= maxRow; rowIdx++ {
		if isBlankRow(rows, rowIdx, minCol, maxCol) {
			continue
		}
		row := models.Row{}
		for col := minCol; col <= maxCol; col++ {
			cellValue := cellAt(rows, rowIdx, col)
			if cellValue == "" {
				continue
			}
			if col == idCol {
				row[models.KeyID] = cellValue
				continue
			}
			row[keys[col]] = parseValue(cellValue)
		}
		if row.ID() == "" {
			row[models.KeyID] = uuid.New().String()
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	for i := range sheet.Columns {
		sheet.Columns[i].Type = inferType(sheet.Rows, sheet.Columns[i].ID)
	}
	return sheet, nil
}

// parseValue attempts to parse a string value as a number or boolean.
// Returns int64 for integers, float64 for decimals, bool for TRUE/FALSE,
// or the original string. Formulas stay strings.
func parseValue(s string) interface{} {
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Try float; reject spellings like "Inf" and "NaN"
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	switch s {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	// Return as string
	return s
}

// inferType picks the column type that fits every non-formula value.
func inferType(rows []models.Row, key string) models.ColumnType {
	numbers, bools, dates, total := 0, 0, 0, 0
	for _, row := range rows {
		v, ok := row[key]
		if !ok || models.IsFormula(v) {
			continue
		}
		total++
		switch val := v.(type) {
		case int64, float64:
			numbers++
		case bool:
			bools++
		case string:
			if formula.IsDate(val) {
				dates++
			}
		}
	}

	switch {
	case total == 0:
		return models.ColumnText
	case numbers == total:
		return models.ColumnNumber
	case bools == total:
		return models.ColumnCheckbox
	case dates == total:
		return models.ColumnDate
	}
	return models.ColumnText
}

// slug derives a column key from a title: lower case letters and digits,
// other runs collapsed to '_'.
func slug(title string) string {
	var sb strings.Builder
	pending := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pending = false
			sb.WriteRune(r)
			continue
		}
		pending = true
	}
	if sb.Len() == 0 {
		return "col"
	}
	return sb.String()
}

func uniqueKey(base string, used map[string]bool) string {
	key := base
	for n := 2; used[key]; n++ {
		key = base + "_" + strconv.Itoa(n)
	}
	used[key] = true
	return key
}
