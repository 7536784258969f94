package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/models"
	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/parser"
)

// ToXLSX builds an Excel workbook with one worksheet per sheet. Row 1
// holds column titles; an "id" column is written first when rows carry
// ids, so the file reads back through parser.ReadXLSX.
func ToXLSX(wb *models.Workbook) (*excelize.File, error) {
	f := excelize.NewFile()

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range wb.Sheets {
		name := sheetTitle(sheet, i)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
		if err := writeSheet(f, name, sheet); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// WriteXLSX writes wb as an Excel file to w.
func WriteXLSX(wb *models.Workbook, w io.Writer) error {
	f, err := ToXLSX(wb)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(w)
	return err
}

// SaveXLSX writes wb as an Excel file at path.
func SaveXLSX(wb *models.Workbook, path string) error {
	f, err := ToXLSX(wb)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.SaveAs(path)
}

func sheetTitle(sheet models.Sheet, i int) string {
	switch {
	case sheet.Name != "":
		return sheet.Name
	case sheet.ID != "":
		return sheet.ID
	}
	return fmt.Sprintf("Sheet%d", i+1)
}

func writeSheet(f *excelize.File, name string, sheet models.Sheet) error {
	withIDs := false
	for _, row := range sheet.Rows {
		if row.ID() != "" {
			withIDs = true
			break
		}
	}

	header := make([]interface{}, 0, len(sheet.Columns)+1)
	if withIDs {
		header = append(header, models.KeyID)
	}
	for _, col := range sheet.Columns {
		header = append(header, col.Title)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}

	offset := 1
	if !withIDs {
		offset = 0
	}
	for i, col := range sheet.Columns {
		if col.Width <= 0 {
			continue
		}
		colName, err := excelize.ColumnNumberToName(i + 1 + offset)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, colName, colName, parser.PixelsToChars(col.Width)); err != nil {
			return err
		}
	}

	for r, row := range sheet.Rows {
		values := make([]interface{}, 0, len(header))
		if withIDs {
			values = append(values, row.ID())
		}
		for _, col := range sheet.Columns {
			values = append(values, cellValue(row[col.ID]))
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// cellValue maps a row value to something excelize can store. Lists and
// maps are not cell values and are left empty.
func cellValue(v interface{}) interface{} {
	switch v.(type) {
	case nil, string, bool, float64, float32, int, int64, int32:
		return v
	}
	return nil
}
