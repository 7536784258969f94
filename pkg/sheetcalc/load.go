package sheetcalc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/models"
	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/parser"
)

// Load reads a workbook from a .json, .yaml/.yml or .xlsx file.
func Load(path string) (*models.Workbook, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	format, ok := parser.FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	bookName := filepath.Base(path)
	if format == parser.FormatXLSX {
		wb, err := parser.ReadXLSX(path)
		if err != nil {
			return nil, NewSheetError(bookName, "load", fmt.Errorf("%w: %v", ErrInvalidFormat, err))
		}
		return wb, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	wb, err := parser.DecodeDocument(data, format, bookName)
	if err != nil {
		return nil, NewSheetError(bookName, "load", fmt.Errorf("%w: %v", ErrInvalidFormat, err))
	}
	for _, sheet := range wb.Sheets {
		if err := Validate(sheet); err != nil {
			return nil, NewSheetError(sheet.Name, "load", err)
		}
	}
	return wb, nil
}

// Validate checks the structural invariants of a sheet: every column has
// an id, ids are unique and not reserved row keys.
func Validate(sheet models.Sheet) error {
	seen := make(map[string]bool, len(sheet.Columns))
	for i, col := range sheet.Columns {
		switch {
		case col.ID == "":
			return fmt.Errorf("%w: column %d has no id", ErrInvalidFormat, i)
		case models.IsReserved(col.ID):
			return fmt.Errorf("%w: column id %q is reserved", ErrInvalidFormat, col.ID)
		case seen[col.ID]:
			return fmt.Errorf("%w: duplicate column id %q", ErrInvalidFormat, col.ID)
		case col.Type != "" && !col.Type.Valid():
			return fmt.Errorf("%w: column %q has unknown type %q", ErrInvalidFormat, col.ID, col.Type)
		}
		seen[col.ID] = true
	}
	return nil
}
