package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/models"
)

// ErrEmptyDocument indicates a document with neither sheets nor columns.
var ErrEmptyDocument = errors.New("document has no sheets or columns")

// Format identifies an input document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath returns the format implied by a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".xlsx", ".xlsm":
		return FormatXLSX, true
	}
	return "", false
}

// document accepts both a workbook and a bare sheet.
type document struct {
	Name    string          `json:"name" yaml:"name"`
	ID      string          `json:"id" yaml:"id"`
	Sheets  []models.Sheet  `json:"sheets" yaml:"sheets"`
	Columns []models.Column `json:"columns" yaml:"columns"`
	Rows    []models.Row    `json:"rows" yaml:"rows"`
}

// DecodeDocument decodes a JSON or YAML document holding either a workbook
// ({name, sheets: [...]}) or a single sheet ({columns, rows}).
func DecodeDocument(data []byte, format Format, name string) (*models.Workbook, error) {
	var doc document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cannot decode %s as a document", format)
	}

	if len(doc.Sheets) > 0 {
		wb := &models.Workbook{Name: doc.Name, Sheets: doc.Sheets}
		if wb.Name == "" {
			wb.Name = name
		}
		for i := range wb.Sheets {
			if wb.Sheets[i].Rows == nil {
				wb.Sheets[i].Rows = []models.Row{}
			}
		}
		return wb, nil
	}

	if len(doc.Columns) == 0 {
		return nil, ErrEmptyDocument
	}
	sheet := models.Sheet{ID: doc.ID, Name: doc.Name, Columns: doc.Columns, Rows: doc.Rows}
	if sheet.Rows == nil {
		sheet.Rows = []models.Row{}
	}
	return &models.Workbook{Name: name, Sheets: []models.Sheet{sheet}}, nil
}

// DecodeRow decodes a single JSON or YAML row object.
func DecodeRow(data []byte, format Format) (models.Row, error) {
	row := models.Row{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &row)
	default:
		err = json.Unmarshal(data, &row)
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}
