// Package output serializes computed sheets.
package output

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/models"
)

// ToJSON serializes a workbook to JSON.
func ToJSON(wb *models.Workbook, pretty bool) ([]byte, error) {
	return marshalJSON(wb, pretty)
}

// SheetToJSON serializes a single sheet to JSON.
func SheetToJSON(sheet *models.Sheet, pretty bool) ([]byte, error) {
	return marshalJSON(sheet, pretty)
}

// ValueToJSON serializes a single computed value to JSON.
func ValueToJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func marshalJSON(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// ToYAML serializes a workbook to YAML.
func ToYAML(wb *models.Workbook) ([]byte, error) {
	return yaml.Marshal(wb)
}

// SheetToYAML serializes a single sheet to YAML.
func SheetToYAML(sheet *models.Sheet) ([]byte, error) {
	return yaml.Marshal(sheet)
}
