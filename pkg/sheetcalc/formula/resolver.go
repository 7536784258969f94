package formula

import (
	"fmt"
	"strings"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/models"
)

// ResolveColumn finds the column a reference names. Titles are matched
// before ids; both matches are exact and case-sensitive.
func ResolveColumn(name string, columns []models.Column) (models.Column, bool) {
	for _, c := range columns {
		if c.Title == name {
			return c, true
		}
	}
	for _, c := range columns {
		if c.ID == name {
			return c, true
		}
	}
	return models.Column{}, false
}

// referenceValue resolves [name] against the current row. Unknown columns
// read as 0.
func (c *Context) referenceValue(name string) (interface{}, error) {
	col, ok := ResolveColumn(name, c.ev.columns)
	if !ok {
		return 0.0, nil
	}
	v, err := c.ev.cellValue(c.index, c.row, col.ID)
	if err != nil {
		return nil, fmt.Errorf("[%s]: %w", name, err)
	}
	return v, nil
}

// cellValue returns the scalar a reference sees for one cell. Numbers and
// booleans pass through, plain strings stay strings, a formula reads as 0
// unless chaining is enabled, anything else reads as 0.
func (e *Evaluator) cellValue(index int, row models.Row, columnID string) (interface{}, error) {
	switch v := normalize(row[columnID]).(type) {
	case float64, bool:
		return v, nil
	case string:
		if !strings.HasPrefix(v, "=") {
			return v, nil
		}
		if e.settings.Chain != ChainResolve {
			return 0.0, nil
		}
		return e.evalCell(index, row, columnID)
	}
	return 0.0, nil
}

// rawValue is the cell value before reference substitution, with chained
// formulas evaluated when chaining is enabled.
func (e *Evaluator) rawValue(index int, row models.Row, columnID string) (interface{}, error) {
	raw := row[columnID]
	if e.settings.Chain == ChainResolve && models.IsFormula(raw) {
		return e.evalCell(index, row, columnID)
	}
	return raw, nil
}
