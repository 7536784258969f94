package sheetcalc

import (
	"fmt"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/formula"
	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/models"
)

// FormulaIssue describes one problem with one formula cell.
type FormulaIssue struct {
	Sheet    string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	RowID    string `json:"row_id,omitempty" yaml:"row_id,omitempty"`
	Row      int    `json:"row" yaml:"row"`
	ColumnID string `json:"column_id" yaml:"column_id"`
	Formula  string `json:"formula" yaml:"formula"`
	Err      error  `json:"-" yaml:"-"`
	Message  string `json:"message" yaml:"message"`
}

func (i FormulaIssue) String() string {
	return fmt.Sprintf("%s row %d (%s) column %s: %s: %v", i.Sheet, i.Row, i.RowID, i.ColumnID, i.Formula, i.Err)
}

// Check statically validates every formula cell of sheet. It reports
// syntax errors, calls to unknown functions and references to unknown
// columns. Unknown columns still evaluate (as 0), so they are reported as
// issues rather than failures.
func Check(sheet models.Sheet, opts Options) []FormulaIssue {
	ev := formula.NewEvaluator(nil, nil, formula.WithSettings(opts.settings()))

	var issues []FormulaIssue
	for i, row := range sheet.Rows {
		for _, col := range sheet.Columns {
			src, ok := row[col.ID].(string)
			if models.IsReserved(col.ID) || !ok || !models.IsFormula(src) {
				continue
			}
			for _, err := range checkFormula(ev, src, sheet.Columns) {
				issues = append(issues, FormulaIssue{
					Sheet:    sheet.Name,
					RowID:    row.ID(),
					Row:      i,
					ColumnID: col.ID,
					Formula:  src,
					Err:      err,
					Message:  err.Error(),
				})
			}
		}
	}
	return issues
}

func checkFormula(ev *formula.Evaluator, src string, columns []models.Column) []error {
	node, err := ev.Parse(src)
	if err != nil {
		return []error{err}
	}

	var errs []error
	for _, name := range formula.Functions(node) {
		if !formula.IsFunction(name) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownFunction, name))
		}
	}
	for _, name := range formula.References(node) {
		if _, ok := formula.ResolveColumn(name, columns); !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownColumn, name))
		}
	}
	return errs
}
