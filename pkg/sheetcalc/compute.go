package sheetcalc

import (
	"context"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/formula"
	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/models"
)

// EvaluateFormula evaluates one formula for currentRow, using allRows for
// aggregates and columns for reference resolution. A value that is not a
// formula string is returned unchanged; failures yield models.ErrorValue.
func EvaluateFormula(f interface{}, currentRow models.Row, allRows []models.Row, columns []models.Column, opts Options) interface{} {
	return formula.Evaluate(f, currentRow, allRows, columns, formula.WithSettings(opts.settings()))
}

// ComputeSheetData returns the sheet's rows with every formula cell replaced
// by its computed value. The result has the same length and order as
// sheet.Rows; each row is a new map and the input is never modified.
func ComputeSheetData(sheet models.Sheet, opts Options) []models.Row {
	rows, _ := computeRows(context.Background(), sheet, opts)
	return rows
}

// ComputeSheet returns a copy of sheet with computed rows.
func ComputeSheet(sheet models.Sheet, opts Options) models.Sheet {
	out := sheet
	out.Rows = ComputeSheetData(sheet, opts)
	return out
}

// ComputeSheetContext is ComputeSheet with cancellation checked between
// rows.
func ComputeSheetContext(ctx context.Context, sheet models.Sheet, opts Options) (models.Sheet, error) {
	rows, err := computeRows(ctx, sheet, opts)
	if err != nil {
		return models.Sheet{}, NewSheetError(sheet.Name, "compute", err)
	}
	out := sheet
	out.Rows = rows
	return out, nil
}

func computeRows(ctx context.Context, sheet models.Sheet, opts Options) ([]models.Row, error) {
	var (
		rowIndex int
		rowID    string
		columnID string
	)

	settings := opts.settings()
	if opts.OnError != nil {
		settings.OnError = func(src string, err error) {
			opts.OnError(FormulaIssue{
				Sheet:    sheet.Name,
				RowID:    rowID,
				Row:      rowIndex,
				ColumnID: columnID,
				Formula:  src,
				Err:      err,
				Message:  err.Error(),
			})
		}
	}
	ev := formula.NewEvaluator(sheet.Rows, sheet.Columns, formula.WithSettings(settings))

	out := make([]models.Row, len(sheet.Rows))
	for i, row := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		computed := row.Clone()
		if !row.HasFormula() {
			out[i] = computed
			continue
		}
		for _, col := range sheet.Columns {
			if models.IsReserved(col.ID) || !models.IsFormula(row[col.ID]) {
				continue
			}
			rowIndex, rowID, columnID = i, row.ID(), col.ID
			computed[col.ID] = ev.EvaluateCell(i, col.ID)
		}
		out[i] = computed
	}
	return out, nil
}
