package sheetcalc

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/models"
)

// ComputeSheets recomputes many sheets in parallel, at most
// opts.WorkerCount() at a time. Sheets share no state; the result keeps
// the input order. When ctx is cancelled the first *SheetError is returned.
func ComputeSheets(ctx context.Context, sheets []models.Sheet, opts Options) ([]models.Sheet, error) {
	out := make([]models.Sheet, len(sheets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.WorkerCount())

	for i := range sheets {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			sheet, err := ComputeSheetContext(gctx, sheets[i], opts)
			if err != nil {
				return err
			}
			out[i] = sheet
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, NewSheetError("", "compute", err)
	}
	return out, nil
}

// ComputeWorkbook recomputes every sheet of wb and returns a new workbook.
func ComputeWorkbook(ctx context.Context, wb *models.Workbook, opts Options) (*models.Workbook, error) {
	sheets, err := ComputeSheets(ctx, wb.Sheets, opts)
	if err != nil {
		return nil, err
	}
	return &models.Workbook{Name: wb.Name, Sheets: sheets}, nil
}
