package sheetcalc

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/formula"
	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/models"
)

func taskSheet() models.Sheet {
	return models.Sheet{
		ID:   "s1",
		Name: "Tasks",
		Columns: []models.Column{
			{ID: "c1", Title: "Task", Type: models.ColumnText},
			{ID: "c2", Title: "Progress", Type: models.ColumnNumber},
			{ID: "c3", Title: "Total", Type: models.ColumnNumber},
			{ID: "c4", Title: "Doubled", Type: models.ColumnNumber},
		},
		Rows: []models.Row{
			{"id": "r1", "c1": "Design", "c2": 40.0, "c3": "=SUM([Progress])", "c4": "=[Total] * 2"},
			{"id": "r2", "c1": "Build", "c2": 60.0, "c3": "=SUM([Progress])", "c4": "=[Progress] / 0"},
			{"id": "r3", "c1": "Ship", "comments": []interface{}{"=not a formula"}},
		},
	}
}

func TestComputeSheetData(t *testing.T) {
	sheet := taskSheet()
	rows := ComputeSheetData(sheet, DefaultOptions())

	if len(rows) != len(sheet.Rows) {
		t.Fatalf("Expected %d rows, got %d", len(sheet.Rows), len(rows))
	}

	tests := []struct {
		row      int
		column   string
		expected interface{}
	}{
		{0, "c1", "Design"},
		{0, "c3", 100.0},
		{1, "c3", 100.0},
		// chaining is off, so [Total] reads as 0
		{0, "c4", 0.0},
		{1, "c4", models.ErrorValue},
	}
	for _, tt := range tests {
		if got := rows[tt.row][tt.column]; got != tt.expected {
			t.Errorf("row %d column %s = %v (type: %T), expected %v", tt.row, tt.column, got, got, tt.expected)
		}
	}

	if !reflect.DeepEqual(rows[2], sheet.Rows[2]) {
		t.Errorf("Expected row without formulas to be unchanged, got %v", rows[2])
	}
}

func TestComputeSheetDataDoesNotModifyInput(t *testing.T) {
	sheet := taskSheet()
	before := make([]models.Row, len(sheet.Rows))
	for i, row := range sheet.Rows {
		before[i] = row.Clone()
	}

	rows := ComputeSheetData(sheet, DefaultOptions())

	if !reflect.DeepEqual(sheet.Rows, before) {
		t.Errorf("Input rows were modified: %v", sheet.Rows)
	}
	// a computed row is a new map
	rows[0]["c1"] = "changed"
	if sheet.Rows[0]["c1"] != "Design" {
		t.Error("Computed row shares its map with the input row")
	}
}

func TestComputeSheetIdempotent(t *testing.T) {
	once := ComputeSheet(taskSheet(), DefaultOptions())
	twice := ComputeSheet(once, DefaultOptions())
	if !reflect.DeepEqual(once.Rows, twice.Rows) {
		t.Errorf("Recomputing a computed sheet changed it:\n%v\n%v", once.Rows, twice.Rows)
	}
}

func TestComputeSheetChainResolve(t *testing.T) {
	opts := DefaultOptions()
	opts.Chain = formula.ChainResolve

	rows := ComputeSheetData(taskSheet(), opts)
	if rows[0]["c4"] != 200.0 {
		t.Errorf("Expected chained 200, got %v", rows[0]["c4"])
	}

	cyclic := models.Sheet{
		Columns: []models.Column{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}},
		Rows:    []models.Row{{"a": "=[B] + 1", "b": "=[A] + 1"}},
	}
	rows = ComputeSheetData(cyclic, opts)
	if rows[0]["a"] != models.CycleValue || rows[0]["b"] != models.CycleValue {
		t.Errorf("Expected cycle sentinels, got %v", rows[0])
	}
}

func TestComputeSheetOnError(t *testing.T) {
	var (
		mu     sync.Mutex
		issues []FormulaIssue
	)
	opts := DefaultOptions()
	opts.OnError = func(issue FormulaIssue) {
		mu.Lock()
		defer mu.Unlock()
		issues = append(issues, issue)
	}

	ComputeSheetData(taskSheet(), opts)

	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d: %v", len(issues), issues)
	}
	issue := issues[0]
	if issue.Sheet != "Tasks" || issue.RowID != "r2" || issue.Row != 1 || issue.ColumnID != "c4" {
		t.Errorf("Unexpected issue location: %+v", issue)
	}
	if issue.Formula != "=[Progress] / 0" || issue.Err == nil || issue.Message == "" {
		t.Errorf("Unexpected issue details: %+v", issue)
	}
}

func TestComputeSheetContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ComputeSheetContext(ctx, taskSheet(), DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	var sheetErr *SheetError
	if !errors.As(err, &sheetErr) || sheetErr.SheetName != "Tasks" || sheetErr.Stage != "compute" {
		t.Errorf("Expected compute SheetError for Tasks, got %v", err)
	}
}

func TestEvaluateFormula(t *testing.T) {
	sheet := taskSheet()
	tests := []struct {
		formula  interface{}
		expected interface{}
	}{
		{"=[Progress] + 1", 41.0},
		{"=COUNT([Task])", 3.0},
		{`=IF([Progress] > 50, "high", "low")`, "low"},
		{"plain", "plain"},
		{42.0, 42.0},
		{"=SUM(", models.ErrorValue},
	}
	for _, tt := range tests {
		got := EvaluateFormula(tt.formula, sheet.Rows[0], sheet.Rows, sheet.Columns, DefaultOptions())
		if got != tt.expected {
			t.Errorf("EvaluateFormula(%v) = %v, expected %v", tt.formula, got, tt.expected)
		}
	}
}
