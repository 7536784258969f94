package formula

import (
	"errors"
	"strings"
	"testing"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/models"
)

func testColumns() []models.Column {
	return []models.Column{
		{ID: "task", Title: "Task", Type: models.ColumnText, Width: 200},
		{ID: "p", Title: "Progress", Type: models.ColumnNumber, Width: 100},
		{ID: "start", Title: "Start Date", Type: models.ColumnDate, Width: 120},
		{ID: "due", Title: "To Date", Type: models.ColumnDate, Width: 120},
		{ID: "done", Title: "Done", Type: models.ColumnCheckbox, Width: 80},
		{ID: "calc", Title: "Calc", Type: models.ColumnNumber, Width: 100},
	}
}

func TestEvaluatePassThrough(t *testing.T) {
	cols := testColumns()
	row := models.Row{"id": "r1", "p": 50}

	tests := []interface{}{"hello", "x=1", "", 42, 3.5, true, nil}
	for _, in := range tests {
		got := Evaluate(in, row, []models.Row{row}, cols)
		if got != in {
			t.Errorf("Evaluate(%#v) = %#v, expected unchanged", in, got)
		}
	}
}

func TestEvaluate(t *testing.T) {
	cols := testColumns()
	row := models.Row{
		"id":    "r1",
		"task":  "Design",
		"p":     50,
		"start": "2024-01-01",
		"due":   "2024-01-11",
		"done":  false,
	}
	rows := []models.Row{row}

	tests := []struct {
		formula  string
		expected interface{}
	}{
		{"=[Progress]+10", 60.0},
		{"=[p]+10", 60.0},
		{"=[Nonexistent]+5", 5.0},
		{"=DATEDIFF([To Date],[Start Date])", 10.0},
		{"=DATEDIFF([due], [start]) * 2", 20.0},
		{"=DATEDIFF([Start Date],[To Date])", -10.0},
		{"=DATEDIFF([Missing],[Start Date])", 0.0},
		{`=IF([Progress]==50,"Half","Other")`, "Half"},
		{`=if([Progress] > 90, "Hi", "Lo")`, "Lo"},
		{`=[Progress] >= 50 ? "ok" : "low"`, "ok"},
		{`=[Task] + " (" + [Progress] + "%)"`, "Design (50%)"},
		{`=[Progress]=="50"`, true},
		{`=[Progress]==="50"`, false},
		{`=[Progress]=50`, true},
		{`=[Progress]<>50`, false},
		{`=[Done] || "fallback"`, "fallback"},
		{`=![Done] && [Progress] > 10`, true},
		{"=-[Progress] + 100", 50.0},
		{"=(1 + 2) * 3 - 4 / 2", 7.0},
		{"=7 % 4", 3.0},
		{"=1.5e2", 150.0},
		{"=.5 + .25", 0.75},
		{`="a" < "b"`, true},
		{"=TRUE", true},
		{"=false", false},
		{`='single' + ' quoted'`, "single quoted"},
		{`="say \"hi\""`, `say "hi"`},
		{"=[Progress]+*5", models.ErrorValue},
		{"=", models.ErrorValue},
		{"=10/0", models.ErrorValue},
		{"=10 % 0", models.ErrorValue},
		{`="abc" * 2`, models.ErrorValue},
		{"=UNKNOWN([Progress])", models.ErrorValue},
		{"=window", models.ErrorValue},
		{"=alert(1)", models.ErrorValue},
		{"=SUM(5)", models.ErrorValue},
		{"=SUM([Progress], [Progress])", models.ErrorValue},
		{`=IF([Progress]>1, "x")`, models.ErrorValue},
		{"=DATEDIFF([due])", models.ErrorValue},
		{"=[Progress", models.ErrorValue},
		{"=[]", models.ErrorValue},
		{`="open`, models.ErrorValue},
		{"=(1 + 2", models.ErrorValue},
		{"=1 2", models.ErrorValue},
		{"=1 ? 2", models.ErrorValue},
		{"=#", models.ErrorValue},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			got := Evaluate(tt.formula, row, rows, cols)
			if got != tt.expected {
				t.Errorf("Evaluate(%q) = %#v (type: %T), expected %#v (type: %T)",
					tt.formula, got, got, tt.expected, tt.expected)
			}
		})
	}
}

func TestEvaluateAggregates(t *testing.T) {
	cols := testColumns()
	rows := []models.Row{
		{"id": "1", "p": 10},
		{"id": "2", "p": 20.0},
		{"id": "3", "p": int64(30)},
	}

	tests := []struct {
		formula  string
		expected interface{}
	}{
		{"=SUM([Progress])", 60.0},
		{"=sum([p])", 60.0},
		{"=Sum( [Progress] )", 60.0},
		{"=AVG([Progress])", 20.0},
		{"=COUNT([Progress])", 3.0},
		{"=MIN([Progress])", 10.0},
		{"=MAX([Progress])", 30.0},
		{"=SUM([Missing])", 0.0},
		{"=COUNT([Missing])", 0.0},
		{"=[Progress] / SUM([Progress]) * 100", nil}, // row dependent, checked below
		{`=IF(SUM([Progress])>10, "big", "small")`, "big"},
		{`=IF(SUM([Progress])>100, "big", IF(AVG([Progress])>=20, "mid", "small"))`, "mid"},
	}

	for _, tt := range tests {
		if tt.expected == nil {
			continue
		}
		for i, row := range rows {
			got := Evaluate(tt.formula, row, rows, cols)
			if got != tt.expected {
				t.Errorf("row %d: Evaluate(%q) = %#v, expected %#v", i, tt.formula, got, tt.expected)
			}
		}
	}

	share := Evaluate("=[Progress] / SUM([Progress]) * 100", rows[2], rows, cols)
	if share != 50.0 {
		t.Errorf("Expected row share 50, got %#v", share)
	}
}

func TestCountExcludesEmpty(t *testing.T) {
	cols := testColumns()
	rows := []models.Row{
		{"p": 10},
		{"p": ""},
		{"p": 30},
		{"task": "no progress key"},
		{"p": nil},
	}
	got := Evaluate("=COUNT([Progress])", rows[0], rows, cols)
	if got != 2.0 {
		t.Errorf("Expected COUNT 2, got %#v", got)
	}
}

func TestAggregateCoercion(t *testing.T) {
	cols := testColumns()
	rows := []models.Row{
		{"p": "12abc"},
		{"p": "3.5"},
		{"p": true},
		{"p": "abc"},
		{"p": "=1+1"},
		{"p": nil},
	}
	got := Evaluate("=SUM([Progress])", rows[0], rows, cols)
	if got != 15.5 {
		t.Errorf("Expected SUM 15.5, got %#v", got)
	}
	if got := Evaluate("=COUNT([Progress])", rows[0], rows, cols); got != 5.0 {
		t.Errorf("Expected COUNT 5, got %#v", got)
	}
}

func TestAvgEmptyRows(t *testing.T) {
	cols := testColumns()
	for _, f := range []string{"=AVG([Progress])", "=SUM([Progress])", "=COUNT([Progress])", "=MIN([Progress])", "=MAX([Progress])"} {
		got := Evaluate(f, models.Row{}, nil, cols)
		if got != 0.0 {
			t.Errorf("Evaluate(%q) over zero rows = %#v, expected 0", f, got)
		}
	}
}

func TestAggregatesMemoizedPerEvaluator(t *testing.T) {
	cols := testColumns()
	rows := []models.Row{{"p": 10.0, "task": "a"}, {"p": 20.0, "task": "b"}}
	ev := NewEvaluator(rows, cols)

	if got := ev.Evaluate("=SUM([Progress])", rows[0]); got != 30.0 {
		t.Fatalf("Expected 30, got %#v", got)
	}
	if got := ev.Evaluate("=COUNT([Task])", rows[0]); got != 2.0 {
		t.Fatalf("Expected 2, got %#v", got)
	}

	rows[1]["p"] = 100.0
	delete(rows[1], "task")

	// the evaluator's row set is fixed for its lifetime
	if got := ev.Evaluate("=SUM([Progress]) + 1", rows[1]); got != 31.0 {
		t.Errorf("Expected memoized SUM, got %#v", got)
	}
	if got := ev.Evaluate("=COUNT([Task])", rows[1]); got != 2.0 {
		t.Errorf("Expected memoized COUNT, got %#v", got)
	}

	// a new evaluator sees the current rows
	if got := Evaluate("=SUM([Progress])", rows[0], rows, cols); got != 110.0 {
		t.Errorf("Expected 110 from a fresh evaluator, got %#v", got)
	}
	if got := Evaluate("=COUNT([Task])", rows[0], rows, cols); got != 1.0 {
		t.Errorf("Expected 1 from a fresh evaluator, got %#v", got)
	}
}

func TestDateDiff(t *testing.T) {
	cols := testColumns()
	tests := []struct {
		start    interface{}
		due      interface{}
		expected float64
	}{
		{"2024-01-01", "2024-01-11", 10},
		{"not-a-date", "2024-01-11", 0},
		{"2024-01-01", "", 0},
		{nil, "2024-01-11", 0},
		{"2024-01-01", 20240111, 0},
		{"2024-01-01", "2024-01-01T12:00:00Z", 1},
		{"2024-01-01T12:00:00Z", "2024-01-01", 0},
		{"2024/02/01", "03/01/2024", 29},
		{"Jan 1, 2024", "January 31, 2024", 30},
		{"2023-02-30", "2023-03-01", 0},
		{"2024-1-5", "2024-1-15", 10},
		{"2024/1/5", "2024/2/5", 31},
		{"1900-01-01", "2500-01-01", 219146},
		{"9999-12-31", "0001-01-01", -3652058},
	}

	for _, tt := range tests {
		row := models.Row{"start": tt.start, "due": tt.due}
		got := Evaluate("=DATEDIFF([To Date],[Start Date])", row, []models.Row{row}, cols)
		if got != tt.expected {
			t.Errorf("DATEDIFF(%v, %v) = %#v, expected %v", tt.due, tt.start, got, tt.expected)
		}
	}

	literal := Evaluate(`=DATEDIFF("2024-03-01", "2024-02-01")`, models.Row{}, nil, cols)
	if literal != 29.0 {
		t.Errorf("Expected 29 days for literal dates, got %#v", literal)
	}
}

func TestDateDiffIsRowScoped(t *testing.T) {
	cols := testColumns()
	rows := []models.Row{
		{"start": "2024-01-01", "due": "2024-01-02"},
		{"start": "2024-01-01", "due": "2024-01-31"},
	}
	if got := Evaluate("=DATEDIFF([due],[start])", rows[0], rows, cols); got != 1.0 {
		t.Errorf("Expected 1 for row 0, got %#v", got)
	}
	if got := Evaluate("=DATEDIFF([due],[start])", rows[1], rows, cols); got != 30.0 {
		t.Errorf("Expected 30 for row 1, got %#v", got)
	}
}

func TestIfConditional(t *testing.T) {
	cols := testColumns()
	f := `=IF([Progress]==100,"Done","Pending")`

	done := models.Row{"p": 100}
	if got := Evaluate(f, done, []models.Row{done}, cols); got != "Done" {
		t.Errorf("Expected Done, got %#v", got)
	}
	pending := models.Row{"p": 40}
	if got := Evaluate(f, pending, []models.Row{pending}, cols); got != "Pending" {
		t.Errorf("Expected Pending, got %#v", got)
	}
}

func TestIfEvaluatesOneBranch(t *testing.T) {
	cols := testColumns()
	row := models.Row{"p": 0}
	got := Evaluate(`=IF([Progress] == 0, "none", 1/[Progress])`, row, []models.Row{row}, cols)
	if got != "none" {
		t.Errorf("Expected untaken branch to be skipped, got %#v", got)
	}
}

func TestReferencedValues(t *testing.T) {
	cols := testColumns()
	row := models.Row{
		"task": `say "hi"`,
		"p":    "50",
		"done": true,
		"calc": "=1+1",
	}
	rows := []models.Row{row}

	tests := []struct {
		formula  string
		expected interface{}
	}{
		{`=[Task] + "!"`, `say "hi"!`},
		{"=[Progress] + 1", "501"},
		{"=[Progress] * 2", 100.0},
		{"=[Done] + 1", 2.0},
		{"=[Calc] + 5", 5.0},
		{"=[Calc]", 0.0},
	}
	for _, tt := range tests {
		got := Evaluate(tt.formula, row, rows, cols)
		if got != tt.expected {
			t.Errorf("Evaluate(%q) = %#v, expected %#v", tt.formula, got, tt.expected)
		}
	}
}

func TestTitleBeforeID(t *testing.T) {
	cols := []models.Column{
		{ID: "Budget", Title: "Spent"},
		{ID: "b2", Title: "Budget"},
	}
	row := models.Row{"Budget": 1, "b2": 2}
	if got := Evaluate("=[Budget]", row, nil, cols); got != 2.0 {
		t.Errorf("Expected title match to win, got %#v", got)
	}
	if got := Evaluate("=[budget]", row, nil, cols); got != 0.0 {
		t.Errorf("Expected case-sensitive miss to read 0, got %#v", got)
	}
}

func TestChainResolve(t *testing.T) {
	cols := testColumns()
	rows := []models.Row{
		{"p": 10, "calc": "=[Progress] * 2"},
		{"p": 20, "calc": "=[Progress] * 2"},
	}

	off := NewEvaluator(rows, cols)
	if got := off.Evaluate("=[Calc] + 1", rows[0]); got != 1.0 {
		t.Errorf("Expected chained formula to read 0 when chaining is off, got %#v", got)
	}

	ev := NewEvaluator(rows, cols, WithChain(ChainResolve))
	if got := ev.Evaluate("=[Calc] + 1", rows[0]); got != 21.0 {
		t.Errorf("Expected 21, got %#v", got)
	}
	if got := ev.Evaluate("=SUM([Calc])", rows[1]); got != 60.0 {
		t.Errorf("Expected SUM over chained column 60, got %#v", got)
	}
	if got := ev.EvaluateCell(1, "calc"); got != 40.0 {
		t.Errorf("Expected cell value 40, got %#v", got)
	}
}

func TestChainCycle(t *testing.T) {
	cols := []models.Column{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
		{ID: "c", Title: "C"},
		{ID: "t", Title: "Total"},
	}
	rows := []models.Row{
		{"a": "=[B] + 1", "b": "=[A] + 1", "c": "=[C]", "t": "=SUM([Total])"},
	}

	var reported []error
	ev := NewEvaluator(rows, cols, WithChain(ChainResolve), WithErrorHandler(func(_ string, err error) {
		reported = append(reported, err)
	}))

	for _, col := range []string{"a", "b", "c", "t"} {
		if got := ev.EvaluateCell(0, col); got != models.CycleValue {
			t.Errorf("EvaluateCell(0, %q) = %#v, expected %s", col, got, models.CycleValue)
		}
	}
	if len(reported) != 4 {
		t.Fatalf("Expected 4 reported errors, got %d", len(reported))
	}
	for _, err := range reported {
		if !errors.Is(err, ErrCycle) {
			t.Errorf("Expected ErrCycle, got %v", err)
		}
	}
}

func TestChainedErrorPropagates(t *testing.T) {
	cols := testColumns()
	rows := []models.Row{{"p": 1, "calc": "=1/0"}}
	ev := NewEvaluator(rows, cols, WithChain(ChainResolve))
	if got := ev.Evaluate("=[Calc] + 1", rows[0]); got != models.ErrorValue {
		t.Errorf("Expected %s, got %#v", models.ErrorValue, got)
	}
}

func TestLimits(t *testing.T) {
	cols := testColumns()

	long := "=" + strings.Repeat("1+", 50) + "1"
	if got := Evaluate(long, models.Row{}, nil, cols, WithMaxFormulaLength(20)); got != models.ErrorValue {
		t.Errorf("Expected long formula to fail, got %#v", got)
	}
	if got := Evaluate(long, models.Row{}, nil, cols); got != 51.0 {
		t.Errorf("Expected 51 under default limit, got %#v", got)
	}

	deep := "=" + strings.Repeat("(", 200) + "1" + strings.Repeat(")", 200)
	if got := Evaluate(deep, models.Row{}, nil, cols); got != models.ErrorValue {
		t.Errorf("Expected deep nesting to fail, got %#v", got)
	}
	if got := Evaluate(deep, models.Row{}, nil, cols, WithMaxDepth(500)); got != 1.0 {
		t.Errorf("Expected 1 with raised depth limit, got %#v", got)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	cols := testColumns()
	rows := []models.Row{{"p": 10}, {"p": 20}}
	f := `=IF(SUM([Progress]) > 25, [Progress] * 2, "low")`
	first := Evaluate(f, rows[0], rows, cols)
	second := Evaluate(f, rows[0], rows, cols)
	if first != second || first != 20.0 {
		t.Errorf("Expected repeated evaluation to yield 20 twice, got %#v and %#v", first, second)
	}

	ev := NewEvaluator(rows, cols)
	if a, b := ev.Evaluate(f, rows[1]), ev.Evaluate(f, rows[1]); a != b {
		t.Errorf("Expected cached parse to give identical results, got %#v and %#v", a, b)
	}
}

func TestEvaluateDoesNotMutate(t *testing.T) {
	cols := testColumns()
	row := models.Row{"p": 10, "calc": "=[Progress]*2"}
	rows := []models.Row{row}
	Evaluate("=[Calc]", row, rows, cols, WithChain(ChainResolve))
	if row["calc"] != "=[Progress]*2" || row["p"] != 10 || len(row) != 2 {
		t.Errorf("Expected row to be unchanged, got %#v", row)
	}
}
