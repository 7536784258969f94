// Package formula parses and evaluates sheet cell formulas.
//
// A formula is a cell string starting with '='. The expression after it may
// contain number, string and boolean literals, [Column] references by title
// or id, the operators + - * / % == != === !== = <> < <= > >= && || ! and
// ?:, and calls to SUM, COUNT, AVG, MIN, MAX, DATEDIFF and IF.
//
// Evaluation never panics and never returns an error to the caller: a
// formula that cannot be evaluated yields models.ErrorValue, a chained
// formula that depends on itself yields models.CycleValue.
package formula

import (
	"errors"
	"fmt"
	"math"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/models"
)

// Context is the row scope a formula is evaluated in.
type Context struct {
	ev    *Evaluator
	row   models.Row
	index int // position of row in the evaluator's rows, -1 if unknown
}

type cellKey struct {
	row    int
	column string
}

// aggregateKey identifies a whole-sheet function result.
type aggregateKey struct {
	fn     string
	column string
}

type parsed struct {
	node Node
	err  error
}

type outcome struct {
	value interface{}
	err   error
}

// Evaluator evaluates formulas against one fixed set of rows and columns.
// It caches parsed formulas, aggregate results and, with chaining enabled,
// computed cells for its own lifetime only. An Evaluator is not safe for concurrent use.
type Evaluator struct {
	rows     []models.Row
	columns  []models.Column
	settings Settings

	parsed     map[string]parsed
	aggregates map[aggregateKey]float64
	computed   map[cellKey]outcome
	visiting   map[cellKey]bool
}

// NewEvaluator creates an evaluator over rows and columns.
func NewEvaluator(rows []models.Row, columns []models.Column, opts ...Option) *Evaluator {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.MaxFormulaLength <= 0 {
		settings.MaxFormulaLength = DefaultMaxFormulaLength
	}
	if settings.MaxDepth <= 0 {
		settings.MaxDepth = DefaultMaxDepth
	}
	return &Evaluator{
		rows:       rows,
		columns:    columns,
		settings:   settings,
		parsed:     make(map[string]parsed),
		aggregates: make(map[aggregateKey]float64),
		computed:   make(map[cellKey]outcome),
		visiting:   make(map[cellKey]bool),
	}
}

// Evaluate evaluates a formula for a single row, using every row for
// aggregates and the column list for reference resolution. A value that is
// not a formula string is returned unchanged.
func Evaluate(formula interface{}, current models.Row, rows []models.Row, columns []models.Column, opts ...Option) interface{} {
	return NewEvaluator(rows, columns, opts...).Evaluate(formula, current)
}

// Evaluate evaluates formula in the scope of current. A value that is not
// a formula string is returned unchanged.
func (e *Evaluator) Evaluate(formula interface{}, current models.Row) (result interface{}) {
	src, ok := formula.(string)
	if !ok || !models.IsFormula(src) {
		return formula
	}
	defer e.recoverInto(src, &result)

	v, err := e.run(src, &Context{ev: e, row: current, index: -1})
	return e.finish(src, v, err)
}

// EvaluateCell evaluates the cell of row index for columnID. A cell that
// does not hold a formula is returned unchanged.
func (e *Evaluator) EvaluateCell(index int, columnID string) (result interface{}) {
	if index < 0 || index >= len(e.rows) {
		return nil
	}
	row := e.rows[index]
	raw := row[columnID]
	if !models.IsFormula(raw) {
		return raw
	}
	src := raw.(string)
	defer e.recoverInto(src, &result)

	v, err := e.evalCell(index, row, columnID)
	return e.finish(src, v, err)
}

// evalCell evaluates a formula cell with cycle detection. Results are
// memoized per evaluator when the row position is known.
func (e *Evaluator) evalCell(index int, row models.Row, columnID string) (interface{}, error) {
	key := cellKey{row: index, column: columnID}
	if index >= 0 {
		if out, ok := e.computed[key]; ok {
			return out.value, out.err
		}
	}
	if e.visiting[key] {
		return nil, ErrCycle
	}
	e.visiting[key] = true
	defer delete(e.visiting, key)

	src, _ := row[columnID].(string)
	v, err := e.run(src, &Context{ev: e, row: row, index: index})
	if index >= 0 {
		e.computed[key] = outcome{value: v, err: err}
	}
	return v, err
}

// Parse parses a formula using the evaluator's depth limit and parse cache.
func (e *Evaluator) Parse(src string) (Node, error) {
	if len(src) > e.settings.MaxFormulaLength {
		return nil, &SyntaxError{Pos: 0, Msg: fmt.Sprintf("formula exceeds %d bytes", e.settings.MaxFormulaLength)}
	}
	if p, ok := e.parsed[src]; ok {
		return p.node, p.err
	}
	node, err := parseWithDepth(src, e.settings.MaxDepth)
	e.parsed[src] = parsed{node: node, err: err}
	return node, err
}

func (e *Evaluator) run(src string, c *Context) (interface{}, error) {
	node, err := e.Parse(src)
	if err != nil {
		return nil, err
	}
	v, err := node.Eval(c)
	if err != nil {
		return nil, err
	}
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil, evalErrorf("result is not a finite number")
	}
	return v, nil
}

// finish maps an evaluation outcome to a cell value.
func (e *Evaluator) finish(src string, v interface{}, err error) interface{} {
	if err == nil {
		return v
	}
	if e.settings.OnError != nil {
		e.settings.OnError(src, err)
	}
	if errors.Is(err, ErrCycle) {
		return models.CycleValue
	}
	return models.ErrorValue
}

func (e *Evaluator) recoverInto(src string, result *interface{}) {
	if r := recover(); r != nil {
		*result = e.finish(src, nil, fmt.Errorf("panic: %v", r))
	}
}
