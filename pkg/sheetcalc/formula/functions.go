package formula

import (
	"math"
	"strings"

	"github.com/projectflow/sheetcalc-go/pkg/sheetcalc/models"
)

// builtinFunc implements one formula function. Arguments are passed
// unevaluated so functions can see column references and evaluate lazily.
type builtinFunc func(c *Context, call *CallNode) (interface{}, error)

var builtins map[string]builtinFunc

func init() {
	builtins = map[string]builtinFunc{
		"SUM":      aggregate(sumOf),
		"AVG":      aggregate(avgOf),
		"MIN":      aggregate(minOf),
		"MAX":      aggregate(maxOf),
		"COUNT":    count,
		"DATEDIFF": dateDiff,
		"IF":       ifFunc,
	}
}

// IsFunction reports whether name (any case) is a supported function.
func IsFunction(name string) bool {
	_, ok := builtins[strings.ToUpper(name)]
	return ok
}

func (c *Context) call(n *CallNode) (interface{}, error) {
	fn, ok := builtins[n.Name]
	if !ok {
		return nil, evalErrorf("unknown function %s", n.Name)
	}
	return fn(c, n)
}

// columnArg extracts the single column reference argument of an aggregate.
// found is false when the reference does not name a column.
func columnArg(c *Context, call *CallNode) (col models.Column, found bool, err error) {
	if len(call.Args) != 1 {
		return col, false, evalErrorf("%s expects 1 argument, got %d", call.Name, len(call.Args))
	}
	ref, ok := call.Args[0].(*RefNode)
	if !ok {
		return col, false, evalErrorf("%s expects a column reference", call.Name)
	}
	col, found = ResolveColumn(ref.Name, c.ev.columns)
	return col, found, nil
}

// aggregate builds a whole-sheet function over the numeric values of one
// column across every row.
func aggregate(reduce func([]float64) float64) builtinFunc {
	return func(c *Context, call *CallNode) (interface{}, error) {
		col, found, err := columnArg(c, call)
		if err != nil || !found {
			return 0.0, err
		}
		key := aggregateKey{fn: call.Name, column: col.ID}
		if v, ok := c.ev.aggregates[key]; ok {
			return v, nil
		}
		values := make([]float64, 0, len(c.ev.rows))
		for i, row := range c.ev.rows {
			v, err := c.ev.rawValue(i, row, col.ID)
			if err != nil {
				// not memoized: a chained error depends on the cells
				// being visited
				return nil, err
			}
			values = append(values, aggregateNumber(v))
		}
		result := reduce(values)
		c.ev.aggregates[key] = result
		return result, nil
	}
}

func sumOf(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func avgOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sumOf(values) / float64(len(values))
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := math.Inf(1)
	for _, v := range values {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := math.Inf(-1)
	for _, v := range values {
		m = math.Max(m, v)
	}
	return m
}

// count counts rows where the column has a value that is not "".
func count(c *Context, call *CallNode) (interface{}, error) {
	col, found, err := columnArg(c, call)
	if err != nil || !found {
		return 0.0, err
	}
	key := aggregateKey{fn: call.Name, column: col.ID}
	if v, ok := c.ev.aggregates[key]; ok {
		return v, nil
	}
	n := 0
	for _, row := range c.ev.rows {
		v, ok := row[col.ID]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		n++
	}
	c.ev.aggregates[key] = float64(n)
	return float64(n), nil
}

// dateDiff returns a - b in whole days for the current row. Unknown
// columns and unparseable dates yield 0.
func dateDiff(c *Context, call *CallNode) (interface{}, error) {
	if len(call.Args) != 2 {
		return nil, evalErrorf("DATEDIFF expects 2 arguments, got %d", len(call.Args))
	}
	var dates [2]interface{}
	for i, arg := range call.Args {
		v, ok, err := c.dateArg(arg)
		if err != nil {
			return nil, err
		}
		if !ok {
			return 0.0, nil
		}
		dates[i] = v
	}

	a, okA := parseDate(dates[0])
	b, okB := parseDate(dates[1])
	if !okA || !okB {
		return 0.0, nil
	}
	return daysBetween(a, b), nil
}

// dateArg evaluates a DATEDIFF argument. A column reference yields the
// current row's raw value; ok is false when it names no column.
func (c *Context) dateArg(arg Node) (v interface{}, ok bool, err error) {
	ref, isRef := arg.(*RefNode)
	if !isRef {
		v, err = arg.Eval(c)
		return v, err == nil, err
	}
	col, found := ResolveColumn(ref.Name, c.ev.columns)
	if !found {
		return nil, false, nil
	}
	v, err = c.ev.rawValue(c.index, c.row, col.ID)
	return v, err == nil, err
}

func ifFunc(c *Context, call *CallNode) (interface{}, error) {
	if len(call.Args) != 3 {
		return nil, evalErrorf("IF expects 3 arguments, got %d", len(call.Args))
	}
	return evalConditional(c, call.Args[0], call.Args[1], call.Args[2])
}

// evalConditional evaluates cond and then exactly one of the branches.
func evalConditional(c *Context, cond, then, otherwise Node) (interface{}, error) {
	v, err := cond.Eval(c)
	if err != nil {
		return nil, err
	}
	if truthy(v) {
		return then.Eval(c)
	}
	return otherwise.Eval(c)
}
