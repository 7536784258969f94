package formula

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// floatPrefix matches the longest numeric prefix accepted by a lenient
// float parse, so "12abc" reads as 12.
var floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// normalize converts raw cell values to the evaluator's value set:
// float64, string, bool or nil.
func normalize(v interface{}) interface{} {
	switch n := v.(type) {
	case nil, float64, string, bool:
		return n
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return nil
}

// aggregateNumber is the coercion used by the aggregate functions: numbers
// pass through, everything else uses the numeric prefix of its text form
// and falls back to 0.
func aggregateNumber(v interface{}) float64 {
	switch n := normalize(v).(type) {
	case float64:
		if math.IsNaN(n) {
			return 0
		}
		return n
	case string:
		return leadingFloat(n)
	}
	return 0
}

func leadingFloat(s string) float64 {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// toNumber converts value to number, returning ok=false if conversion fails
func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case nil:
		return 0, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// toText formats a value the way string concatenation sees it
func toText(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case bool:
		return strconv.FormatBool(n)
	case float64:
		return formatNumber(n)
	}
	return ""
}

func formatNumber(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// truthy checks if value is truthy
func truthy(v interface{}) bool {
	switch n := v.(type) {
	case bool:
		return n
	case float64:
		return n != 0 && !math.IsNaN(n)
	case string:
		return n != ""
	case nil:
		return false
	}
	return true
}

// looseEqual compares values with numeric coercion across types: 100 and
// "100" are equal, true and 1 are equal.
func looseEqual(left, right interface{}) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	switch l := left.(type) {
	case string:
		if r, ok := right.(string); ok {
			return l == r
		}
	case float64:
		if r, ok := right.(float64); ok {
			return l == r
		}
	case bool:
		if r, ok := right.(bool); ok {
			return l == r
		}
	}
	ln, lok := toNumber(left)
	rn, rok := toNumber(right)
	return lok && rok && ln == rn
}

// strictEqual compares values without coercion
func strictEqual(left, right interface{}) bool {
	switch l := left.(type) {
	case nil:
		return right == nil
	case string:
		r, ok := right.(string)
		return ok && l == r
	case float64:
		r, ok := right.(float64)
		return ok && l == r
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	}
	return false
}

// compare orders two values. Two strings compare lexically, anything else
// numerically. ok is false when the values are not comparable.
func compare(left, right interface{}) (int, bool) {
	if ls, lok := left.(string); lok {
		if rs, rok := right.(string); rok {
			return strings.Compare(ls, rs), true
		}
	}
	ln, lok := toNumber(left)
	rn, rok := toNumber(right)
	if !lok || !rok {
		return 0, false
	}
	switch {
	case ln < rn:
		return -1, true
	case ln > rn:
		return 1, true
	}
	return 0, true
}
