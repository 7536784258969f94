package formula

import "math"

func applyUnary(op string, v interface{}) (interface{}, error) {
	switch op {
	case "!":
		return !truthy(v), nil
	case "-", "+":
		n, ok := toNumber(v)
		if !ok {
			return nil, evalErrorf("unary %s requires a number, got %q", op, toText(v))
		}
		if op == "-" {
			return -n, nil
		}
		return n, nil
	}
	return nil, evalErrorf("unknown operator %s", op)
}

func applyBinary(op string, left, right interface{}) (interface{}, error) {
	switch op {
	case "+":
		_, ls := left.(string)
		_, rs := right.(string)
		if ls || rs {
			return toText(left) + toText(right), nil
		}
		return arithmetic(op, left, right)

	case "-", "*", "/", "%":
		return arithmetic(op, left, right)

	case "==", "=":
		return looseEqual(left, right), nil
	case "!=", "<>":
		return !looseEqual(left, right), nil
	case "===":
		return strictEqual(left, right), nil
	case "!==":
		return !strictEqual(left, right), nil

	case "<", "<=", ">", ">=":
		cmp, ok := compare(left, right)
		if !ok {
			return false, nil
		}
		switch op {
		case "<":
			return cmp < 0, nil
		case "<=":
			return cmp <= 0, nil
		case ">":
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	}
	return nil, evalErrorf("unknown operator %s", op)
}

func arithmetic(op string, left, right interface{}) (interface{}, error) {
	l, lok := toNumber(left)
	r, rok := toNumber(right)
	if !lok || !rok {
		return nil, evalErrorf("operator %s requires numbers, got %q and %q", op, toText(left), toText(right))
	}

	var result float64
	switch op {
	case "+":
		result = l + r
	case "-":
		result = l - r
	case "*":
		result = l * r
	case "/":
		if r == 0 {
			return nil, evalErrorf("division by zero")
		}
		result = l / r
	case "%":
		if r == 0 {
			return nil, evalErrorf("division by zero")
		}
		result = math.Mod(l, r)
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return nil, evalErrorf("operator %s produced a non-finite number", op)
	}
	return result, nil
}
