package formula

import (
	"strconv"
	"strings"
)

// Node is a node of a parsed formula expression.
//
// The AST enables reference extraction and per-call parse caching through
// tree traversal rather than regex/string rewriting.
type Node interface {
	// Eval evaluates the node against the given context.
	Eval(c *Context) (interface{}, error)
	// Pos is the rune offset of the node in the expression.
	Pos() int
	// String returns a normalized form of the node.
	String() string
}

// NumberNode represents a numeric literal
type NumberNode struct {
	Value    float64
	Position int
}

func (n *NumberNode) Eval(c *Context) (interface{}, error) { return n.Value, nil }
func (n *NumberNode) Pos() int                             { return n.Position }
func (n *NumberNode) String() string                       { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// StringNode represents a string literal
type StringNode struct {
	Value    string
	Position int
}

func (n *StringNode) Eval(c *Context) (interface{}, error) { return n.Value, nil }
func (n *StringNode) Pos() int                             { return n.Position }
func (n *StringNode) String() string                       { return strconv.Quote(n.Value) }

// BoolNode represents a true/false literal
type BoolNode struct {
	Value    bool
	Position int
}

func (n *BoolNode) Eval(c *Context) (interface{}, error) { return n.Value, nil }
func (n *BoolNode) Pos() int                             { return n.Position }
func (n *BoolNode) String() string                       { return strconv.FormatBool(n.Value) }

// RefNode represents a [Column] reference, by title or id
type RefNode struct {
	Name     string
	Position int
}

func (n *RefNode) Eval(c *Context) (interface{}, error) { return c.referenceValue(n.Name) }
func (n *RefNode) Pos() int                             { return n.Position }
func (n *RefNode) String() string                       { return "[" + n.Name + "]" }

// UnaryNode represents a prefix operation: - + !
type UnaryNode struct {
	Op       string
	Operand  Node
	Position int
}

func (n *UnaryNode) Eval(c *Context) (interface{}, error) {
	v, err := n.Operand.Eval(c)
	if err != nil {
		return nil, err
	}
	return applyUnary(n.Op, v)
}
func (n *UnaryNode) Pos() int       { return n.Position }
func (n *UnaryNode) String() string { return n.Op + n.Operand.String() }

// BinaryNode represents an infix operation
type BinaryNode struct {
	Op       string
	Left     Node
	Right    Node
	Position int
}

func (n *BinaryNode) Eval(c *Context) (interface{}, error) {
	left, err := n.Left.Eval(c)
	if err != nil {
		return nil, err
	}

	// logical operators short-circuit and yield an operand, not a bool
	switch n.Op {
	case "&&":
		if !truthy(left) {
			return left, nil
		}
		return n.Right.Eval(c)
	case "||":
		if truthy(left) {
			return left, nil
		}
		return n.Right.Eval(c)
	}

	right, err := n.Right.Eval(c)
	if err != nil {
		return nil, err
	}
	return applyBinary(n.Op, left, right)
}
func (n *BinaryNode) Pos() int { return n.Position }
func (n *BinaryNode) String() string {
	return "(" + n.Left.String() + " " + n.Op + " " + n.Right.String() + ")"
}

// TernaryNode represents cond ? then : else. IF(...) calls evaluate the
// same way.
type TernaryNode struct {
	Cond     Node
	Then     Node
	Else     Node
	Position int
}

func (n *TernaryNode) Eval(c *Context) (interface{}, error) {
	return evalConditional(c, n.Cond, n.Then, n.Else)
}
func (n *TernaryNode) Pos() int { return n.Position }
func (n *TernaryNode) String() string {
	return "(" + n.Cond.String() + " ? " + n.Then.String() + " : " + n.Else.String() + ")"
}

// CallNode represents a function call. Name is upper-cased at parse time.
type CallNode struct {
	Name     string
	Args     []Node
	Position int
}

func (n *CallNode) Eval(c *Context) (interface{}, error) { return c.call(n) }
func (n *CallNode) Pos() int                             { return n.Position }
func (n *CallNode) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Name + "(" + strings.Join(args, ", ") + ")"
}

// References returns the reference names used by node in source order,
// without duplicates.
func References(node Node) []string {
	var names []string
	seen := make(map[string]bool)
	walk(node, func(n Node) {
		if ref, ok := n.(*RefNode); ok && !seen[ref.Name] {
			seen[ref.Name] = true
			names = append(names, ref.Name)
		}
	})
	return names
}

// Functions returns the function names called by node in source order,
// without duplicates.
func Functions(node Node) []string {
	var names []string
	seen := make(map[string]bool)
	walk(node, func(n Node) {
		if call, ok := n.(*CallNode); ok && !seen[call.Name] {
			seen[call.Name] = true
			names = append(names, call.Name)
		}
	})
	return names
}

func walk(node Node, visit func(Node)) {
	if node == nil {
		return
	}
	visit(node)
	switch n := node.(type) {
	case *UnaryNode:
		walk(n.Operand, visit)
	case *BinaryNode:
		walk(n.Left, visit)
		walk(n.Right, visit)
	case *TernaryNode:
		walk(n.Cond, visit)
		walk(n.Then, visit)
		walk(n.Else, visit)
	case *CallNode:
		for _, a := range n.Args {
			walk(a, visit)
		}
	}
}
