package formula

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultMaxDepth bounds expression nesting.
const DefaultMaxDepth = 64

// Parser parses tokens into an AST. The grammar is restricted to literals,
// column references, operators, ternaries and calls to a fixed set of
// functions; there is no identifier resolution or property access.
type Parser struct {
	tokens   []Token
	pos      int
	depth    int
	maxDepth int
}

// NewParser creates a new parser with the given tokens
func NewParser(tokens []Token, maxDepth int) *Parser {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Parser{tokens: tokens, maxDepth: maxDepth}
}

// Parse parses a formula. The leading '=' is optional.
func Parse(src string) (Node, error) {
	return parseWithDepth(src, DefaultMaxDepth)
}

func parseWithDepth(src string, maxDepth int) (Node, error) {
	expr := strings.TrimPrefix(src, "=")
	tokens, err := NewLexer(expr).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens, maxDepth).Parse()
}

// Parse parses the tokens into an AST
func (p *Parser) Parse() (Node, error) {
	if len(p.tokens) == 0 || p.peek().Type == TokenEOF {
		return nil, &SyntaxError{Pos: 0, Msg: "empty formula"}
	}

	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, p.unexpected(tok)
	}
	return node, nil
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// matchOp consumes the next token if it is one of the given operators
func (p *Parser) matchOp(ops ...string) (Token, bool) {
	tok := p.peek()
	if tok.Type != TokenOperator {
		return tok, false
	}
	for _, op := range ops {
		if tok.Value == op {
			p.pos++
			return tok, true
		}
	}
	return tok, false
}

func (p *Parser) expect(t TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != t {
		return tok, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("expected %s, found %s", t, describe(tok))}
	}
	p.pos++
	return tok, nil
}

func (p *Parser) unexpected(tok Token) error {
	return &SyntaxError{Pos: tok.Pos, Msg: "unexpected " + describe(tok)}
}

func (p *Parser) enter(pos int) error {
	p.depth++
	if p.depth > p.maxDepth {
		return &SyntaxError{Pos: pos, Msg: "expression nested too deeply"}
	}
	return nil
}

func (p *Parser) leave() { p.depth-- }

// parseExpr handles the ternary operator (lowest precedence, right
// associative)
func (p *Parser) parseExpr() (Node, error) {
	if err := p.enter(p.peek().Pos); err != nil {
		return nil, err
	}
	defer p.leave()

	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != TokenQuestion {
		return cond, nil
	}
	p.pos++

	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	otherwise, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &TernaryNode{Cond: cond, Then: then, Else: otherwise, Position: cond.Pos()}, nil
}

// binaryLevel parses a left-associative chain of the given operators
func (p *Parser) binaryLevel(operand func() (Node, error), ops ...string) (Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.matchOp(ops...)
		if !ok {
			return left, nil
		}
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: tok.Value, Left: left, Right: right, Position: tok.Pos}
	}
}

func (p *Parser) parseOr() (Node, error) {
	return p.binaryLevel(p.parseAnd, "||")
}

func (p *Parser) parseAnd() (Node, error) {
	return p.binaryLevel(p.parseEquality, "&&")
}

func (p *Parser) parseEquality() (Node, error) {
	return p.binaryLevel(p.parseRelational, "===", "!==", "==", "!=", "=", "<>")
}

func (p *Parser) parseRelational() (Node, error) {
	return p.binaryLevel(p.parseAdditive, "<", "<=", ">", ">=")
}

func (p *Parser) parseAdditive() (Node, error) {
	return p.binaryLevel(p.parseMultiplicative, "+", "-")
}

func (p *Parser) parseMultiplicative() (Node, error) {
	return p.binaryLevel(p.parseUnary, "*", "/", "%")
}

// parseUnary handles prefix operators
func (p *Parser) parseUnary() (Node, error) {
	tok, ok := p.matchOp("-", "+", "!")
	if !ok {
		return p.parsePrimary()
	}
	if err := p.enter(tok.Pos); err != nil {
		return nil, err
	}
	defer p.leave()

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &UnaryNode{Op: tok.Value, Operand: operand, Position: tok.Pos}, nil
}

// parsePrimary handles literals, references, calls and parentheses
func (p *Parser) parsePrimary() (Node, error) {
	tok := p.next()

	switch tok.Type {
	case TokenNumber:
		val, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("invalid number %q", tok.Value)}
		}
		return &NumberNode{Value: val, Position: tok.Pos}, nil

	case TokenString:
		return &StringNode{Value: tok.Value, Position: tok.Pos}, nil

	case TokenReference:
		return &RefNode{Name: tok.Value, Position: tok.Pos}, nil

	case TokenIdentifier:
		switch strings.ToLower(tok.Value) {
		case "true":
			return &BoolNode{Value: true, Position: tok.Pos}, nil
		case "false":
			return &BoolNode{Value: false, Position: tok.Pos}, nil
		}
		if p.peek().Type != TokenLeftParen {
			return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("unknown identifier %q", tok.Value)}
		}
		return p.parseCall(tok)

	case TokenLeftParen:
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return node, nil
	}

	return nil, p.unexpected(tok)
}

// parseCall parses the argument list of a function call. The name token
// has already been consumed.
func (p *Parser) parseCall(name Token) (Node, error) {
	p.pos++ // '('
	call := &CallNode{Name: strings.ToUpper(name.Value), Position: name.Pos}

	if p.peek().Type == TokenRightParen {
		p.pos++
		return call, nil
	}

	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		tok := p.next()
		switch tok.Type {
		case TokenRightParen:
			return call, nil
		case TokenComma:
			continue
		default:
			return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("expected ',' or ')' in %s arguments, found %s", call.Name, describe(tok))}
		}
	}
}

func describe(tok Token) string {
	if tok.Type == TokenEOF {
		return tok.Type.String()
	}
	return fmt.Sprintf("%s %q", tok.Type, tok.Value)
}
