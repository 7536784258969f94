package formula

import (
	"fmt"
	"strings"
)

// TokenType represents different types of tokens in formulas
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenString
	TokenReference
	TokenIdentifier
	TokenOperator
	TokenQuestion
	TokenColon
	TokenComma
	TokenLeftParen
	TokenRightParen
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "end of formula"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenReference:
		return "reference"
	case TokenIdentifier:
		return "identifier"
	case TokenOperator:
		return "operator"
	case TokenQuestion:
		return "'?'"
	case TokenColon:
		return "':'"
	case TokenComma:
		return "','"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	}
	return "unknown"
}

// character classification constants. slightly easier to read.
const (
	charNull       = 0
	charTab        = '\t'
	charNewline    = '\n'
	charReturn     = '\r'
	charSpace      = ' '
	charQuote      = '"'
	charApostrophe = '\''
	charBackslash  = '\\'
	charLBracket   = '['
	charRBracket   = ']'
	charLParen     = '('
	charRParen     = ')'
	charComma      = ','
	charPeriod     = '.'
	charQuestion   = '?'
	charColon      = ':'
	charUnderscore = '_'
)

// operators ordered longest first so the scanner is greedy
var operators = []string{
	"===", "!==",
	"==", "!=", "<=", ">=", "<>", "&&", "||",
	"+", "-", "*", "/", "%", "<", ">", "=", "!",
}

// Token represents a lexical token with position information
type Token struct {
	Type  TokenType
	Value string
	Pos   int // rune position in the expression
}

// Lexer tokenizes a formula expression (the text after the leading '=')
type Lexer struct {
	runes  []rune // UTF-8 aware; column titles are often non-ASCII
	pos    int
	tokens []Token
}

// NewLexer creates a new lexer for the given expression
func NewLexer(input string) *Lexer {
	return &Lexer{runes: []rune(input)}
}

// Tokenize tokenizes the entire input. The returned slice always ends with
// a TokenEOF token when err is nil.
func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.runes) {
			break
		}
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
	}
	l.tokens = append(l.tokens, Token{Type: TokenEOF, Pos: l.pos})
	return l.tokens, nil
}

func (l *Lexer) nextToken() (Token, error) {
	startPos := l.pos
	ch := l.current()

	switch {
	case ch == charQuote || ch == charApostrophe:
		return l.scanString(ch)
	case ch == charLBracket:
		return l.scanReference()
	case l.isDigit(ch) || (ch == charPeriod && l.isDigit(l.peek(1))):
		return l.scanNumber(), nil
	case l.isAlpha(ch) || ch == charUnderscore:
		return l.scanIdentifier(), nil
	}

	switch ch {
	case charLParen:
		l.pos++
		return Token{Type: TokenLeftParen, Value: "(", Pos: startPos}, nil
	case charRParen:
		l.pos++
		return Token{Type: TokenRightParen, Value: ")", Pos: startPos}, nil
	case charComma:
		l.pos++
		return Token{Type: TokenComma, Value: ",", Pos: startPos}, nil
	case charQuestion:
		l.pos++
		return Token{Type: TokenQuestion, Value: "?", Pos: startPos}, nil
	case charColon:
		l.pos++
		return Token{Type: TokenColon, Value: ":", Pos: startPos}, nil
	}

	rest := string(l.runes[l.pos:])
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			l.pos += len([]rune(op))
			return Token{Type: TokenOperator, Value: op, Pos: startPos}, nil
		}
	}

	return Token{}, &SyntaxError{Pos: startPos, Msg: fmt.Sprintf("unexpected character %q", ch)}
}

// scanString scans a quoted string literal. Supports \" \' \\ \n \t escapes.
func (l *Lexer) scanString(quote rune) (Token, error) {
	startPos := l.pos
	l.pos++ // opening quote

	var sb strings.Builder
	for l.pos < len(l.runes) {
		ch := l.current()
		switch {
		case ch == quote:
			l.pos++
			return Token{Type: TokenString, Value: sb.String(), Pos: startPos}, nil
		case ch == charBackslash && l.pos+1 < len(l.runes):
			l.pos++
			switch esc := l.current(); esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			default:
				sb.WriteRune(esc)
			}
			l.pos++
		default:
			sb.WriteRune(ch)
			l.pos++
		}
	}
	return Token{}, &SyntaxError{Pos: startPos, Msg: "unclosed string literal"}
}

// scanReference scans a [Column] reference. The brackets are not part of
// the token value.
func (l *Lexer) scanReference() (Token, error) {
	startPos := l.pos
	l.pos++ // '['

	start := l.pos
	for l.pos < len(l.runes) {
		switch l.current() {
		case charRBracket:
			name := string(l.runes[start:l.pos])
			l.pos++
			if name == "" {
				return Token{}, &SyntaxError{Pos: startPos, Msg: "empty column reference"}
			}
			return Token{Type: TokenReference, Value: name, Pos: startPos}, nil
		case charLBracket:
			return Token{}, &SyntaxError{Pos: l.pos, Msg: "nested '[' in column reference"}
		}
		l.pos++
	}
	return Token{}, &SyntaxError{Pos: startPos, Msg: "unclosed column reference"}
}

// scanNumber scans a number token including decimals and scientific notation
func (l *Lexer) scanNumber() Token {
	startPos := l.pos

	for l.isDigit(l.current()) {
		l.pos++
	}

	if l.current() == charPeriod {
		l.pos++
		for l.isDigit(l.current()) {
			l.pos++
		}
	}

	if l.current() == 'e' || l.current() == 'E' {
		savedPos := l.pos
		l.pos++
		if l.current() == '+' || l.current() == '-' {
			l.pos++
		}
		if !l.isDigit(l.current()) {
			// not scientific notation, restore position
			l.pos = savedPos
		} else {
			for l.isDigit(l.current()) {
				l.pos++
			}
		}
	}

	return Token{Type: TokenNumber, Value: string(l.runes[startPos:l.pos]), Pos: startPos}
}

func (l *Lexer) scanIdentifier() Token {
	startPos := l.pos
	for l.isAlpha(l.current()) || l.isDigit(l.current()) || l.current() == charUnderscore {
		l.pos++
	}
	return Token{Type: TokenIdentifier, Value: string(l.runes[startPos:l.pos]), Pos: startPos}
}

// helper methods for character navigation and classification

func (l *Lexer) current() rune {
	if l.pos >= len(l.runes) {
		return charNull
	}
	return l.runes[l.pos]
}

func (l *Lexer) peek(offset int) rune {
	pos := l.pos + offset
	if pos >= len(l.runes) || pos < 0 {
		return charNull
	}
	return l.runes[pos]
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.runes) {
		switch l.current() {
		case charSpace, charTab, charNewline, charReturn:
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) isAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
