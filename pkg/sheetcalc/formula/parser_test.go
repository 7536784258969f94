package formula

import (
	"errors"
	"reflect"
	"testing"
)

func TestLexerTokens(t *testing.T) {
	tokens, err := NewLexer(`IF([Start Date] >= 10, "a", 'b') === !x`).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	expected := []struct {
		typ   TokenType
		value string
	}{
		{TokenIdentifier, "IF"},
		{TokenLeftParen, "("},
		{TokenReference, "Start Date"},
		{TokenOperator, ">="},
		{TokenNumber, "10"},
		{TokenComma, ","},
		{TokenString, "a"},
		{TokenComma, ","},
		{TokenString, "b"},
		{TokenRightParen, ")"},
		{TokenOperator, "==="},
		{TokenOperator, "!"},
		{TokenIdentifier, "x"},
		{TokenEOF, ""},
	}

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Type != exp.typ || tokens[i].Value != exp.value {
			t.Errorf("token %d = (%s, %q), expected (%s, %q)", i, tokens[i].Type, tokens[i].Value, exp.typ, exp.value)
		}
	}
}

func TestLexerUnicodeReference(t *testing.T) {
	tokens, err := NewLexer(`[Fortschritt %] + [進捗]`).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if tokens[0].Value != "Fortschritt %" || tokens[2].Value != "進捗" {
		t.Errorf("Unexpected reference tokens: %v", tokens)
	}
	if tokens[2].Pos != 18 {
		t.Errorf("Expected rune position 18, got %d", tokens[2].Pos)
	}
}

func TestParserValidFormulas(t *testing.T) {
	validFormulas := []string{
		"=1+2",
		"=[Progress]",
		"=SUM([Progress])",
		"=count([p]) + avg([p])",
		"=DATEDIFF([To Date], [Start Date])",
		`=IF([Progress]==100,"Done","Pending")`,
		`=IF(SUM([A])>10, IF([B], "x", "y"), "z")`,
		"=[a] ? [b] ? 1 : 2 : 3",
		"=-(-1)",
		"=!!true",
		"=1 <> 2 && 3 <= 4 || 5 >= 6",
		"=PI()",
		`="Hello 世界"`,
	}

	for _, formula := range validFormulas {
		t.Run(formula, func(t *testing.T) {
			if _, err := Parse(formula); err != nil {
				t.Errorf("Failed to parse valid formula %s: %v", formula, err)
			}
		})
	}
}

func TestParserInvalidFormulas(t *testing.T) {
	invalidFormulas := []string{
		"=",
		"=SUM(",
		"=SUM([A],)",
		"=[A",
		`="hello`,
		"=1 +",
		"=* 2",
		"=a.b",
		"=constructor",
		"=[A] [B]",
		"=1 : 2",
		"=)",
	}

	for _, formula := range invalidFormulas {
		t.Run(formula, func(t *testing.T) {
			_, err := Parse(formula)
			if err == nil {
				t.Fatalf("Expected formula to fail but it succeeded: %s", formula)
			}
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Errorf("Expected *SyntaxError, got %T", err)
			}
		})
	}
}

func TestParserPrecedence(t *testing.T) {
	tests := []struct {
		formula  string
		expected string
	}{
		{"=1+2*3", "(1 + (2 * 3))"},
		{"=(1+2)*3", "((1 + 2) * 3)"},
		{"=1-2-3", "((1 - 2) - 3)"},
		{"=[a] > 1 && [b] < 2", "(([a] > 1) && ([b] < 2))"},
		{"=-[a]*2", "(-[a] * 2)"},
		{"=[a] ? 1 : [b] ? 2 : 3", "([a] ? 1 : ([b] ? 2 : 3))"},
		{`=if([a]=1,"x",sum([b]))`, `IF(([a] = 1), "x", SUM([b]))`},
	}

	for _, tt := range tests {
		node, err := Parse(tt.formula)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", tt.formula, err)
			continue
		}
		if got := node.String(); got != tt.expected {
			t.Errorf("Parse(%q) = %s, expected %s", tt.formula, got, tt.expected)
		}
	}
}

func TestReferencesAndFunctions(t *testing.T) {
	node, err := Parse(`=IF(SUM([Progress]) > [Target], [Progress], DATEDIFF([Due], [Start])) + [Progress]`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	refs := References(node)
	expectedRefs := []string{"Progress", "Target", "Due", "Start"}
	if !reflect.DeepEqual(refs, expectedRefs) {
		t.Errorf("References = %v, expected %v", refs, expectedRefs)
	}

	funcs := Functions(node)
	expectedFuncs := []string{"IF", "SUM", "DATEDIFF"}
	if !reflect.DeepEqual(funcs, expectedFuncs) {
		t.Errorf("Functions = %v, expected %v", funcs, expectedFuncs)
	}
}

func TestParseChainMode(t *testing.T) {
	tests := []struct {
		input    string
		expected ChainMode
		wantErr  bool
	}{
		{"", ChainOff, false},
		{"off", ChainOff, false},
		{"resolve", ChainResolve, false},
		{"on", ChainOff, true},
	}
	for _, tt := range tests {
		got, err := ParseChainMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseChainMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.expected {
			t.Errorf("ParseChainMode(%q) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}
