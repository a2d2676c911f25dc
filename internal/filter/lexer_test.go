package filter

import (
	"testing"
)

func TestLexerTokens(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		tokens []Token
	}{
		{
			name:  "attribute comparison",
			input: "type_id = 1",
			tokens: []Token{
				{Type: TokenIdent, Value: "type_id"},
				{Type: TokenEq, Value: "="},
				{Type: TokenInt, Value: "1"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "dotted path",
			input: "properties.p0.int_value",
			tokens: []Token{
				{Type: TokenIdent, Value: "properties"},
				{Type: TokenDot, Value: "."},
				{Type: TokenIdent, Value: "p0"},
				{Type: TokenDot, Value: "."},
				{Type: TokenIdent, Value: "int_value"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "comparison operators",
			input: "= != < <= > >=",
			tokens: []Token{
				{Type: TokenEq, Value: "="},
				{Type: TokenNeq, Value: "!="},
				{Type: TokenLt, Value: "<"},
				{Type: TokenLte, Value: "<="},
				{Type: TokenGt, Value: ">"},
				{Type: TokenGte, Value: ">="},
				{Type: TokenEOF},
			},
		},
		{
			name:  "single-quoted string",
			input: "'foo'",
			tokens: []Token{
				{Type: TokenString, Value: "foo"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "double-quoted string",
			input: `"foo bar"`,
			tokens: []Token{
				{Type: TokenString, Value: "foo bar"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "string with escaped quote",
			input: `'it\'s'`,
			tokens: []Token{
				{Type: TokenString, Value: "it's"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "backtick-quoted identifier",
			input: "properties.`0:b`.int_value",
			tokens: []Token{
				{Type: TokenIdent, Value: "properties"},
				{Type: TokenDot, Value: "."},
				{Type: TokenQuotedIdent, Value: "0:b"},
				{Type: TokenDot, Value: "."},
				{Type: TokenIdent, Value: "int_value"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "float literal",
			input: "0.95",
			tokens: []Token{
				{Type: TokenFloat, Value: "0.95"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "negative literals",
			input: "-1 -2.5",
			tokens: []Token{
				{Type: TokenInt, Value: "-1"},
				{Type: TokenFloat, Value: "-2.5"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "parenthesized group",
			input: "(type_id = 1)",
			tokens: []Token{
				{Type: TokenLParen, Value: "("},
				{Type: TokenIdent, Value: "type_id"},
				{Type: TokenEq, Value: "="},
				{Type: TokenInt, Value: "1"},
				{Type: TokenRParen, Value: ")"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "keywords are plain identifiers",
			input: "NOT a AND b or c like",
			tokens: []Token{
				{Type: TokenIdent, Value: "NOT"},
				{Type: TokenIdent, Value: "a"},
				{Type: TokenIdent, Value: "AND"},
				{Type: TokenIdent, Value: "b"},
				{Type: TokenIdent, Value: "or"},
				{Type: TokenIdent, Value: "c"},
				{Type: TokenIdent, Value: "like"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "unterminated string",
			input: "'oops",
			tokens: []Token{
				{Type: TokenError, Value: "unterminated string literal"},
			},
		},
		{
			name:  "unterminated quoted identifier",
			input: "`0:b",
			tokens: []Token{
				{Type: TokenError, Value: "unterminated quoted identifier"},
			},
		},
		{
			name:  "unexpected character",
			input: "a ; b",
			tokens: []Token{
				{Type: TokenIdent, Value: "a"},
				{Type: TokenError, Value: "unexpected character ;"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lexer := NewLexer(tt.input)
			for i, expected := range tt.tokens {
				tok := lexer.NextToken()
				if tok.Type != expected.Type {
					t.Errorf("token %d: expected type %v, got %v (value: %q)", i, expected.Type, tok.Type, tok.Value)
				}
				if expected.Value != "" && tok.Value != expected.Value {
					t.Errorf("token %d: expected value %q, got %q", i, expected.Value, tok.Value)
				}
			}
		})
	}
}

func TestLexerPositions(t *testing.T) {
	lexer := NewLexer("id = 10")
	want := []int{0, 3, 5}
	for i, pos := range want {
		tok := lexer.NextToken()
		if tok.Pos != pos {
			t.Errorf("token %d: expected pos %d, got %d", i, pos, tok.Pos)
		}
	}
}
