package filter

import "unicode"

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TokenEOF        TokenType = iota
	TokenIdent                // bare identifiers like "type_id", "contexts_0", "AND"
	TokenQuotedIdent          // backtick-quoted identifiers like `0:b`
	TokenString               // single- or double-quoted string literal
	TokenInt                  // integer literal
	TokenFloat                // floating-point literal
	TokenDot                  // .
	TokenLParen               // (
	TokenRParen               // )
	TokenEq                   // =
	TokenNeq                  // !=
	TokenLt                   // <
	TokenLte                  // <=
	TokenGt                   // >
	TokenGte                  // >=
	TokenError                // error token; Value holds the message
)

// Token represents a lexer token. For quoted tokens Value holds the unquoted,
// unescaped content.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Lexer tokenizes a filter string.
type Lexer struct {
	input string
	pos   int
	start int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}

	l.start = l.pos
	ch := l.input[l.pos]

	switch ch {
	case '.':
		l.pos++
		return Token{Type: TokenDot, Value: ".", Pos: l.start}
	case '(':
		l.pos++
		return Token{Type: TokenLParen, Value: "(", Pos: l.start}
	case ')':
		l.pos++
		return Token{Type: TokenRParen, Value: ")", Pos: l.start}
	case '=':
		l.pos++
		return Token{Type: TokenEq, Value: "=", Pos: l.start}
	case '!':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return Token{Type: TokenNeq, Value: "!=", Pos: l.start}
		}
		l.pos++
		return Token{Type: TokenError, Value: "unexpected character '!'", Pos: l.start}
	case '<':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return Token{Type: TokenLte, Value: "<=", Pos: l.start}
		}
		l.pos++
		return Token{Type: TokenLt, Value: "<", Pos: l.start}
	case '>':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return Token{Type: TokenGte, Value: ">=", Pos: l.start}
		}
		l.pos++
		return Token{Type: TokenGt, Value: ">", Pos: l.start}
	case '\'', '"':
		return l.scanString(ch)
	case '`':
		return l.scanQuotedIdent()
	case '-':
		if l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
			return l.scanNumber()
		}
		l.pos++
		return Token{Type: TokenError, Value: "unexpected character '-'", Pos: l.start}
	default:
		if isDigit(ch) {
			return l.scanNumber()
		}
		if isIdentStart(ch) {
			return l.scanIdent()
		}
		l.pos++
		return Token{Type: TokenError, Value: "unexpected character " + string(ch), Pos: l.start}
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
}

func (l *Lexer) scanIdent() Token {
	start := l.pos
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	return Token{Type: TokenIdent, Value: l.input[start:l.pos], Pos: start}
}

// scanNumber scans an integer or float literal, with an optional leading
// minus sign and at most one decimal point.
func (l *Lexer) scanNumber() Token {
	start := l.pos
	if l.input[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	isFloat := false
	if l.pos+1 < len(l.input) && l.input[l.pos] == '.' && isDigit(l.input[l.pos+1]) {
		isFloat = true
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	value := l.input[start:l.pos]
	if isFloat {
		return Token{Type: TokenFloat, Value: value, Pos: start}
	}
	return Token{Type: TokenInt, Value: value, Pos: start}
}

// scanString scans a quoted string literal. Backslash escapes the quote
// character and the backslash itself.
func (l *Lexer) scanString(quote byte) Token {
	start := l.pos
	l.pos++ // opening quote

	var value []byte
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' && l.pos+1 < len(l.input) {
			next := l.input[l.pos+1]
			if next == quote || next == '\\' {
				value = append(value, next)
				l.pos += 2
				continue
			}
		}
		if ch == quote {
			l.pos++
			return Token{Type: TokenString, Value: string(value), Pos: start}
		}
		value = append(value, ch)
		l.pos++
	}
	return Token{Type: TokenError, Value: "unterminated string literal", Pos: start}
}

// scanQuotedIdent scans a backtick-quoted identifier. The content is carried
// verbatim; there is no escape for a backtick.
func (l *Lexer) scanQuotedIdent() Token {
	start := l.pos
	l.pos++ // opening backtick

	for l.pos < len(l.input) {
		if l.input[l.pos] == '`' {
			value := l.input[start+1 : l.pos]
			l.pos++
			return Token{Type: TokenQuotedIdent, Value: value, Pos: start}
		}
		l.pos++
	}
	return Token{Type: TokenError, Value: "unterminated quoted identifier", Pos: start}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		ch == '_'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
