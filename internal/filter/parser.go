package filter

import "fmt"

// parser is a recursive-descent parser for filter expressions. Precedence,
// tightest first: NOT, comparison, AND, OR. It has no knowledge of record
// kinds; field paths are carried raw and validated by the resolver.
type parser struct {
	lexer *Lexer
	curr  Token
	peek  Token
}

// Parse parses a filter string into an unresolved expression tree. Field
// references are not validated; use Resolve to obtain a validated AST.
func Parse(input string) (Expr, error) {
	p := &parser{lexer: NewLexer(input)}
	p.advance()
	p.advance()

	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.curr.Type != TokenEOF {
		return nil, p.errorf("unexpected %s after expression", p.describe(p.curr))
	}
	return expr, nil
}

func (p *parser) advance() {
	p.curr = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Pos: p.curr.Pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of filter"
	case TokenError:
		return tok.Value
	default:
		return fmt.Sprintf("%q", tok.Value)
	}
}

// isKeyword reports whether the current token is the given bare keyword.
// AND, OR, NOT, and LIKE are matched case-insensitively.
func (p *parser) isKeyword(word string) bool {
	if p.curr.Type != TokenIdent || len(p.curr.Value) != len(word) {
		return false
	}
	for i := 0; i < len(word); i++ {
		c := p.curr.Value[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c != word[i] {
			return false
		}
	}
	return true
}

// parseOr parses a chain of OR operands into one n-ary node.
func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	if !p.isKeyword("OR") {
		return left, nil
	}
	operands := []Expr{left}
	for p.isKeyword("OR") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
	}
	return &OrExpr{Operands: operands}, nil
}

// parseAnd parses a chain of AND operands into one n-ary node.
func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	if !p.isKeyword("AND") {
		return left, nil
	}
	operands := []Expr{left}
	for p.isKeyword("AND") {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
	}
	return &AndExpr{Operands: operands}, nil
}

// parseUnary parses NOT and parenthesized groups.
func (p *parser) parseUnary() (Expr, error) {
	if p.isKeyword("NOT") {
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Inner: inner}, nil
	}

	if p.curr.Type == TokenLParen {
		open := p.curr.Pos
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.curr.Type != TokenRParen {
			return nil, &ParseError{Pos: open, Message: "unbalanced parenthesis"}
		}
		p.advance()
		return expr, nil
	}

	return p.parseComparison()
}

// parseComparison parses `<path> <op> <literal>`.
func (p *parser) parseComparison() (Expr, error) {
	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}

	op, err := p.parseOp()
	if err != nil {
		return nil, err
	}

	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}

	return &Comparison{Path: path, Op: op, Value: lit}, nil
}

// parsePath parses a dotted field path. Segments are bare or backtick-quoted
// identifiers.
func (p *parser) parsePath() ([]string, error) {
	if p.curr.Type != TokenIdent && p.curr.Type != TokenQuotedIdent {
		if p.curr.Type == TokenError {
			return nil, p.errorf("%s", p.curr.Value)
		}
		return nil, p.errorf("expected field reference, got %s", p.describe(p.curr))
	}

	path := []string{p.curr.Value}
	p.advance()
	for p.curr.Type == TokenDot {
		p.advance()
		if p.curr.Type != TokenIdent && p.curr.Type != TokenQuotedIdent {
			return nil, p.errorf("expected field path segment, got %s", p.describe(p.curr))
		}
		path = append(path, p.curr.Value)
		p.advance()
	}
	return path, nil
}

func (p *parser) parseOp() (CompareOp, error) {
	var op CompareOp
	switch {
	case p.curr.Type == TokenEq:
		op = OpEq
	case p.curr.Type == TokenNeq:
		op = OpNeq
	case p.curr.Type == TokenLt:
		op = OpLt
	case p.curr.Type == TokenLte:
		op = OpLte
	case p.curr.Type == TokenGt:
		op = OpGt
	case p.curr.Type == TokenGte:
		op = OpGte
	case p.isKeyword("LIKE"):
		op = OpLike
	default:
		return 0, p.errorf("expected comparison operator, got %s", p.describe(p.curr))
	}
	p.advance()
	return op, nil
}

func (p *parser) parseLiteral() (Literal, error) {
	var lit Literal
	switch p.curr.Type {
	case TokenInt:
		lit = Literal{Type: ValueInt, Text: p.curr.Value}
	case TokenFloat:
		lit = Literal{Type: ValueDouble, Text: p.curr.Value}
	case TokenString:
		lit = Literal{Type: ValueString, Text: p.curr.Value}
	case TokenError:
		return Literal{}, p.errorf("%s", p.curr.Value)
	default:
		return Literal{}, p.errorf("expected literal, got %s", p.describe(p.curr))
	}
	p.advance()
	return lit, nil
}
