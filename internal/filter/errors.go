package filter

import (
	"errors"
	"fmt"
)

// ParseError reports malformed filter syntax: unbalanced parentheses,
// unterminated quotes, unexpected tokens, invalid literals.
type ParseError struct {
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("filter syntax error at position %d: %s", e.Pos, e.Message)
}

// SemanticError reports a syntactically valid reference that is illegal for
// the record kind being filtered, or a literal that cannot be coerced to the
// referenced value field. Path is the offending dotted reference as written.
type SemanticError struct {
	Path    string
	Message string
}

func (e *SemanticError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("cannot resolve %q: %s", e.Path, e.Message)
}

// IsFilterError reports whether err originated from filter compilation, as
// opposed to executing the resulting query.
func IsFilterError(err error) bool {
	var perr *ParseError
	var serr *SemanticError
	return errors.As(err, &perr) || errors.As(err, &serr)
}
