package filter

import (
	"strconv"
	"strings"
)

// resolver validates every field reference in a parsed tree against the
// schema legal for one record kind, and checks that each literal can be
// rendered with the type of its comparison partner. Resolution stops at the
// first error.
type resolver struct {
	kind RecordKind
}

// Resolve parses a filter string and validates it for the given record kind.
// On success every Comparison in the returned tree carries a resolved
// FieldRef; on failure the error is a *ParseError or *SemanticError and no
// partial AST is returned.
func Resolve(kind RecordKind, input string) (Expr, error) {
	root, err := Parse(input)
	if err != nil {
		return nil, err
	}

	r := resolver{kind: kind}
	if err := r.resolveExpr(root); err != nil {
		return nil, err
	}
	return root, nil
}

func (r *resolver) resolveExpr(e Expr) error {
	switch node := e.(type) {
	case *Comparison:
		return r.resolveComparison(node)
	case *AndExpr:
		for _, op := range node.Operands {
			if err := r.resolveExpr(op); err != nil {
				return err
			}
		}
		return nil
	case *OrExpr:
		for _, op := range node.Operands {
			if err := r.resolveExpr(op); err != nil {
				return err
			}
		}
		return nil
	case *NotExpr:
		return r.resolveExpr(node.Inner)
	default:
		return &SemanticError{Message: "unknown expression node"}
	}
}

func (r *resolver) resolveComparison(c *Comparison) error {
	ref, err := r.resolveRef(c.Path)
	if err != nil {
		return err
	}

	path := strings.Join(c.Path, ".")
	switch ref.Type {
	case ValueInt:
		if c.Value.Type != ValueInt {
			return &SemanticError{Path: path, Message: "cannot compare an integer field with a " + c.Value.Type.String() + " literal"}
		}
	case ValueDouble:
		if c.Value.Type == ValueString {
			return &SemanticError{Path: path, Message: "cannot compare a double field with a string literal"}
		}
	}
	// String-typed targets accept any literal; it is rendered as a quoted
	// string.

	c.Ref = ref
	return nil
}

func (r *resolver) resolveRef(path []string) (FieldRef, error) {
	joined := strings.Join(path, ".")

	switch len(path) {
	case 1:
		name := path[0]
		if t, ok := r.kind.attributeType(name); ok {
			return FieldRef{Kind: RefAttribute, Column: name, Type: t}, nil
		}
		if name == "type" {
			return FieldRef{Kind: RefTypeAttribute, Column: "type", Type: ValueString}, nil
		}
		return FieldRef{}, &SemanticError{Path: joined, Message: "unknown attribute for " + r.kind.String() + " filters"}

	case 2:
		kind, index, ok := splitNeighbor(path[0])
		if !ok {
			return FieldRef{}, &SemanticError{Path: joined, Message: "unknown field reference"}
		}
		switch kind {
		case RefContext:
			if r.kind == KindContext {
				return FieldRef{}, &SemanticError{Path: joined, Message: "context filters cannot reference contexts_N; use parent_contexts_N or child_contexts_N"}
			}
		case RefParentContext, RefChildContext:
			if r.kind != KindContext {
				return FieldRef{}, &SemanticError{Path: joined, Message: "only context filters can reference parent or child contexts"}
			}
		}
		attr := path[1]
		t, ok := neighborAttributes[attr]
		if !ok {
			return FieldRef{}, &SemanticError{Path: joined, Message: "unknown context attribute " + strconv.Quote(attr)}
		}
		return FieldRef{Kind: kind, Column: attr, Index: index, Type: t}, nil

	case 3:
		var kind RefKind
		switch path[0] {
		case "properties":
			kind = RefProperty
		case "custom_properties":
			kind = RefCustomProperty
		default:
			return FieldRef{}, &SemanticError{Path: joined, Message: "unknown field reference"}
		}
		t, ok := valueColumns[path[2]]
		if !ok {
			return FieldRef{}, &SemanticError{Path: joined, Message: "property references must end in int_value, double_value, or string_value"}
		}
		return FieldRef{Kind: kind, Column: path[2], Name: path[1], Type: t}, nil

	default:
		return FieldRef{}, &SemanticError{Path: joined, Message: "unknown field reference"}
	}
}

// splitNeighbor parses a neighbor mention like contexts_0, parent_contexts_2,
// or child_contexts_1 into its reference kind and ordinal.
func splitNeighbor(segment string) (RefKind, int, bool) {
	var kind RefKind
	var rest string
	switch {
	case strings.HasPrefix(segment, "contexts_"):
		kind, rest = RefContext, segment[len("contexts_"):]
	case strings.HasPrefix(segment, "parent_contexts_"):
		kind, rest = RefParentContext, segment[len("parent_contexts_"):]
	case strings.HasPrefix(segment, "child_contexts_"):
		kind, rest = RefChildContext, segment[len("child_contexts_"):]
	default:
		return 0, 0, false
	}
	index, err := strconv.Atoi(rest)
	if err != nil || index < 0 {
		return 0, 0, false
	}
	return kind, index, true
}
