// Package filter implements the Magpie filter-expression compiler. A filter
// string is parsed into a boolean expression tree, resolved against the
// attribute/property/neighbor schema of one record kind, and compiled into a
// FROM clause (the joins needed to reach every referenced neighbor) and a
// WHERE clause (the predicate rewritten against join-table aliases).
package filter

// CompareOp is a comparison operator in a filter condition.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpLike
)

func (op CompareOp) String() string {
	switch op {
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpLike:
		return "LIKE"
	default:
		return "="
	}
}

// ValueType is the type a literal or column compares as.
type ValueType int

const (
	ValueInt ValueType = iota
	ValueDouble
	ValueString
)

func (t ValueType) String() string {
	switch t {
	case ValueDouble:
		return "double"
	case ValueString:
		return "string"
	default:
		return "int"
	}
}

// Literal is a comparison literal carrying its raw lexical form. For string
// literals Text holds the unquoted, unescaped content; for numbers it holds
// the digits as written.
type Literal struct {
	Type ValueType
	Text string
}

// RefKind classifies a resolved field reference.
type RefKind int

const (
	// RefAttribute is a column on the base record table.
	RefAttribute RefKind = iota
	// RefTypeAttribute is an attribute on the record's type row.
	RefTypeAttribute
	// RefContext is an attribute on an associated context (contexts_N).
	RefContext
	// RefParentContext is an attribute on a parent context (parent_contexts_N).
	RefParentContext
	// RefChildContext is an attribute on a child context (child_contexts_N).
	RefChildContext
	// RefProperty is a typed property value field (properties.<name>.<field>).
	RefProperty
	// RefCustomProperty is a custom property value field.
	RefCustomProperty
)

// FieldRef is a validated field reference. Column is the column the condition
// reads on the base or joined table; Index distinguishes independent neighbor
// mentions (contexts_0 vs contexts_1); Name carries the property name
// verbatim for property references.
type FieldRef struct {
	Kind   RefKind
	Column string
	Index  int
	Name   string
	Type   ValueType
}

// Expr is a node in the boolean filter expression tree. The variant set is
// closed: Comparison, AndExpr, OrExpr, NotExpr.
type Expr interface {
	exprNode()
}

// Comparison is a single `<field> <op> <literal>` condition. Path holds the
// dotted reference as written; Ref is filled in by resolution.
type Comparison struct {
	Path  []string
	Op    CompareOp
	Value Literal
	Ref   FieldRef
}

func (*Comparison) exprNode() {}

// AndExpr is a conjunction. Natural chains (`a AND b AND c`) are collected
// into one node; explicitly parenthesized groups stay nested.
type AndExpr struct {
	Operands []Expr
}

func (*AndExpr) exprNode() {}

// OrExpr is a disjunction with the same operand discipline as AndExpr.
type OrExpr struct {
	Operands []Expr
}

func (*OrExpr) exprNode() {}

// NotExpr negates its operand.
type NotExpr struct {
	Inner Expr
}

func (*NotExpr) exprNode() {}
