package filter

import (
	"fmt"
	"strings"
)

// BaseTableAlias is the alias of the base record table in every compiled
// query. External callers embed the compiled clauses assuming this exact
// value.
const BaseTableAlias = "table_0"

// Query is the compiled form of a filter: a FROM clause holding the base
// table and every join needed to reach the referenced neighbors, and a WHERE
// clause holding the predicate rewritten against the join aliases.
type Query struct {
	From  string
	Where string
}

// Compile parses, resolves, and builds a filter for the given record kind.
func Compile(kind RecordKind, input string) (*Query, error) {
	expr, err := Resolve(kind, input)
	if err != nil {
		return nil, err
	}
	return Build(kind, expr), nil
}

// joinTarget is the deduplication key for join aliases: two references to the
// same neighbor index or property name share one join.
type joinTarget struct {
	kind  RefKind
	index int
	name  string
}

// Builder compiles one resolved expression tree into FROM/WHERE text. It owns
// the alias table for one compilation; aliases are assigned from table_1
// upward in order of first mention during the single depth-first traversal.
// A Builder is single-use and must not be shared across compilations.
type Builder struct {
	kind    RecordKind
	aliases map[joinTarget]string
	next    int
	from    strings.Builder
}

// Build compiles a resolved expression for the given record kind. The input
// must have passed Resolve for the same kind; behavior on an unresolved or
// invalid tree is undefined.
func Build(kind RecordKind, expr Expr) *Query {
	b := &Builder{
		kind:    kind,
		aliases: make(map[joinTarget]string),
		next:    1,
	}
	b.from.WriteString(kind.BaseTable() + " AS " + BaseTableAlias)
	where := b.renderExpr(expr)
	return &Query{From: b.from.String(), Where: where}
}

func (b *Builder) renderExpr(e Expr) string {
	switch node := e.(type) {
	case *Comparison:
		return b.renderComparison(node)
	case *AndExpr:
		return b.renderOperands(node.Operands, " AND ")
	case *OrExpr:
		return b.renderOperands(node.Operands, " OR ")
	case *NotExpr:
		return "NOT (" + b.renderExpr(node.Inner) + ")"
	default:
		return ""
	}
}

// renderOperands wraps every operand in parentheses regardless of necessity,
// so the emitted SQL's precedence can never diverge from the tree structure.
func (b *Builder) renderOperands(operands []Expr, sep string) string {
	parts := make([]string, len(operands))
	for i, op := range operands {
		parts[i] = "(" + b.renderExpr(op) + ")"
	}
	return strings.Join(parts, sep)
}

func (b *Builder) renderComparison(c *Comparison) string {
	alias := b.aliasFor(c.Ref)
	return fmt.Sprintf("(%s.%s) %s %s", alias, c.Ref.Column, c.Op, renderLiteral(c.Ref.Type, c.Value))
}

// aliasFor returns the table alias for a reference, allocating the alias and
// appending its join fragment on first mention.
func (b *Builder) aliasFor(ref FieldRef) string {
	if ref.Kind == RefAttribute {
		return BaseTableAlias
	}

	target := joinTarget{kind: ref.Kind, index: ref.Index, name: ref.Name}
	if alias, ok := b.aliases[target]; ok {
		return alias
	}

	alias := fmt.Sprintf("table_%d", b.next)
	b.next++
	b.aliases[target] = alias
	b.from.WriteString(b.joinFragment(ref, alias))
	return alias
}

// joinFragment renders one self-contained JOIN for a neighbor reference.
// Context-shaped neighbors join through a subselect that exposes the
// neighbor's attributes plus its type name as `type`.
func (b *Builder) joinFragment(ref FieldRef, alias string) string {
	switch ref.Kind {
	case RefTypeAttribute:
		return fmt.Sprintf(
			" JOIN (SELECT id, name AS type FROM Type) AS %s ON %s.type_id = %s.id",
			alias, BaseTableAlias, alias)

	case RefContext:
		edge := b.kind.contextEdgeTable()
		fk := b.kind.RecordColumn()
		return fmt.Sprintf(
			" JOIN (SELECT %[1]s.%[2]s, %[3]s FROM %[1]s JOIN Context ON %[1]s.context_id = Context.id JOIN Type ON Context.type_id = Type.id) AS %[4]s ON %[5]s.id = %[4]s.%[2]s",
			edge, fk, contextColumns, alias, BaseTableAlias)

	case RefParentContext:
		// Neighbor is the parent; the edge keeps the base context's id.
		return fmt.Sprintf(
			" JOIN (SELECT ParentContext.context_id, %[1]s FROM ParentContext JOIN Context ON ParentContext.parent_context_id = Context.id JOIN Type ON Context.type_id = Type.id) AS %[2]s ON %[3]s.id = %[2]s.context_id",
			contextColumns, alias, BaseTableAlias)

	case RefChildContext:
		// Neighbor is the child; the edge keeps the base context's id in
		// parent_context_id.
		return fmt.Sprintf(
			" JOIN (SELECT ParentContext.parent_context_id, %[1]s FROM ParentContext JOIN Context ON ParentContext.context_id = Context.id JOIN Type ON Context.type_id = Type.id) AS %[2]s ON %[3]s.id = %[2]s.parent_context_id",
			contextColumns, alias, BaseTableAlias)

	case RefProperty, RefCustomProperty:
		isCustom := 0
		if ref.Kind == RefCustomProperty {
			isCustom = 1
		}
		return fmt.Sprintf(
			" JOIN %[1]s AS %[2]s ON %[3]s.id = %[2]s.%[4]s AND %[2]s.name = %[5]s AND %[2]s.is_custom_property = %[6]d",
			b.kind.PropertyTable(), alias, BaseTableAlias, b.kind.RecordColumn(), quoteString(ref.Name), isCustom)

	default:
		return ""
	}
}

// contextColumns is the column list a context-neighbor subselect exposes; the
// neighbor attribute set in the resolver must stay in sync with it.
const contextColumns = "Context.id, Context.type_id, Type.name AS type, Context.name, Context.create_time_since_epoch, Context.last_update_time_since_epoch"

// renderLiteral renders a literal with the syntax of its target value type.
// Integer targets render bare digits; double targets render parenthesized
// with a fractional part appended to whole-number literals; string targets
// render parenthesized and double-quoted regardless of the source quoting.
func renderLiteral(target ValueType, lit Literal) string {
	switch target {
	case ValueDouble:
		if lit.Type == ValueInt {
			return "(" + lit.Text + ".0)"
		}
		return "(" + lit.Text + ")"
	case ValueString:
		return "(" + quoteString(lit.Text) + ")"
	default:
		return lit.Text
	}
}

// quoteString renders a double-quoted SQL string with internal backslashes
// and double quotes escaped.
func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '"':
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	sb.WriteByte('"')
	return sb.String()
}
