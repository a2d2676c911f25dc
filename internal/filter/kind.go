package filter

// RecordKind selects which attribute set and neighbor kinds are legal in a
// filter, and which base table the compiled query runs against.
type RecordKind int

const (
	KindArtifact RecordKind = iota
	KindExecution
	KindContext
)

func (k RecordKind) String() string {
	switch k {
	case KindExecution:
		return "execution"
	case KindContext:
		return "context"
	default:
		return "artifact"
	}
}

// BaseTable returns the primary table for the record kind. The compiled FROM
// clause always starts with this table aliased as BaseTableAlias.
func (k RecordKind) BaseTable() string {
	switch k {
	case KindExecution:
		return "Execution"
	case KindContext:
		return "Context"
	default:
		return "Artifact"
	}
}

// PropertyTable returns the property table holding both typed and custom
// properties for the record kind.
func (k RecordKind) PropertyTable() string {
	switch k {
	case KindExecution:
		return "ExecutionProperty"
	case KindContext:
		return "ContextProperty"
	default:
		return "ArtifactProperty"
	}
}

// RecordColumn returns the foreign-key column that points back at the base
// record from its property table and association edges.
func (k RecordKind) RecordColumn() string {
	switch k {
	case KindExecution:
		return "execution_id"
	case KindContext:
		return "context_id"
	default:
		return "artifact_id"
	}
}

// contextEdgeTable returns the association table linking the record kind to
// its contexts. Only meaningful for artifacts and executions.
func (k RecordKind) contextEdgeTable() string {
	if k == KindExecution {
		return "Association"
	}
	return "Attribution"
}

// baseAttributes lists the legal single-segment attribute references per
// record kind, with the value type each column compares as.
var baseAttributes = map[string]ValueType{
	"id":                           ValueInt,
	"type_id":                      ValueInt,
	"name":                         ValueString,
	"create_time_since_epoch":      ValueInt,
	"last_update_time_since_epoch": ValueInt,
}

// neighborAttributes lists the columns exposed by a context-neighbor join
// (contexts_N, parent_contexts_N, child_contexts_N). The `type` column is the
// neighbor's type name, surfaced by the join subselect.
var neighborAttributes = map[string]ValueType{
	"id":                           ValueInt,
	"type_id":                      ValueInt,
	"type":                         ValueString,
	"name":                         ValueString,
	"create_time_since_epoch":      ValueInt,
	"last_update_time_since_epoch": ValueInt,
}

// valueColumns maps a property path's value-field suffix to its type.
var valueColumns = map[string]ValueType{
	"int_value":    ValueInt,
	"double_value": ValueDouble,
	"string_value": ValueString,
}

// attributeType resolves a single-segment attribute for the record kind.
// `uri` is legal only on artifacts.
func (k RecordKind) attributeType(name string) (ValueType, bool) {
	if name == "uri" {
		if k == KindArtifact {
			return ValueString, true
		}
		return 0, false
	}
	t, ok := baseAttributes[name]
	return t, ok
}
