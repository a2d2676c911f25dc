package filter

import (
	"fmt"
	"strings"
	"testing"
)

// mention is one expected join, in allocation order. The alias is implied by
// position: table_1 for the first mention, table_2 for the second, and so on.
type mention struct {
	kind RefKind
	name string // property name, for property mentions
}

func typeMention() mention            { return mention{kind: RefTypeAttribute} }
func contextMention() mention         { return mention{kind: RefContext} }
func parentMention() mention          { return mention{kind: RefParentContext} }
func childMention() mention           { return mention{kind: RefChildContext} }
func propMention(name string) mention { return mention{kind: RefProperty, name: name} }
func customMention(name string) mention {
	return mention{kind: RefCustomProperty, name: name}
}

// expectedFrom builds the expected FROM clause for a record kind from the
// mentions in allocation order, using the builder's own fragment shapes.
func expectedFrom(kind RecordKind, mentions []mention) string {
	b := &Builder{kind: kind}
	from := kind.BaseTable() + " AS " + BaseTableAlias
	for i, m := range mentions {
		alias := fmt.Sprintf("table_%d", i+1)
		from += b.joinFragment(FieldRef{Kind: m.kind, Name: m.name}, alias)
	}
	return from
}

// kindSet selects which record kinds a test case is legal for.
type kindSet struct {
	artifact  bool
	execution bool
	context   bool
}

var (
	allKinds       = kindSet{true, true, true}
	artifactOnly   = kindSet{artifact: true}
	excludeContext = kindSet{artifact: true, execution: true}
	contextOnly    = kindSet{context: true}
)

func (s kindSet) kinds() []RecordKind {
	var out []RecordKind
	if s.artifact {
		out = append(out, KindArtifact)
	}
	if s.execution {
		out = append(out, KindExecution)
	}
	if s.context {
		out = append(out, KindContext)
	}
	return out
}

func TestCompileQueryTuples(t *testing.T) {
	tests := []struct {
		filter   string
		mentions []mention
		where    string
		on       kindSet
	}{
		// basic attribute conditions
		{"type_id = 1", nil, "(table_0.type_id) = 1", allKinds},
		{"NOT(type_id = 1)", nil, "NOT ((table_0.type_id) = 1)", allKinds},
		{"type = 'foo'", []mention{typeMention()}, `(table_1.type) = ("foo")`, allKinds},
		// artifact-only attributes
		{"uri like 'abc'", nil, `(table_0.uri) LIKE ("abc")`, artifactOnly},
		// context neighbors (artifact/execution only)
		{"contexts_0.id = 1", []mention{contextMention()}, "(table_1.id) = 1", excludeContext},
		// multiple conditions on the same context reuse one join
		{"contexts_0.id = 1 AND contexts_0.name LIKE 'foo%'",
			[]mention{contextMention()},
			`((table_1.id) = 1) AND ((table_1.name) LIKE ("foo%"))`, excludeContext},
		{"contexts_0.id = 1 AND contexts_0.create_time_since_epoch > 1",
			[]mention{contextMention()},
			"((table_1.id) = 1) AND ((table_1.create_time_since_epoch) > 1)", excludeContext},
		// distinct context mentions get distinct joins
		{"contexts_0.id = 1 AND contexts_1.id != 2",
			[]mention{contextMention(), contextMention()},
			"((table_1.id) = 1) AND ((table_2.id) != 2)", excludeContext},
		{"contexts_0.id = 1 AND contexts_0.last_update_time_since_epoch < 1 AND contexts_1.id != 2",
			[]mention{contextMention(), contextMention()},
			"((table_1.id) = 1) AND ((table_1.last_update_time_since_epoch) < 1) AND ((table_2.id) != 2)",
			excludeContext},
		// attributes and contexts together
		{"type_id = 1 AND contexts_0.id = 1",
			[]mention{contextMention()},
			"((table_0.type_id) = 1) AND ((table_1.id) = 1)", excludeContext},
		{"(type_id = 1 OR type != 'foo') AND contexts_0.id = 1",
			[]mention{typeMention(), contextMention()},
			`(((table_0.type_id) = 1) OR ((table_1.type) != ("foo"))) AND ((table_2.id) = 1)`,
			excludeContext},
		// properties
		{"properties.p0.int_value = 1",
			[]mention{propMention("p0")}, "(table_1.int_value) = 1", allKinds},
		// backtick-quoted property names
		{"properties.`0:b`.int_value = 1",
			[]mention{propMention("0:b")}, "(table_1.int_value) = 1", allKinds},
		{"custom_properties.`0 b`.string_value != '1'",
			[]mention{customMention("0 b")}, `(table_1.string_value) != ("1")`, allKinds},
		{"properties.`0:b`.int_value = 1 AND properties.foo.double_value > 1 AND custom_properties.`0 b`.string_value != '1'",
			[]mention{propMention("0:b"), propMention("foo"), customMention("0 b")},
			`((table_1.int_value) = 1) AND ((table_2.double_value) > (1.0)) AND ((table_3.string_value) != ("1"))`,
			allKinds},
		// multiple conditions on the same property reuse one join
		{"properties.p0.int_value = 1 OR properties.p0.string_value = '1' ",
			[]mention{propMention("p0")},
			`((table_1.int_value) = 1) OR ((table_1.string_value) = ("1"))`, allKinds},
		// a property and a custom property with the same name join separately
		{"properties.p0.int_value > 1 OR custom_properties.p0.int_value > 1",
			[]mention{propMention("p0"), customMention("p0")},
			"((table_1.int_value) > 1) OR ((table_2.int_value) > 1)", allKinds},
		{"(properties.p0.int_value > 1 OR custom_properties.p0.int_value > 1) AND properties.p1.double_value > 0.95 AND custom_properties.p2.string_value = 'name'",
			[]mention{propMention("p0"), customMention("p0"), propMention("p1"), customMention("p2")},
			`(((table_1.int_value) > 1) OR ((table_2.int_value) > 1)) AND ((table_3.double_value) > (0.95)) AND ((table_4.string_value) = ("name"))`,
			allKinds},
		// attributes, contexts, properties, custom properties together
		{"type = 'dataset' AND (contexts_0.name = 'my_run' AND contexts_0.type = 'exp') AND (properties.p0.int_value > 1 OR custom_properties.p1.double_value > 0.9)",
			[]mention{typeMention(), contextMention(), propMention("p0"), customMention("p1")},
			`((table_1.type) = ("dataset")) AND (((table_2.name) = ("my_run")) AND ((table_2.type) = ("exp"))) AND (((table_3.int_value) > 1) OR ((table_4.double_value) > (0.9)))`,
			excludeContext},
		// parent contexts (context filters only)
		{"parent_contexts_0.id = 1", []mention{parentMention()}, "(table_1.id) = 1", contextOnly},
		{"parent_contexts_0.id = 1 AND parent_contexts_0.name LIKE 'foo%'",
			[]mention{parentMention()},
			`((table_1.id) = 1) AND ((table_1.name) LIKE ("foo%"))`, contextOnly},
		{"parent_contexts_0.id = 1 AND parent_contexts_1.id != 2",
			[]mention{parentMention(), parentMention()},
			"((table_1.id) = 1) AND ((table_2.id) != 2)", contextOnly},
		{"type_id = 1 AND parent_contexts_0.id = 1",
			[]mention{parentMention()},
			"((table_0.type_id) = 1) AND ((table_1.id) = 1)", contextOnly},
		{"(type_id = 1 OR type != 'foo') AND parent_contexts_0.id = 1",
			[]mention{typeMention(), parentMention()},
			`(((table_0.type_id) = 1) OR ((table_1.type) != ("foo"))) AND ((table_2.id) = 1)`,
			contextOnly},
		{"type = 'pipeline_run' AND (properties.p0.int_value > 1 OR custom_properties.p1.double_value > 0.9) AND (parent_contexts_0.name = 'pipeline_context' AND parent_contexts_0.type = 'pipeline')",
			[]mention{typeMention(), propMention("p0"), customMention("p1"), parentMention()},
			`((table_1.type) = ("pipeline_run")) AND (((table_2.int_value) > 1) OR ((table_3.double_value) > (0.9))) AND (((table_4.name) = ("pipeline_context")) AND ((table_4.type) = ("pipeline")))`,
			contextOnly},
		// child contexts (context filters only)
		{"child_contexts_0.id = 1", []mention{childMention()}, "(table_1.id) = 1", contextOnly},
		{"child_contexts_0.id = 1 AND child_contexts_0.name LIKE 'foo%'",
			[]mention{childMention()},
			`((table_1.id) = 1) AND ((table_1.name) LIKE ("foo%"))`, contextOnly},
		{"child_contexts_0.id = 1 AND child_contexts_1.id != 2",
			[]mention{childMention(), childMention()},
			"((table_1.id) = 1) AND ((table_2.id) != 2)", contextOnly},
		{"type_id = 1 AND child_contexts_0.id = 1",
			[]mention{childMention()},
			"((table_0.type_id) = 1) AND ((table_1.id) = 1)", contextOnly},
		{"(type_id = 1 OR type != 'foo') AND child_contexts_0.id = 1",
			[]mention{typeMention(), childMention()},
			`(((table_0.type_id) = 1) OR ((table_1.type) != ("foo"))) AND ((table_2.id) = 1)`,
			contextOnly},
		{"type = 'pipeline' AND (properties.p0.int_value > 1 OR custom_properties.p1.double_value > 0.9) AND (child_contexts_0.name = 'pipeline_run' AND child_contexts_0.type = 'runs')",
			[]mention{typeMention(), propMention("p0"), customMention("p1"), childMention()},
			`((table_1.type) = ("pipeline")) AND (((table_2.int_value) > 1) OR ((table_3.double_value) > (0.9))) AND (((table_4.name) = ("pipeline_run")) AND ((table_4.type) = ("runs")))`,
			contextOnly},
		// everything at once
		{"type = 'pipeline' AND (properties.p0.int_value > 1 OR custom_properties.p1.double_value > 0.9) AND (parent_contexts_0.name = 'parent_context1' AND parent_contexts_0.type = 'parent_context_type') AND (child_contexts_0.name = 'pipeline_run' AND child_contexts_0.type = 'runs')",
			[]mention{typeMention(), propMention("p0"), customMention("p1"), parentMention(), childMention()},
			`((table_1.type) = ("pipeline")) AND (((table_2.int_value) > 1) OR ((table_3.double_value) > (0.9))) AND (((table_4.name) = ("parent_context1")) AND ((table_4.type) = ("parent_context_type"))) AND (((table_5.name) = ("pipeline_run")) AND ((table_5.type) = ("runs")))`,
			contextOnly},
	}

	for _, tt := range tests {
		for _, kind := range tt.on.kinds() {
			t.Run(kind.String()+"/"+tt.filter, func(t *testing.T) {
				q, err := Compile(kind, tt.filter)
				if err != nil {
					t.Fatalf("Compile(%q) failed: %v", tt.filter, err)
				}
				if want := expectedFrom(kind, tt.mentions); q.From != want {
					t.Errorf("FROM mismatch\n got: %s\nwant: %s", q.From, want)
				}
				if q.Where != tt.where {
					t.Errorf("WHERE mismatch\n got: %s\nwant: %s", q.Where, tt.where)
				}
			})
		}
	}
}

func TestBaseTableAliasContract(t *testing.T) {
	// Generated SQL and external callers assume this exact literal.
	if BaseTableAlias != "table_0" {
		t.Fatalf("BaseTableAlias = %q, want table_0", BaseTableAlias)
	}
}

func TestCompileDeterminism(t *testing.T) {
	const f = "type = 'm' AND (properties.a.int_value = 1 OR custom_properties.a.int_value = 2) AND contexts_1.id = 3 AND contexts_0.id = 4"

	first, err := Compile(KindArtifact, f)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		q, err := Compile(KindArtifact, f)
		if err != nil {
			t.Fatalf("Compile failed on run %d: %v", i, err)
		}
		if q.From != first.From || q.Where != first.Where {
			t.Fatalf("run %d differs from first compilation\nfrom: %s\nwant: %s\nwhere: %s\nwant: %s",
				i, q.From, first.From, q.Where, first.Where)
		}
	}
}

func TestJoinDeduplication(t *testing.T) {
	// Five mentions of two distinct targets produce exactly two joins.
	q, err := Compile(KindArtifact,
		"contexts_0.id = 1 AND contexts_0.name = 'a' AND contexts_0.type = 'b' AND contexts_1.id = 2 AND contexts_1.name = 'c'")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if got := strings.Count(q.From, " JOIN "); got != 2 {
		t.Errorf("expected 2 join fragments, got %d in: %s", got, q.From)
	}
	if strings.Contains(q.Where, "table_3") {
		t.Errorf("WHERE references an alias beyond the distinct target count: %s", q.Where)
	}
}

func TestCompileDoubleCoercion(t *testing.T) {
	tests := []struct {
		filter string
		want   string
	}{
		{"properties.p1.double_value > 1", "(table_1.double_value) > (1.0)"},
		{"properties.p1.double_value > 0.95", "(table_1.double_value) > (0.95)"},
		{"properties.p1.double_value > -2", "(table_1.double_value) > (-2.0)"},
		{"properties.p1.double_value < -0.5", "(table_1.double_value) < (-0.5)"},
	}
	for _, tt := range tests {
		q, err := Compile(KindExecution, tt.filter)
		if err != nil {
			t.Fatalf("Compile(%q) failed: %v", tt.filter, err)
		}
		if q.Where != tt.want {
			t.Errorf("Compile(%q) WHERE = %s, want %s", tt.filter, q.Where, tt.want)
		}
	}
}

func TestQuoteString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"foo", `"foo"`},
		{"", `""`},
		{`say "hi"`, `"say \"hi\""`},
		{`back\slash`, `"back\\slash"`},
	}
	for _, tt := range tests {
		if got := quoteString(tt.in); got != tt.want {
			t.Errorf("quoteString(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestStringLiteralQuoteNormalization(t *testing.T) {
	// Single- and double-quoted source literals render identically.
	single, err := Compile(KindArtifact, "name = 'model'")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	double, err := Compile(KindArtifact, `name = "model"`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if single.Where != double.Where {
		t.Errorf("quote styles diverge: %s vs %s", single.Where, double.Where)
	}
	if want := `(table_0.name) = ("model")`; single.Where != want {
		t.Errorf("WHERE = %s, want %s", single.Where, want)
	}
}
