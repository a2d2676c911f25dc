package store_test

import (
	"errors"
	"testing"

	"github.com/aidanlsb/magpie/internal/filter"
	"github.com/aidanlsb/magpie/internal/store"
	"github.com/aidanlsb/magpie/internal/testutil"
)

// lineage seeds a small ML lineage graph:
//
//	artifacts  m1 (Model, prod, accuracy 0.97), m2 (Model, dev, accuracy 0.85),
//	           d1 (Dataset)
//	execution  x1 (Trainer, owner ada), x2 (Trainer)
//	contexts   exp1 (Experiment, child of pipeline), pipeline (Pipeline)
//	edges      exp1 <- m1, d1 (attribution); exp1 <- x1 (association)
type lineage struct {
	m1, m2, d1 int64
	x1, x2     int64
	exp1, pipe int64
}

func seedLineage(t *testing.T, ts *testutil.TestStore) lineage {
	t.Helper()

	modelType := ts.MustPutType("Model", filter.KindArtifact)
	datasetType := ts.MustPutType("Dataset", filter.KindArtifact)
	trainerType := ts.MustPutType("Trainer", filter.KindExecution)
	expType := ts.MustPutType("Experiment", filter.KindContext)
	pipeType := ts.MustPutType("Pipeline", filter.KindContext)

	var g lineage
	g.m1 = ts.MustPutArtifact(&store.Artifact{
		TypeID: modelType,
		URI:    "gs://bucket/model1",
		Name:   "model-a",
		Properties: map[string]store.PropertyValue{
			"accuracy": store.DoubleProperty(0.97),
			"version":  store.IntProperty(1),
		},
		CustomProperties: map[string]store.PropertyValue{
			"stage": store.StringProperty("prod"),
		},
	})
	g.m2 = ts.MustPutArtifact(&store.Artifact{
		TypeID: modelType,
		URI:    "s3://bucket/model2",
		Name:   "model-b",
		Properties: map[string]store.PropertyValue{
			"accuracy": store.DoubleProperty(0.85),
			"version":  store.IntProperty(2),
		},
		CustomProperties: map[string]store.PropertyValue{
			"stage": store.StringProperty("dev"),
		},
	})
	g.d1 = ts.MustPutArtifact(&store.Artifact{
		TypeID: datasetType,
		URI:    "gs://bucket/train-data",
		Name:   "train-data",
	})

	g.x1 = ts.MustPutExecution(&store.Execution{
		TypeID: trainerType,
		Name:   "run-1",
		CustomProperties: map[string]store.PropertyValue{
			"owner": store.StringProperty("ada"),
		},
	})
	g.x2 = ts.MustPutExecution(&store.Execution{TypeID: trainerType, Name: "run-2"})

	g.exp1 = ts.MustPutContext(&store.Context{TypeID: expType, Name: "exp1"})
	g.pipe = ts.MustPutContext(&store.Context{TypeID: pipeType, Name: "pipeline"})

	for _, artifactID := range []int64{g.m1, g.d1} {
		if err := ts.Store.AddAttribution(g.exp1, artifactID); err != nil {
			t.Fatalf("AddAttribution failed: %v", err)
		}
	}
	if err := ts.Store.AddAssociation(g.exp1, g.x1); err != nil {
		t.Fatalf("AddAssociation failed: %v", err)
	}
	if err := ts.Store.AddParentContext(g.exp1, g.pipe); err != nil {
		t.Fatalf("AddParentContext failed: %v", err)
	}

	return g
}

func artifactIDs(artifacts []*store.Artifact) []int64 {
	ids := make([]int64, len(artifacts))
	for i, a := range artifacts {
		ids[i] = a.ID
	}
	return ids
}

func sameIDs(got, want []int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestListArtifactsWithFilters(t *testing.T) {
	ts := testutil.NewTestStore(t)
	g := seedLineage(t, ts)

	tests := []struct {
		name   string
		filter string
		want   []int64
	}{
		{"empty filter lists all", "", []int64{g.m1, g.m2, g.d1}},
		{"by type name", "type = 'Model'", []int64{g.m1, g.m2}},
		{"by uri prefix", "uri LIKE 'gs://%'", []int64{g.m1, g.d1}},
		{"by id", "id = 1", []int64{g.m1}},
		{"double property threshold", "properties.accuracy.double_value > 0.9", []int64{g.m1}},
		{"int literal against double property", "properties.accuracy.double_value > 0", []int64{g.m1, g.m2}},
		{"int property", "properties.version.int_value = 2", []int64{g.m2}},
		{"custom string property", "custom_properties.stage.string_value = 'prod'", []int64{g.m1}},
		{"context by name", "contexts_0.name = 'exp1'", []int64{g.m1, g.d1}},
		{"context and property", "contexts_0.type = 'Experiment' AND properties.accuracy.double_value > 0.9", []int64{g.m1}},
		{"same context twice", "contexts_0.name = 'exp1' AND contexts_0.type = 'Experiment'", []int64{g.m1, g.d1}},
		{"or across predicates", "type = 'Model' OR name = 'train-data'", []int64{g.m1, g.m2, g.d1}},
		{"negation", "NOT (type = 'Model')", []int64{g.d1}},
		{"no matches", "properties.accuracy.double_value > 2.0", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifacts, err := ts.Store.ListArtifacts(tt.filter)
			if err != nil {
				t.Fatalf("ListArtifacts(%q) failed: %v", tt.filter, err)
			}
			if got := artifactIDs(artifacts); !sameIDs(got, tt.want) {
				t.Errorf("ListArtifacts(%q) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestListArtifactsHydratesProperties(t *testing.T) {
	ts := testutil.NewTestStore(t)
	seedLineage(t, ts)

	artifacts, err := ts.Store.ListArtifacts("custom_properties.stage.string_value = 'prod'")
	if err != nil {
		t.Fatalf("ListArtifacts failed: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(artifacts))
	}

	a := artifacts[0]
	if a.Type != "Model" {
		t.Errorf("type = %q, want Model", a.Type)
	}
	if v := a.Properties["accuracy"]; v.DoubleValue == nil || *v.DoubleValue != 0.97 {
		t.Errorf("accuracy = %+v", v)
	}
	if v := a.CustomProperties["stage"]; v.StringValue == nil || *v.StringValue != "prod" {
		t.Errorf("stage = %+v", v)
	}
}

func TestListExecutionsWithFilters(t *testing.T) {
	ts := testutil.NewTestStore(t)
	g := seedLineage(t, ts)

	tests := []struct {
		name   string
		filter string
		want   []int64
	}{
		{"empty filter lists all", "", []int64{g.x1, g.x2}},
		{"by name", "name = 'run-2'", []int64{g.x2}},
		{"by context", "contexts_0.name = 'exp1'", []int64{g.x1}},
		{"by context type", "contexts_0.type = 'Experiment'", []int64{g.x1}},
		{"by custom property", "custom_properties.owner.string_value = 'ada'", []int64{g.x1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executions, err := ts.Store.ListExecutions(tt.filter)
			if err != nil {
				t.Fatalf("ListExecutions(%q) failed: %v", tt.filter, err)
			}
			ids := make([]int64, len(executions))
			for i, e := range executions {
				ids[i] = e.ID
			}
			if !sameIDs(ids, tt.want) {
				t.Errorf("ListExecutions(%q) = %v, want %v", tt.filter, ids, tt.want)
			}
		})
	}
}

func TestListContextsWithFilters(t *testing.T) {
	ts := testutil.NewTestStore(t)
	g := seedLineage(t, ts)

	tests := []struct {
		name   string
		filter string
		want   []int64
	}{
		{"empty filter lists all", "", []int64{g.exp1, g.pipe}},
		{"by type", "type = 'Experiment'", []int64{g.exp1}},
		{"by parent name", "parent_contexts_0.name = 'pipeline'", []int64{g.exp1}},
		{"by parent type", "parent_contexts_0.type = 'Pipeline'", []int64{g.exp1}},
		{"by child name", "child_contexts_0.name = 'exp1'", []int64{g.pipe}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contexts, err := ts.Store.ListContexts(tt.filter)
			if err != nil {
				t.Fatalf("ListContexts(%q) failed: %v", tt.filter, err)
			}
			ids := make([]int64, len(contexts))
			for i, c := range contexts {
				ids[i] = c.ID
			}
			if !sameIDs(ids, tt.want) {
				t.Errorf("ListContexts(%q) = %v, want %v", tt.filter, ids, tt.want)
			}
		})
	}
}

func TestListPropagatesFilterErrors(t *testing.T) {
	ts := testutil.NewTestStore(t)
	seedLineage(t, ts)

	_, err := ts.Store.ListArtifacts("uri = ")
	var perr *filter.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("expected *filter.ParseError, got %v", err)
	}

	_, err = ts.Store.ListExecutions("uri = 'x'")
	var serr *filter.SemanticError
	if !errors.As(err, &serr) {
		t.Errorf("expected *filter.SemanticError, got %v", err)
	}
}
