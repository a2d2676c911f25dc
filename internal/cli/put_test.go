package cli

import (
	"testing"

	"github.com/aidanlsb/magpie/internal/filter"
)

func TestParseKindArg(t *testing.T) {
	tests := []struct {
		arg  string
		kind filter.RecordKind
		ok   bool
	}{
		{"artifact", filter.KindArtifact, true},
		{"artifacts", filter.KindArtifact, true},
		{"execution", filter.KindExecution, true},
		{"executions", filter.KindExecution, true},
		{"context", filter.KindContext, true},
		{"contexts", filter.KindContext, true},
		{"widgets", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		kind, err := parseKindArg(tt.arg)
		if tt.ok && err != nil {
			t.Errorf("parseKindArg(%q) failed: %v", tt.arg, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("parseKindArg(%q) succeeded, want error", tt.arg)
		}
		if tt.ok && kind != tt.kind {
			t.Errorf("parseKindArg(%q) = %v, want %v", tt.arg, kind, tt.kind)
		}
	}
}

func TestConvertProperties(t *testing.T) {
	props, err := convertProperties(map[string]interface{}{
		"version":  3,
		"accuracy": 0.97,
		"stage":    "prod",
		"frozen":   true,
	})
	if err != nil {
		t.Fatalf("convertProperties failed: %v", err)
	}

	if v := props["version"]; v.IntValue == nil || *v.IntValue != 3 {
		t.Errorf("version = %+v, want int 3", v)
	}
	if v := props["accuracy"]; v.DoubleValue == nil || *v.DoubleValue != 0.97 {
		t.Errorf("accuracy = %+v, want double 0.97", v)
	}
	if v := props["stage"]; v.StringValue == nil || *v.StringValue != "prod" {
		t.Errorf("stage = %+v, want string prod", v)
	}
	if v := props["frozen"]; v.IntValue == nil || *v.IntValue != 1 {
		t.Errorf("frozen = %+v, want int 1", v)
	}
}

func TestConvertPropertiesRejectsNested(t *testing.T) {
	_, err := convertProperties(map[string]interface{}{
		"nested": map[string]interface{}{"a": 1},
	})
	if err == nil {
		t.Fatal("expected error for nested property value")
	}
}
