package eval

import (
	"testing"

	"github.com/threatflow/engine/otm"
	"github.com/threatflow/engine/rule"
)

func testIndex() *docIndex {
	return newDocIndex(&otm.Document{
		OTMVersion: "0.1",
		Name:       "s",
		TrustZones: []otm.TrustZone{{ID: "public", Name: "Public"}},
		Components: []otm.Component{{ID: "a", Name: "A", Type: "process", TrustZone: "public"}},
	})
}

func TestPredicate_Match(t *testing.T) {
	flow := otm.Dataflow{ID: "f1", Source: "a", Destination: "b", Protocol: "http"}

	tests := []struct {
		name  string
		where string
		want  bool
	}{
		{"empty where matches", "", true},
		{"equality match", "protocol == 'http'", true},
		{"equality mismatch", "protocol == 'https'", false},
		{"inequality", "protocol != 'https'", true},
		{"boolean combinators", "protocol == 'http' && source == 'a'", true},
		{"negation", "!(protocol == 'http')", false},
		{"or", "protocol == 'grpc' || destination == 'b'", true},
		{"self access", "self.protocol == 'http'", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := compilePredicate(tt.where, rule.SelectDataflows, testIndex())
			if err != nil {
				t.Fatalf("compilePredicate() error = %v", err)
			}
			got, err := pred.Match(flow.Fields())
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.where, got, tt.want)
			}
		})
	}
}

func TestPredicate_nilOptionalField(t *testing.T) {
	flow := otm.Dataflow{ID: "f1", Source: "a", Destination: "b"}
	pred, err := compilePredicate("protocol == 'http'", rule.SelectDataflows, testIndex())
	if err != nil {
		t.Fatalf("compilePredicate() error = %v", err)
	}
	got, err := pred.Match(flow.Fields())
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if got {
		t.Error("nil protocol compared equal to 'http'")
	}
}

func TestCompilePredicate_errors(t *testing.T) {
	tests := []struct {
		name  string
		where string
	}{
		{"syntax error", "protocol == =="},
		{"undeclared field", "ciphersuite == 'none'"},
		{"undeclared function", "encrypted(self)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := compilePredicate(tt.where, rule.SelectDataflows, testIndex()); err == nil {
				t.Errorf("compilePredicate(%q) expected error", tt.where)
			}
		})
	}
}

func TestCrossTrustZone(t *testing.T) {
	idx := testIndex()
	tests := []struct {
		name   string
		entity any
		want   bool
	}{
		{"known zone", map[string]any{"trustZone": "public"}, false},
		{"unknown zone", map[string]any{"trustZone": "dmz"}, true},
		{"no zone reference", map[string]any{"trustZone": nil}, false},
		{"empty zone reference", map[string]any{"trustZone": ""}, false},
		{"dataflow shape", map[string]any{"id": "f1", "protocol": "http"}, false},
		{"not a map", "bogus", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := crossTrustZone(tt.entity, idx); got != tt.want {
				t.Errorf("crossTrustZone() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasTag(t *testing.T) {
	tests := []struct {
		name   string
		entity any
		tag    any
		want   bool
	}{
		{"member", map[string]any{"tags": []string{"pii", "internal"}}, "pii", true},
		{"not a member", map[string]any{"tags": []string{"internal"}}, "pii", false},
		{"empty tags", map[string]any{"tags": []string{}}, "pii", false},
		{"missing tags field", map[string]any{}, "pii", false},
		{"any-typed tags", map[string]any{"tags": []any{"pii"}}, "pii", true},
		{"non-string tag", map[string]any{"tags": []string{"pii"}}, 7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasTag(tt.entity, tt.tag); got != tt.want {
				t.Errorf("hasTag() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPredicate_truthinessCoercion(t *testing.T) {
	comp := otm.Component{ID: "a", Name: "A", Type: "process", TrustZone: "public", Tags: []string{"pii"}}

	tests := []struct {
		name  string
		where string
		want  bool
	}{
		{"non-empty string is true", "name", true},
		{"non-empty list is true", "tags", true},
		{"whole entity is true", "self", true},
		{"conditional yielding string", "trustZone == 'public' ? 'yes' : ''", true},
		{"empty string is false", "id == 'other' ? 'yes' : ''", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := compilePredicate(tt.where, rule.SelectComponents, testIndex())
			if err != nil {
				t.Fatalf("compilePredicate() error = %v", err)
			}
			got, err := pred.Match(comp.Fields())
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.where, got, tt.want)
			}
		})
	}
}
