package eval

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"testing"

	"github.com/threatflow/engine/otm"
	"github.com/threatflow/engine/rule"
)

func sampleDocument() *otm.Document {
	return &otm.Document{
		OTMVersion: "0.1",
		Name:       "sample",
		TrustZones: []otm.TrustZone{
			{ID: "public", Name: "Public"},
			{ID: "private", Name: "Private"},
		},
		Components: []otm.Component{
			{ID: "a", Name: "A", Type: "process", TrustZone: "public"},
			{ID: "b", Name: "B", Type: "store", TrustZone: "private"},
		},
		Dataflows: []otm.Dataflow{
			{ID: "f1", Source: "a", Destination: "b", Protocol: "http"},
		},
	}
}

func insecureFlowRule() rule.Rule {
	return rule.Rule{
		ID:       "DF-TLS-001",
		Title:    "Unencrypted dataflow",
		Severity: rule.SeverityHigh,
		Select:   rule.SelectDataflows,
		Where:    "protocol == 'http'",
		Message:  "flow {id} unencrypted",
		Enabled:  true,
	}
}

func TestEvaluate_insecureFlow(t *testing.T) {
	result, err := Evaluate(sampleDocument(), []rule.Rule{insecureFlowRule()})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("Evaluate() returned %d findings, want 1", len(result.Findings))
	}

	f := result.Findings[0]
	if f.RuleID != "DF-TLS-001" {
		t.Errorf("RuleID = %q, want %q", f.RuleID, "DF-TLS-001")
	}
	if f.EntityType != "dataflow" {
		t.Errorf("EntityType = %q, want %q", f.EntityType, "dataflow")
	}
	if f.EntityID != "f1" {
		t.Errorf("EntityID = %q, want %q", f.EntityID, "f1")
	}
	if f.Message != "flow f1 unencrypted" {
		t.Errorf("Message = %q, want %q", f.Message, "flow f1 unencrypted")
	}
	if f.Evidence["protocol"] != "http" {
		t.Errorf("Evidence[protocol] = %v, want http", f.Evidence["protocol"])
	}

	want := map[rule.Severity]int{rule.SeverityHigh: 1}
	if !reflect.DeepEqual(result.Summary, want) {
		t.Errorf("Summary = %v, want %v", result.Summary, want)
	}
}

func TestEvaluate_deterministic(t *testing.T) {
	doc := sampleDocument()
	rules := []rule.Rule{
		insecureFlowRule(),
		{
			ID: "C-ALL-001", Title: "Component inventory", Severity: rule.SeverityInfo,
			Select: rule.SelectComponents, Message: "component {id}", Enabled: true,
		},
	}

	first, err := Evaluate(doc, rules)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	second, err := Evaluate(doc, rules)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated evaluation differs:\n%+v\n%+v", first, second)
	}
}

func TestEvaluate_findingOrder(t *testing.T) {
	doc := sampleDocument()
	rules := []rule.Rule{
		{
			ID: "R2", Title: "All components", Severity: rule.SeverityLow,
			Select: rule.SelectComponents, Message: "{id}", Enabled: true,
		},
		insecureFlowRule(),
	}

	result, err := Evaluate(doc, rules)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	// Rule order first, then candidate order within each rule.
	wantIDs := []string{"a", "b", "f1"}
	if len(result.Findings) != len(wantIDs) {
		t.Fatalf("got %d findings, want %d", len(result.Findings), len(wantIDs))
	}
	for i, want := range wantIDs {
		if result.Findings[i].EntityID != want {
			t.Errorf("findings[%d].EntityID = %q, want %q", i, result.Findings[i].EntityID, want)
		}
	}
}

func TestEvaluate_disabledRule(t *testing.T) {
	r := insecureFlowRule()
	r.Enabled = false
	result, err := Evaluate(sampleDocument(), []rule.Rule{r})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(result.Findings) != 0 {
		t.Errorf("disabled rule produced %d findings, want 0", len(result.Findings))
	}
	if len(result.Summary) != 0 {
		t.Errorf("Summary = %v, want empty", result.Summary)
	}
}

func TestEvaluate_missingWhereMatchesAll(t *testing.T) {
	doc := sampleDocument()
	result, err := Evaluate(doc, []rule.Rule{
		{
			ID: "C-ALL-001", Title: "Component inventory", Severity: rule.SeverityInfo,
			Select: rule.SelectComponents, Message: "component {id} present", Enabled: true,
		},
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(result.Findings) != len(doc.Components) {
		t.Errorf("got %d findings, want one per component (%d)", len(result.Findings), len(doc.Components))
	}
}

func TestEvaluate_otmScope(t *testing.T) {
	result, err := Evaluate(sampleDocument(), []rule.Rule{
		{
			ID: "OTM-001", Title: "Model reviewed", Severity: rule.SeverityInfo,
			Select: rule.SelectOTM, Message: "model {name} evaluated", Enabled: true,
		},
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(result.Findings))
	}
	f := result.Findings[0]
	if f.EntityID != "otm" {
		t.Errorf("EntityID = %q, want %q", f.EntityID, "otm")
	}
	if f.EntityType != "otm" {
		t.Errorf("EntityType = %q, want %q", f.EntityType, "otm")
	}
	if f.Message != "model sample evaluated" {
		t.Errorf("Message = %q", f.Message)
	}
}

func TestEvaluate_brokenPredicateFailsClosed(t *testing.T) {
	tests := []struct {
		name  string
		where string
	}{
		{"syntax error", "protocol == =="},
		{"unknown field", "ciphersuite == 'none'"},
		{"unknown function", "encrypted(self)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := insecureFlowRule()
			r.Where = tt.where
			result, err := Evaluate(sampleDocument(), []rule.Rule{r})
			if err != nil {
				t.Fatalf("Evaluate() error = %v, broken predicates must not fail the run", err)
			}
			if len(result.Findings) != 0 {
				t.Errorf("broken predicate produced %d findings, want 0", len(result.Findings))
			}
		})
	}
}

func TestEvaluate_crossTrustZone(t *testing.T) {
	doc := sampleDocument()
	// c references a zone absent from the document's zone set.
	doc.Components = append(doc.Components, otm.Component{
		ID: "c", Name: "C", Type: "process", TrustZone: "dmz",
	})
	// d has no zone reference at all.
	doc.Components = append(doc.Components, otm.Component{
		ID: "d", Name: "D", Type: "process",
	})

	result, err := Evaluate(doc, []rule.Rule{
		{
			ID: "C-ZONE-001", Title: "Unknown trust zone", Severity: rule.SeverityMedium,
			Select: rule.SelectComponents, Where: "cross_trust_zone(self)",
			Message: "component {id} references unknown zone {trustZone}", Enabled: true,
		},
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(result.Findings))
	}
	if result.Findings[0].EntityID != "c" {
		t.Errorf("EntityID = %q, want %q", result.Findings[0].EntityID, "c")
	}
	if result.Findings[0].Message != "component c references unknown zone dmz" {
		t.Errorf("Message = %q", result.Findings[0].Message)
	}
}

func TestEvaluate_hasTag(t *testing.T) {
	doc := sampleDocument()
	doc.Components[1].Tags = []string{"pii", "regulated"}

	result, err := Evaluate(doc, []rule.Rule{
		{
			ID: "C-PII-001", Title: "PII store", Severity: rule.SeverityHigh,
			Select: rule.SelectComponents, Where: "has_tag(self, 'pii')",
			Message: "component {id} stores PII", Enabled: true,
		},
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(result.Findings) != 1 || result.Findings[0].EntityID != "b" {
		t.Errorf("unexpected findings: %+v", result.Findings)
	}
}

func TestEvaluate_selfFieldAccess(t *testing.T) {
	result, err := Evaluate(sampleDocument(), []rule.Rule{
		{
			ID: "C-STORE-001", Title: "Data store", Severity: rule.SeverityInfo,
			Select: rule.SelectComponents, Where: "self.type == 'store'",
			Message: "component {id} is a store", Enabled: true,
		},
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(result.Findings) != 1 || result.Findings[0].EntityID != "b" {
		t.Errorf("unexpected findings: %+v", result.Findings)
	}
}

func TestEvaluate_validationErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   *otm.Document
		rules []rule.Rule
	}{
		{"nil document", nil, []rule.Rule{insecureFlowRule()}},
		{"invalid document", &otm.Document{Name: "no version"}, nil},
		{
			"invalid rule severity",
			sampleDocument(),
			[]rule.Rule{{ID: "r", Title: "t", Severity: "urgent", Select: rule.SelectOTM, Message: "m", Enabled: true}},
		},
		{
			"message placeholder outside scope",
			sampleDocument(),
			[]rule.Rule{{ID: "r", Title: "t", Severity: rule.SeverityLow, Select: rule.SelectDataflows, Message: "{trustZone}", Enabled: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Evaluate(tt.doc, tt.rules)
			if err == nil {
				t.Fatal("Evaluate() expected error, got nil")
			}
			if result != nil {
				t.Errorf("Evaluate() returned partial result %+v alongside error", result)
			}
			var evalErr *Error
			if !errors.As(err, &evalErr) || evalErr.Kind != KindValidation {
				t.Errorf("error = %v, want Kind %q", err, KindValidation)
			}
		})
	}
}

func TestEvaluate_summaryMatchesFindings(t *testing.T) {
	doc := sampleDocument()
	doc.Components[0].Tags = []string{"pii"}
	rules := []rule.Rule{
		insecureFlowRule(),
		{
			ID: "C-PII-001", Title: "PII", Severity: rule.SeverityHigh,
			Select: rule.SelectComponents, Where: "has_tag(self, 'pii')",
			Message: "{id} has PII", Enabled: true,
		},
		{
			ID: "C-ALL-001", Title: "Inventory", Severity: rule.SeverityInfo,
			Select: rule.SelectComponents, Message: "{id}", Enabled: true,
		},
	}

	result, err := Evaluate(doc, rules)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !reflect.DeepEqual(result.Summary, Summarize(result.Findings)) {
		t.Errorf("Summary = %v, want %v", result.Summary, Summarize(result.Findings))
	}
	want := map[rule.Severity]int{rule.SeverityHigh: 2, rule.SeverityInfo: 2}
	if !reflect.DeepEqual(result.Summary, want) {
		t.Errorf("Summary = %v, want %v", result.Summary, want)
	}
}

func TestEvaluate_doesNotMutateInputs(t *testing.T) {
	doc := sampleDocument()
	rules := []rule.Rule{insecureFlowRule()}
	docBefore := *doc
	ruleBefore := rules[0]

	if _, err := Evaluate(doc, rules); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !reflect.DeepEqual(*doc, docBefore) {
		t.Error("Evaluate() mutated the document")
	}
	if !reflect.DeepEqual(rules[0], ruleBefore) {
		t.Error("Evaluate() mutated the rule")
	}
}

func TestRunner_strictPredicatesStillFailClosed(t *testing.T) {
	runner := NewRunner(
		WithLogger(slog.Default()),
		WithStrictPredicates(true),
	)
	r := insecureFlowRule()
	r.Where = "not an expression ((("

	result, err := runner.Evaluate(context.Background(), sampleDocument(), []rule.Rule{r})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(result.Findings) != 0 {
		t.Errorf("strict mode emitted %d findings from a broken predicate, want 0", len(result.Findings))
	}
}
