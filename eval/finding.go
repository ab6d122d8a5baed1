package eval

import "github.com/threatflow/engine/rule"

// Finding is one emitted match of a rule against a candidate entity.
type Finding struct {
	// RuleID identifies the rule that produced the finding.
	RuleID string `json:"ruleId"`

	// Title is the rule title at the time of evaluation.
	Title string `json:"title"`

	// Severity is the rule severity. External findings may carry
	// severities outside the engine's closed enum; merge keeps them
	// as-is.
	Severity rule.Severity `json:"severity"`

	// EntityType is the candidate scope: "component", "dataflow", or
	// "otm".
	EntityType string `json:"entityType"`

	// EntityID is the matched entity's id, or the literal "otm" for a
	// whole-document match.
	EntityID string `json:"entityId"`

	// Message is the template-expanded finding message.
	Message string `json:"message"`

	// Remediation provides guidance on fixing the issue.
	Remediation string `json:"remediation,omitempty"`

	// Tags are the rule's tags.
	Tags []string `json:"tags"`

	// Evidence is the full matched entity, serialized, for audit and
	// debugging.
	Evidence map[string]any `json:"evidence"`
}

// EvaluationResult is the findings sequence plus its per-severity
// summary. Findings order is significant: rule order, then candidate
// order within each rule.
type EvaluationResult struct {
	Findings []Finding             `json:"findings"`
	Summary  map[rule.Severity]int `json:"summary"`
}

// Summarize counts findings per severity. The summary of a result is
// always exactly Summarize of its findings.
func Summarize(findings []Finding) map[rule.Severity]int {
	summary := make(map[rule.Severity]int)
	for _, f := range findings {
		summary[f.Severity]++
	}
	return summary
}
