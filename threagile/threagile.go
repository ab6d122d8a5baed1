// Package threagile parses Threagile-style risk reports into findings
// suitable for eval.Merge. Threagile is an external analyzer with its
// own rule taxonomy; this package is the normalization step between
// its report JSON and the engine's finding shape.
package threagile

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/threatflow/engine/eval"
	"github.com/threatflow/engine/rule"
)

// defaultSeverity is assumed when a risk record carries no severity.
const defaultSeverity = rule.SeverityMedium

// ParseReport decodes a risk-report JSON document of the shape
// {"risks": [...]} and returns its risks as findings in report order.
func ParseReport(data []byte) ([]eval.Finding, error) {
	var report struct {
		Risks []map[string]any `json:"risks"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse threagile report: %w", err)
	}
	return ParseRisks(report.Risks), nil
}

// ParseRisks converts raw risk records to findings. Records are
// loosely shaped; every field falls back through the aliases Threagile
// reports have been observed to use, and the raw record is preserved
// as evidence.
func ParseRisks(risks []map[string]any) []eval.Finding {
	findings := make([]eval.Finding, 0, len(risks))
	for _, risk := range risks {
		findings = append(findings, riskFinding(risk))
	}
	return findings
}

func riskFinding(risk map[string]any) eval.Finding {
	severity := strings.ToLower(firstString(risk, "severity"))
	if severity == "" {
		severity = defaultSeverity.String()
	}
	entityType := firstString(risk, "entityType")
	if entityType == "" {
		entityType = "component"
	}
	entityID := firstString(risk, "entityId", "technical_asset")
	if entityID == "" {
		entityID = "unknown"
	}
	title := firstString(risk, "title")
	if title == "" {
		title = "risk"
	}
	ruleID := firstString(risk, "ruleId", "id")
	if ruleID == "" {
		ruleID = "threagile"
	}

	return eval.Finding{
		RuleID:      ruleID,
		Title:       title,
		Severity:    rule.Severity(severity),
		EntityType:  entityType,
		EntityID:    entityID,
		Message:     firstString(risk, "message", "description"),
		Remediation: firstString(risk, "remediation"),
		Tags:        stringList(risk["tags"]),
		Evidence:    risk,
	}
}

// firstString returns the first key whose value is a non-empty string.
func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}
