package eval

import (
	"fmt"

	"github.com/threatflow/engine/rule"
)

// dedupKey is the semantic fingerprint used to deduplicate findings
// across analyzers. Rule ids are deliberately excluded: local and
// external analyzers assign different rule identifiers to conceptually
// identical findings, so (entityId, title, severity) is the closest
// available match.
type dedupKey struct {
	entityID string
	title    string
	severity rule.Severity
}

// Merge combines local findings with externally sourced ones into a
// single result. External items may be Finding values, *Finding
// pointers, or raw field maps; all are normalized identically before
// deduplication. Local findings are visited first in their existing
// order, then external findings in input order; an item whose dedup
// key was already seen is skipped. The summary is recomputed from the
// deduplicated findings.
//
// Merge is idempotent: merging the same external findings twice
// produces the same result.
func Merge(local *EvaluationResult, external []any) (*EvaluationResult, error) {
	const op = "Merge"

	merged := []Finding{}
	seen := make(map[dedupKey]struct{})

	appendUnseen := func(f Finding) {
		key := dedupKey{entityID: f.EntityID, title: f.Title, severity: f.Severity}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		merged = append(merged, f)
	}

	if local != nil {
		for _, f := range local.Findings {
			appendUnseen(f)
		}
	}
	for i, item := range external {
		f, err := normalizeExternal(item)
		if err != nil {
			return nil, NewMergeError(op, fmt.Errorf("external finding at index %d: %w", i, err))
		}
		appendUnseen(f)
	}

	return &EvaluationResult{
		Findings: merged,
		Summary:  Summarize(merged),
	}, nil
}

// normalizeExternal converts an external finding-shaped item to a
// Finding.
func normalizeExternal(item any) (Finding, error) {
	switch v := item.(type) {
	case Finding:
		return v, nil
	case *Finding:
		if v == nil {
			return Finding{}, ErrInvalidExternalFinding
		}
		return *v, nil
	case map[string]any:
		return findingFromMap(v), nil
	default:
		return Finding{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidExternalFinding, item)
	}
}

// findingFromMap builds a Finding from a raw field map using the wire
// field names. Absent fields default to their zero values; severities
// are not forced into the engine's enum, preserving whatever taxonomy
// the external analyzer uses.
func findingFromMap(m map[string]any) Finding {
	return Finding{
		RuleID:      stringField(m, "ruleId"),
		Title:       stringField(m, "title"),
		Severity:    rule.Severity(stringField(m, "severity")),
		EntityType:  stringField(m, "entityType"),
		EntityID:    stringField(m, "entityId"),
		Message:     stringField(m, "message"),
		Remediation: stringField(m, "remediation"),
		Tags:        stringSliceField(m, "tags"),
		Evidence:    mapField(m, "evidence"),
	}
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func stringSliceField(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

func mapField(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}
