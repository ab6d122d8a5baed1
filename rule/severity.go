package rule

import "fmt"

// Severity represents the severity level of a rule and the findings
// it emits.
type Severity string

const (
	// SeverityCritical indicates an issue requiring immediate attention.
	SeverityCritical Severity = "critical"

	// SeverityHigh indicates a high-impact issue.
	SeverityHigh Severity = "high"

	// SeverityMedium indicates a moderate issue.
	SeverityMedium Severity = "medium"

	// SeverityLow indicates a minor issue.
	SeverityLow Severity = "low"

	// SeverityInfo indicates an informational finding without direct
	// security impact.
	SeverityInfo Severity = "info"
)

// severityRanks maps severity levels to numeric ranks for ordering.
// Higher ranks indicate more severe findings.
var severityRanks = map[Severity]int{
	SeverityCritical: 5,
	SeverityHigh:     4,
	SeverityMedium:   3,
	SeverityLow:      2,
	SeverityInfo:     1,
}

// IsValid returns true if the severity level is valid.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	default:
		return false
	}
}

// Rank returns the numeric rank of the severity level, from 1 (info)
// to 5 (critical). Returns 0 for invalid severity levels.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a string into a Severity value.
// Returns an error if the string is not a valid severity level.
func ParseSeverity(s string) (Severity, error) {
	severity := Severity(s)
	if !severity.IsValid() {
		return "", fmt.Errorf("invalid severity: %s", s)
	}
	return severity, nil
}

// AllSeverities returns all valid severity levels in order from
// critical to info.
func AllSeverities() []Severity {
	return []Severity{
		SeverityCritical,
		SeverityHigh,
		SeverityMedium,
		SeverityLow,
		SeverityInfo,
	}
}
