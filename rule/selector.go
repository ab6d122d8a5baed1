package rule

import (
	"fmt"

	"github.com/threatflow/engine/otm"
)

// Selector identifies the candidate scope a rule evaluates against.
type Selector string

const (
	// SelectComponents evaluates the rule against every component in
	// document order.
	SelectComponents Selector = "components"

	// SelectDataflows evaluates the rule against every dataflow in
	// document order.
	SelectDataflows Selector = "dataflows"

	// SelectOTM evaluates the rule against a single candidate
	// representing the whole document.
	SelectOTM Selector = "otm"
)

// IsValid returns true if the selector is one of the supported scopes.
func (s Selector) IsValid() bool {
	switch s {
	case SelectComponents, SelectDataflows, SelectOTM:
		return true
	default:
		return false
	}
}

// String returns the string representation of the selector.
func (s Selector) String() string {
	return string(s)
}

// EntityType returns the entity type recorded on findings emitted for
// this scope: "component", "dataflow", or "otm".
func (s Selector) EntityType() string {
	switch s {
	case SelectComponents:
		return "component"
	case SelectDataflows:
		return "dataflow"
	case SelectOTM:
		return "otm"
	default:
		return ""
	}
}

// FieldNames returns the field names candidates in this scope expose
// to predicates and message templates.
func (s Selector) FieldNames() []string {
	switch s {
	case SelectComponents:
		return otm.ComponentFieldNames()
	case SelectDataflows:
		return otm.DataflowFieldNames()
	case SelectOTM:
		return otm.DocumentFieldNames()
	default:
		return nil
	}
}

// ParseSelector parses a string into a Selector value.
// Returns an error if the string is not a supported scope.
func ParseSelector(s string) (Selector, error) {
	selector := Selector(s)
	if !selector.IsValid() {
		return "", fmt.Errorf("invalid selector: %s", s)
	}
	return selector, nil
}
