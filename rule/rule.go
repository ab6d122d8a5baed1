package rule

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Rule is a single declarative policy rule.
type Rule struct {
	// ID uniquely identifies the rule. Caller-supplied.
	ID string `json:"id" yaml:"id"`

	// Title is a brief summary, copied onto emitted findings.
	Title string `json:"title" yaml:"title"`

	// Description provides detail about the rule's intent.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Severity is the severity of findings the rule emits.
	Severity Severity `json:"severity" yaml:"severity"`

	// Select is the candidate scope the rule evaluates against.
	Select Selector `json:"select" yaml:"select"`

	// Where is an optional predicate expression. An empty Where
	// matches every candidate in scope.
	Where string `json:"where,omitempty" yaml:"where,omitempty"`

	// Message is the finding message template. {field} placeholders
	// are expanded against the matched candidate's fields.
	Message string `json:"message" yaml:"message"`

	// Remediation provides guidance on fixing the issue.
	Remediation string `json:"remediation,omitempty" yaml:"remediation,omitempty"`

	// Tags are arbitrary labels copied onto emitted findings.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Enabled toggles the rule. Disabled rules contribute no findings.
	// Defaults to true when decoded from a rule file.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Version is an optional rule revision marker.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// plainRule avoids recursing into Rule.UnmarshalYAML.
type plainRule Rule

// UnmarshalYAML decodes a rule object, defaulting Enabled to true when
// the field is absent.
func (r *Rule) UnmarshalYAML(value *yaml.Node) error {
	p := plainRule{Enabled: true}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*r = Rule(p)
	return nil
}

// Validate checks that the rule is well formed: required fields are
// present, severity and selector are members of their closed enums,
// and every {field} placeholder in the message template names a field
// the selector scope provides. Predicate expressions are not checked
// here; a malformed predicate fails closed at evaluation time.
func (r *Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule id is required")
	}
	if r.Title == "" {
		return fmt.Errorf("rule %s: title is required", r.ID)
	}
	if !r.Severity.IsValid() {
		return fmt.Errorf("rule %s: invalid severity: %q", r.ID, r.Severity)
	}
	if !r.Select.IsValid() {
		return fmt.Errorf("rule %s: invalid select: %q", r.ID, r.Select)
	}
	if r.Message == "" {
		return fmt.Errorf("rule %s: message is required", r.ID)
	}

	known := make(map[string]struct{})
	for _, name := range r.Select.FieldNames() {
		known[name] = struct{}{}
	}
	for _, placeholder := range MessagePlaceholders(r.Message) {
		if _, ok := known[placeholder]; !ok {
			return fmt.Errorf("rule %s: message references field {%s} not provided by select %q",
				r.ID, placeholder, r.Select)
		}
	}

	return nil
}
