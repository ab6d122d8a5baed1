package otm

// Document is a complete OTM threat-model document.
type Document struct {
	// OTMVersion is the OTM specification version the document follows.
	OTMVersion string `json:"otmVersion" yaml:"otmVersion"`

	// Name is the human-readable name of the modeled system.
	Name string `json:"name" yaml:"name"`

	// Projects lists the projects the model belongs to.
	Projects []Project `json:"projects,omitempty" yaml:"projects,omitempty"`

	// TrustZones is the set of trust zones components may reference.
	TrustZones []TrustZone `json:"trustZones,omitempty" yaml:"trustZones,omitempty"`

	// Components are the modeled system components in document order.
	Components []Component `json:"components,omitempty" yaml:"components,omitempty"`

	// Dataflows are the modeled dataflows in document order.
	Dataflows []Dataflow `json:"dataflows,omitempty" yaml:"dataflows,omitempty"`

	// Threats lists identified threats.
	Threats []Threat `json:"threats,omitempty" yaml:"threats,omitempty"`

	// Mitigations lists mitigations for identified threats.
	Mitigations []Mitigation `json:"mitigations,omitempty" yaml:"mitigations,omitempty"`

	// Risks lists assessed risks.
	Risks []Risk `json:"risks,omitempty" yaml:"risks,omitempty"`

	// Extensions carries tool-specific side-channel data (e.g. diagram
	// layout). The engine never interprets it.
	Extensions map[string]any `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

// Project identifies a project the model belongs to.
type Project struct {
	Name string `json:"name" yaml:"name"`
}

// TrustZone is a named trust boundary.
type TrustZone struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Component is a modeled system component.
type Component struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// Type is a free-form component type (e.g. "process", "store").
	Type string `json:"type" yaml:"type"`

	// TrustZone optionally references a trust zone by id. The
	// reference may dangle.
	TrustZone string `json:"trustZone,omitempty" yaml:"trustZone,omitempty"`

	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Dataflow is a modeled flow between two components. Source and
// destination reference components by id and may dangle.
type Dataflow struct {
	ID          string `json:"id" yaml:"id"`
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Protocol    string `json:"protocol,omitempty" yaml:"protocol,omitempty"`
}

// Threat is an identified threat and the entity ids it applies to.
type Threat struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	AppliesTo   []string `json:"appliesTo,omitempty" yaml:"appliesTo,omitempty"`
}

// Mitigation is a mitigation and the entity ids it applies to.
type Mitigation struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	AppliesTo   []string `json:"appliesTo,omitempty" yaml:"appliesTo,omitempty"`
}

// Risk is an assessed risk, optionally tied to a threat.
type Risk struct {
	ID            string `json:"id" yaml:"id"`
	ThreatID      string `json:"threatId,omitempty" yaml:"threatId,omitempty"`
	Likelihood    string `json:"likelihood,omitempty" yaml:"likelihood,omitempty"`
	Impact        string `json:"impact,omitempty" yaml:"impact,omitempty"`
	Severity      string `json:"severity,omitempty" yaml:"severity,omitempty"`
	Justification string `json:"justification,omitempty" yaml:"justification,omitempty"`
}
