package otm

// Fields returns the trust zone's fields keyed by wire name.
func (z TrustZone) Fields() map[string]any {
	return map[string]any{
		"id":   z.ID,
		"name": z.Name,
	}
}

// Fields returns the component's fields keyed by wire name. An unset
// trust-zone reference is represented as nil so predicates can compare
// against it without special-casing absence.
func (c Component) Fields() map[string]any {
	return map[string]any{
		"id":        c.ID,
		"name":      c.Name,
		"type":      c.Type,
		"trustZone": optional(c.TrustZone),
		"tags":      stringsOrEmpty(c.Tags),
	}
}

// Fields returns the dataflow's fields keyed by wire name.
func (d Dataflow) Fields() map[string]any {
	return map[string]any{
		"id":          d.ID,
		"source":      d.Source,
		"destination": d.Destination,
		"protocol":    optional(d.Protocol),
	}
}

// Fields returns the full document as a field map. Nested entities are
// rendered through their own Fields maps so the result contains only
// plain maps, slices, and scalars.
func (d *Document) Fields() map[string]any {
	projects := make([]any, len(d.Projects))
	for i, p := range d.Projects {
		projects[i] = map[string]any{"name": p.Name}
	}
	zones := make([]any, len(d.TrustZones))
	for i, z := range d.TrustZones {
		zones[i] = z.Fields()
	}
	components := make([]any, len(d.Components))
	for i, c := range d.Components {
		components[i] = c.Fields()
	}
	dataflows := make([]any, len(d.Dataflows))
	for i, f := range d.Dataflows {
		dataflows[i] = f.Fields()
	}
	threats := make([]any, len(d.Threats))
	for i, t := range d.Threats {
		threats[i] = map[string]any{
			"id":          t.ID,
			"name":        t.Name,
			"description": optional(t.Description),
			"appliesTo":   stringsOrEmpty(t.AppliesTo),
		}
	}
	mitigations := make([]any, len(d.Mitigations))
	for i, m := range d.Mitigations {
		mitigations[i] = map[string]any{
			"id":          m.ID,
			"name":        m.Name,
			"description": optional(m.Description),
			"appliesTo":   stringsOrEmpty(m.AppliesTo),
		}
	}
	risks := make([]any, len(d.Risks))
	for i, r := range d.Risks {
		risks[i] = map[string]any{
			"id":            r.ID,
			"threatId":      optional(r.ThreatID),
			"likelihood":    optional(r.Likelihood),
			"impact":        optional(r.Impact),
			"severity":      optional(r.Severity),
			"justification": optional(r.Justification),
		}
	}

	return map[string]any{
		"otmVersion":  d.OTMVersion,
		"name":        d.Name,
		"projects":    projects,
		"trustZones":  zones,
		"components":  components,
		"dataflows":   dataflows,
		"threats":     threats,
		"mitigations": mitigations,
		"risks":       risks,
		"extensions":  d.Extensions,
	}
}

// ComponentFieldNames returns the field names a component candidate
// exposes to predicates and message templates.
func ComponentFieldNames() []string {
	return []string{"id", "name", "type", "trustZone", "tags"}
}

// DataflowFieldNames returns the field names a dataflow candidate
// exposes to predicates and message templates.
func DataflowFieldNames() []string {
	return []string{"id", "source", "destination", "protocol"}
}

// DocumentFieldNames returns the field names the whole-document
// candidate exposes to predicates and message templates.
func DocumentFieldNames() []string {
	return []string{
		"otmVersion", "name", "projects", "trustZones", "components",
		"dataflows", "threats", "mitigations", "risks", "extensions",
	}
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
