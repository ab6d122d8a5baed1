package otm

import "fmt"

// Validate checks that the document carries its own required fields
// and that ids are unique within each collection. Cross-reference
// integrity is deliberately not checked: a component may reference a
// trust zone that does not exist, and a dataflow may reference unknown
// components. Such documents are valid and predicates evaluate against
// the raw reference values.
func (d *Document) Validate() error {
	if d.OTMVersion == "" {
		return fmt.Errorf("otmVersion is required")
	}
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}

	seenZones := make(map[string]struct{}, len(d.TrustZones))
	for i, z := range d.TrustZones {
		if z.ID == "" {
			return fmt.Errorf("trustZones[%d]: id is required", i)
		}
		if z.Name == "" {
			return fmt.Errorf("trustZones[%d]: name is required", i)
		}
		if _, dup := seenZones[z.ID]; dup {
			return fmt.Errorf("trustZones[%d]: duplicate id %q", i, z.ID)
		}
		seenZones[z.ID] = struct{}{}
	}

	seenComponents := make(map[string]struct{}, len(d.Components))
	for i, c := range d.Components {
		if c.ID == "" {
			return fmt.Errorf("components[%d]: id is required", i)
		}
		if c.Name == "" {
			return fmt.Errorf("components[%d]: name is required", i)
		}
		if c.Type == "" {
			return fmt.Errorf("components[%d]: type is required", i)
		}
		if _, dup := seenComponents[c.ID]; dup {
			return fmt.Errorf("components[%d]: duplicate id %q", i, c.ID)
		}
		seenComponents[c.ID] = struct{}{}
	}

	seenDataflows := make(map[string]struct{}, len(d.Dataflows))
	for i, f := range d.Dataflows {
		if f.ID == "" {
			return fmt.Errorf("dataflows[%d]: id is required", i)
		}
		if f.Source == "" {
			return fmt.Errorf("dataflows[%d]: source is required", i)
		}
		if f.Destination == "" {
			return fmt.Errorf("dataflows[%d]: destination is required", i)
		}
		if _, dup := seenDataflows[f.ID]; dup {
			return fmt.Errorf("dataflows[%d]: duplicate id %q", i, f.ID)
		}
		seenDataflows[f.ID] = struct{}{}
	}

	return nil
}
