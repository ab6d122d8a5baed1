package otm

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Parse decodes a JSON-encoded OTM document and validates it.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse OTM document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid OTM document: %w", err)
	}
	return &doc, nil
}

// ParseYAML decodes a YAML-encoded OTM document and validates it.
// JSON input is accepted as well since YAML is a superset.
func ParseYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse OTM document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid OTM document: %w", err)
	}
	return &doc, nil
}
