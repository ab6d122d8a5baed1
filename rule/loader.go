package rule

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a single rule object from YAML or JSON and validates it.
func Parse(data []byte) (Rule, error) {
	var r Rule
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rule{}, fmt.Errorf("failed to parse rule: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// ParseAll decodes a rule document holding either a single rule object
// or a list of rule objects, validating each. Rules are returned in
// document order.
func ParseAll(data []byte) ([]Rule, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	var nodes []*yaml.Node
	switch root.Kind {
	case yaml.SequenceNode:
		nodes = root.Content
	case yaml.MappingNode:
		nodes = []*yaml.Node{root}
	default:
		return nil, fmt.Errorf("failed to parse rules: expected an object or a list, got %v", root.Kind)
	}

	rules := make([]Rule, 0, len(nodes))
	for i, node := range nodes {
		var r Rule
		if err := node.Decode(&r); err != nil {
			return nil, fmt.Errorf("failed to parse rule at index %d: %w", i, err)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("invalid rule at index %d: %w", i, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// LoadFile reads a rule file and returns the rules it contains in
// document order.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}
	rules, err := ParseAll(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// LoadDir loads every .yaml, .yml, and .json rule file directly under
// dir, visiting files in lexicographic order so the resulting rule
// order is deterministic. Rules concatenate in visit order, then in
// document order within each file.
func LoadDir(dir string) ([]Rule, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var rules []Rule
	for _, name := range names {
		loaded, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		rules = append(rules, loaded...)
	}
	return rules, nil
}
