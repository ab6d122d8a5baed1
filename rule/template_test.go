package rule

import (
	"reflect"
	"testing"
)

func TestMessagePlaceholders(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{"single placeholder", "flow {id} unencrypted", []string{"id"}},
		{"multiple placeholders", "{source} -> {destination}", []string{"source", "destination"}},
		{"repeated placeholder", "{id} and {id}", []string{"id", "id"}},
		{"no placeholders", "static message", []string{}},
		{"empty braces ignored", "flow {} here", []string{}},
		{"underscore name", "zone {trust_zone}", []string{"trust_zone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MessagePlaceholders(tt.message); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MessagePlaceholders() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandMessage(t *testing.T) {
	fields := map[string]any{
		"id":       "f1",
		"protocol": "http",
		"count":    3,
		"optional": nil,
	}

	tests := []struct {
		name    string
		message string
		want    string
		wantErr bool
	}{
		{"string field", "flow {id} unencrypted", "flow f1 unencrypted", false},
		{"two fields", "{id} uses {protocol}", "f1 uses http", false},
		{"non-string field", "seen {count} times", "seen 3 times", false},
		{"nil field renders empty", "proto={optional}", "proto=", false},
		{"missing field is an error", "flow {nope}", "", true},
		{"no placeholders", "static", "static", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandMessage(tt.message, fields)
			if (err != nil) != tt.wantErr {
				t.Errorf("ExpandMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ExpandMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
