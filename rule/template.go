package rule

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches {field} placeholders in message templates.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// MessagePlaceholders returns the field names referenced by {field}
// placeholders in a message template, in order of appearance.
func MessagePlaceholders(message string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(message, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// ExpandMessage substitutes every {field} placeholder in the template
// with the corresponding value from fields. A placeholder naming a
// field absent from the map is an error; the template is never emitted
// partially substituted.
func ExpandMessage(message string, fields map[string]any) (string, error) {
	var missing []string
	expanded := placeholderPattern.ReplaceAllStringFunc(message, func(match string) string {
		name := match[1 : len(match)-1]
		value, ok := fields[name]
		if !ok {
			missing = append(missing, name)
			return match
		}
		return formatFieldValue(value)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("message references unknown fields: %s", strings.Join(missing, ", "))
	}
	return expanded, nil
}

func formatFieldValue(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
