package eval

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"

	"github.com/threatflow/engine/rule"
)

// predicate is a compiled where-expression bound to one selector scope
// and one document index. A nil program matches every candidate.
type predicate struct {
	prg cel.Program
}

// matchAll is the predicate for rules without a where expression.
var matchAll = &predicate{}

// compilePredicate compiles a where expression into a predicate. The
// expression addresses candidate fields directly by name, can reach
// the whole candidate through `self`, and can call the helper
// predicates cross_trust_zone(self) and has_tag(self, tag), which
// close over the document index.
func compilePredicate(where string, sel rule.Selector, idx *docIndex) (*predicate, error) {
	if where == "" {
		return matchAll, nil
	}

	env, err := newPredicateEnv(sel, idx)
	if err != nil {
		return nil, fmt.Errorf("failed to build predicate environment: %w", err)
	}
	ast, iss := env.Compile(where)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("failed to compile predicate: %w", iss.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build predicate program: %w", err)
	}
	return &predicate{prg: prg}, nil
}

// Match evaluates the predicate against one candidate's fields.
// Evaluation errors are returned so the runner can log them, but the
// runner always treats them as a non-match.
func (p *predicate) Match(fields map[string]any) (bool, error) {
	if p.prg == nil {
		return true, nil
	}

	activation := make(map[string]any, len(fields)+1)
	for name, value := range fields {
		activation[name] = value
	}
	activation["self"] = fields

	out, _, err := p.prg.Eval(activation)
	if err != nil {
		return false, fmt.Errorf("predicate evaluation failed: %w", err)
	}
	return truthy(out), nil
}

// newPredicateEnv builds the CEL environment for one selector scope.
// Every field of the scope is declared as a dyn variable so
// expressions like `protocol == 'http'` type-check against any
// candidate shape.
func newPredicateEnv(sel rule.Selector, idx *docIndex) (*cel.Env, error) {
	entityType := cel.MapType(cel.StringType, cel.DynType)
	opts := []cel.EnvOption{
		cel.Variable("self", entityType),
		cel.Function("cross_trust_zone",
			cel.Overload("cross_trust_zone_entity",
				[]*cel.Type{entityType},
				cel.BoolType,
				cel.UnaryBinding(func(entity ref.Val) ref.Val {
					return types.Bool(crossTrustZone(entity.Value(), idx))
				}),
			),
		),
		cel.Function("has_tag",
			cel.Overload("has_tag_entity_string",
				[]*cel.Type{entityType, cel.StringType},
				cel.BoolType,
				cel.BinaryBinding(func(entity, tag ref.Val) ref.Val {
					return types.Bool(hasTag(entity.Value(), tag.Value()))
				}),
			),
		),
	}
	for _, name := range sel.FieldNames() {
		// Names CEL already declares (notably the component "type"
		// field) cannot be redeclared as variables; those fields stay
		// reachable through self.
		if celReservedIdents[name] {
			continue
		}
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	return cel.NewEnv(opts...)
}

// celReservedIdents are standard CEL identifiers that candidate field
// names must not shadow.
var celReservedIdents = map[string]bool{
	"bool": true, "bytes": true, "double": true, "int": true,
	"list": true, "map": true, "null_type": true, "string": true,
	"type": true, "uint": true,
}

// crossTrustZone reports whether the entity references a trust zone
// that does not exist in the document's trust-zone set. Entities
// without a trust-zone reference (dataflows, the whole document, or
// components with no zone) never cross.
func crossTrustZone(entity any, idx *docIndex) bool {
	fields, ok := entity.(map[string]any)
	if !ok {
		return false
	}
	zone, ok := fields["trustZone"].(string)
	if !ok || zone == "" {
		return false
	}
	return !idx.hasTrustZone(zone)
}

// hasTag reports whether tag is a member of the entity's tags set.
func hasTag(entity, tag any) bool {
	fields, ok := entity.(map[string]any)
	if !ok {
		return false
	}
	want, ok := tag.(string)
	if !ok {
		return false
	}
	switch tags := fields["tags"].(type) {
	case []string:
		for _, t := range tags {
			if t == want {
				return true
			}
		}
	case []any:
		for _, t := range tags {
			if s, ok := t.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

// truthy coerces a CEL result to a boolean via standard truthiness:
// null, zero numbers, and empty strings, lists, and maps are false;
// everything else is true.
func truthy(v ref.Val) bool {
	if v == nil || types.IsUnknownOrError(v) {
		return false
	}
	if v == types.NullValue {
		return false
	}
	switch value := v.Value().(type) {
	case bool:
		return value
	case string:
		return value != ""
	case int64:
		return value != 0
	case uint64:
		return value != 0
	case float64:
		return value != 0
	}
	if sized, ok := v.(traits.Sizer); ok {
		if size, ok := sized.Size().(types.Int); ok {
			return size != 0
		}
	}
	return true
}
