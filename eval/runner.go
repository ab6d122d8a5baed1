package eval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/threatflow/engine/otm"
	"github.com/threatflow/engine/rule"
)

// Runner evaluates rule sets against documents. A Runner is immutable
// after construction and safe for concurrent use; every Evaluate call
// is an independent pure function of its inputs.
type Runner struct {
	logger  *slog.Logger
	strict  bool
	tracing *otelInstruments
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for predicate and template
// diagnostics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithStrictPredicates raises swallowed predicate failures from debug
// to warn-level logs. The fail-closed contract is unchanged: a failing
// predicate is still a non-match and never aborts the run.
func WithStrictPredicates(strict bool) Option {
	return func(r *Runner) {
		r.strict = strict
	}
}

// NewRunner creates a Runner with the given options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Evaluate runs every enabled rule over the document and returns the
// resulting findings with their severity summary. It is the package's
// convenience entry point using a default Runner.
func Evaluate(doc *otm.Document, rules []rule.Rule) (*EvaluationResult, error) {
	return NewRunner().Evaluate(context.Background(), doc, rules)
}

// Evaluate runs every enabled rule over the document.
//
// Rules run in input order; within a rule, candidates are visited in
// document order (the whole-document scope contributes one synthetic
// candidate with entity id "otm"). Findings accumulate in exactly that
// (rule order, candidate order) sequence. The summary is recomputed
// from the final findings.
//
// Invalid documents or rules fail the whole call with a
// validation-kind error and no partial result. Predicate failures are
// recovered per candidate as non-matches and never fail the call.
func (r *Runner) Evaluate(ctx context.Context, doc *otm.Document, rules []rule.Rule) (*EvaluationResult, error) {
	const op = "Runner.Evaluate"

	if doc == nil {
		return nil, NewValidationError(op, ErrNilDocument)
	}
	if err := doc.Validate(); err != nil {
		return nil, NewValidationError(op, fmt.Errorf("%w: %w", ErrInvalidDocument, err))
	}
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return nil, NewValidationError(op, fmt.Errorf("%w: %w", ErrInvalidRule, err))
		}
	}

	runID := uuid.New().String()
	logger := r.logger.With("run_id", runID, "document", doc.Name)

	ctx, span := r.tracing.startEvaluate(ctx, doc.Name, runID, len(rules))
	defer span.End()
	start := time.Now()

	idx := newDocIndex(doc)
	findings := []Finding{}

	for _, rl := range rules {
		if !rl.Enabled {
			continue
		}

		pred, err := compilePredicate(rl.Where, rl.Select, idx)
		if err != nil {
			// Fail-closed: a broken predicate suppresses its rule
			// rather than producing findings or failing the run.
			r.logPredicateFailure(logger, rl.ID, err)
			continue
		}

		entityType := rl.Select.EntityType()
		for _, cand := range candidates(doc, rl.Select) {
			matched, err := pred.Match(cand.fields)
			if err != nil {
				r.logPredicateFailure(logger, rl.ID, err)
				continue
			}
			if !matched {
				continue
			}

			message, err := rule.ExpandMessage(rl.Message, cand.fields)
			if err != nil {
				// Unreachable for loader-validated rules; hand-built
				// rules skip just this finding.
				logger.Warn("finding skipped: message expansion failed",
					"rule_id", rl.ID,
					"entity_id", cand.id,
					"error", err)
				continue
			}

			findings = append(findings, Finding{
				RuleID:      rl.ID,
				Title:       rl.Title,
				Severity:    rl.Severity,
				EntityType:  entityType,
				EntityID:    cand.id,
				Message:     message,
				Remediation: rl.Remediation,
				Tags:        tagsOrEmpty(rl.Tags),
				Evidence:    cand.fields,
			})
		}
	}

	result := &EvaluationResult{
		Findings: findings,
		Summary:  Summarize(findings),
	}
	r.tracing.recordEvaluate(ctx, time.Since(start), result)
	return result, nil
}

func (r *Runner) logPredicateFailure(logger *slog.Logger, ruleID string, err error) {
	if r.strict {
		logger.Warn("predicate failed, treating as non-match", "rule_id", ruleID, "error", err)
		return
	}
	logger.Debug("predicate failed, treating as non-match", "rule_id", ruleID, "error", err)
}

// candidate pairs an entity id with the entity's field map.
type candidate struct {
	id     string
	fields map[string]any
}

// candidates resolves a selector scope to its candidate sequence in
// document order.
func candidates(doc *otm.Document, sel rule.Selector) []candidate {
	switch sel {
	case rule.SelectComponents:
		out := make([]candidate, len(doc.Components))
		for i, c := range doc.Components {
			out[i] = candidate{id: c.ID, fields: c.Fields()}
		}
		return out
	case rule.SelectDataflows:
		out := make([]candidate, len(doc.Dataflows))
		for i, f := range doc.Dataflows {
			out[i] = candidate{id: f.ID, fields: f.Fields()}
		}
		return out
	case rule.SelectOTM:
		return []candidate{{id: "otm", fields: doc.Fields()}}
	default:
		return nil
	}
}

// docIndex provides the id lookups the helper predicates need.
type docIndex struct {
	trustZones map[string]otm.TrustZone
	components map[string]otm.Component
}

func newDocIndex(doc *otm.Document) *docIndex {
	idx := &docIndex{
		trustZones: make(map[string]otm.TrustZone, len(doc.TrustZones)),
		components: make(map[string]otm.Component, len(doc.Components)),
	}
	for _, z := range doc.TrustZones {
		idx.trustZones[z.ID] = z
	}
	for _, c := range doc.Components {
		idx.components[c.ID] = c
	}
	return idx
}

func (idx *docIndex) hasTrustZone(id string) bool {
	_, ok := idx.trustZones[id]
	return ok
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
