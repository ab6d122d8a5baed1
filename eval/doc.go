// Package eval implements the rule evaluation engine: it runs
// declarative policy rules against OTM threat-model documents,
// producing findings, and merges those findings with externally
// sourced ones.
//
// # Evaluation
//
// A Runner evaluates rules in input order. Each enabled rule resolves
// its candidate scope (components, dataflows, or the whole document),
// compiles its optional where-expression, and emits one finding per
// matching candidate. Findings accumulate in (rule order, candidate
// order) and that ordering is a guarantee: repeated evaluations of
// identical inputs produce identical results.
//
//	doc, _ := otm.Parse(document)
//	rules, _ := rule.LoadDir("rules")
//	result, err := eval.Evaluate(doc, rules)
//
// # Predicates
//
// Where-expressions are CEL. Candidate fields are addressable by name
// (`protocol == 'http'`), the whole candidate is bound to `self`, and
// two helper predicates are available:
//
//	cross_trust_zone(self)   // entity references a zone missing from the document
//	has_tag(self, 'pii')     // tag membership
//
// Field names that collide with standard CEL identifiers (the
// component "type" field) are only reachable through self, as in
// `self.type == 'store'`.
//
// Predicates fail closed: a malformed or failing expression is treated
// as a non-match. It never produces a finding and never aborts the
// run. A rule without a where-expression matches every candidate in
// its scope.
//
// # Merging
//
// Merge deduplicates local and external findings on the
// (entityId, title, severity) triple, keeping first-seen order with
// local findings ahead of external ones, and recomputes the summary.
//
// # Errors
//
// Validation failures (malformed documents or rules) fail an Evaluate
// call outright with no partial result. Predicate failures are always
// recovered locally. Message-template failures cannot occur for rules
// that passed load-time validation; for hand-built rules they skip the
// affected finding and are logged.
package eval
