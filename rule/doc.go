// Package rule provides the typed policy-rule model and rule loading.
//
// A rule selects a candidate scope of the document (components,
// dataflows, or the whole document), filters candidates with an
// optional predicate expression, and emits a finding per match using a
// message template expanded against the candidate's fields.
//
// Rules are validated at load time: severity and selector are closed
// enums, and every {field} placeholder in the message template must
// name a field the rule's selector scope provides. A rule that fails
// validation is rejected before evaluation ever sees it.
//
// Rule files are YAML (JSON accepted); a file holds either a single
// rule object or a list of rule objects. Directory loading visits
// files in lexicographic order so rule order, and therefore finding
// order, is deterministic.
package rule
