// Package otm provides the typed document model for threat-model
// documents in the Open Threat Model (OTM) shape: trust zones,
// components, and dataflows, plus the auxiliary collections
// (projects, threats, mitigations, risks) carried by full documents.
//
// Documents are immutable inputs to rule evaluation. Validation checks
// each collection's own required fields and id uniqueness only;
// cross-references (a component's trust zone, a dataflow's source and
// destination) are allowed to dangle. The three id spaces are
// independent: a component and a dataflow may share an id string.
//
// Every entity exposes Fields, a map of its serialized fields keyed by
// wire name. Predicate and message-template code operates on these
// maps so it stays agnostic of the concrete entity type.
package otm
