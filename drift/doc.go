// Package drift implements the schema-to-live comparison from spec §4.4.
// It runs the diff package's engine with expected as "from" and a
// separately-inferred live schema as "to", then classifies each resulting
// change by severity and folds the severities into a single drift score.
//
// Inference itself lives in the infer package; Detect takes the already-
// inferred observed schema so the comparison stays pure and testable
// without a live database, per spec §9's pluggability note.
package drift
