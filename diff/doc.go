// Package diff implements the symmetric schema-to-schema comparison from
// spec §4.3: a pure, purely-structural function from two schema trees to a
// grouped, path-sorted change set. Statistics never cause a diff record —
// only type sets and the derived Required flag do.
//
// [Diff] is also the engine the drift package (spec §4.4) runs underneath,
// passing an inferred live schema as "to" and classifying each resulting
// change by severity.
package diff
