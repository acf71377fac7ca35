// Package lattice defines the canonical type lattice that every other
// mschema component builds on: the closed set of atomic type tags a
// document field can carry, and the widening rule that combines two type
// sets into one.
//
// # Design Principles
//
// Widening never loses fidelity. Numeric tags (int32, int64, double,
// decimal) are never collapsed into a single nominal "number" — callers
// that want that behavior must do it themselves, because the spec this
// package implements treats numeric precision as observable structure, not
// noise. null is retained as an ordinary set member rather than special-
// cased away; it is up to callers (see the schema package) to interpret a
// set containing Null as "nullable."
//
// [Widen] operates only on flat tag sets. Recursive widening of object
// properties and array item types is a schema-tree concern, not a lattice
// concern, and lives in the schema package.
package lattice
