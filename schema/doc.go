// Package schema implements the schema tree S from spec §3: the in-memory
// representation shared by inference, diffing, drift detection, validator
// projection and the declarative YAML file format (§6.1).
//
// A [Node] is either a leaf (a [lattice.Set] plus presence/null-rate
// statistics), an object (an ordered mapping of field name to child node),
// or an array (a single items child). The tree has no shared subtrees and
// no back references — paths are value-typed sequences of field names (see
// [Path]) and trees are owned, not reference-counted.
//
// Statistics are advisory: [Node.Equal] compares only structural shape
// (kind, type sets, the derived Required flag), never Presence/NullRate/
// SampleCount, matching spec §3's "two schemas are equal iff their trees
// are isomorphic."
package schema
