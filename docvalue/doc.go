// Package docvalue models a single document value as a tagged sum over the
// canonical type lattice (see the lattice package) plus the two container
// shapes every document store needs: object (a field map) and array (an
// ordered list). Every component that walks sampled documents — inference,
// diffing, drift detection, the executor's mutation-set computation —
// dispatches on [Value.Tag], never on a Go-reflected type, per the "Dynamic
// value types" design note.
package docvalue
