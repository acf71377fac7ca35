package docvalue

import (
	"go.schemadrift.dev/mschema/lattice"
)

// Value is a single document field value, tagged with its lattice type.
// Raw carries the scalar payload for non-container tags (the concrete Go
// type depends on Tag: string for lattice.String, int32 for
// lattice.Int32, and so on — callers that need the payload type-assert
// Raw only after branching on Tag, never the reverse). Object and Array
// carry the payload for the two container tags.
type Value struct {
	Tag    lattice.Tag
	Raw    any
	Object map[string]Value
	Array  []Value
}

// Null is the canonical null value.
var Null = Value{Tag: lattice.Null}

// NewScalar builds a Value for any non-container tag.
func NewScalar(tag lattice.Tag, raw any) Value {
	return Value{Tag: tag, Raw: raw}
}

// NewObject builds an object Value from its field map.
func NewObject(fields map[string]Value) Value {
	return Value{Tag: lattice.Object, Object: fields}
}

// NewArray builds an array Value from its elements.
func NewArray(elems []Value) Value {
	return Value{Tag: lattice.Array, Array: elems}
}

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool {
	return v.Tag == lattice.Null
}
