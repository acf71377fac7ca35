package lattice

import (
	"cmp"
	"slices"
)

// Tag is an atomic type in the canonical type lattice T (spec §3).
type Tag string

// The closed set of atomic type tags. No other values are valid.
const (
	String     Tag = "string"
	Int32      Tag = "int32"
	Int64      Tag = "int64"
	Double     Tag = "double"
	Decimal    Tag = "decimal"
	Bool       Tag = "bool"
	Date       Tag = "date"
	ObjectID   Tag = "objectId"
	Array      Tag = "array"
	Object     Tag = "object"
	Binary     Tag = "binary"
	Regex      Tag = "regex"
	Timestamp  Tag = "timestamp"
	JavaScript Tag = "javascript"
	MinKey     Tag = "minKey"
	MaxKey     Tag = "maxKey"
	DBPointer  Tag = "dbPointer"
	Null       Tag = "null"
)

// All lists every tag in the lattice. [Sorted] does not use this order:
// it breaks frequency ties lexicographically by tag name.
var All = []Tag{
	String, Int32, Int64, Double, Decimal, Bool, Date, ObjectID,
	Array, Object, Binary, Regex, Timestamp, JavaScript,
	MinKey, MaxKey, DBPointer, Null,
}

// Valid reports whether t is a member of the canonical lattice.
func (t Tag) Valid() bool {
	return slices.Contains(All, t)
}

// Set is a non-empty set of type tags with no duplicates: a field type per
// spec §3. The zero value is an empty set and is not itself a valid field
// type; use [NewSet] or [Widen] to build one.
type Set map[Tag]struct{}

// NewSet builds a [Set] from the given tags, deduplicating.
func NewSet(tags ...Tag) Set {
	s := make(Set, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}

	return s
}

// Contains reports whether s contains t.
func (s Set) Contains(t Tag) bool {
	_, ok := s[t]

	return ok
}

// Len returns the number of tags in s.
func (s Set) Len() int {
	return len(s)
}

// Single reports whether s is a singleton set and returns its only member.
func (s Set) Single() (Tag, bool) {
	if len(s) != 1 {
		return "", false
	}

	for t := range s {
		return t, true
	}

	return "", false
}

// Subset reports whether every tag in s is also in other.
func (s Set) Subset(other Set) bool {
	for t := range s {
		if !other.Contains(t) {
			return false
		}
	}

	return true
}

// Equal reports whether s and other contain exactly the same tags.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}

	return s.Subset(other)
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for t := range s {
		out[t] = struct{}{}
	}

	return out
}

// Widen computes the commutative, associative union of one or more type
// sets (spec §4.1). Equal tags collapse (ordinary set union); null is
// retained as a member rather than subsuming or being subsumed; numeric
// tags never collapse into each other. Any other tag pair simply becomes a
// multi-element set. Widen(a, b) is always a superset of both a and b.
func Widen(sets ...Set) Set {
	out := make(Set)

	for _, s := range sets {
		for t := range s {
			out[t] = struct{}{}
		}
	}

	return out
}

// Sorted returns the tags of s ordered by descending observed frequency
// (per freq, defaulting missing entries to zero) with a lexicographic
// tie-break, per spec §3's "ordered sequence" rendering rule.
func Sorted(s Set, freq map[Tag]int64) []Tag {
	out := make([]Tag, 0, len(s))
	for t := range s {
		out = append(out, t)
	}

	slices.SortFunc(out, func(a, b Tag) int {
		if c := cmp.Compare(freq[b], freq[a]); c != 0 {
			return c
		}

		return cmp.Compare(a, b)
	})

	return out
}

// String renders s as a single tag when it is a singleton, otherwise as its
// frequency-ordered sequence joined with "|" — a debug/log-friendly form,
// not the wire format (see the schema package for that).
func (s Set) String() string {
	if t, ok := s.Single(); ok {
		return string(t)
	}

	tags := Sorted(s, nil)

	out := ""
	for i, t := range tags {
		if i > 0 {
			out += "|"
		}

		out += string(t)
	}

	return out
}
