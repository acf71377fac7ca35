package drift

import (
	"go.schemadrift.dev/mschema/lattice"
	"go.schemadrift.dev/mschema/schema"
)

// IndexHint is an advisory, non-core recommendation (SPEC_FULL.md's
// supplement to spec §4.4's advisory "index recommendations" mention):
// a top-level field that structurally looks like a natural secondary-index
// candidate. Hints never affect DriftScore or HasDrift.
type IndexHint struct {
	Field  string
	Reason string
}

// IndexHints inspects observed's top-level fields for likely unique
// ObjectID-typed references — the one structural signal this package can
// derive without query-log or cardinality data. "_id" is skipped since the
// database engine already indexes it.
func IndexHints(observed *schema.Node) []IndexHint {
	if observed == nil || observed.Kind != schema.KindObject {
		return nil
	}

	var hints []IndexHint

	for _, name := range observed.OrderedFields() {
		if name == "_id" {
			continue
		}

		child := observed.Properties[name]

		tag, single := child.Types.Single()
		if !single || tag != lattice.ObjectID {
			continue
		}

		if !child.Stats.Required() {
			continue
		}

		hints = append(hints, IndexHint{
			Field:  name,
			Reason: "required top-level ObjectID field, likely a reference to another collection",
		})
	}

	return hints
}
