package migrate

import (
	"strconv"

	"go.schemadrift.dev/mschema/adapter"
	"go.schemadrift.dev/mschema/docvalue"
	"go.schemadrift.dev/mschema/lattice"
	"go.schemadrift.dev/mschema/plan"
	"go.schemadrift.dev/mschema/schema"
)

// SkipReason names why an operation did not produce a field change for a
// given document (spec §4.7 step 3's "skip reasons").
type SkipReason string

const (
	SkipAlreadyApplied     SkipReason = "already_applied"
	SkipFieldAbsent        SkipReason = "field_absent"
	SkipMissingOverride    SkipReason = "missing_override"
	SkipConversionFailed   SkipReason = "conversion_failed"
	SkipArrayShapeMismatch SkipReason = "array_shape_mismatch"
	SkipUnsupportedTarget  SkipReason = "unsupported_target_type"
)

// arraySegment is the pseudo path element diff/plan use to mark recursion
// into an array-of-subdocuments (see diff.compareItems).
const arraySegment = "[]"

// splitArraySegment reports whether path crosses an array-of-subdocuments
// boundary, returning the path up to (base) and after (rest) the marker.
func splitArraySegment(path schema.Path) (base, rest schema.Path, ok bool) {
	for i, seg := range path {
		if seg == arraySegment {
			return path[:i], path[i+1:], true
		}
	}

	return path, nil, false
}

// mutationFor computes the subset of plan operations that actually change
// doc (spec §4.7 step 2's "mutation set"), plus the skip reason for every
// operation that does not fire.
func mutationFor(doc adapter.Document, ops []plan.Operation, overrides map[string]docvalue.Value) (adapter.Mutation, map[string]SkipReason) {
	mutation := adapter.Mutation{}
	skips := make(map[string]SkipReason)

	for _, op := range ops {
		base, rest, isArrayOp := splitArraySegment(op.Path)

		if !isArrayOp {
			value, unset, skip, applies := fieldOpResult(doc, op.Path, op, overrides)
			if !applies {
				if skip != "" {
					skips[op.Path.String()] = skip
				}

				continue
			}

			mutation.Fields = append(mutation.Fields, adapter.FieldMutation{Path: op.Path, Unset: unset, Value: value})

			continue
		}

		arrVal, present := getAt(doc, base)
		if !present || arrVal.Tag != lattice.Array {
			skips[op.Path.String()] = SkipFieldAbsent

			continue
		}

		newItems := make([]docvalue.Value, len(arrVal.Array))
		copy(newItems, arrVal.Array)

		changed := false
		lastSkip := SkipAlreadyApplied

		for i, elem := range arrVal.Array {
			value, unset, skip, applies := fieldOpResult(elem, rest, op, overrides)
			if !applies {
				if skip != "" {
					lastSkip = skip
				}

				continue
			}

			if unset {
				newItems[i] = unsetAt(elem, rest)
			} else {
				newItems[i] = setAt(elem, rest, value)
			}

			changed = true
		}

		if !changed {
			skips[op.Path.String()] = lastSkip

			continue
		}

		mutation.Fields = append(mutation.Fields, adapter.FieldMutation{Path: base, Value: docvalue.NewArray(newItems)})
	}

	return mutation, skips
}

// fieldOpResult decides whether op fires against the value currently at
// path within doc, and if so, what the resulting field value is.
// unset is true only for RemoveField. applies is false whenever op has no
// effect on doc, whether because it was already applied or because it
// cannot be applied (skip explains which).
func fieldOpResult(doc docvalue.Value, path schema.Path, op plan.Operation, overrides map[string]docvalue.Value) (value docvalue.Value, unset bool, skip SkipReason, applies bool) {
	current, present := getAt(doc, path)

	switch op.Kind {
	case plan.AddField:
		if present {
			return docvalue.Value{}, false, SkipAlreadyApplied, false
		}

		if op.RequiresInput {
			v, ok := overrides[op.Path.String()]
			if !ok {
				return docvalue.Value{}, false, SkipMissingOverride, false
			}

			return v, false, "", true
		}

		return docvalue.Null, false, "", true

	case plan.RemoveField:
		if !present {
			return docvalue.Value{}, false, SkipAlreadyApplied, false
		}

		return docvalue.Value{}, true, "", true

	case plan.Convert:
		if !present {
			return docvalue.Value{}, false, SkipFieldAbsent, false
		}

		target := targetTag(op.Type)

		if current.Tag == target {
			return docvalue.Value{}, false, SkipAlreadyApplied, false
		}

		converted, ok := coerce(current, target)
		if !ok {
			return docvalue.Value{}, false, SkipConversionFailed, false
		}

		return converted, false, "", true

	case plan.WrapArray:
		if !present {
			return docvalue.Value{}, false, SkipFieldAbsent, false
		}

		if current.Tag == lattice.Array {
			return docvalue.Value{}, false, SkipAlreadyApplied, false
		}

		return docvalue.NewArray([]docvalue.Value{current}), false, "", true

	case plan.UnwrapArray:
		if !present {
			return docvalue.Value{}, false, SkipFieldAbsent, false
		}

		if current.Tag != lattice.Array {
			return docvalue.Value{}, false, SkipAlreadyApplied, false
		}

		switch len(current.Array) {
		case 0:
			return docvalue.Null, false, "", true
		case 1:
			return current.Array[0], false, "", true
		default:
			return docvalue.Value{}, false, SkipArrayShapeMismatch, false
		}

	case plan.ConvertItems:
		if !present {
			return docvalue.Value{}, false, SkipFieldAbsent, false
		}

		if current.Tag != lattice.Array {
			return docvalue.Value{}, false, SkipFieldAbsent, false
		}

		target := targetTag(op.Type)
		items := make([]docvalue.Value, len(current.Array))
		changed := false

		for i, item := range current.Array {
			if item.Tag == target {
				items[i] = item

				continue
			}

			converted, ok := coerce(item, target)
			if !ok {
				return docvalue.Value{}, false, SkipConversionFailed, false
			}

			items[i] = converted
			changed = true
		}

		if !changed {
			return docvalue.Value{}, false, SkipAlreadyApplied, false
		}

		return docvalue.NewArray(items), false, "", true

	default:
		return docvalue.Value{}, false, SkipUnsupportedTarget, false
	}
}

// targetTag resolves a plan operation's type set to a single concrete tag.
// A plan operation carries no type frequencies, so a union target set is
// collapsed to its lexicographically first tag (lattice.Sorted with nil
// frequencies), since a live value can hold only one concrete wire type
// at a time.
func targetTag(s lattice.Set) lattice.Tag {
	if t, ok := s.Single(); ok {
		return t
	}

	sorted := lattice.Sorted(s, nil)
	if len(sorted) == 0 {
		return lattice.Null
	}

	return sorted[0]
}

// coerce converts v to target in Go (spec §4.6 rule 5); it does not call
// the database engine's own conversion operator. Only the conversions a document
// database's own $convert-style operator supports are attempted; anything
// else is reported to the caller as a per-document conversion failure.
func coerce(v docvalue.Value, target lattice.Tag) (docvalue.Value, bool) {
	if v.Tag == target {
		return v, true
	}

	switch target {
	case lattice.String:
		s, ok := scalarToString(v)
		if !ok {
			return docvalue.Value{}, false
		}

		return docvalue.NewScalar(lattice.String, s), true
	case lattice.Int32:
		n, ok := scalarToInt64(v)
		if !ok {
			return docvalue.Value{}, false
		}

		return docvalue.NewScalar(lattice.Int32, int32(n)), true
	case lattice.Int64:
		n, ok := scalarToInt64(v)
		if !ok {
			return docvalue.Value{}, false
		}

		return docvalue.NewScalar(lattice.Int64, n), true
	case lattice.Double:
		f, ok := scalarToFloat(v)
		if !ok {
			return docvalue.Value{}, false
		}

		return docvalue.NewScalar(lattice.Double, f), true
	case lattice.Bool:
		b, ok := scalarToBool(v)
		if !ok {
			return docvalue.Value{}, false
		}

		return docvalue.NewScalar(lattice.Bool, b), true
	default:
		return docvalue.Value{}, false
	}
}

func scalarToString(v docvalue.Value) (string, bool) {
	switch v.Tag {
	case lattice.String:
		return v.Raw.(string), true
	case lattice.Int32:
		return strconv.FormatInt(int64(v.Raw.(int32)), 10), true
	case lattice.Int64:
		return strconv.FormatInt(v.Raw.(int64), 10), true
	case lattice.Double:
		return strconv.FormatFloat(v.Raw.(float64), 'f', -1, 64), true
	case lattice.Bool:
		return strconv.FormatBool(v.Raw.(bool)), true
	default:
		return "", false
	}
}

func scalarToInt64(v docvalue.Value) (int64, bool) {
	switch v.Tag {
	case lattice.Int32:
		return int64(v.Raw.(int32)), true
	case lattice.Int64:
		return v.Raw.(int64), true
	case lattice.Double:
		return int64(v.Raw.(float64)), true
	case lattice.String:
		n, err := strconv.ParseInt(v.Raw.(string), 10, 64)
		if err != nil {
			return 0, false
		}

		return n, true
	case lattice.Bool:
		if v.Raw.(bool) {
			return 1, true
		}

		return 0, true
	default:
		return 0, false
	}
}

func scalarToFloat(v docvalue.Value) (float64, bool) {
	switch v.Tag {
	case lattice.Int32:
		return float64(v.Raw.(int32)), true
	case lattice.Int64:
		return float64(v.Raw.(int64)), true
	case lattice.Double:
		return v.Raw.(float64), true
	case lattice.String:
		f, err := strconv.ParseFloat(v.Raw.(string), 64)
		if err != nil {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

func scalarToBool(v docvalue.Value) (bool, bool) {
	switch v.Tag {
	case lattice.Bool:
		return v.Raw.(bool), true
	case lattice.String:
		b, err := strconv.ParseBool(v.Raw.(string))
		if err != nil {
			return false, false
		}

		return b, true
	case lattice.Int32:
		return v.Raw.(int32) != 0, true
	case lattice.Int64:
		return v.Raw.(int64) != 0, true
	default:
		return false, false
	}
}

// getAt, setAt and unsetAt navigate/copy-on-write a docvalue.Value tree by
// path, mirroring adapter/memadapter's setPath/unsetPath — duplicated
// rather than shared because memadapter's are deliberately unexported
// fixture internals, not a public tree-editing API.
func getAt(doc docvalue.Value, path schema.Path) (docvalue.Value, bool) {
	if len(path) == 0 {
		return doc, true
	}

	if doc.Object == nil {
		return docvalue.Value{}, false
	}

	child, ok := doc.Object[path[0]]
	if !ok {
		return docvalue.Value{}, false
	}

	return getAt(child, path[1:])
}

func setAt(doc docvalue.Value, path schema.Path, value docvalue.Value) docvalue.Value {
	if len(path) == 0 {
		return value
	}

	if doc.Object == nil {
		doc = docvalue.NewObject(map[string]docvalue.Value{})
	}

	cp := make(map[string]docvalue.Value, len(doc.Object)+1)
	for k, v := range doc.Object {
		cp[k] = v
	}

	cp[path[0]] = setAt(cp[path[0]], path[1:], value)
	doc.Object = cp

	return doc
}

func unsetAt(doc docvalue.Value, path schema.Path) docvalue.Value {
	if len(path) == 0 || doc.Object == nil {
		return doc
	}

	cp := make(map[string]docvalue.Value, len(doc.Object))
	for k, v := range doc.Object {
		cp[k] = v
	}

	if len(path) == 1 {
		delete(cp, path[0])
	} else if child, ok := cp[path[0]]; ok {
		cp[path[0]] = unsetAt(child, path[1:])
	}

	doc.Object = cp

	return doc
}
