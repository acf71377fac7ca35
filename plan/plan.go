package plan

import (
	"cmp"
	"slices"

	"go.schemadrift.dev/mschema/diff"
	"go.schemadrift.dev/mschema/lattice"
	"go.schemadrift.dev/mschema/schema"
)

// Kind is the tag of a single plan operation (spec §4.6).
type Kind int

const (
	AddField Kind = iota
	RemoveField
	Convert
	WrapArray
	UnwrapArray
	ConvertItems
)

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case AddField:
		return "add_field"
	case RemoveField:
		return "remove_field"
	case Convert:
		return "convert"
	case WrapArray:
		return "wrap_array"
	case UnwrapArray:
		return "unwrap_array"
	case ConvertItems:
		return "convert_items"
	default:
		return "unknown"
	}
}

// Operation is one entry of a [Plan]. Which fields are meaningful depends
// on Kind: AddField uses Type/HasDefault/RequiresInput; RemoveField uses
// only Path; Convert/ConvertItems use Type as the target type set;
// WrapArray's Type is the pre-wrap item type; UnwrapArray's Type is the
// post-unwrap type.
type Operation struct {
	Kind          Kind
	Path          schema.Path
	Type          lattice.Set
	HasDefault    bool
	RequiresInput bool
}

// Plan is the spec §4.6 ordered operation list.
type Plan struct {
	Operations []Operation
}

// Compile derives a plan from the diff of from and to (spec §4.6). It
// never fails: a non-nullable add_field with no default is represented
// via Operation.RequiresInput rather than an error, per spec §7's policy
// that the planner is total.
func Compile(from, to *schema.Node) Plan {
	d := diff.Diff(from, to)

	seen := make(map[string]bool)

	ops := make([]Operation, 0, len(d.Added)+len(d.Removed)+len(d.Changed))

	for _, c := range d.Added {
		ops = append(ops, addFieldOp(c))
		seen[c.Path.String()] = true
	}

	for _, c := range d.Removed {
		ops = append(ops, Operation{Kind: RemoveField, Path: c.Path})
		seen[c.Path.String()] = true
	}

	for _, c := range d.Changed {
		if c.Kind == diff.PresenceChanged {
			continue
		}

		key := c.Path.String()
		if seen[key] {
			continue
		}

		op, ok := changeOp(c)
		if !ok {
			continue
		}

		ops = append(ops, op)
		seen[key] = true
	}

	order(ops)

	return Plan{Operations: ops}
}

// addFieldOp implements rule 1: default is always null unless the
// declared type set excludes null, in which case the operation carries no
// default and is marked as requiring operator input.
func addFieldOp(c diff.Change) Operation {
	op := Operation{Kind: AddField, Path: c.Path, Type: c.ToType}

	if c.ToType.Contains(lattice.Null) {
		op.HasDefault = true
	} else {
		op.RequiresInput = true
	}

	return op
}

// changeOp implements rules 3-6 for a single type_changed or
// items_changed record. ok is false for rule 3's no-op case (strict
// widening), which the planner must not emit as an operation at all.
func changeOp(c diff.Change) (Operation, bool) {
	if c.Kind == diff.ItemsChanged {
		return Operation{Kind: ConvertItems, Path: c.Path, Type: c.ToType}, true
	}

	from, to := c.FromType, c.ToType

	if from.Subset(to) && !from.Equal(to) {
		return Operation{}, false
	}

	fromArray, toArray := from.Contains(lattice.Array), to.Contains(lattice.Array)

	switch {
	case toArray && !fromArray:
		return Operation{Kind: WrapArray, Path: c.Path, Type: from}, true
	case fromArray && !toArray:
		return Operation{Kind: UnwrapArray, Path: c.Path, Type: to}, true
	default:
		return Operation{Kind: Convert, Path: c.Path, Type: to}, true
	}
}

// order implements spec §4.6's ordering: removals first (deepest path
// first), then type changes (any relative order — sorted by path here for
// determinism), then additions (shallowest first). Depth and group both
// tie-break lexicographically by path.
func order(ops []Operation) {
	slices.SortFunc(ops, func(a, b Operation) int {
		if c := cmp.Compare(group(a.Kind), group(b.Kind)); c != 0 {
			return c
		}

		switch group(a.Kind) {
		case groupRemove:
			if c := cmp.Compare(b.Path.Depth(), a.Path.Depth()); c != 0 {
				return c
			}
		case groupAdd:
			if c := cmp.Compare(a.Path.Depth(), b.Path.Depth()); c != 0 {
				return c
			}
		}

		return cmp.Compare(a.Path.String(), b.Path.String())
	})
}

const (
	groupRemove = iota
	groupChange
	groupAdd
)

func group(k Kind) int {
	switch k {
	case RemoveField:
		return groupRemove
	case AddField:
		return groupAdd
	default:
		return groupChange
	}
}
