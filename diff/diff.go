package diff

import (
	"cmp"
	"slices"

	"go.schemadrift.dev/mschema/lattice"
	"go.schemadrift.dev/mschema/schema"
)

// Kind tags the shape of a single change record (spec §3's change record C).
type Kind int

const (
	Added Kind = iota
	Removed
	TypeChanged
	PresenceChanged
	ItemsChanged
)

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case TypeChanged:
		return "type_changed"
	case PresenceChanged:
		return "presence_changed"
	case ItemsChanged:
		return "items_changed"
	default:
		return "unknown"
	}
}

// Change is one tagged change record. Which fields are populated depends
// on Kind: Added uses ToType; Removed uses FromType; TypeChanged and
// ItemsChanged use both; PresenceChanged uses FromRequired/ToRequired.
type Change struct {
	Kind         Kind
	Path         schema.Path
	FromType     lattice.Set
	ToType       lattice.Set
	FromRequired bool
	ToRequired   bool
}

// Set is the grouped, path-sorted output of [Diff] (spec §4.3/§6.2).
type Set struct {
	Added   []Change
	Removed []Change
	Changed []Change
}

// Summary is the §6.2 "summary" block.
type Summary struct {
	Added   int
	Removed int
	Changed int
}

// Summary computes the change-set's summary counts.
func (s Set) Summary() Summary {
	return Summary{Added: len(s.Added), Removed: len(s.Removed), Changed: len(s.Changed)}
}

// Diff computes the symmetric change set between from and to (spec §4.3).
// It never fails: the diff engine is total over well-formed schema trees.
func Diff(from, to *schema.Node) Set {
	cs := &collector{}
	compare(schema.Path{}, from, to, cs)

	slices.SortFunc(cs.added, func(a, b Change) int { return cmp.Compare(a.Path.String(), b.Path.String()) })
	slices.SortFunc(cs.removed, func(a, b Change) int { return cmp.Compare(a.Path.String(), b.Path.String()) })
	slices.SortFunc(cs.changed, func(a, b Change) int { return cmp.Compare(a.Path.String(), b.Path.String()) })

	return Set{Added: cs.added, Removed: cs.removed, Changed: cs.changed}
}

type collector struct {
	added   []Change
	removed []Change
	changed []Change
}

// compare evaluates the spec §4.3 rules for a single path, present in
// either or both of from/to, then recurses into object properties or
// array items as applicable. The rules are independent, not a priority
// chain: a path can simultaneously be type_changed and presence_changed,
// or items_changed and recurse into the item object's own fields.
func compare(path schema.Path, from, to *schema.Node, cs *collector) {
	switch {
	case from == nil && to == nil:
		return
	case from == nil:
		cs.added = append(cs.added, Change{Kind: Added, Path: path, ToType: to.Types})

		return
	case to == nil:
		cs.removed = append(cs.removed, Change{Kind: Removed, Path: path, FromType: from.Types})

		return
	}

	if !from.Types.Equal(to.Types) {
		cs.changed = append(cs.changed, Change{Kind: TypeChanged, Path: path, FromType: from.Types, ToType: to.Types})
	}

	if from.Stats.Required() != to.Stats.Required() {
		cs.changed = append(cs.changed, Change{
			Kind: PresenceChanged, Path: path,
			FromRequired: from.Stats.Required(), ToRequired: to.Stats.Required(),
		})
	}

	switch {
	case from.Kind == schema.KindObject && to.Kind == schema.KindObject:
		compareChildren(path, from, to, cs)
	case from.Kind == schema.KindArray && to.Kind == schema.KindArray:
		compareItems(path, from, to, cs)
	}
}

// compareChildren walks the union of from's and to's property names.
func compareChildren(path schema.Path, from, to *schema.Node, cs *collector) {
	seen := make(map[string]bool, len(from.Properties)+len(to.Properties))

	for name := range from.Properties {
		seen[name] = true
	}

	for name := range to.Properties {
		seen[name] = true
	}

	for name := range seen {
		compare(path.Child(name), from.Properties[name], to.Properties[name], cs)
	}
}

// compareItems implements "both are arrays whose items type sets differ ->
// items_changed" (spec §4.3). When both item schemas are themselves
// object or array nodes, it additionally recurses into their structure
// under a "[]" pseudo-segment, so nested changes inside arrays of
// subdocuments are reported too — a generalization of the spec's flat
// items-type rule, recorded as a design decision in DESIGN.md.
func compareItems(path schema.Path, from, to *schema.Node, cs *collector) {
	itemsFrom, itemsTo := from.Items, to.Items
	if itemsFrom == nil || itemsTo == nil {
		return
	}

	if !itemsFrom.Types.Equal(itemsTo.Types) {
		cs.changed = append(cs.changed, Change{
			Kind: ItemsChanged, Path: path,
			FromType: itemsFrom.Types, ToType: itemsTo.Types,
		})
	}

	itemPath := path.Child("[]")

	switch {
	case itemsFrom.Kind == schema.KindObject && itemsTo.Kind == schema.KindObject:
		compareChildren(itemPath, itemsFrom, itemsTo, cs)
	case itemsFrom.Kind == schema.KindArray && itemsTo.Kind == schema.KindArray:
		compareItems(itemPath, itemsFrom, itemsTo, cs)
	}
}
