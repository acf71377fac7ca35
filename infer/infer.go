package infer

import (
	"go.schemadrift.dev/mschema/docvalue"
	"go.schemadrift.dev/mschema/lattice"
	"go.schemadrift.dev/mschema/schema"
)

// AnomalyKind classifies one of the spec §4.2 non-fatal anomaly outputs.
type AnomalyKind int

const (
	MultiType AnomalyKind = iota
	LowPresence
	HighNullRate
	UnionItems
)

// String implements [fmt.Stringer].
func (k AnomalyKind) String() string {
	switch k {
	case MultiType:
		return "multi_type"
	case LowPresence:
		return "low_presence"
	case HighNullRate:
		return "high_null_rate"
	case UnionItems:
		return "union_items"
	default:
		return "unknown"
	}
}

// Anomaly is one non-fatal observation attached to an [Result] (spec
// §4.2's anomaly outputs: multi-type fields, presence < 0.9, null_rate >
// 0.1, and arrays whose items type is itself a union).
type Anomaly struct {
	Kind AnomalyKind
	Path schema.Path
}

// Result is the spec §4.2 inference-engine output.
type Result struct {
	Schema      *schema.Node
	Anomalies   []Anomaly
	SampleCount int64
}

// Infer builds a schema tree from an already-drawn document sample (spec
// §4.2 steps 2-6). It never fails: every docvalue.Value is well-formed by
// construction, so there is no format to reject.
func Infer(docs []docvalue.Value) Result {
	root := newAcc()
	for _, d := range docs {
		root.observe(d)
	}

	total := int64(len(docs))

	node, anomalies := root.finalize(schema.Path{}, total, false)

	return Result{Schema: node, Anomalies: anomalies, SampleCount: total}
}

// acc accumulates per-path observations: how many times the path's value
// was present (n, spec §4.2's "observation count"), a tag histogram
// (including lattice.Null, so null_rate derives from it directly), and
// recursive sub-state for object and array values.
type acc struct {
	n              int64
	tagCount       map[lattice.Tag]int64
	objectChildren map[string]*acc
	arrayItem      *acc
}

func newAcc() *acc {
	return &acc{tagCount: make(map[lattice.Tag]int64)}
}

// observe records one occurrence of v against this node. Missing fields
// are never observed here — callers only call observe when the field was
// present in the parent, per spec §4.2 step 3.
func (a *acc) observe(v docvalue.Value) {
	a.n++
	a.tagCount[v.Tag]++

	switch v.Tag {
	case lattice.Object:
		for name, child := range v.Object {
			if a.objectChildren == nil {
				a.objectChildren = make(map[string]*acc)
			}

			sub, ok := a.objectChildren[name]
			if !ok {
				sub = newAcc()
				a.objectChildren[name] = sub
			}

			sub.observe(child)
		}
	case lattice.Array:
		if a.arrayItem == nil {
			a.arrayItem = newAcc()
		}

		for _, elem := range v.Array {
			a.arrayItem.observe(elem)
		}
	}
}

// finalize turns a's accumulated observations into a schema.Node relative
// to parentN (the containing node's own observation count, spec §4.2
// step 4's "total_docs_at_parent"), plus every anomaly rooted at path or
// below. forItem marks a's that accumulate an array's elements rather
// than a field's observations: presence/null-rate there is a per-element
// average, not a bounded containment fraction, so low_presence and
// high_null_rate are not evaluated for it.
func (a *acc) finalize(path schema.Path, parentN int64, forItem bool) (*schema.Node, []Anomaly) {
	types := make(lattice.Set, len(a.tagCount))
	for t := range a.tagCount {
		types[t] = struct{}{}
	}

	stats := schema.Stats{SampleCount: a.n}
	if parentN > 0 {
		stats.Presence = float64(a.n) / float64(parentN)
	}

	if a.n > 0 {
		stats.NullRate = float64(a.tagCount[lattice.Null]) / float64(a.n)
	}

	nonNull := nonNullTagCount(types)

	var (
		node      *schema.Node
		anomalies []Anomaly
	)

	switch {
	case nonNull == 1 && types.Contains(lattice.Object):
		node = schema.NewObject(types)
		node.Properties, anomalies = a.finalizeChildren(path)
	case nonNull == 1 && types.Contains(lattice.Array):
		items := a.arrayItem
		if items == nil {
			items = newAcc()
		}

		itemNode, itemAnoms := items.finalize(path.Child("[]"), a.n, true)

		node = schema.NewArray(types, itemNode)
		anomalies = itemAnoms

		if nonNullTagCount(itemNode.Types) > 1 {
			anomalies = append(anomalies, Anomaly{Kind: UnionItems, Path: path})
		}
	default:
		node = schema.NewLeaf(types)
	}

	node.TypeFreq = a.tagCount
	node.Stats = stats

	if nonNull > 1 {
		anomalies = append(anomalies, Anomaly{Kind: MultiType, Path: path})
	}

	if path.Depth() > 0 && !forItem {
		if stats.Presence < 0.9 {
			anomalies = append(anomalies, Anomaly{Kind: LowPresence, Path: path})
		}

		if stats.NullRate > 0.1 {
			anomalies = append(anomalies, Anomaly{Kind: HighNullRate, Path: path})
		}
	}

	return node, anomalies
}

func (a *acc) finalizeChildren(path schema.Path) (map[string]*schema.Node, []Anomaly) {
	props := make(map[string]*schema.Node, len(a.objectChildren))

	var anomalies []Anomaly

	for name, sub := range a.objectChildren {
		childNode, childAnoms := sub.finalize(path.Child(name), a.n, false)
		props[name] = childNode
		anomalies = append(anomalies, childAnoms...)
	}

	return props, anomalies
}

func nonNullTagCount(s lattice.Set) int {
	n := s.Len()
	if s.Contains(lattice.Null) {
		n--
	}

	return n
}
