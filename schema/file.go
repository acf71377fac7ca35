package schema

import (
	"errors"
	"fmt"

	goyaml "github.com/goccy/go-yaml"

	"go.schemadrift.dev/mschema/lattice"
)

// Sentinel errors for the declarative schema file format (spec §6.1, §7
// "schema-format error").
var (
	ErrInvalidFormat  = errors.New("invalid schema file")
	ErrUnsupportedVer = errors.New("unsupported schema file version")
	ErrMixedType      = errors.New(`"mixed" bsonType is not supported; use an array of types`)
)

// CurrentVersion is the only schema file version this package emits and
// accepts.
const CurrentVersion = 1

// File is the top-level declarative schema document (spec §6.1).
type File struct {
	Version int
	Root    *Node
}

// wireNode mirrors the §6.1 YAML shape for a single schema node.
// Presence round-trips to two decimal places. Unknown keys are captured in
// Extra while parsing but are not kept on the resulting [Node], so [Emit]
// does not write them back.
type wireNode struct {
	BsonType   any             `yaml:"bsonType,omitempty"`
	Presence   *float64        `yaml:"presence,omitempty"`
	Nullable   bool            `yaml:"nullable,omitempty"`
	Items      *wireNode       `yaml:"items,omitempty"`
	Properties goyaml.MapSlice `yaml:"properties,omitempty"`
	Extra      map[string]any  `yaml:",inline"`
}

type wireFile struct {
	Version int       `yaml:"version"`
	Schema  *wireNode `yaml:"schema"`
}

// Emit renders f in the §6.1 declarative YAML form, with deterministic
// field ordering (spec §3) and two-decimal presence statistics.
func Emit(f *File) ([]byte, error) {
	wn, err := toWire(f.Root)
	if err != nil {
		return nil, err
	}

	// The root document is always an implicit object; §6.1's example omits
	// its bsonType, so we do too.
	wn.BsonType = nil

	wf := wireFile{Version: f.Version, Schema: wn}

	out, err := goyaml.MarshalWithOptions(wf, goyaml.Indent(2))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	return out, nil
}

func toWire(n *Node) (*wireNode, error) {
	if n == nil {
		return nil, nil
	}

	wn := &wireNode{Nullable: n.IsNullable()}

	tags := n.SortedTypes()
	names := make([]string, 0, len(tags))

	for _, t := range tags {
		if t == lattice.Null {
			continue // represented via the nullable key, not bsonType
		}

		names = append(names, string(t))
	}

	switch {
	case len(names) == 1:
		wn.BsonType = names[0]
	case len(names) == 0:
		// A field observed only as null; fall back to a permissive marker.
		wn.BsonType = []string{}
	default:
		wn.BsonType = names
	}

	if n.Stats.SampleCount > 0 {
		p := round2(n.Stats.Presence)
		wn.Presence = &p
	}

	switch n.Kind {
	case KindObject:
		for _, name := range n.OrderedFields() {
			child, err := toWire(n.Properties[name])
			if err != nil {
				return nil, err
			}

			wn.Properties = append(wn.Properties, goyaml.MapItem{Key: name, Value: child})
		}
	case KindArray:
		items, err := toWire(n.Items)
		if err != nil {
			return nil, err
		}

		wn.Items = items
	}

	return wn, nil
}

// Parse reads the §6.1 declarative YAML form into a [File].
func Parse(data []byte) (*File, error) {
	var wf wireFile

	err := goyaml.UnmarshalWithOptions(data, &wf, goyaml.UseOrderedMap())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	if wf.Version == 0 {
		wf.Version = CurrentVersion
	}

	if wf.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVer, wf.Version, CurrentVersion)
	}

	root, err := fromWire(wf.Schema, Path{})
	if err != nil {
		return nil, err
	}

	return &File{Version: wf.Version, Root: root}, nil
}

func fromWire(wn *wireNode, at Path) (*Node, error) {
	if wn == nil {
		return NewLeaf(lattice.NewSet(lattice.Null)), nil
	}

	tagNames, err := bsonTypeNames(wn.BsonType, at)
	if err != nil {
		return nil, err
	}

	tagSet := make(lattice.Set, len(tagNames))

	for _, name := range tagNames {
		tag := lattice.Tag(name)
		if !tag.Valid() {
			return nil, fmt.Errorf("%w: path %q: unknown bsonType %q", ErrInvalidFormat, at.String(), name)
		}

		tagSet[tag] = struct{}{}
	}

	if wn.Nullable {
		tagSet[lattice.Null] = struct{}{}
	}

	if len(tagSet) == 0 {
		// No explicit bsonType (the root "schema:" node commonly omits it):
		// infer the structural shape from whichever child field is present.
		switch {
		case len(wn.Properties) > 0:
			tagSet[lattice.Object] = struct{}{}
		case wn.Items != nil:
			tagSet[lattice.Array] = struct{}{}
		default:
			tagSet[lattice.Null] = struct{}{}
		}
	}

	var n *Node

	switch {
	case tagSet.Contains(lattice.Object) && len(wn.Properties) > 0:
		n = NewObject(tagSet)

		for _, item := range wn.Properties {
			name, ok := item.Key.(string)
			if !ok {
				return nil, fmt.Errorf("%w: path %q: non-string property key", ErrInvalidFormat, at.String())
			}

			childWire, ok := item.Value.(*wireNode)
			if !ok {
				// goccy/go-yaml decodes untyped map values as map[string]any
				// when the static type isn't known from context; re-decode.
				childWire, err = reinterpretWireNode(item.Value)
				if err != nil {
					return nil, fmt.Errorf("%w: path %q.%q: %w", ErrInvalidFormat, at.String(), name, err)
				}
			}

			child, err := fromWire(childWire, at.Child(name))
			if err != nil {
				return nil, err
			}

			n.Properties[name] = child
		}
	case tagSet.Contains(lattice.Array):
		items, err := fromWire(wn.Items, at.Child("[]"))
		if err != nil {
			return nil, err
		}

		n = NewArray(tagSet, items)
	default:
		n = NewLeaf(tagSet)
	}

	if wn.Presence != nil {
		n.Stats.Presence = *wn.Presence
		n.Stats.SampleCount = 1
	}

	return n, nil
}

// bsonTypeNames normalizes the bsonType field, which may be a single
// string or a list of strings, rejecting the removed "mixed" sentinel.
func bsonTypeNames(v any, at Path) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if val == "mixed" {
			return nil, fmt.Errorf("%w: path %q", ErrMixedType, at.String())
		}

		return []string{val}, nil
	case []string:
		return rejectMixed(val, at)
	case []any:
		names := make([]string, 0, len(val))

		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: path %q: bsonType entry not a string", ErrInvalidFormat, at.String())
			}

			names = append(names, s)
		}

		return rejectMixed(names, at)
	default:
		return nil, fmt.Errorf("%w: path %q: unsupported bsonType value", ErrInvalidFormat, at.String())
	}
}

func rejectMixed(names []string, at Path) ([]string, error) {
	for _, n := range names {
		if n == "mixed" {
			return nil, fmt.Errorf("%w: path %q", ErrMixedType, at.String())
		}
	}

	return names, nil
}

// reinterpretWireNode re-marshals a loosely-typed map (as produced when
// goccy/go-yaml decodes a properties value without static typing) back
// into a *wireNode.
func reinterpretWireNode(v any) (*wireNode, error) {
	b, err := goyaml.Marshal(v)
	if err != nil {
		return nil, err
	}

	var wn wireNode

	err = goyaml.UnmarshalWithOptions(b, &wn, goyaml.UseOrderedMap())
	if err != nil {
		return nil, err
	}

	return &wn, nil
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
