package validator

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"go.schemadrift.dev/mschema/schema"
)

// Document is the database engine's native validator document (spec §6.4):
// JSON-Schema shaped, but using "bsonType" in place of the standard
// "type"/"types" keywords.
type Document = json.RawMessage

// Project converts a schema tree into its validator document (spec §4.5).
// It performs no I/O and never fails on well-formed input; the only error
// path is a JSON encoding failure, which cannot occur for the schema
// shapes this package builds.
func Project(n *schema.Node) (Document, error) {
	raw, err := json.Marshal(project(n))
	if err != nil {
		return nil, fmt.Errorf("project validator: %w", err)
	}

	renamed, err := renameTypeToBsonType(raw)
	if err != nil {
		return nil, fmt.Errorf("project validator: %w", err)
	}

	return renamed, nil
}

// project builds the intermediate draft-7 representation using
// jsonschema-go's Schema type, reusing its deterministic PropertyOrder-
// driven marshaling (see [jsonschema.Schema]) before the bsonType rename
// pass. Union types emit Types (an array of names); a singleton type set
// emits the scalar Type field, matching spec §4.5's "union types emit an
// array of type names."
func project(n *schema.Node) *jsonschema.Schema {
	if n == nil {
		return &jsonschema.Schema{}
	}

	s := &jsonschema.Schema{}

	tags := n.SortedTypes()
	names := make([]string, 0, len(tags))

	for _, t := range tags {
		names = append(names, string(t))
	}

	switch len(names) {
	case 0:
	case 1:
		s.Type = names[0]
	default:
		s.Types = names
	}

	switch n.Kind {
	case schema.KindObject:
		s.Properties = make(map[string]*jsonschema.Schema, len(n.Properties))

		order := n.OrderedFields()

		var required []string

		for _, name := range order {
			child := n.Properties[name]
			s.Properties[name] = project(child)

			if child.Stats.Required() {
				required = append(required, name)
			}
		}

		s.PropertyOrder = order
		s.Required = required
	case schema.KindArray:
		s.Items = project(n.Items)
	}

	return s
}

// renameTypeToBsonType walks the encoded draft-7 JSON and renames every
// "type"/"types" key to "bsonType", recursing into "properties" and
// "items". This is the one place the projection deviates from plain JSON
// Schema, matching the database engine's own validator vocabulary.
func renameTypeToBsonType(raw []byte) ([]byte, error) {
	var v any

	err := json.Unmarshal(raw, &v)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	renameKeys(v)

	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return out, nil
}

func renameKeys(v any) {
	switch node := v.(type) {
	case map[string]any:
		for _, key := range []string{"type", "types"} {
			t, ok := node[key]
			if !ok {
				continue
			}

			node["bsonType"] = t
			delete(node, key)
		}

		for _, val := range node {
			renameKeys(val)
		}
	case []any:
		for _, item := range node {
			renameKeys(item)
		}
	}
}
