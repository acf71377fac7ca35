package plan

import "go.schemadrift.dev/mschema/lattice"

// WireOperation is one entry of the spec §6.3 plan file: "op" (the tag),
// "path", and operation-specific fields.
type WireOperation struct {
	Op            string   `json:"op"`
	Path          string   `json:"path"`
	Type          []string `json:"type,omitempty"`
	HasDefault    bool     `json:"has_default,omitempty"`
	RequiresInput bool     `json:"requires_input,omitempty"`
}

// WirePlan is the spec §6.3 plan file shape: a list of operations in
// compiled (§4.6) order.
type WirePlan struct {
	Operations []WireOperation `json:"operations"`
}

// ToWire converts p into its §6.3 JSON shape.
func (p Plan) ToWire() WirePlan {
	ops := make([]WireOperation, 0, len(p.Operations))

	for _, op := range p.Operations {
		ops = append(ops, WireOperation{
			Op:            op.Kind.String(),
			Path:          op.Path.String(),
			Type:          tagNames(op.Type),
			HasDefault:    op.HasDefault,
			RequiresInput: op.RequiresInput,
		})
	}

	return WirePlan{Operations: ops}
}

func tagNames(s lattice.Set) []string {
	if len(s) == 0 {
		return nil
	}

	tags := lattice.Sorted(s, nil)
	names := make([]string, 0, len(tags))

	for _, t := range tags {
		names = append(names, string(t))
	}

	return names
}
