package drift

import "go.schemadrift.dev/mschema/diff"

// WireSeverity is one entry of the §6.2 "severity" array.
type WireSeverity struct {
	Level   string `json:"level"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// WireIndexHint is one entry of the advisory "index_hints" array
// (SPEC_FULL.md's supplement to spec §4.4's advisory index-recommendation
// mention). Omitted from the document when no hints were computed.
type WireIndexHint struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// WireResult is the full §6.2 drift document: the diff change-set shape
// plus severity, drift_score, has_drift, and the advisory index_hints.
type WireResult struct {
	diff.WireSet
	Severity   []WireSeverity  `json:"severity"`
	DriftScore float64         `json:"drift_score"`
	HasDrift   bool            `json:"has_drift"`
	IndexHints []WireIndexHint `json:"index_hints,omitempty"`
}

// ToWire renders r into the §6.2 JSON document. hints is optional and
// supplemental to the spec; pass nil to omit index_hints entirely.
func (r Result) ToWire(hints []IndexHint) WireResult {
	severities := make([]WireSeverity, 0, len(r.Severities))
	for _, s := range r.Severities {
		severities = append(severities, WireSeverity{Level: s.Level.String(), Field: s.Field, Message: s.Message})
	}

	var wireHints []WireIndexHint

	for _, h := range hints {
		wireHints = append(wireHints, WireIndexHint{Field: h.Field, Reason: h.Reason})
	}

	return WireResult{
		WireSet:    r.Changes.ToWire(),
		Severity:   severities,
		DriftScore: r.DriftScore,
		HasDrift:   r.HasDrift,
		IndexHints: wireHints,
	}
}
