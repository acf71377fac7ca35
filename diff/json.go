package diff

import "go.schemadrift.dev/mschema/lattice"

// WireTypeChange is the "from"/"to" body of a changed_fields entry (spec
// §6.2). Which of Type/Required is populated depends on which rule fired;
// a path with both a type_changed and a presence_changed record collapses
// to one wire entry carrying both sides.
type WireTypeChange struct {
	Type     []string `json:"type,omitempty"`
	Required *bool    `json:"required,omitempty"`
}

// WireChangedField is one entry of the §6.2 "changed_fields" array.
type WireChangedField struct {
	Field string         `json:"field"`
	From  WireTypeChange `json:"from"`
	To    WireTypeChange `json:"to"`
}

// WireSummary is the §6.2 "summary" object.
type WireSummary struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Changed int `json:"changed"`
}

// WireSet is the §6.2 change-set document shape, embeddable by callers
// (the drift package embeds it and appends severity/drift_score/has_drift,
// spec §4.4/§6.2).
type WireSet struct {
	AddedFields   []string           `json:"added_fields"`
	RemovedFields []string           `json:"removed_fields"`
	ChangedFields []WireChangedField `json:"changed_fields"`
	Summary       WireSummary        `json:"summary"`
}

// ToWire converts s into its §6.2 JSON shape. changed_fields groups every
// Change sharing a path into a single entry, since a path can carry both
// a type_changed and a presence_changed record.
func (s Set) ToWire() WireSet {
	added := make([]string, 0, len(s.Added))
	for _, c := range s.Added {
		added = append(added, c.Path.String())
	}

	removed := make([]string, 0, len(s.Removed))
	for _, c := range s.Removed {
		removed = append(removed, c.Path.String())
	}

	order := make([]string, 0, len(s.Changed))
	byPath := make(map[string]*WireChangedField, len(s.Changed))

	for _, c := range s.Changed {
		key := c.Path.String()

		entry, ok := byPath[key]
		if !ok {
			entry = &WireChangedField{Field: key}
			byPath[key] = entry
			order = append(order, key)
		}

		applyChange(entry, c)
	}

	changed := make([]WireChangedField, 0, len(order))
	for _, key := range order {
		changed = append(changed, *byPath[key])
	}

	sum := s.Summary()

	return WireSet{
		AddedFields:   added,
		RemovedFields: removed,
		ChangedFields: changed,
		Summary:       WireSummary{Added: sum.Added, Removed: sum.Removed, Changed: sum.Changed},
	}
}

func applyChange(entry *WireChangedField, c Change) {
	switch c.Kind {
	case TypeChanged, ItemsChanged:
		entry.From.Type = tagNames(c.FromType)
		entry.To.Type = tagNames(c.ToType)
	case PresenceChanged:
		from, to := c.FromRequired, c.ToRequired
		entry.From.Required = &from
		entry.To.Required = &to
	}
}

func tagNames(s lattice.Set) []string {
	tags := lattice.Sorted(s, nil)
	names := make([]string, 0, len(tags))

	for _, t := range tags {
		names = append(names, string(t))
	}

	return names
}
