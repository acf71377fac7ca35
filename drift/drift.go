package drift

import (
	"cmp"
	"fmt"
	"slices"

	"go.schemadrift.dev/mschema/diff"
	"go.schemadrift.dev/mschema/lattice"
	"go.schemadrift.dev/mschema/schema"
)

// Level is a drift severity, ordered info < warning < critical.
type Level int

const (
	Info Level = iota
	Warning
	Critical
)

// String implements [fmt.Stringer].
func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Severity is one entry of the spec §6.2 "severity" list.
type Severity struct {
	Level   Level
	Field   string
	Message string
}

// Result is the spec §4.4 drift-engine output: the change set (with
// suppressed narrowing changes removed), its severities, and the score.
type Result struct {
	Changes    diff.Set
	Severities []Severity
	DriftScore float64
	HasDrift   bool
}

// Detect compares expected against observed (an already-inferred live
// schema, spec §4.2) and classifies the result (spec §4.4).
//
// Asymmetry versus [diff.Diff]: a field added in observed is "new in live
// data" (info); a field removed from observed is "declared but missing in
// live" (warning); a type_changed on a field present in both is critical,
// UNLESS observed's type set is a strict subset of expected's — expected
// already covers every type actually seen, so that direction is not drift
// and is dropped from the returned change set entirely (spec §4.4's
// widening-direction asymmetry).
func Detect(expected, observed *schema.Node) Result {
	raw := diff.Diff(expected, observed)

	var (
		severities []Severity
		changed    []diff.Change
	)

	for _, c := range raw.Added {
		severities = append(severities, Severity{
			Level: Info, Field: c.Path.String(),
			Message: "field present in live data but not declared in the schema",
		})
	}

	for _, c := range raw.Removed {
		severities = append(severities, Severity{
			Level: Warning, Field: c.Path.String(),
			Message: "field declared in the schema but missing from live data",
		})
	}

	for _, c := range raw.Changed {
		switch c.Kind {
		case diff.TypeChanged, diff.ItemsChanged:
			if narrows(c.FromType, c.ToType) {
				continue
			}

			changed = append(changed, c)
			severities = append(severities, Severity{
				Level: Critical, Field: c.Path.String(),
				Message: fmt.Sprintf("observed type %s disagrees with declared type %s", c.ToType, c.FromType),
			})
		case diff.PresenceChanged:
			changed = append(changed, c)
			severities = append(severities, Severity{
				Level: Warning, Field: c.Path.String(),
				Message: "required-ness disagrees between declared schema and live data",
			})
		case diff.Added, diff.Removed:
		}
	}

	slices.SortFunc(severities, func(a, b Severity) int {
		if c := cmp.Compare(a.Field, b.Field); c != 0 {
			return c
		}

		return cmp.Compare(b.Level, a.Level)
	})

	changes := diff.Set{Added: raw.Added, Removed: raw.Removed, Changed: changed}

	return Result{
		Changes:    changes,
		Severities: severities,
		DriftScore: score(severities, expected),
		HasDrift:   hasDrift(severities),
	}
}

// narrows reports whether to is a strict subset of from — observed data
// used only a subset of the types the schema already declares. That
// direction can never make existing declared validation reject live data,
// so it is not drift (spec §4.4, §9's drift-asymmetry invariant).
func narrows(from, to lattice.Set) bool {
	return to.Subset(from) && !to.Equal(from)
}

func score(severities []Severity, expected *schema.Node) float64 {
	var critical, warning, info int

	for _, s := range severities {
		switch s.Level {
		case Critical:
			critical++
		case Warning:
			warning++
		case Info:
			info++
		}
	}

	raw := 0.5*float64(critical) + 0.2*float64(warning) + 0.05*float64(info)
	if raw > 1 {
		raw = 1
	}

	denom := schema.CountFields(expected)
	if denom < 1 {
		denom = 1
	}

	v := raw / float64(denom)

	return float64(int64(v*100+0.5)) / 100
}

func hasDrift(severities []Severity) bool {
	for _, s := range severities {
		if s.Level >= Warning {
			return true
		}
	}

	return false
}
