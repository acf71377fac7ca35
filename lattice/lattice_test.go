package lattice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.schemadrift.dev/mschema/lattice"
)

func TestWiden(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		sets []lattice.Set
		want lattice.Set
	}{
		"equal tags collapse": {
			sets: []lattice.Set{lattice.NewSet(lattice.String), lattice.NewSet(lattice.String)},
			want: lattice.NewSet(lattice.String),
		},
		"null retained as member": {
			sets: []lattice.Set{lattice.NewSet(lattice.String), lattice.NewSet(lattice.Null)},
			want: lattice.NewSet(lattice.String, lattice.Null),
		},
		"numeric tags do not collapse": {
			sets: []lattice.Set{
				lattice.NewSet(lattice.Int32),
				lattice.NewSet(lattice.Int64),
				lattice.NewSet(lattice.Double),
				lattice.NewSet(lattice.Decimal),
			},
			want: lattice.NewSet(lattice.Int32, lattice.Int64, lattice.Double, lattice.Decimal),
		},
		"other tag pairs union": {
			sets: []lattice.Set{lattice.NewSet(lattice.String), lattice.NewSet(lattice.Bool)},
			want: lattice.NewSet(lattice.String, lattice.Bool),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := lattice.Widen(tc.sets...)
			assert.True(t, got.Equal(tc.want), "got %v want %v", got, tc.want)
		})
	}
}

func TestWidenIsSupersetOfInputs(t *testing.T) {
	t.Parallel()

	a := lattice.NewSet(lattice.String, lattice.Null)
	b := lattice.NewSet(lattice.Int32)

	got := lattice.Widen(a, b)

	assert.True(t, a.Subset(got))
	assert.True(t, b.Subset(got))
}

func TestWidenCommutativeAndAssociative(t *testing.T) {
	t.Parallel()

	a := lattice.NewSet(lattice.String)
	b := lattice.NewSet(lattice.Int32, lattice.Null)
	c := lattice.NewSet(lattice.Bool)

	commutative := lattice.Widen(a, b)
	reversed := lattice.Widen(b, a)
	assert.True(t, commutative.Equal(reversed))

	leftAssoc := lattice.Widen(lattice.Widen(a, b), c)
	rightAssoc := lattice.Widen(a, lattice.Widen(b, c))
	assert.True(t, leftAssoc.Equal(rightAssoc))
}

func TestSortedFrequencyThenLex(t *testing.T) {
	t.Parallel()

	// String and Int32 tie at frequency 5, so the lexicographic tie-break
	// puts Int32 first; Bool trails both at frequency 1.
	s := lattice.NewSet(lattice.String, lattice.Int32, lattice.Bool)
	freq := map[lattice.Tag]int64{
		lattice.String: 5,
		lattice.Int32:  5,
		lattice.Bool:   1,
	}

	got := lattice.Sorted(s, freq)
	assert.Equal(t, []lattice.Tag{lattice.Int32, lattice.String, lattice.Bool}, got)
}

func TestTagValid(t *testing.T) {
	t.Parallel()

	assert.True(t, lattice.String.Valid())
	assert.False(t, lattice.Tag("mixed").Valid())
}
