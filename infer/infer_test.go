package infer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.schemadrift.dev/mschema/docvalue"
	"go.schemadrift.dev/mschema/infer"
	"go.schemadrift.dev/mschema/lattice"
)

func doc(fields map[string]docvalue.Value) docvalue.Value {
	return docvalue.NewObject(fields)
}

func str(s string) docvalue.Value { return docvalue.NewScalar(lattice.String, s) }
func i32(n int32) docvalue.Value  { return docvalue.NewScalar(lattice.Int32, n) }

func TestInferUniformFields(t *testing.T) {
	t.Parallel()

	docs := []docvalue.Value{
		doc(map[string]docvalue.Value{"name": str("a"), "age": i32(1)}),
		doc(map[string]docvalue.Value{"name": str("b"), "age": i32(2)}),
	}

	result := infer.Infer(docs)

	require.NotNil(t, result.Schema)
	assert.Equal(t, int64(2), result.SampleCount)

	name := result.Schema.Properties["name"]
	require.NotNil(t, name)
	assert.True(t, name.Types.Contains(lattice.String))
	assert.Equal(t, 1.0, name.Stats.Presence)
	assert.True(t, name.Stats.Required())

	assert.Empty(t, result.Anomalies)
}

func TestInferLowPresenceAnomaly(t *testing.T) {
	t.Parallel()

	docs := []docvalue.Value{
		doc(map[string]docvalue.Value{"name": str("a"), "nickname": str("x")}),
		doc(map[string]docvalue.Value{"name": str("b")}),
		doc(map[string]docvalue.Value{"name": str("c")}),
		doc(map[string]docvalue.Value{"name": str("d")}),
		doc(map[string]docvalue.Value{"name": str("e")}),
		doc(map[string]docvalue.Value{"name": str("f")}),
		doc(map[string]docvalue.Value{"name": str("g")}),
		doc(map[string]docvalue.Value{"name": str("h")}),
		doc(map[string]docvalue.Value{"name": str("i")}),
		doc(map[string]docvalue.Value{"name": str("j")}),
	}

	result := infer.Infer(docs)

	nickname := result.Schema.Properties["nickname"]
	require.NotNil(t, nickname)
	assert.InDelta(t, 0.1, nickname.Stats.Presence, 0.001)

	found := false

	for _, a := range result.Anomalies {
		if a.Kind == infer.LowPresence && a.Path.String() == "nickname" {
			found = true
		}
	}

	assert.True(t, found)
}

func TestInferHighNullRateAnomaly(t *testing.T) {
	t.Parallel()

	docs := []docvalue.Value{
		doc(map[string]docvalue.Value{"deleted_at": docvalue.Null}),
		doc(map[string]docvalue.Value{"deleted_at": docvalue.Null}),
		doc(map[string]docvalue.Value{"deleted_at": str("2024-01-01")}),
	}

	result := infer.Infer(docs)

	field := result.Schema.Properties["deleted_at"]
	require.NotNil(t, field)
	assert.InDelta(t, 2.0/3.0, field.Stats.NullRate, 0.001)

	found := false

	for _, a := range result.Anomalies {
		if a.Kind == infer.HighNullRate {
			found = true
		}
	}

	assert.True(t, found)
}

func TestInferMultiTypeAnomaly(t *testing.T) {
	t.Parallel()

	docs := []docvalue.Value{
		doc(map[string]docvalue.Value{"age": i32(30)}),
		doc(map[string]docvalue.Value{"age": str("thirty")}),
	}

	result := infer.Infer(docs)

	age := result.Schema.Properties["age"]
	require.NotNil(t, age)
	assert.True(t, age.Types.Contains(lattice.Int32))
	assert.True(t, age.Types.Contains(lattice.String))

	found := false

	for _, a := range result.Anomalies {
		if a.Kind == infer.MultiType && a.Path.String() == "age" {
			found = true
		}
	}

	assert.True(t, found)
}

func TestInferNestedObjectRecurses(t *testing.T) {
	t.Parallel()

	docs := []docvalue.Value{
		doc(map[string]docvalue.Value{
			"address": doc(map[string]docvalue.Value{"city": str("nyc")}),
		}),
	}

	result := infer.Infer(docs)

	address := result.Schema.Properties["address"]
	require.NotNil(t, address)

	city := address.Properties["city"]
	require.NotNil(t, city)
	assert.True(t, city.Types.Contains(lattice.String))
}

func TestInferArrayUnionItemsAnomaly(t *testing.T) {
	t.Parallel()

	docs := []docvalue.Value{
		doc(map[string]docvalue.Value{
			"tags": docvalue.NewArray([]docvalue.Value{str("a"), i32(1)}),
		}),
	}

	result := infer.Infer(docs)

	tags := result.Schema.Properties["tags"]
	require.NotNil(t, tags)
	require.NotNil(t, tags.Items)
	assert.True(t, tags.Items.Types.Contains(lattice.String))
	assert.True(t, tags.Items.Types.Contains(lattice.Int32))

	found := false

	for _, a := range result.Anomalies {
		if a.Kind == infer.UnionItems && a.Path.String() == "tags" {
			found = true
		}
	}

	assert.True(t, found)
}

func TestInferDeterministicUpToOrder(t *testing.T) {
	t.Parallel()

	build := func() []docvalue.Value {
		return []docvalue.Value{
			doc(map[string]docvalue.Value{"name": str("a"), "age": i32(1)}),
			doc(map[string]docvalue.Value{"name": str("b"), "age": i32(2)}),
		}
	}

	a := infer.Infer(build())
	b := infer.Infer(build())

	assert.True(t, a.Schema.Equal(b.Schema))
}
