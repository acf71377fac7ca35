package mongoadapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/v2/bson"

	"go.schemadrift.dev/mschema/docvalue"
	"go.schemadrift.dev/mschema/lattice"
)

func mustRaw(t *testing.T, doc bson.D) bson.Raw {
	t.Helper()

	data, err := bson.Marshal(doc)
	require.NoError(t, err)

	return bson.Raw(data)
}

func TestFromRawPreservesNumericFidelity(t *testing.T) {
	t.Parallel()

	raw := mustRaw(t, bson.D{
		{Key: "i32", Value: int32(7)},
		{Key: "i64", Value: int64(7)},
		{Key: "f64", Value: 1.5},
	})

	v, err := fromRaw(raw)
	require.NoError(t, err)

	assert.Equal(t, lattice.Int32, v.Object["i32"].Tag)
	assert.Equal(t, lattice.Int64, v.Object["i64"].Tag)
	assert.Equal(t, lattice.Double, v.Object["f64"].Tag)
	assert.Equal(t, int32(7), v.Object["i32"].Raw)
	assert.Equal(t, int64(7), v.Object["i64"].Raw)
}

func TestFromRawHandlesObjectIDAndNull(t *testing.T) {
	t.Parallel()

	oid := bson.NewObjectID()
	raw := mustRaw(t, bson.D{
		{Key: "_id", Value: oid},
		{Key: "deleted_at", Value: nil},
	})

	v, err := fromRaw(raw)
	require.NoError(t, err)

	assert.Equal(t, lattice.ObjectID, v.Object["_id"].Tag)
	assert.Equal(t, oid, v.Object["_id"].Raw)
	assert.True(t, v.Object["deleted_at"].IsNull())
}

func TestFromRawRecursesIntoEmbeddedDocumentAndArray(t *testing.T) {
	t.Parallel()

	raw := mustRaw(t, bson.D{
		{Key: "address", Value: bson.D{{Key: "city", Value: "NYC"}}},
		{Key: "tags", Value: bson.A{"a", "b"}},
	})

	v, err := fromRaw(raw)
	require.NoError(t, err)

	require.Equal(t, lattice.Object, v.Object["address"].Tag)
	assert.Equal(t, "NYC", v.Object["address"].Object["city"].Raw)

	require.Equal(t, lattice.Array, v.Object["tags"].Tag)
	require.Len(t, v.Object["tags"].Array, 2)
	assert.Equal(t, "a", v.Object["tags"].Array[0].Raw)
}

func TestFromRawHandlesDateTime(t *testing.T) {
	t.Parallel()

	when := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	raw := mustRaw(t, bson.D{{Key: "created_at", Value: when}})

	v, err := fromRaw(raw)
	require.NoError(t, err)

	assert.Equal(t, lattice.Date, v.Object["created_at"].Tag)
}

func TestToNativeHandlesScalarsAndContainers(t *testing.T) {
	t.Parallel()

	assert.Nil(t, toNative(docvalue.Null))
	assert.Equal(t, int32(9), toNative(docvalue.NewScalar(lattice.Int32, int32(9))))

	obj := toNative(docvalue.NewObject(map[string]docvalue.Value{
		"n": docvalue.NewScalar(lattice.String, "x"),
	}))
	require.IsType(t, bson.M{}, obj)
	assert.Equal(t, "x", obj.(bson.M)["n"])

	arr := toNative(docvalue.NewArray([]docvalue.Value{
		docvalue.NewScalar(lattice.Int32, int32(1)),
		docvalue.NewScalar(lattice.Int32, int32(2)),
	}))
	require.IsType(t, bson.A{}, arr)
	assert.Equal(t, bson.A{int32(1), int32(2)}, arr)
}
