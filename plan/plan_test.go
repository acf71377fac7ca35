package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.schemadrift.dev/mschema/lattice"
	"go.schemadrift.dev/mschema/plan"
	"go.schemadrift.dev/mschema/schema"
)

func requiredLeaf(tags ...lattice.Tag) *schema.Node {
	n := schema.NewLeaf(lattice.NewSet(tags...))
	n.Stats = schema.Stats{Presence: 1.0, NullRate: 0, SampleCount: 10}

	return n
}

func TestCompileAddFieldWithDefault(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))

	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["bio"] = requiredLeaf(lattice.String, lattice.Null)

	p := plan.Compile(from, to)

	require.Len(t, p.Operations, 1)
	op := p.Operations[0]
	assert.Equal(t, plan.AddField, op.Kind)
	assert.True(t, op.HasDefault)
	assert.False(t, op.RequiresInput)
}

func TestCompileAddFieldRequiresInput(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))

	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["email"] = requiredLeaf(lattice.String)

	p := plan.Compile(from, to)

	require.Len(t, p.Operations, 1)
	assert.True(t, p.Operations[0].RequiresInput)
	assert.False(t, p.Operations[0].HasDefault)
}

func TestCompileRemoveField(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	from.Properties["legacy"] = requiredLeaf(lattice.String)

	to := schema.NewObject(lattice.NewSet(lattice.Object))

	p := plan.Compile(from, to)

	require.Len(t, p.Operations, 1)
	assert.Equal(t, plan.RemoveField, p.Operations[0].Kind)
}

func TestCompileStrictWideningIsNoOp(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	from.Properties["address"] = requiredLeaf(lattice.String)

	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["address"] = requiredLeaf(lattice.String, lattice.Object)

	p := plan.Compile(from, to)

	assert.Empty(t, p.Operations)
}

func TestCompileConvertScalar(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	from.Properties["age"] = requiredLeaf(lattice.String)

	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["age"] = requiredLeaf(lattice.Int32)

	p := plan.Compile(from, to)

	require.Len(t, p.Operations, 1)
	assert.Equal(t, plan.Convert, p.Operations[0].Kind)
	assert.True(t, p.Operations[0].Type.Contains(lattice.Int32))
}

func TestCompileWrapArray(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	from.Properties["tag"] = requiredLeaf(lattice.String)

	item := requiredLeaf(lattice.String)

	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["tag"] = schema.NewArray(lattice.NewSet(lattice.Array), item)
	to.Properties["tag"].Stats = schema.Stats{Presence: 1.0}

	p := plan.Compile(from, to)

	require.Len(t, p.Operations, 1)
	assert.Equal(t, plan.WrapArray, p.Operations[0].Kind)
}

func TestCompileUnwrapArray(t *testing.T) {
	t.Parallel()

	item := requiredLeaf(lattice.String)

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	from.Properties["tag"] = schema.NewArray(lattice.NewSet(lattice.Array), item)
	from.Properties["tag"].Stats = schema.Stats{Presence: 1.0}

	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["tag"] = requiredLeaf(lattice.String)

	p := plan.Compile(from, to)

	require.Len(t, p.Operations, 1)
	assert.Equal(t, plan.UnwrapArray, p.Operations[0].Kind)
}

func TestCompileConvertItems(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	from.Properties["scores"] = schema.NewArray(lattice.NewSet(lattice.Array), requiredLeaf(lattice.String))
	from.Properties["scores"].Stats = schema.Stats{Presence: 1.0}

	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["scores"] = schema.NewArray(lattice.NewSet(lattice.Array), requiredLeaf(lattice.Int32))
	to.Properties["scores"].Stats = schema.Stats{Presence: 1.0}

	p := plan.Compile(from, to)

	require.Len(t, p.Operations, 1)
	assert.Equal(t, plan.ConvertItems, p.Operations[0].Kind)
}

func TestCompileOrdering(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	from.Properties["legacy"] = requiredLeaf(lattice.String)
	from.Properties["age"] = requiredLeaf(lattice.String)

	nestedFrom := schema.NewObject(lattice.NewSet(lattice.Object))
	nestedFrom.Properties["deep_legacy"] = requiredLeaf(lattice.String)
	nestedFrom.Stats = schema.Stats{Presence: 1.0}
	from.Properties["nested"] = nestedFrom

	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["age"] = requiredLeaf(lattice.Int32)
	to.Properties["email"] = requiredLeaf(lattice.String, lattice.Null)

	nestedTo := schema.NewObject(lattice.NewSet(lattice.Object))
	nestedTo.Stats = schema.Stats{Presence: 1.0}
	to.Properties["nested"] = nestedTo

	p := plan.Compile(from, to)

	require.NotEmpty(t, p.Operations)

	// First remove is the deepest: nested.deep_legacy before legacy.
	assert.Equal(t, plan.RemoveField, p.Operations[0].Kind)
	assert.Equal(t, "nested.deep_legacy", p.Operations[0].Path.String())

	last := p.Operations[len(p.Operations)-1]
	assert.Equal(t, plan.AddField, last.Kind)
	assert.Equal(t, "email", last.Path.String())
}

func TestCompileNoDuplicatePaths(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	from.Properties["age"] = requiredLeaf(lattice.String)

	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["age"] = requiredLeaf(lattice.Int32)

	p := plan.Compile(from, to)

	seen := map[string]bool{}

	for _, op := range p.Operations {
		key := op.Path.String()
		assert.False(t, seen[key], "duplicate operation path %q", key)
		seen[key] = true
	}
}
