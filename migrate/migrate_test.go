package migrate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.schemadrift.dev/mschema/adapter"
	"go.schemadrift.dev/mschema/adapter/memadapter"
	"go.schemadrift.dev/mschema/docvalue"
	"go.schemadrift.dev/mschema/lattice"
	"go.schemadrift.dev/mschema/migrate"
	"go.schemadrift.dev/mschema/plan"
	"go.schemadrift.dev/mschema/schema"
)

func leaf(tags ...lattice.Tag) *schema.Node {
	n := schema.NewLeaf(lattice.NewSet(tags...))
	n.Stats = schema.Stats{Presence: 1, SampleCount: 10}

	return n
}

func docWithID(id string, fields map[string]docvalue.Value) adapter.Document {
	fields["_id"] = docvalue.NewScalar(lattice.String, id)

	return docvalue.NewObject(fields)
}

type recordingSink struct {
	reports []migrate.Progress
}

func (s *recordingSink) Report(_ context.Context, p migrate.Progress) error {
	s.reports = append(s.reports, p)

	return nil
}

func TestRunAddsFieldWithDefault(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	from.Properties["age"] = leaf(lattice.Int32)

	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["age"] = leaf(lattice.Int32)
	to.Properties["nickname"] = leaf(lattice.String, lattice.Null)

	p := plan.Compile(from, to)

	mem := memadapter.New(1)
	mem.Seed("users", docWithID("1", map[string]docvalue.Value{"age": docvalue.NewScalar(lattice.Int32, int32(30))}))

	sink := &recordingSink{}
	progress, err := migrate.New(mem).Run(context.Background(), "users", p, to, migrate.Options{BatchSize: 10}, sink, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Processed)
	assert.Equal(t, 1, progress.Modified)
	require.NotEmpty(t, sink.reports)

	cur, err := mem.Iterate(context.Background(), "users", "")
	require.NoError(t, err)

	_, doc, ok, err := cur.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, doc.Object["nickname"].IsNull())
}

func TestRunRefusesRequiresInputWithoutOverride(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["email"] = leaf(lattice.String)

	p := plan.Compile(from, to)

	mem := memadapter.New(1)
	mem.Seed("users", docWithID("1", map[string]docvalue.Value{}))

	_, err := migrate.New(mem).Run(context.Background(), "users", p, to, migrate.Options{BatchSize: 10}, nil, nil)
	require.ErrorIs(t, err, migrate.ErrRequiresInput)
}

func TestRunHonorsOverrideForRequiresInput(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["email"] = leaf(lattice.String)

	p := plan.Compile(from, to)

	mem := memadapter.New(1)
	mem.Seed("users", docWithID("1", map[string]docvalue.Value{}))

	opts := migrate.Options{
		BatchSize: 10,
		Overrides: map[string]docvalue.Value{"email": docvalue.NewScalar(lattice.String, "unknown@example.com")},
	}

	progress, err := migrate.New(mem).Run(context.Background(), "users", p, to, opts, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Modified)
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	from.Properties["age"] = leaf(lattice.Int32)

	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["age"] = leaf(lattice.String)

	p := plan.Compile(from, to)

	mem := memadapter.New(1)
	mem.Seed("users", docWithID("1", map[string]docvalue.Value{"age": docvalue.NewScalar(lattice.Int32, int32(30))}))

	ex := migrate.New(mem)
	opts := migrate.Options{BatchSize: 10}

	first, err := ex.Run(context.Background(), "users", p, to, opts, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Modified)

	second, err := ex.Run(context.Background(), "users", p, to, opts, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Modified)
}

func TestRunMatchesEveryDocumentOnNoOpWiden(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	from.Properties["address"] = leaf(lattice.String)

	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["address"] = leaf(lattice.String, lattice.Object)

	p := plan.Compile(from, to)
	require.Empty(t, p.Operations)

	mem := memadapter.New(1)
	for i := 0; i < 10; i++ {
		mem.Seed("users", docWithID(string(rune('a'+i)), map[string]docvalue.Value{"address": docvalue.NewScalar(lattice.String, "x")}))
	}

	progress, err := migrate.New(mem).Run(context.Background(), "users", p, to, migrate.Options{BatchSize: 100}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, progress.Processed)
	assert.Equal(t, 10, progress.Matched)
	assert.Equal(t, 0, progress.Modified)
}

func TestRunDryRunDoesNotWrite(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	from.Properties["age"] = leaf(lattice.Int32)

	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["age"] = leaf(lattice.String)

	p := plan.Compile(from, to)

	mem := memadapter.New(1)
	mem.Seed("users", docWithID("1", map[string]docvalue.Value{"age": docvalue.NewScalar(lattice.Int32, int32(30))}))

	progress, err := migrate.New(mem).Run(context.Background(), "users", p, to, migrate.Options{BatchSize: 10, DryRun: true}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.Modified)

	cur, err := mem.Iterate(context.Background(), "users", "")
	require.NoError(t, err)

	_, doc, _, err := cur.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(30), doc.Object["age"].Raw)
}

func TestRunResumesFromKey(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	from.Properties["age"] = leaf(lattice.Int32)

	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["age"] = leaf(lattice.String)

	p := plan.Compile(from, to)

	mem := memadapter.New(1)
	mem.Seed("users",
		docWithID("1", map[string]docvalue.Value{"age": docvalue.NewScalar(lattice.Int32, int32(1))}),
		docWithID("2", map[string]docvalue.Value{"age": docvalue.NewScalar(lattice.Int32, int32(2))}),
	)

	progress, err := migrate.New(mem).Run(context.Background(), "users", p, to, migrate.Options{BatchSize: 10, ResumeFrom: "1"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Processed)
	assert.Equal(t, adapter.Key("2"), progress.LastKey)
}

func TestRunRemovesField(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	from.Properties["legacy"] = leaf(lattice.String)

	to := schema.NewObject(lattice.NewSet(lattice.Object))

	p := plan.Compile(from, to)

	mem := memadapter.New(1)
	mem.Seed("users", docWithID("1", map[string]docvalue.Value{"legacy": docvalue.NewScalar(lattice.String, "x")}))

	_, err := migrate.New(mem).Run(context.Background(), "users", p, to, migrate.Options{BatchSize: 10}, nil, nil)
	require.NoError(t, err)

	cur, err := mem.Iterate(context.Background(), "users", "")
	require.NoError(t, err)

	_, doc, _, err := cur.Next(context.Background())
	require.NoError(t, err)

	_, has := doc.Object["legacy"]
	assert.False(t, has)
}

func TestRunAppliesValidatorOnSuccess(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["age"] = leaf(lattice.Int32, lattice.Null)

	p := plan.Compile(from, to)

	mem := memadapter.New(1)
	mem.Seed("users", docWithID("1", map[string]docvalue.Value{}))

	opts := migrate.Options{
		BatchSize:       10,
		ApplyValidator:  true,
		ValidatorLevel:  adapter.ValidatorStrict,
		ValidatorAction: adapter.ValidatorError,
	}

	_, err := migrate.New(mem).Run(context.Background(), "users", p, to, opts, nil, nil)
	require.NoError(t, err)

	installed, ok := mem.LastValidator("users")
	require.True(t, ok)
	assert.Equal(t, adapter.ValidatorStrict, installed.Level)
}

func TestRunRateLimitsBetweenBatches(t *testing.T) {
	t.Parallel()

	from := schema.NewObject(lattice.NewSet(lattice.Object))
	from.Properties["age"] = leaf(lattice.Int32)

	to := schema.NewObject(lattice.NewSet(lattice.Object))
	to.Properties["age"] = leaf(lattice.String)

	p := plan.Compile(from, to)

	mem := memadapter.New(1)
	mem.Seed("users",
		docWithID("1", map[string]docvalue.Value{"age": docvalue.NewScalar(lattice.Int32, int32(1))}),
		docWithID("2", map[string]docvalue.Value{"age": docvalue.NewScalar(lattice.Int32, int32(2))}),
	)

	start := time.Now()

	_, err := migrate.New(mem).Run(context.Background(), "users", p, to, migrate.Options{BatchSize: 1, RateLimit: 20 * time.Millisecond}, nil, nil)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
