package infer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.schemadrift.dev/mschema/docvalue"
	"go.schemadrift.dev/mschema/infer"
)

type sliceSource struct {
	docs []docvalue.Value
	i    int
}

func (s *sliceSource) Next(_ context.Context) (docvalue.Value, bool, error) {
	if s.i >= len(s.docs) {
		return docvalue.Value{}, false, nil
	}

	v := s.docs[s.i]
	s.i++

	return v, true, nil
}

type erroringSource struct{}

func (erroringSource) Next(_ context.Context) (docvalue.Value, bool, error) {
	return docvalue.Value{}, false, errors.New("boom")
}

func TestSampleReturnsAllWhenUnderSize(t *testing.T) {
	t.Parallel()

	src := &sliceSource{docs: []docvalue.Value{str("a"), str("b")}}

	got, err := infer.Sample(context.Background(), src, 10, 1)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSampleCapsAtSize(t *testing.T) {
	t.Parallel()

	docs := make([]docvalue.Value, 100)
	for i := range docs {
		docs[i] = i32(int32(i))
	}

	src := &sliceSource{docs: docs}

	got, err := infer.Sample(context.Background(), src, 10, 42)
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestSampleDeterministicWithFixedSeed(t *testing.T) {
	t.Parallel()

	build := func() *sliceSource {
		docs := make([]docvalue.Value, 50)
		for i := range docs {
			docs[i] = i32(int32(i))
		}

		return &sliceSource{docs: docs}
	}

	a, err := infer.Sample(context.Background(), build(), 5, 7)
	require.NoError(t, err)

	b, err := infer.Sample(context.Background(), build(), 5, 7)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSamplePropagatesSourceError(t *testing.T) {
	t.Parallel()

	_, err := infer.Sample(context.Background(), erroringSource{}, 10, 1)
	assert.Error(t, err)
}

func TestSampleZeroSizeReturnsNil(t *testing.T) {
	t.Parallel()

	src := &sliceSource{docs: []docvalue.Value{str("a")}}

	got, err := infer.Sample(context.Background(), src, 0, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}
