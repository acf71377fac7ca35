package infer

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.schemadrift.dev/mschema/docvalue"
)

// Source yields documents one at a time until exhausted. The adapter
// package's Cursor satisfies this interface; infer depends only on this
// narrow shape to stay free of any adapter or transport dependency.
type Source interface {
	Next(ctx context.Context) (docvalue.Value, bool, error)
}

// Sample draws a uniform sample of up to size documents from src using
// reservoir sampling (Algorithm R), so the stream's total length never
// needs to be known up front (spec §4.2 step 1: "sampling must be uniform
// at the level the database adapter provides; deterministic ordering is
// not required and must not be assumed").
//
// seed controls the reservoir's random replacement draws. Pass 0 for a
// fresh, non-reproducible sample; a fixed non-zero seed makes the draw
// reproducible, which test callers rely on.
func Sample(ctx context.Context, src Source, size int, seed int64) ([]docvalue.Value, error) {
	if size <= 0 {
		return nil, nil
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible sampling, not a security context

	reservoir := make([]docvalue.Value, 0, size)

	var count int64

	for {
		doc, ok, err := src.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("sample: %w", err)
		}

		if !ok {
			break
		}

		if len(reservoir) < size {
			reservoir = append(reservoir, doc)
		} else {
			j := rng.Int63n(count + 1)
			if j < int64(size) {
				reservoir[j] = doc
			}
		}

		count++
	}

	return reservoir, nil
}
