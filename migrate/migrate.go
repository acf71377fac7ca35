package migrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"go.schemadrift.dev/mschema/adapter"
	"go.schemadrift.dev/mschema/docvalue"
	"go.schemadrift.dev/mschema/plan"
	"go.schemadrift.dev/mschema/schema"
	"go.schemadrift.dev/mschema/validator"
)

// ErrRequiresInput is spec §7's error kind 4: Run refuses to execute a
// plan containing an unresolved add_field (non-nullable, no override
// supplied) rather than silently skipping it.
var ErrRequiresInput = errors.New("migrate: plan requires operator input for one or more fields")

// Options controls a single Run (spec §4.7's execution options).
type Options struct {
	// DryRun records mutation sets without writing them.
	DryRun bool
	// BatchSize is the number of documents accumulated per batch,
	// must be ≥ 1.
	BatchSize int
	// RateLimit is the minimum duration between batches; zero disables
	// throttling.
	RateLimit time.Duration
	// ResumeFrom is the last successfully processed key of a prior run,
	// or the zero Key to start from the beginning.
	ResumeFrom adapter.Key
	// Overrides supplies explicit values for RequiresInput add_field
	// operations, keyed by the operation's dotted path. Run refuses to
	// execute (ErrRequiresInput) if any RequiresInput operation's path
	// is missing from this map.
	Overrides map[string]docvalue.Value
	// ApplyValidator projects Target through validator.Project and
	// installs it via SetValidator on successful completion.
	ApplyValidator bool
	// ValidatorLevel and ValidatorAction control the installed
	// validator's enforcement when ApplyValidator is set.
	ValidatorLevel  adapter.ValidatorLevel
	ValidatorAction adapter.ValidatorAction
}

// Progress is the record emitted to a Sink after every batch (spec §4.7's
// "progress reporting").
type Progress struct {
	Processed int
	Matched   int
	Modified  int
	Skipped   int
	LastKey   adapter.Key
}

// Sink receives progress records; the CLI is one consumer, but Run never
// assumes anything about the destination.
type Sink interface {
	Report(ctx context.Context, p Progress) error
}

// DocumentOutcome is one document's result within a batch, surfaced to a
// Sink-adjacent observer for dry-run reporting and per-document failure
// logging.
type DocumentOutcome struct {
	Key            adapter.Key
	OperationCount int
	Skips          map[string]SkipReason
	Err            error
}

// Executor runs compiled plans against a database adapter.
type Executor struct {
	adapter adapter.Adapter
}

// New builds an Executor over ad.
func New(ad adapter.Adapter) *Executor {
	return &Executor{adapter: ad}
}

// Run executes p against collection (spec §4.7's algorithm). target is
// used only for the optional post-run validator refresh. onDocument, if
// non-nil, is called once per document with its outcome — the executor's
// equivalent of verbose per-document logging; it may be nil.
func (e *Executor) Run(ctx context.Context, collection string, p plan.Plan, target *schema.Node, opts Options, sink Sink, onDocument func(DocumentOutcome)) (Progress, error) {
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}

	if err := requireResolved(p, opts.Overrides); err != nil {
		return Progress{}, err
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.RateLimit), 1)
	}

	cur, err := e.adapter.Iterate(ctx, collection, opts.ResumeFrom)
	if err != nil {
		return Progress{}, fmt.Errorf("migrate: open cursor: %w", err)
	}
	defer func() { _ = cur.Close() }()

	total := Progress{LastKey: opts.ResumeFrom}

	for {
		batchKeys, batchDocs, ok, err := nextBatch(ctx, cur, opts.BatchSize)
		if err != nil {
			return total, fmt.Errorf("migrate: read batch after %s: %w", total.LastKey, err)
		}

		if !ok {
			break
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return total, fmt.Errorf("migrate: rate limit wait: %w", err)
			}
		}

		for i, doc := range batchDocs {
			key := batchKeys[i]
			mutation, skips := mutationFor(doc, p.Operations, opts.Overrides)

			outcome := DocumentOutcome{Key: key, OperationCount: len(mutation.Fields), Skips: skips}
			total.Processed++
			total.LastKey = key

			switch {
			case opts.DryRun:
				total.Skipped += len(skips)
			default:
				// Issue UpdateOne even for an empty mutation set: the
				// adapter still reports the match (spec §8 scenario 1 —
				// a widened type with no field-level ops must still
				// count every scanned document as matched).
				result, err := e.adapter.UpdateOne(ctx, collection, key, mutation)
				if err != nil {
					outcome.Err = err
					total.Skipped++
				} else {
					total.Matched += result.Matched
					total.Modified += result.Modified
					total.Skipped += len(skips)
				}
			}

			if onDocument != nil {
				onDocument(outcome)
			}
		}

		if sink != nil {
			if err := sink.Report(ctx, total); err != nil {
				return total, fmt.Errorf("migrate: report progress: %w", err)
			}
		}
	}

	if !opts.DryRun && opts.ApplyValidator && target != nil {
		doc, err := validator.Project(target)
		if err != nil {
			return total, fmt.Errorf("migrate: project validator: %w", err)
		}

		if err := e.adapter.SetValidator(ctx, collection, doc, opts.ValidatorLevel, opts.ValidatorAction); err != nil {
			return total, fmt.Errorf("migrate: set validator: %w", err)
		}
	}

	return total, nil
}

// requireResolved implements spec §7 error kind 4: every RequiresInput
// add_field operation must have a caller-supplied override before Run
// will touch the collection at all.
func requireResolved(p plan.Plan, overrides map[string]docvalue.Value) error {
	for _, op := range p.Operations {
		if op.Kind != plan.AddField || !op.RequiresInput {
			continue
		}

		if _, ok := overrides[op.Path.String()]; !ok {
			return fmt.Errorf("%w: %s", ErrRequiresInput, op.Path.String())
		}
	}

	return nil
}

// nextBatch drains up to size documents from cur.
func nextBatch(ctx context.Context, cur adapter.KeyedCursor, size int) ([]adapter.Key, []adapter.Document, bool, error) {
	keys := make([]adapter.Key, 0, size)
	docs := make([]adapter.Document, 0, size)

	for len(docs) < size {
		key, doc, ok, err := cur.Next(ctx)
		if err != nil {
			return nil, nil, false, err
		}

		if !ok {
			break
		}

		keys = append(keys, key)
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, nil, false, nil
	}

	return keys, docs, true, nil
}
