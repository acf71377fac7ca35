package adapter

import (
	"context"

	"go.schemadrift.dev/mschema/docvalue"
	"go.schemadrift.dev/mschema/schema"
	"go.schemadrift.dev/mschema/validator"
)

// Document is a single collection document, always Object-tagged.
type Document = docvalue.Value

// Key is a collection's opaque primary-key value in its string form
// (spec §6.5), comparable so adapters can guarantee a stable total order
// for Iterate.
type Key string

// Cursor yields documents one at a time (spec §4.8's sample stream). It
// satisfies infer.Source structurally, so Sample's result plugs directly
// into infer.Sample/infer.Infer without this package importing infer.
type Cursor interface {
	Next(ctx context.Context) (Document, bool, error)
	Close() error
}

// KeyedCursor yields (key, document) pairs in key order (spec §4.8's
// iterate stream), the shape the executor drives its batch loop from.
type KeyedCursor interface {
	Next(ctx context.Context) (Key, Document, bool, error)
	Close() error
}

// FieldMutation is one field-level change within a [Mutation].
type FieldMutation struct {
	Path  schema.Path
	Unset bool
	Value Document
}

// Mutation is the atomic per-document update the executor submits via
// UpdateOne (spec §4.7's "mutation set").
type Mutation struct {
	Fields []FieldMutation
}

// IsEmpty reports whether the mutation has no effect, in which case the
// executor must not submit an update at all.
func (m Mutation) IsEmpty() bool {
	return len(m.Fields) == 0
}

// MatchResult is update_one's outcome (spec §4.8).
type MatchResult struct {
	Matched  int
	Modified int
}

// ValidatorLevel controls how strictly the database engine enforces a
// validator document (spec §4.8).
type ValidatorLevel string

const (
	ValidatorOff      ValidatorLevel = "off"
	ValidatorModerate ValidatorLevel = "moderate"
	ValidatorStrict   ValidatorLevel = "strict"
)

// ValidatorAction controls what the database engine does when a document
// fails validation (spec §4.8).
type ValidatorAction string

const (
	ValidatorWarn  ValidatorAction = "warn"
	ValidatorError ValidatorAction = "error"
)

// Adapter is the narrow database interface from spec §4.8. It is the only
// source of I/O and non-determinism in the system; every other component
// is pure given its outputs.
type Adapter interface {
	// Count returns the number of documents in collection.
	Count(ctx context.Context, collection string) (int64, error)
	// Sample draws up to n documents from collection in no particular
	// order (spec §4.2 step 1's uniform-sampling requirement).
	Sample(ctx context.Context, collection string, n int) (Cursor, error)
	// Iterate opens a forward, key-ordered cursor over collection,
	// starting strictly after afterKey (use the zero Key for the start).
	Iterate(ctx context.Context, collection string, afterKey Key) (KeyedCursor, error)
	// UpdateOne applies mutation to the document identified by key,
	// atomically at the document granularity.
	UpdateOne(ctx context.Context, collection string, key Key, mutation Mutation) (MatchResult, error)
	// SetValidator installs doc as collection's validator document (spec
	// §4.5's projection) at the given level and action.
	SetValidator(ctx context.Context, collection string, doc validator.Document, level ValidatorLevel, action ValidatorAction) error
}
