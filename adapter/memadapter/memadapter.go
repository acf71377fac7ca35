package memadapter

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.schemadrift.dev/mschema/adapter"
	"go.schemadrift.dev/mschema/docvalue"
	"go.schemadrift.dev/mschema/schema"
	"go.schemadrift.dev/mschema/validator"
)

var errKeyless = errors.New("memadapter: document has no _id field")

// validatorInstall records a single SetValidator call, for test assertions.
type validatorInstall struct {
	Doc    validator.Document
	Level  adapter.ValidatorLevel
	Action adapter.ValidatorAction
}

// Adapter is an in-memory adapter.Adapter: collections are plain slices of
// documents keyed by their "_id" field. It has no concurrency control
// beyond a single mutex — good enough for tests, not for production.
type Adapter struct {
	mu          sync.Mutex
	collections map[string][]adapter.Document
	validators  map[string]validatorInstall
	rng         *rand.Rand
}

// New builds an empty Adapter. seed controls Sample's shuffle; pass 0 for
// a fresh, non-reproducible draw.
func New(seed int64) *Adapter {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Adapter{
		collections: make(map[string][]adapter.Document),
		validators:  make(map[string]validatorInstall),
		rng:         rand.New(rand.NewSource(seed)), //nolint:gosec // test fixture, not a security context
	}
}

// Seed appends docs to collection, for test setup.
func (a *Adapter) Seed(collection string, docs ...adapter.Document) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.collections[collection] = append(a.collections[collection], docs...)
}

// LastValidator returns the most recent SetValidator call for collection.
func (a *Adapter) LastValidator(collection string) (validatorInstall, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	v, ok := a.validators[collection]

	return v, ok
}

func keyOf(doc adapter.Document) (adapter.Key, error) {
	id, ok := doc.Object["_id"]
	if !ok {
		return "", errKeyless
	}

	return adapter.Key(fmt.Sprint(id.Raw)), nil
}

// Count implements adapter.Adapter.
func (a *Adapter) Count(_ context.Context, collection string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return int64(len(a.collections[collection])), nil
}

// Sample implements adapter.Adapter using a Fisher-Yates shuffle of the
// whole collection, keeping the first n documents, in no particular order.
func (a *Adapter) Sample(_ context.Context, collection string, n int) (adapter.Cursor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	src := a.collections[collection]

	cp := make([]adapter.Document, len(src))
	copy(cp, src)

	for i := len(cp) - 1; i > 0; i-- {
		j := a.rng.Intn(i + 1)
		cp[i], cp[j] = cp[j], cp[i]
	}

	if n < len(cp) {
		cp = cp[:n]
	}

	return &sliceCursor{docs: cp}, nil
}

// Iterate implements adapter.Adapter, walking documents in ascending key
// order strictly after afterKey.
func (a *Adapter) Iterate(_ context.Context, collection string, afterKey adapter.Key) (adapter.KeyedCursor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	src := a.collections[collection]

	type pair struct {
		key adapter.Key
		doc adapter.Document
	}

	pairs := make([]pair, 0, len(src))

	for _, d := range src {
		key, err := keyOf(d)
		if err != nil {
			return nil, fmt.Errorf("iterate %s: %w", collection, err)
		}

		pairs = append(pairs, pair{key: key, doc: d})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	keys := make([]adapter.Key, 0, len(pairs))
	docs := make([]adapter.Document, 0, len(pairs))

	for _, p := range pairs {
		if p.key <= afterKey {
			continue
		}

		keys = append(keys, p.key)
		docs = append(docs, p.doc)
	}

	return &keyedSliceCursor{keys: keys, docs: docs}, nil
}

// UpdateOne implements adapter.Adapter, applying mutation's field-level
// sets/unsets in place via copy-on-write on the matched document.
func (a *Adapter) UpdateOne(_ context.Context, collection string, key adapter.Key, mutation adapter.Mutation) (adapter.MatchResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	docs := a.collections[collection]

	for i, d := range docs {
		docKey, err := keyOf(d)
		if err != nil {
			return adapter.MatchResult{}, fmt.Errorf("update_one %s: %w", collection, err)
		}

		if docKey != key {
			continue
		}

		if mutation.IsEmpty() {
			return adapter.MatchResult{Matched: 1, Modified: 0}, nil
		}

		updated := d
		for _, f := range mutation.Fields {
			if f.Unset {
				updated = unsetPath(updated, f.Path)
			} else {
				updated = setPath(updated, f.Path, f.Value)
			}
		}

		docs[i] = updated

		return adapter.MatchResult{Matched: 1, Modified: 1}, nil
	}

	return adapter.MatchResult{Matched: 0, Modified: 0}, nil
}

// SetValidator implements adapter.Adapter by recording the call; LastValidator
// exposes it to tests.
func (a *Adapter) SetValidator(_ context.Context, collection string, doc validator.Document, level adapter.ValidatorLevel, action adapter.ValidatorAction) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.validators[collection] = validatorInstall{Doc: doc, Level: level, Action: action}

	return nil
}

func setPath(doc adapter.Document, path schema.Path, value adapter.Document) adapter.Document {
	if len(path) == 0 {
		return value
	}

	if doc.Object == nil {
		doc = docvalue.NewObject(map[string]docvalue.Value{})
	}

	objCopy := make(map[string]docvalue.Value, len(doc.Object)+1)
	for k, v := range doc.Object {
		objCopy[k] = v
	}

	objCopy[path[0]] = setPath(objCopy[path[0]], path[1:], value)
	doc.Object = objCopy

	return doc
}

func unsetPath(doc adapter.Document, path schema.Path) adapter.Document {
	if len(path) == 0 || doc.Object == nil {
		return doc
	}

	objCopy := make(map[string]docvalue.Value, len(doc.Object))
	for k, v := range doc.Object {
		objCopy[k] = v
	}

	if len(path) == 1 {
		delete(objCopy, path[0])
	} else if child, ok := objCopy[path[0]]; ok {
		objCopy[path[0]] = unsetPath(child, path[1:])
	}

	doc.Object = objCopy

	return doc
}

type sliceCursor struct {
	docs []adapter.Document
	i    int
}

func (c *sliceCursor) Next(_ context.Context) (adapter.Document, bool, error) {
	if c.i >= len(c.docs) {
		return adapter.Document{}, false, nil
	}

	d := c.docs[c.i]
	c.i++

	return d, true, nil
}

func (c *sliceCursor) Close() error { return nil }

type keyedSliceCursor struct {
	keys []adapter.Key
	docs []adapter.Document
	i    int
}

func (c *keyedSliceCursor) Next(_ context.Context) (adapter.Key, adapter.Document, bool, error) {
	if c.i >= len(c.docs) {
		return "", adapter.Document{}, false, nil
	}

	k, d := c.keys[c.i], c.docs[c.i]
	c.i++

	return k, d, true, nil
}

func (c *keyedSliceCursor) Close() error { return nil }
