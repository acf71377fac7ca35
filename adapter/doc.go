// Package adapter defines the narrow database-adapter interface from spec
// §4.8: count, sample, iterate, update_one and set_validator. It is the
// only extension point for I/O and non-determinism (spec §9's
// pluggability note) — infer, diff, drift, plan and validator all consume
// only the pure data this package's Cursor/KeyedCursor shapes carry, and
// never import a driver directly.
//
// Concrete adapters live in subpackages: adapter/mongoadapter wraps
// go.mongodb.org/mongo-driver/v2 for production use, and
// adapter/memadapter is an in-memory fake for tests that need a
// full Adapter without a live database.
package adapter
