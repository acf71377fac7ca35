// Package memadapter implements adapter.Adapter entirely in memory, so
// infer/drift/migrate tests exercise a full Adapter without a live
// database (spec §9's pluggability/testability note).
package memadapter
