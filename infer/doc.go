// Package infer implements the sampling-based inference engine from spec
// §4.2: drawing a bounded, uniform sample from a collection, walking each
// sampled document's structure to build a per-path histogram, and emitting
// a schema tree with populated presence/null-rate statistics plus a set of
// non-fatal anomaly reports.
//
// Sampling (reservoir sampling over a stream of unknown length, grounded
// on the agentic-research-mache example pack's reservoirSample) and tree
// construction are independent: [Sample] pulls from a [Source]; [Infer]
// is a pure function from already-sampled documents to a result, so it
// stays testable without any adapter or live database (spec §9).
package infer
