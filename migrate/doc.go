// Package migrate implements the executor (component H, spec §4.7): it
// streams a collection through a compiled plan.Plan in rate-limited
// batches, supporting dry-run, resume-from-key, and per-document failure
// isolation. Unlike every upstream component it is not pure — it is the
// one place besides adapter itself that performs I/O, and it is the only
// component with resume state.
//
// plan.Operation does not carry the diff's original "from" type (only the
// target), so Run determines whether an operation applies to a given
// document by comparing against that document's *current* live value
// rather than against the schema's recorded from-type. This is a strictly
// stronger idempotency condition than spec §4.7's "current type is in the
// operation's from side" — it also makes re-running the executor with the
// same plan a true no-op, which is the invariant spec §4.7 actually
// requires.
package migrate
