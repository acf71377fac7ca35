// Package plan implements the plan compiler from spec §4.6: deriving an
// ordered, idempotent list of field-level operations from the diff of two
// schemas. Compile is total and pure — it never fails, matching spec §7's
// policy that inference, diff, planning and validator projection cannot
// raise runtime errors. A non-nullable add_field with no safe default is
// represented on the operation itself (RequiresInput); refusing to
// execute it is the executor's job, not the planner's.
package plan
