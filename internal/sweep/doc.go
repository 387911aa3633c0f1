// Package sweep dispatches batches of power calculations over a bounded
// worker pool.
//
// A batch is declared as a [Spec]: one run id per scenario, with each
// parameter given either as a single broadcast value or one value per
// run. The [Runner] executes the batch in parallel; a failure inside
// any worker is captured as text in that row's error column and never
// halts sibling runs.
package sweep
