// Package workflow drives the name generation pipeline.
//
// A run threads a State through six stages in fixed order:
//
//	gather_context → generate → dedupe_and_filter → score → availability → persist
//
// Each stage reads the accumulated State and returns a Delta. Merging a Delta
// clears the fields the stage consumed, so later stages never fall back to
// stale pre-filter data.
//
// The Executor resolves models, builds providers, runs the Graph and keeps
// the job record in step: running at start, failed with the error message on
// any stage error, succeeded with progress counters on completion. Runs with
// no job record skip all bookkeeping.
package workflow
