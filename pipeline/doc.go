// Package pipeline wires the run end to end: read and prepare the table,
// optionally partition it by gene set, run the inference methods on a shared
// worker pool, fuse their graphs and hand every graph to a Sink.
//
// Errors returned by Orchestrator.Execute are run-fatal: a malformed table
// (dataset.ErrDataFormat), an unreadable GMT file or a cancelled context.
// Unknown method or combiner names are rejected earlier, by New. A scope that
// ends with no consensus is recorded in Report.Failures and the run goes on.
//
// CombineFiles is the combine-only entry point: it fuses edge lists written
// by an earlier run.
package pipeline
