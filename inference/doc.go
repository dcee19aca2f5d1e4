// Package inference runs network-inference methods over an analysis matrix.
//
// An Inferencer turns a *dataset.Matrix into a *network.Graph. Inferencers
// are looked up by name in a Registry (a static table of constructors);
// Builtin() returns the table with the bundled methods:
//
//	pearson   – Pearson correlation, significant edges only (multiple-testing corrected)
//	spearman  – Spearman correlation, same filtering
//	clr       – context likelihood of relatedness over Gaussian mutual information
//	aracne    – data processing inequality pruning of the same MI matrix
//	mrnet     – maximum-relevance/minimum-redundancy selection on the MI matrix
//	pcorr     – partial correlation from the regularised inverse correlation matrix
//
// The Runner executes one unit per requested method on a bounded pool.
// A unit that returns an error, panics or yields an invalid graph is recorded
// as a failed MethodResult wrapping ErrMethodFailure; its siblings continue.
// Unknown method names fail the whole call with ErrUnknownMethod before any
// unit starts.
package inference
