// Package combine fuses the graphs produced by several inference methods
// into one consensus graph.
//
// Every Combiner works on the common view of its inputs: the intersection of
// their entity sets (sorted) and the union of the pairs they score inside it.
// Inputs are put in a canonical order first, so results do not depend on the
// order in which graphs are passed. A single input is returned unchanged.
//
// Registered combiners (Lookup / Names):
//
//	summa     – eigenvector-weighted sum of raw scores (default)
//	snf       – similarity network fusion of |weight| matrices
//	mean, median, max, min – per-pair reductions over the scoring inputs
//	woc       – mean of scaled ranks over the scoring inputs
//	woc_hard  – sum of scaled ranks divided by the number of inputs
package combine
