// Package geneset reads gene-set (GMT) files and runs a per-set scope over
// the matching columns of an analysis matrix.
//
// A set is restricted to the entities present in the matrix, keeping its own
// order. Sets matching fewer than MinEntities entities are excluded with
// ErrGeneSetExcluded and logged; the rest of the batch continues. Each
// included set runs independently: an error in one set is recorded in the
// Outcome and does not affect the others.
package geneset
