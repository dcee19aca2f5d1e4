// Package dataset reads measurement tables and turns them into the analysis
// matrix consumed by the inference layer.
//
// Pipeline:
//
//	ReadTable(path)  → *RawTable   (labels + values, NaN marks a missing cell)
//	Prepare(raw)     → *Matrix     (rows = samples, columns = entities)
//
// Prepare stages:
//
//   - Orientation: WithSamplesOnColumns() transposes the raw table first.
//   - Columns whose cells are all missing are dropped.
//   - Remaining missing cells are replaced by the fill value (default 0).
//   - Standardization (default on): per column (x-mean)/std with the sample
//     std; zero-variance columns pass through unchanged.
//
// Filling happens before standardization, so the final matrix has zero-mean,
// unit-variance columns whenever standardization is on.
//
// Errors:
//
//	ErrDataFormat – unreadable table, non-numeric cell, ragged row,
//	                duplicate entity, or no rows/columns after preparation.
package dataset
