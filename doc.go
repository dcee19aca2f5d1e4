// Package netfuse builds consensus gene regulatory networks.
//
// A run reads a samples × entities measurement table, infers one weighted
// undirected network per method (correlation, mutual-information and
// partial-correlation families) and fuses them into a consensus with an
// unsupervised combiner such as SUMMA or similarity network fusion.
// Optionally the table is partitioned by gene sets from a GMT file and every
// set is processed as its own scope.
//
// Layout:
//
//	matrix/        dense float64 matrices, statistics, Jacobi eigen, LU inverse
//	network/       undirected weighted graphs over named entities
//	dataset/       table reading and preprocessing
//	inference/     inference methods, registry and the bounded runner
//	combine/       consensus combiners
//	geneset/       GMT parsing and gene-set partitioning
//	edgelist/      gzip CSV edge-list files
//	pipeline/      the end-to-end orchestrator and combine-only runs
//	config/        viper-backed run configuration
//	observability/ zap logger setup
//	cmd/netfuse/   the command-line interface
//
// Quick start:
//
//	netfuse infer --input expr.tsv --output out --method pearson --method clr
//	netfuse combine --spec combine.yaml --output out
package netfuse
