package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/netfuse/config"
	"github.com/katalvlaran/netfuse/pipeline"
)

func newInferCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Run the inference methods on a table and write every network plus the consensus",
		Long: `Reads the measurement table, runs each selected inference method on a bounded
worker pool and fuses the resulting networks. With --gmt the table is split
by gene set and every set is processed as its own scope.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Input.Path == "" {
				return fmt.Errorf("an input table must be provided (--input or input.path): %w", config.ErrInvalidConfig)
			}
			o, err := pipeline.New(a.cfg, pipeline.WithLogger(a.logger))
			if err != nil {
				return err
			}
			rep, err := o.Execute(cmd.Context())
			if err != nil {
				a.logger.Error("run failed", zap.Error(err))
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s (%s): %d scope(s) written to %s\n", rep.RunID, rep.Mode, len(rep.Results), a.cfg.Output.Dir)
			for _, res := range rep.Results {
				for _, f := range res.Failed {
					fmt.Fprintf(out, "  %s: method failed: %v\n", scopeLabel(res.Scope), f.Err)
				}
			}
			for _, ex := range rep.Excluded {
				fmt.Fprintf(out, "  %s: excluded: %v\n", ex.Set, ex.Err)
			}
			for _, f := range rep.Failures {
				fmt.Fprintf(out, "  %s: no consensus: %v\n", scopeLabel(f.Scope), f.Err)
			}
			if len(rep.Results) == 0 && len(rep.Failures) > 0 {
				return errors.New("no scope produced a consensus")
			}

			return nil
		},
	}

	f := cmd.Flags()
	f.String("input", "", "measurement table (.tsv/.csv, optionally .gz or .br)")
	f.String("output", "netfuse-out", "output directory")
	f.Bool("standardize", true, "standardize every entity column")
	f.Bool("samples-on-rows", true, "rows are samples and columns are entities")
	f.String("delimiter", "\t", "field delimiter")
	f.Float64("fill-value", 0, "value substituted for missing cells")
	f.Int("header-row", 0, "lines skipped before the header line")
	f.Int("index-column", 0, "column holding the row labels (-1 for none)")
	f.StringSlice("method", nil, "inference method (repeatable; default: the standard set)")
	f.String("combiner", "summa", "consensus combiner")
	f.String("gmt", "", "GMT file enabling gene-set mode")
	f.Bool("standardize-per-set", false, "re-standardize each gene-set slice")
	f.Int("workers", 4, "concurrent inference units")
	f.Bool("resume", false, "reuse edge lists already present in the output directory")
	f.String("correction", "b-h", "multiple-testing correction for correlation methods")
	f.Float64("alpha", 0.05, "significance level for correlation methods")
	f.Bool("scaled", false, "write |w| / max|w| instead of raw weights")
	a.bind(f, map[string]string{
		"input":               "input.path",
		"output":              "output.dir",
		"standardize":         "preprocess.standardize",
		"samples-on-rows":     "preprocess.samples_on_rows",
		"delimiter":           "input.delimiter",
		"fill-value":          "preprocess.fill_value",
		"header-row":          "input.header_row",
		"index-column":        "input.index_column",
		"method":              "inference.methods",
		"combiner":            "combine.method",
		"gmt":                 "genesets.path",
		"standardize-per-set": "genesets.standardize_per_set",
		"workers":             "inference.workers",
		"resume":              "inference.resume",
		"correction":          "inference.correction",
		"alpha":               "inference.alpha",
		"scaled":              "output.scaled",
	})

	return cmd
}

func scopeLabel(scope string) string {
	if scope == "" {
		return "all"
	}

	return scope
}
