package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/netfuse/edgelist"
	"github.com/katalvlaran/netfuse/pipeline"
)

func newCombineCmd(a *app) *cobra.Command {
	var specPath string

	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Fuse edge lists written by an earlier run",
		Long: `Reads a YAML or JSON spec naming the combiner, the edge-list files and the
combiner parameters, and writes the consensus to the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := pipeline.LoadCombineSpec(specPath)
			if err != nil {
				return err
			}
			sink := pipeline.NewFileSink(a.cfg.Output.Dir, a.cfg.Output.Scaled)
			g, err := pipeline.CombineFiles(cmd.Context(), spec, sink, a.logger)
			if err != nil {
				return err
			}
			name := spec.Method
			if name == "" {
				name = "summa"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entities, %d edges -> %s\n",
				name, g.NumEntities(), g.EdgeCount(), edgelist.Path(a.cfg.Output.Dir, "", name))

			return nil
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "combination spec file (required)")
	_ = cmd.MarkFlagRequired("spec")
	cmd.Flags().String("output", "netfuse-out", "output directory")
	cmd.Flags().Bool("scaled", false, "write |w| / max|w| instead of raw weights")
	a.bind(cmd.Flags(), map[string]string{"output": "output.dir", "scaled": "output.scaled"})

	return cmd
}
