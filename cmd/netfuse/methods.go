package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/netfuse/combine"
	"github.com/katalvlaran/netfuse/inference"
)

func newMethodsCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the registered inference methods and combiners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "inference: %s\n", strings.Join(inference.Builtin().Names(), ", "))
			fmt.Fprintf(out, "default:   %s\n", strings.Join(inference.DefaultMethods, ", "))
			fmt.Fprintf(out, "combiners: %s\n", strings.Join(combine.Names(), ", "))

			return nil
		},
	}
}
