package main

import (
	"github.com/spf13/cobra"

	"go.schemadrift.dev/mschema/plan"
)

func newPlanCmd(_ *app) *cobra.Command {
	var from, to, out string

	cmd := &cobra.Command{
		Use:           "plan",
		Short:         "Compile a migration plan from two declarative schema files",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, _ []string) error {
			fromFile, err := readSchemaFile(from)
			if err != nil {
				return err
			}

			toFile, err := readSchemaFile(to)
			if err != nil {
				return err
			}

			p := plan.Compile(fromFile.Root, toFile.Root)

			return writeJSON(out, p.ToWire())
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "earlier schema file (required)")
	cmd.Flags().StringVar(&to, "to", "", "later schema file (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output plan JSON path (- for stdout)")

	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
