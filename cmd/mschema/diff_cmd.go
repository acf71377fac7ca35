package main

import (
	"github.com/spf13/cobra"

	"go.schemadrift.dev/mschema/diff"
)

func newDiffCmd(_ *app) *cobra.Command {
	var from, to, out string

	cmd := &cobra.Command{
		Use:           "diff",
		Short:         "Diff two declarative schema files",
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

			set := diff.Diff(fromFile.Root, toFile.Root)

			return writeJSON(out, set.ToWire())
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "earlier schema file (required)")
	cmd.Flags().StringVar(&to, "to", "", "later schema file (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output change-set JSON path (- for stdout)")

	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
