package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.schemadrift.dev/mschema/adapter"
	"go.schemadrift.dev/mschema/validator"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		schemaPath string
		collection string
		level      string
		action     string
		dryRun     bool
		out        string
	)

	cmd := &cobra.Command{
		Use:           "validate",
		Short:         "Project a declarative schema into a validator document and install it",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			f, err := readSchemaFile(schemaPath)
			if err != nil {
				return err
			}

			doc, err := validator.Project(f.Root)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}

			if dryRun {
				return writeOutput(out, append(doc, '\n'))
			}

			ad, err := a.adapter(ctx)
			if err != nil {
				return err
			}

			err = ad.SetValidator(ctx, collection, doc, adapter.ValidatorLevel(level), adapter.ValidatorAction(action))
			if err != nil {
				return fmt.Errorf("validate: install validator on %s: %w", collection, err)
			}

			a.logger.Info("validator installed", "collection", collection, "level", level, "action", action)

			return nil
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "declarative schema file to project (required)")
	cmd.Flags().StringVar(&collection, "collection", "", "collection to install the validator on (required unless --dry-run)")
	cmd.Flags().StringVar(&level, "level", string(adapter.ValidatorModerate), "validator enforcement level: off, moderate, strict")
	cmd.Flags().StringVar(&action, "action", string(adapter.ValidatorWarn), "validator failure action: warn, error")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the projected validator document instead of installing it")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output path for --dry-run (- for stdout)")

	_ = cmd.MarkFlagRequired("schema")

	return cmd
}
