package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.schemadrift.dev/mschema/infer"
	"go.schemadrift.dev/mschema/schema"
)

func newInferCmd(a *app) *cobra.Command {
	var (
		collection string
		sampleSize int
		seed       int64
		out        string
	)

	cmd := &cobra.Command{
		Use:           "infer",
		Short:         "Infer a declarative schema from a sampled collection",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if sampleSize <= 0 {
				sampleSize = a.cfg.SampleSize
			}

			if sampleSize <= 0 {
				return fmt.Errorf("infer: --sample-size must be positive")
			}

			ad, err := a.adapter(ctx)
			if err != nil {
				return err
			}

			cur, err := ad.Sample(ctx, collection, sampleSize)
			if err != nil {
				return fmt.Errorf("infer: sample %s: %w", collection, err)
			}
			defer cur.Close() //nolint:errcheck // best-effort cleanup, Sample's error already propagated

			docs, err := infer.Sample(ctx, cur, sampleSize, seed)
			if err != nil {
				return fmt.Errorf("infer: draw reservoir: %w", err)
			}

			result := infer.Infer(docs)

			a.logger.Info("inferred schema",
				"collection", collection,
				"sample_count", result.SampleCount,
				"anomalies", len(result.Anomalies))

			f := &schema.File{Version: schema.CurrentVersion, Root: result.Schema}

			return writeSchemaFile(out, f)
		},
	}

	cmd.Flags().StringVar(&collection, "collection", "", "collection to sample (required)")
	cmd.Flags().IntVar(&sampleSize, "sample-size", 0, "number of documents to sample (defaults to config sample_size)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "reservoir sampling seed (0 for a fresh, non-reproducible draw)")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output schema file path (- for stdout)")

	_ = cmd.MarkFlagRequired("collection")

	return cmd
}
