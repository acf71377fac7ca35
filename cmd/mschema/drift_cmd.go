package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"go.schemadrift.dev/mschema/drift"
	"go.schemadrift.dev/mschema/infer"
)

func newDriftCmd(a *app) *cobra.Command {
	var (
		expected   string
		collection string
		sampleSize int
		seed       int64
		out        string
		webhookURL string
	)

	cmd := &cobra.Command{
		Use:           "drift",
		Short:         "Detect drift between a declared schema and a live collection sample",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if sampleSize <= 0 {
				sampleSize = a.cfg.SampleSize
			}

			if sampleSize <= 0 {
				return fmt.Errorf("drift: --sample-size must be positive")
			}

			expectedFile, err := readSchemaFile(expected)
			if err != nil {
				return err
			}

			ad, err := a.adapter(ctx)
			if err != nil {
				return err
			}

			cur, err := ad.Sample(ctx, collection, sampleSize)
			if err != nil {
				return fmt.Errorf("drift: sample %s: %w", collection, err)
			}
			defer cur.Close() //nolint:errcheck // best-effort cleanup, Sample's error already propagated

			docs, err := infer.Sample(ctx, cur, sampleSize, seed)
			if err != nil {
				return fmt.Errorf("drift: draw reservoir: %w", err)
			}

			observed := infer.Infer(docs).Schema

			result := drift.Detect(expectedFile.Root, observed)
			hints := drift.IndexHints(observed)
			wire := result.ToWire(hints)

			a.logger.Info("drift detected",
				"collection", collection,
				"has_drift", result.HasDrift,
				"drift_score", result.DriftScore,
				"severities", len(result.Severities))

			if webhookURL != "" {
				body, err := json.Marshal(wire)
				if err != nil {
					return fmt.Errorf("drift: marshal webhook payload: %w", err)
				}

				if err := postWebhook(ctx, webhookURL, body); err != nil {
					return fmt.Errorf("drift: %w", err)
				}
			}

			return writeJSON(out, wire)
		},
	}

	cmd.Flags().StringVar(&expected, "expected", "", "declared schema file (required)")
	cmd.Flags().StringVar(&collection, "collection", "", "collection to sample (required)")
	cmd.Flags().IntVar(&sampleSize, "sample-size", 0, "number of documents to sample (defaults to config sample_size)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "reservoir sampling seed (0 for a fresh, non-reproducible draw)")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output change-set JSON path (- for stdout)")
	cmd.Flags().StringVar(&webhookURL, "webhook", "", "POST the change-set JSON to this URL (spec §6.6)")

	_ = cmd.MarkFlagRequired("expected")
	_ = cmd.MarkFlagRequired("collection")

	return cmd
}
