package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"go.schemadrift.dev/mschema/adapter"
	"go.schemadrift.dev/mschema/docvalue"
	"go.schemadrift.dev/mschema/lattice"
	"go.schemadrift.dev/mschema/migrate"
	"go.schemadrift.dev/mschema/plan"
)

// progressSink reports per-batch progress to the structured logger (spec
// §4.7's "progress reporting"), which in turn fans out through a.publisher
// to the terminal reporter subscribed in newApplyCmd's RunE.
type progressSink struct {
	logger     *slog.Logger
	collection string
}

func (s *progressSink) Report(_ context.Context, p migrate.Progress) error {
	s.logger.Info("migration progress",
		"collection", s.collection,
		"processed", p.Processed,
		"matched", p.Matched,
		"modified", p.Modified,
		"skipped", p.Skipped,
		"last_key", p.LastKey)

	return nil
}

func newApplyCmd(a *app) *cobra.Command {
	var (
		collection      string
		from, to        string
		dryRun          bool
		batchSize       int
		rateLimit       time.Duration
		resumeFrom      string
		overrides       []string
		applyValidator  bool
		validatorLevel  string
		validatorAction string
	)

	cmd := &cobra.Command{
		Use:           "apply",
		Short:         "Execute the migration plan compiled from two declarative schema files",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			fromFile, err := readSchemaFile(from)
			if err != nil {
				return err
			}

			toFile, err := readSchemaFile(to)
			if err != nil {
				return err
			}

			overrideValues, err := parseOverrides(overrides)
			if err != nil {
				return fmt.Errorf("apply: %w", err)
			}

			ad, err := a.adapter(ctx)
			if err != nil {
				return err
			}

			p := plan.Compile(fromFile.Root, toFile.Root)

			if !cmd.Flags().Changed("batch-size") && a.cfg.BatchSize > 0 {
				batchSize = a.cfg.BatchSize
			}

			if !cmd.Flags().Changed("rate-limit") && a.cfg.RateLimit > 0 {
				rateLimit = a.cfg.RateLimit
			}

			opts := migrate.Options{
				DryRun:         dryRun,
				BatchSize:      batchSize,
				RateLimit:      rateLimit,
				ResumeFrom:     adapter.Key(resumeFrom),
				Overrides:      overrideValues,
				ApplyValidator: applyValidator,
				ValidatorLevel:  adapter.ValidatorLevel(validatorLevel),
				ValidatorAction: adapter.ValidatorAction(validatorAction),
			}

			exec := migrate.New(ad)

			// Stream progress to the terminal independently of wherever
			// the structured log is headed (stderr, or a --log-file):
			// the ring-buffer Publisher never blocks this goroutine on a
			// slow log file write.
			sub := a.publisher.Subscribe()
			defer sub.Close()

			go func() {
				for line := range sub.C() {
					fmt.Fprint(cmd.OutOrStdout(), string(line))
				}
			}()

			onDoc := func(outcome migrate.DocumentOutcome) {
				if outcome.Err != nil {
					a.logger.Error("document migration failed",
						"key", outcome.Key, "error", outcome.Err)
				}
			}

			sink := &progressSink{logger: a.logger, collection: collection}

			progress, err := exec.Run(ctx, collection, p, toFile.Root, opts, sink, onDoc)
			if err != nil {
				return fmt.Errorf("apply: %w", err)
			}

			a.logger.Info("migration complete",
				"collection", collection,
				"processed", progress.Processed,
				"matched", progress.Matched,
				"modified", progress.Modified,
				"skipped", progress.Skipped,
				"last_key", progress.LastKey,
				"dry_run", dryRun)

			return nil
		},
	}

	cmd.Flags().StringVar(&collection, "collection", "", "collection to migrate (required)")
	cmd.Flags().StringVar(&from, "from", "", "current declarative schema file (required)")
	cmd.Flags().StringVar(&to, "to", "", "target declarative schema file (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute but do not write mutations")
	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "documents processed per batch")
	cmd.Flags().DurationVar(&rateLimit, "rate-limit", 0, "minimum interval between batches (0 disables)")
	cmd.Flags().StringVar(&resumeFrom, "resume-from", "", "resume marker: the last successfully processed key (spec §6.5)")
	cmd.Flags().StringArrayVar(&overrides, "override", nil, "field=value override for a requires-input add_field (repeatable)")
	cmd.Flags().BoolVar(&applyValidator, "apply-validator", false, "install the target schema's validator document on success")
	cmd.Flags().StringVar(&validatorLevel, "validator-level", string(adapter.ValidatorModerate), "validator enforcement level: off, moderate, strict")
	cmd.Flags().StringVar(&validatorAction, "validator-action", string(adapter.ValidatorWarn), "validator failure action: warn, error")

	_ = cmd.MarkFlagRequired("collection")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// parseOverrides parses "path=value" pairs into docvalue scalars, inferring
// the narrowest lattice type the literal parses as (int64, then float64,
// then bool, falling back to string) — there is no schema context available
// at the CLI boundary to target a more specific type.
func parseOverrides(raw []string) (map[string]docvalue.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	out := make(map[string]docvalue.Value, len(raw))

	for _, entry := range raw {
		path, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --override %q: expected field=value", entry)
		}

		out[path] = inferScalar(value)
	}

	return out, nil
}

func inferScalar(value string) docvalue.Value {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return docvalue.NewScalar(lattice.Int64, n)
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return docvalue.NewScalar(lattice.Double, f)
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return docvalue.NewScalar(lattice.Bool, b)
	}

	return docvalue.NewScalar(lattice.String, value)
}
