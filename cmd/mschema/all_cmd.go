package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.schemadrift.dev/mschema/diff"
	"go.schemadrift.dev/mschema/drift"
	"go.schemadrift.dev/mschema/infer"
)

// collectionSchemas lists every "<collection>.yaml" file in dir, keyed by
// collection name, matching spec §5's "database-wide operations" over a
// directory of declared per-collection schema files.
func collectionSchemas(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schema directory %s: %w", dir, err)
	}

	out := make(map[string]string)

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		out[name] = filepath.Join(dir, entry.Name())
	}

	return out, nil
}

func newDiffAllCmd(_ *app) *cobra.Command {
	var fromDir, toDir, out string

	cmd := &cobra.Command{
		Use:           "diff-all",
		Short:         "Diff every collection's schema file between two directories",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, _ []string) error {
			fromByName, err := collectionSchemas(fromDir)
			if err != nil {
				return err
			}

			toByName, err := collectionSchemas(toDir)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(toByName))
			for name := range toByName {
				names = append(names, name)
			}

			var (
				mu      sync.Mutex
				results = make(map[string]diff.WireSet, len(names))
			)

			g := errgroup.Group{}
			for _, name := range names {
				g.Go(func() error {
					toFile, err := readSchemaFile(toByName[name])
					if err != nil {
						return err
					}

					fromPath, ok := fromByName[name]
					if !ok {
						mu.Lock()
						results[name] = diff.Diff(nil, toFile.Root).ToWire()
						mu.Unlock()

						return nil
					}

					fromFile, err := readSchemaFile(fromPath)
					if err != nil {
						return err
					}

					set := diff.Diff(fromFile.Root, toFile.Root)

					mu.Lock()
					results[name] = set.ToWire()
					mu.Unlock()

					return nil
				})
			}

			if err := g.Wait(); err != nil {
				return fmt.Errorf("diff-all: %w", err)
			}

			return writeJSON(out, results)
		},
	}

	cmd.Flags().StringVar(&fromDir, "from-dir", "", "directory of earlier per-collection schema files (required)")
	cmd.Flags().StringVar(&toDir, "to-dir", "", "directory of later per-collection schema files (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output path for the combined change-set JSON (- for stdout)")

	_ = cmd.MarkFlagRequired("from-dir")
	_ = cmd.MarkFlagRequired("to-dir")

	return cmd
}

func newDriftAllCmd(a *app) *cobra.Command {
	var (
		schemaDir  string
		sampleSize int
		out        string
	)

	cmd := &cobra.Command{
		Use:           "drift-all",
		Short:         "Detect drift for every collection with a declared schema file",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if sampleSize <= 0 {
				sampleSize = a.cfg.SampleSize
			}

			if sampleSize <= 0 {
				return fmt.Errorf("drift-all: --sample-size must be positive")
			}

			byName, err := collectionSchemas(schemaDir)
			if err != nil {
				return err
			}

			ad, err := a.adapter(ctx)
			if err != nil {
				return err
			}

			var (
				mu      sync.Mutex
				results = make(map[string]drift.WireResult, len(byName))
			)

			g, gctx := errgroup.WithContext(ctx)

			for name, path := range byName {
				g.Go(func() error {
					expectedFile, err := readSchemaFile(path)
					if err != nil {
						return err
					}

					cur, err := ad.Sample(gctx, name, sampleSize)
					if err != nil {
						return fmt.Errorf("sample %s: %w", name, err)
					}
					defer cur.Close() //nolint:errcheck // best-effort cleanup, Sample's error already propagated

					docs, err := infer.Sample(gctx, cur, sampleSize, 0)
					if err != nil {
						return fmt.Errorf("draw reservoir for %s: %w", name, err)
					}

					observed := infer.Infer(docs).Schema
					result := drift.Detect(expectedFile.Root, observed)
					hints := drift.IndexHints(observed)

					mu.Lock()
					results[name] = result.ToWire(hints)
					mu.Unlock()

					a.logger.Info("drift detected", "collection", name, "has_drift", result.HasDrift, "drift_score", result.DriftScore)

					return nil
				})
			}

			if err := g.Wait(); err != nil {
				return fmt.Errorf("drift-all: %w", err)
			}

			return writeJSON(out, results)
		},
	}

	cmd.Flags().StringVar(&schemaDir, "schema-dir", "", "directory of per-collection declared schema files (required)")
	cmd.Flags().IntVar(&sampleSize, "sample-size", 0, "number of documents to sample per collection (defaults to config sample_size)")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output path for the combined drift result JSON (- for stdout)")

	_ = cmd.MarkFlagRequired("schema-dir")

	return cmd
}
