package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.schemadrift.dev/mschema/profiler"
	"go.schemadrift.dev/mschema/version"
)

func main() {
	a := newApp()
	prof := profiler.New()

	rootCmd := &cobra.Command{
		Use:     "mschema",
		Short:   "Schema management for schemaless document collections",
		Version: version.Version,
		Long: `mschema infers declarative schemas from sampled collections, diffs and
detects drift between schema versions and live data, compiles migration
plans, and executes them against a document database.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := a.init(); err != nil {
				return err
			}

			return prof.Start()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return prof.Stop()
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("mschema {{.Version}} (%s, %s/%s, rev %s)\n",
		version.GoVersion, version.GoOS, version.GoArch, version.Revision))

	a.logCfg.RegisterFlags(rootCmd.PersistentFlags())
	prof.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().StringVar(&a.logFile, "log-file", "",
		"write structured logs to this file instead of stderr; apply's terminal progress reporter keeps streaming regardless")

	if err := a.logCfg.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	rootCmd.AddCommand(
		newInferCmd(a),
		newDiffCmd(a),
		newDriftCmd(a),
		newPlanCmd(a),
		newApplyCmd(a),
		newValidateCmd(a),
		newDiffAllCmd(a),
		newDriftAllCmd(a),
	)

	err := rootCmd.Execute()

	a.close(rootCmd.Context())

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
