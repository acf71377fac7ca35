// Package mlog provides structured logging handler construction for use
// with [log/slog], wired into mschema's CLI (cmd/mschema) and its
// executor's progress reporting.
//
// It supports three output formats ([FormatJSON], [FormatLogfmt],
// [FormatText]) and four severity levels ([LevelDebug], [LevelInfo],
// [LevelWarn], [LevelError]). Use [NewHandler] to build a handler
// directly, or [Config] for CLI flag integration via
// [github.com/spf13/pflag] and [github.com/spf13/cobra]:
//
//	cfg := mlog.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
//
// A [Publisher] fans out log output to multiple subscribers, used by
// cmd/mschema to stream executor progress to both a log file and an
// interactive terminal at once:
//
//	pub := mlog.NewPublisher()
//	w := io.MultiWriter(logFile, pub)
//	logger := slog.New(mlog.NewHandler(w, mlog.LevelInfo, mlog.FormatJSON))
package mlog
