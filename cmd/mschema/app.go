// Package main provides the CLI entry point for mschema: inference, diffing,
// drift detection, plan compilation, migration execution, and validator
// projection for schemaless document collections.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.schemadrift.dev/mschema/adapter"
	"go.schemadrift.dev/mschema/adapter/mongoadapter"
	"go.schemadrift.dev/mschema/config"
	"go.schemadrift.dev/mschema/mlog"
)

// app holds the state shared by every subcommand: resolved configuration,
// a lazily-dialed database adapter, and the process logger.
type app struct {
	cfg     config.Config
	cfgErr  error
	logCfg  *mlog.Config
	logFile string

	// publisher fans the structured log out to cmd/mschema's interactive
	// terminal reporter (see apply_cmd.go) in addition to logFile/stderr,
	// so a slow log file write never blocks the progress line the operator
	// is watching.
	publisher     *mlog.Publisher
	logFileHandle *os.File

	ad     *mongoadapter.Adapter
	logger *slog.Logger
}

func newApp() *app {
	return &app{logCfg: mlog.NewConfig(), publisher: mlog.NewPublisher()}
}

// init resolves configuration (spec §6.7) and builds the logger; it does
// not dial the database, since read-only commands like plan compilation
// from two local files never need one. A missing mongodb_uri/default_db
// is not fatal here — spec §7's "config error" only aborts commands that
// actually need the database, surfaced lazily from [app.adapter].
func (a *app) init() error {
	cfg, err := config.Load("")
	if err != nil && !errors.Is(err, config.ErrMissingRequired) {
		return err
	}

	a.cfg = cfg
	a.cfgErr = err

	var w io.Writer = os.Stderr

	if a.logFile != "" {
		f, err := os.OpenFile(a.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file %s: %w", a.logFile, err)
		}

		a.logFileHandle = f
		w = f
	}

	handler, err := a.logCfg.NewHandler(io.MultiWriter(w, a.publisher))
	if err != nil {
		return fmt.Errorf("log configuration: %w", err)
	}

	a.logger = slog.New(handler)

	return nil
}

// adapter dials MongoDB on first use and memoizes the connection for the
// remainder of the process.
func (a *app) adapter(ctx context.Context) (adapter.Adapter, error) {
	if a.ad != nil {
		return a.ad, nil
	}

	if a.cfgErr != nil {
		return nil, a.cfgErr
	}

	ad, err := mongoadapter.Dial(ctx, a.cfg.MongoDBURI, a.cfg.DefaultDB)
	if err != nil {
		return nil, fmt.Errorf("dial database: %w", err)
	}

	a.ad = ad

	return ad, nil
}

// close releases the database connection and log resources, if any were
// acquired. Closing the publisher unblocks any terminal reporter still
// subscribed to it.
func (a *app) close(ctx context.Context) {
	if a.ad != nil {
		if err := a.ad.Close(ctx); err != nil {
			a.logger.Error("close adapter", slog.Any("error", err))
		}
	}

	_ = a.publisher.Close()

	if a.logFileHandle != nil {
		_ = a.logFileHandle.Close()
	}
}
