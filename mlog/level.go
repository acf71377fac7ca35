package mlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Level is a logging severity threshold; it is exactly [slog.Level] under
// the hood so handlers built here compose with any other slog-based code.
type Level = slog.Level

// The four recognised severities, in ascending order.
const (
	LevelDebug Level = slog.LevelDebug
	LevelInfo  Level = slog.LevelInfo
	LevelWarn  Level = slog.LevelWarn
	LevelError Level = slog.LevelError
)

// Format selects a [slog.Handler] encoding.
type Format string

const (
	// FormatJSON emits one JSON object per record.
	FormatJSON Format = "json"
	// FormatLogfmt emits logfmt-style key=value pairs.
	FormatLogfmt Format = "logfmt"
	// FormatText emits a plain key=value line with no source location,
	// meant for interactive terminal use.
	FormatText Format = "text"
)

var (
	// ErrUnknownLevel indicates an unrecognized log level string.
	ErrUnknownLevel = errors.New("mlog: unknown log level")
	// ErrUnknownFormat indicates an unrecognized log format string.
	ErrUnknownFormat = errors.New("mlog: unknown log format")
)

// NewHandlerFromStrings parses levelStr and formatStr and builds a
// handler writing to w.
func NewHandlerFromStrings(w io.Writer, levelStr, formatStr string) (slog.Handler, error) {
	level, err := GetLevel(levelStr)
	if err != nil {
		return nil, err
	}

	format, err := GetFormat(formatStr)
	if err != nil {
		return nil, err
	}

	return NewHandler(w, level, format), nil
}

// NewHandler builds a [slog.Handler] writing to w at the given level and
// format.
func NewHandler(w io.Writer, level Level, format Format) slog.Handler {
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: true, Level: level})
	case FormatLogfmt:
		return slog.NewTextHandler(w, &slog.HandlerOptions{AddSource: true, Level: level})
	case FormatText:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
}

// GetLevel parses a level string, case-insensitively; "warning" is
// accepted as an alias for "warn".
func GetLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
}

// GetFormat parses a format string, case-insensitively.
func GetFormat(format string) (Format, error) {
	switch Format(strings.ToLower(format)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatLogfmt:
		return FormatLogfmt, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// GetAllLevelStrings lists the canonical level names [GetLevel] accepts,
// for flag help text and shell completion.
func GetAllLevelStrings() []string {
	return []string{"debug", "info", "warn", "error"}
}

// GetAllFormatStrings lists every string [GetFormat] accepts.
func GetAllFormatStrings() []string {
	return []string{"json", "logfmt", "text"}
}
