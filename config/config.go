package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	goyaml "github.com/goccy/go-yaml"
)

// ErrMissingRequired is spec §7 error kind 1: mongodb_uri or default_db is
// absent after every configuration layer has been merged.
var ErrMissingRequired = errors.New("config: missing required option")

// ProjectFileName is the project-local config file Load looks for in the
// current directory.
const ProjectFileName = ".mschema.yaml"

// Config is the fully merged spec §6.7 configuration surface.
type Config struct {
	// MongoDBURI is the connection string. Required.
	MongoDBURI string
	// DefaultDB is the database name operations target by default.
	// Required.
	DefaultDB string
	// SampleSize is the default draw size for schema inference (spec
	// §4.2). Zero means unset; the CLI's sampling commands then require an
	// explicit --sample-size.
	SampleSize int
	// BatchSize is the default executor batch size (spec §4.7).
	BatchSize int
	// RateLimit is the default minimum interval between executor
	// batches (spec §4.7).
	RateLimit time.Duration
	// AIRecommenderKey is carried through for the (out-of-scope) AI
	// recommendation collaborator named in spec §1; the core ignores it
	// entirely.
	AIRecommenderKey string
}

// fileConfig mirrors the on-disk YAML shape for both the user and project
// config layers.
type fileConfig struct {
	MongoDBURI       string `yaml:"mongodb_uri"`
	DefaultDB        string `yaml:"default_db"`
	SampleSize       int    `yaml:"sample_size"`
	BatchSize        int    `yaml:"batch_size"`
	RateLimitMS      int    `yaml:"rate_limit_ms"`
	AIRecommenderKey string `yaml:"ai_recommender_key"`
}

// Load resolves Config per spec §6.7's precedence: process environment
// overrides per-user config, which overrides project config. projectDir
// is the directory to look for ProjectFileName in; pass "" for the
// current working directory.
func Load(projectDir string) (Config, error) {
	merged := fileConfig{}

	if project, err := readFile(filepath.Join(projectDir, ProjectFileName)); err == nil {
		overlay(&merged, project)
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config: read project config: %w", err)
	}

	if user, err := readFile(userConfigPath()); err == nil {
		overlay(&merged, user)
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config: read user config: %w", err)
	}

	overlay(&merged, fromEnv())

	cfg := Config{
		MongoDBURI:       merged.MongoDBURI,
		DefaultDB:        merged.DefaultDB,
		SampleSize:       merged.SampleSize,
		BatchSize:        merged.BatchSize,
		RateLimit:        time.Duration(merged.RateLimitMS) * time.Millisecond,
		AIRecommenderKey: merged.AIRecommenderKey,
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.MongoDBURI == "" {
		return fmt.Errorf("%w: mongodb_uri", ErrMissingRequired)
	}

	if c.DefaultDB == "" {
		return fmt.Errorf("%w: default_db", ErrMissingRequired)
	}

	return nil
}

// userConfigPath follows $XDG_CONFIG_HOME/mschema/config.yaml, falling
// back to $HOME/.config/mschema/config.yaml when unset.
func userConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}

		base = filepath.Join(home, ".config")
	}

	return filepath.Join(base, "mschema", "config.yaml")
}

func readFile(path string) (fileConfig, error) {
	if path == "" {
		return fileConfig{}, os.ErrNotExist
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, err
	}

	var fc fileConfig

	if err := goyaml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return fc, nil
}

// fromEnv reads the MSCHEMA_* environment variables, the highest-priority
// configuration layer.
func fromEnv() fileConfig {
	fc := fileConfig{
		MongoDBURI:       os.Getenv("MSCHEMA_MONGODB_URI"),
		DefaultDB:        os.Getenv("MSCHEMA_DEFAULT_DB"),
		AIRecommenderKey: os.Getenv("MSCHEMA_AI_RECOMMENDER_KEY"),
	}

	if n, err := strconv.Atoi(os.Getenv("MSCHEMA_SAMPLE_SIZE")); err == nil {
		fc.SampleSize = n
	}

	if n, err := strconv.Atoi(os.Getenv("MSCHEMA_BATCH_SIZE")); err == nil {
		fc.BatchSize = n
	}

	if n, err := strconv.Atoi(os.Getenv("MSCHEMA_RATE_LIMIT_MS")); err == nil {
		fc.RateLimitMS = n
	}

	return fc
}

// overlay writes every non-zero field of src onto dst, implementing the
// "higher-precedence layer wins only where it sets something" merge rule.
func overlay(dst *fileConfig, src fileConfig) {
	if src.MongoDBURI != "" {
		dst.MongoDBURI = src.MongoDBURI
	}

	if src.DefaultDB != "" {
		dst.DefaultDB = src.DefaultDB
	}

	if src.SampleSize != 0 {
		dst.SampleSize = src.SampleSize
	}

	if src.BatchSize != 0 {
		dst.BatchSize = src.BatchSize
	}

	if src.RateLimitMS != 0 {
		dst.RateLimitMS = src.RateLimitMS
	}

	if src.AIRecommenderKey != "" {
		dst.AIRecommenderKey = src.AIRecommenderKey
	}
}
