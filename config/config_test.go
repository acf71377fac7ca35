package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.schemadrift.dev/mschema/config"
)

func writeProjectFile(t *testing.T, dir, contents string) {
	t.Helper()

	err := os.WriteFile(filepath.Join(dir, config.ProjectFileName), []byte(contents), 0o600)
	require.NoError(t, err)
}

func TestLoadFromProjectFile(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "mongodb_uri: mongodb://localhost:27017\ndefault_db: appdb\nbatch_size: 250\n")

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("MSCHEMA_MONGODB_URI", "")
	t.Setenv("MSCHEMA_DEFAULT_DB", "")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDBURI)
	assert.Equal(t, "appdb", cfg.DefaultDB)
	assert.Equal(t, 250, cfg.BatchSize)
}

func TestLoadEnvOverridesProjectFile(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "mongodb_uri: mongodb://project\ndefault_db: projectdb\n")

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("MSCHEMA_MONGODB_URI", "mongodb://env")
	t.Setenv("MSCHEMA_DEFAULT_DB", "")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://env", cfg.MongoDBURI)
	assert.Equal(t, "projectdb", cfg.DefaultDB)
}

func TestLoadUserOverridesProjectButNotEnv(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "mongodb_uri: mongodb://project\ndefault_db: projectdb\nbatch_size: 100\n")

	xdg := t.TempDir()
	userDir := filepath.Join(xdg, "mschema")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte("batch_size: 500\n"), 0o600))

	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("MSCHEMA_MONGODB_URI", "")
	t.Setenv("MSCHEMA_DEFAULT_DB", "")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, "projectdb", cfg.DefaultDB)
}

func TestLoadMissingRequiredFieldsErrors(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("MSCHEMA_MONGODB_URI", "")
	t.Setenv("MSCHEMA_DEFAULT_DB", "")

	_, err := config.Load(dir)
	require.ErrorIs(t, err, config.ErrMissingRequired)
}

func TestLoadIgnoresAbsentFiles(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("MSCHEMA_MONGODB_URI", "mongodb://env")
	t.Setenv("MSCHEMA_DEFAULT_DB", "envdb")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://env", cfg.MongoDBURI)
	assert.Equal(t, "envdb", cfg.DefaultDB)
}
