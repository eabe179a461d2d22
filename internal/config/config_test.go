package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/dcp/internal/config"
)

// writeConfig stores content at $XDG_CONFIG_HOME/dcp/config.toml.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "dcp", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.Buffer)
	assert.Nil(t, cfg.Defaults.Overwrite)
	assert.Nil(t, cfg.Output.Color)
}

func TestLoad_FullConfig(t *testing.T) {
	writeConfig(t, `
[defaults]
buffer = "64K"
overwrite = false
preserve = true
verify = true
compare = "bytes"
bwlimit = "100M"
exclude = ["*.tmp", ".git/"]

[output]
color = "never"
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	d := cfg.Defaults
	require.NotNil(t, d.Buffer)
	assert.Equal(t, "64K", *d.Buffer)
	require.NotNil(t, d.Overwrite)
	assert.False(t, *d.Overwrite)
	require.NotNil(t, d.Preserve)
	assert.True(t, *d.Preserve)
	require.NotNil(t, d.Verify)
	assert.True(t, *d.Verify)
	require.NotNil(t, d.Compare)
	assert.Equal(t, "bytes", *d.Compare)
	require.NotNil(t, d.BWLimit)
	assert.Equal(t, "100M", *d.BWLimit)
	assert.Equal(t, []string{"*.tmp", ".git/"}, d.Exclude)

	require.NotNil(t, cfg.Output.Color)
	assert.Equal(t, "never", *cfg.Output.Color)
}

func TestLoad_PartialConfig(t *testing.T) {
	writeConfig(t, `
[output]
color = "always"
`)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.Verify)
	assert.Nil(t, cfg.Defaults.Buffer)
	require.NotNil(t, cfg.Output.Color)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"invalid toml", "invalid [[[", ""},
		{"unknown key", "[defaults]\nworkers = 4\n", "defaults.workers"},
		{"bad compare", "[defaults]\ncompare = \"mtime\"\n", "defaults.compare"},
		{"bad color", "[output]\ncolor = \"rainbow\"\n", "output.color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), path)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/dcp/config.toml", config.Path())
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	buffer, verify := "1M", true
	want := config.Config{Defaults: config.DefaultsConfig{Buffer: &buffer, Verify: &verify}}

	require.NoError(t, config.Write(path, want))

	got, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.ErrorIs(t, config.Write(path, want), config.ErrExists)
}

func TestWriteRejectsInvalid(t *testing.T) {
	bad := "sha1"
	path := filepath.Join(t.TempDir(), "config.toml")
	require.Error(t, config.Write(path, config.Config{Defaults: config.DefaultsConfig{Compare: &bad}}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestEncode(t *testing.T) {
	overwrite := true
	var buf bytes.Buffer
	require.NoError(t, config.Encode(&buf, config.Config{Defaults: config.DefaultsConfig{Overwrite: &overwrite}}))
	assert.Contains(t, buf.String(), "[defaults]")
	assert.Contains(t, buf.String(), "overwrite = true")
	assert.NotContains(t, buf.String(), "buffer")
}
