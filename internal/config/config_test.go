package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Codec.Precision)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[codec]
precision = 3
overflow = "normalize"
strict_empty = true

[store]
path = "/tmp/x.db"

[output]
format = "yaml"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Codec.Precision)
	assert.Equal(t, 3, *cfg.Codec.Precision)
	assert.Equal(t, "normalize", *cfg.Codec.Overflow)
	assert.True(t, *cfg.Codec.StrictEmpty)
	assert.Equal(t, "/tmp/x.db", *cfg.Store.Path)
	assert.Equal(t, "yaml", *cfg.Output.Format)
	assert.Nil(t, cfg.Output.Color)
	assert.Equal(t, "debug", *cfg.Log.Level)
	assert.Nil(t, cfg.Log.Format)
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[codec]\nprecison = 2\n"), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "codec.precison")
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interval", "config.toml")

	created, err := WriteTemplate(path)
	require.NoError(t, err)
	assert.True(t, created)

	// the template is all comments, so it decodes to an empty config
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, FileConfig{}, cfg)

	created, err = WriteTemplate(path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/cfg", "interval", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "interval", "interval.db"), DefaultDBPath())
}
