package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "/etc/gush/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/config.yaml", []byte("prompt: \"$ \"\ncolor: true\n"), 0644))

	cfg, err := Load(fs, "/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "$ ", cfg.Prompt)
	assert.True(t, cfg.Color)
	assert.Equal(t, 4096, cfg.MaxLineLen)
	assert.Equal(t, 64, cfg.MaxPipeline)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/config.yaml", []byte("promt: typo\n"), 0644))

	_, err := Load(fs, "/config.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/config.yaml", []byte(":\t::"), 0644))

	_, err := Load(fs, "/config.yaml")
	assert.Error(t, err)
}
