package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sandbox isolates viper, the working directory and the user config
// directory so tests never touch a real config file.
func sandbox(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Chdir(t.TempDir())
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	return configHome
}

func TestLoadDefaults(t *testing.T) {
	sandbox(t)

	settings, err := Load()
	require.NoError(t, err)

	assert.False(t, settings.Debug)
	assert.Equal(t, ".", settings.Repository.ParentDir)
	assert.Equal(t, "quick-lab/primerschemes", settings.Repository.GithubRepo)
	assert.Equal(t, "https://labs.primalscheme.com", settings.Repository.ServerURL)
	assert.False(t, settings.Log.Enabled)
	assert.True(t, settings.Audit.Enabled)
	assert.Equal(t, "index-audit.db", settings.Audit.Path)
}

func TestLoadCreatesDefaultConfigFile(t *testing.T) {
	configHome := sandbox(t)

	_, err := Load()
	require.NoError(t, err)

	// with no config file anywhere the defaults are written out for editing
	configPath := filepath.Join(configHome, "primal-page", "config.yaml")
	require.FileExists(t, configPath)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "parentdir")
	assert.Contains(t, string(data), "githubrepo")
}

func TestLoadConfigFile(t *testing.T) {
	sandbox(t)

	config := "debug: true\n" +
		"repository:\n" +
		"    parentdir: /srv/schemes\n" +
		"    githubrepo: my-lab/my-schemes\n"
	require.NoError(t, os.WriteFile("config.yaml", []byte(config), 0o644))

	settings, err := Load()
	require.NoError(t, err)

	assert.True(t, settings.Debug)
	assert.Equal(t, "/srv/schemes", settings.Repository.ParentDir)
	assert.Equal(t, "my-lab/my-schemes", settings.Repository.GithubRepo)
	// unset keys keep their defaults
	assert.Equal(t, "https://labs.primalscheme.com", settings.Repository.ServerURL)
}

func TestWriteDefaultConfig(t *testing.T) {
	sandbox(t)

	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "parentdir")
	assert.Contains(t, string(data), "githubrepo")
}
