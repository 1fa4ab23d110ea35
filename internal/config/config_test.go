package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, resolved, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, resolved)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, BusName, cfg.Bus.Name)
	assert.Equal(t, ObjectPath, cfg.Bus.ObjectPath)
	assert.True(t, cfg.Discovery.ReadProjectNames)
	assert.False(t, cfg.Discovery.AllVersions)
	assert.Equal(t, 4, cfg.Discovery.Workers)
	assert.Equal(t, "app-jbsearch", cfg.Launch.ScopePrefix)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
discovery:
  all_versions: true
  workers: 2
products:
  disabled: [datagrip]
  executables:
    idea: /opt/idea/bin/idea.sh
launch:
  default_product: idea
paths:
  home: /home/test
`), 0o644))
	t.Setenv("JBSEARCH_LOG_FORMAT", "json")

	cfg, resolved, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Discovery.AllVersions)
	assert.Equal(t, []string{"datagrip"}, cfg.Products.Disabled)
	assert.Equal(t, "/opt/idea/bin/idea.sh", cfg.Products.Executables["idea"])
	assert.Equal(t, "idea", cfg.Launch.DefaultProduct)

	opts := cfg.DiscoveryOptions()
	assert.Equal(t, 2, opts.Workers)
	assert.Equal(t, "/home/test/.config", opts.Dirs.ConfigDir())
	assert.Equal(t, "/opt/idea/bin/idea.sh", cfg.LauncherConfig().Executables["idea"])
}

func TestLoadExplicitMissing(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadRejectsBadWorkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("discovery:\n  workers: 0\n"), 0o644))
	_, _, err := Load(path)
	assert.Error(t, err)
}
