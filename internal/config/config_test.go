package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := NewConfigFromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.False(t, cfg.Logger.Console, "the TUI owns stdout")
	assert.Equal(t, 3.0, cfg.AutoPan.EdgeThreshold)
	assert.Equal(t, 2.0, cfg.AutoPan.MaxSpeed)
	assert.Equal(t, 16*time.Millisecond, cfg.AutoPan.FrameInterval)
	assert.Equal(t, "business_metric", cfg.Editor.NodeTypes()["m"])
	assert.Len(t, cfg.Editor.NodeTypes(), 4)
	assert.Equal(t, []string{"drives", "influences", "correlates"}, cfg.Editor.RelationshipTypes)
	assert.Equal(t, 500*time.Millisecond, cfg.Editor.DuplicateWindow)
	assert.Equal(t, 5.0, cfg.Editor.DuplicateRadius)
	assert.Equal(t, "c", cfg.Editor.ConnectKey)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[autopan]
edge_threshold = 5
frame_interval = "33ms"

[editor]
relationship_types = ["causes"]
zoom_step = 2.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.AutoPan.EdgeThreshold)
	assert.Equal(t, 2.0, cfg.AutoPan.MaxSpeed, "unset keys keep their default")
	assert.Equal(t, 33*time.Millisecond, cfg.AutoPan.FrameInterval)
	assert.Equal(t, []string{"causes"}, cfg.Editor.RelationshipTypes)
	assert.Equal(t, 2.0, cfg.Editor.ZoomStep)
}

func TestLoadMissingDefaultFileIsFine(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdir(t, t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1.25, cfg.Editor.ZoomStep)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdir(t, t.TempDir())
	t.Setenv("TREETERM_LOGGER_LEVEL", "debug")
	t.Setenv("TREETERM_AUTOPAN_MAX_SPEED", "4")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 4.0, cfg.AutoPan.MaxSpeed)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := NewConfigFromViper(viper.New())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"threshold", func(c *Config) { c.AutoPan.EdgeThreshold = 0 }, "edge_threshold"},
		{"speed", func(c *Config) { c.AutoPan.MaxSpeed = -1 }, "max_speed"},
		{"frame", func(c *Config) { c.AutoPan.FrameInterval = 0 }, "frame_interval"},
		{"zoom", func(c *Config) { c.Editor.ZoomStep = 1 }, "zoom_step"},
		{"no node types", func(c *Config) { c.Editor.NodeKeys = nil }, "must enable at least one node type"},
		{"all disabled", func(c *Config) { clear(c.Editor.NodeKeys); c.Editor.NodeKeys["goal"] = "" }, "must enable at least one node type"},
		{"tool key clash", func(c *Config) { c.Editor.NodeKeys["goal"] = "c" }, `node_keys.goal key "c" is already bound`},
		{"shared key", func(c *Config) { c.Editor.NodeKeys["goal"] = "m" }, "already bound to business_metric"},
		{"pan key", func(c *Config) { c.Editor.NodeKeys["goal"] = "h" }, `node_keys.goal key "h" is reserved`},
		{"quit key", func(c *Config) { c.Editor.NodeKeys["goal"] = "q" }, "is reserved"},
		{"delete key", func(c *Config) { c.Editor.NodeKeys["goal"] = "d" }, "is reserved"},
		{"reserved connect key", func(c *Config) { c.Editor.ConnectKey = "y" }, `editor.connect_key "y" is reserved`},
		{"same tool keys", func(c *Config) { c.Editor.RelationshipKey = "c" }, "are both"},
		{"empty tool key", func(c *Config) { c.Editor.RelationshipKey = "" }, "relationship_key must not be empty"},
		{"no relationship types", func(c *Config) { c.Editor.RelationshipTypes = nil }, "relationship_types"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSavePath(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, "doc.toml", cfg.SavePath("doc.toml"))

	cfg.Editor.SaveDirectory = "/data/trees"
	assert.Equal(t, "/data/trees/doc.toml", cfg.SavePath("doc.toml"))
	assert.Equal(t, "/abs/doc.toml", cfg.SavePath("/abs/doc.toml"))
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	assert.Equal(t, "/tmp/test-xdg/treeterm", ConfigDir())
}

func TestLoadWithViperReportsFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	chdir(t, t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Join(dir, AppName), 0o755))
	path := filepath.Join(dir, AppName, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[editor]\nconnect_key = \"r\"\n"), 0o644))

	cfg, v, err := LoadWithViper("")
	require.NoError(t, err)
	assert.Equal(t, "r", cfg.Editor.ConnectKey)
	assert.Equal(t, path, v.ConfigFileUsed())
	assert.Contains(t, v.AllKeys(), "autopan.frame_interval")
}

func TestNodeKeysKeepTheirCase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[editor.node_keys]
goal = "G"
input_metric = ""
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	types := cfg.Editor.NodeTypes()
	assert.Equal(t, "goal", types["G"])
	assert.NotContains(t, types, "g")
	assert.NotContains(t, types, "i", "an empty key disables the type")
	assert.Equal(t, "business_metric", types["m"], "unset types keep their default key")
	assert.Len(t, types, 3)
}

// chdir changes the working directory for the test and restores it on
// cleanup, like testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
