package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AppName   = "treeterm"
	EnvPrefix = "TREETERM"
)

// Config is the full application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger"`
	AutoPan AutoPanConfig `mapstructure:"autopan"`
	Editor  EditorConfig  `mapstructure:"editor"`
	Export  ExportConfig  `mapstructure:"export"`
}

// LoggerConfig controls the zap logger. The TUI owns the terminal, so
// Console is off by default and logs go to LogFile.
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	ServiceName string `mapstructure:"service_name"`
	Console     bool   `mapstructure:"console"`
	AddSource   bool   `mapstructure:"add_source"`
	LogFile     string `mapstructure:"log_file"`
	MaxSize     int    `mapstructure:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
	Compress    bool   `mapstructure:"compress"`
}

// AutoPanConfig is measured in terminal cells.
type AutoPanConfig struct {
	EdgeThreshold float64       `mapstructure:"edge_threshold"`
	MaxSpeed      float64       `mapstructure:"max_speed"`
	FrameInterval time.Duration `mapstructure:"frame_interval"`
}

type EditorConfig struct {
	// NodeKeys maps a node type to the shortcut key that arms it. Types are
	// the keys because viper lowercases map keys and shortcuts are case
	// sensitive. An empty key disables the type.
	NodeKeys          map[string]string `mapstructure:"node_keys"`
	RelationshipTypes []string          `mapstructure:"relationship_types"`
	ConnectKey        string            `mapstructure:"connect_key"`
	RelationshipKey   string            `mapstructure:"relationship_key"`
	ZoomStep          float64           `mapstructure:"zoom_step"`
	DuplicateWindow   time.Duration     `mapstructure:"duplicate_window"`
	DuplicateRadius   float64           `mapstructure:"duplicate_radius"`
	NoticeDuration    time.Duration     `mapstructure:"notice_duration"`
	SaveDirectory     string            `mapstructure:"save_directory"`
	Confirmations     bool              `mapstructure:"confirmations"`
}

type ExportConfig struct {
	CellWidth  float64 `mapstructure:"cell_width"`
	CellHeight float64 `mapstructure:"cell_height"`
	Padding    float64 `mapstructure:"padding"`
	FontSize   float64 `mapstructure:"font_size"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.service_name", AppName)
	v.SetDefault("logger.console", false)
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.log_file", filepath.Join(StateDir(), AppName+".log"))
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", false)

	// -- Auto-pan --
	v.SetDefault("autopan.edge_threshold", 3.0)
	v.SetDefault("autopan.max_speed", 2.0)
	v.SetDefault("autopan.frame_interval", "16ms")

	// -- Editor --
	v.SetDefault("editor.node_keys", map[string]string{
		"business_metric": "m",
		"input_metric":    "i",
		"output_metric":   "o",
		"goal":            "g",
	})
	v.SetDefault("editor.relationship_types", []string{"drives", "influences", "correlates"})
	v.SetDefault("editor.connect_key", "c")
	v.SetDefault("editor.relationship_key", "t")
	v.SetDefault("editor.zoom_step", 1.25)
	v.SetDefault("editor.duplicate_window", "500ms")
	v.SetDefault("editor.duplicate_radius", 5.0)
	v.SetDefault("editor.notice_duration", "3s")
	v.SetDefault("editor.save_directory", "")
	v.SetDefault("editor.confirmations", true)

	// -- Export --
	v.SetDefault("export.cell_width", 10.0)
	v.SetDefault("export.cell_height", 20.0)
	v.SetDefault("export.padding", 20.0)
	v.SetDefault("export.font_size", 14.0)
}

// NewConfigFromViper applies defaults to v and decodes it.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads path (or the default search locations when path is empty),
// environment overrides with the TREETERM_ prefix, and defaults. A missing
// config file is not an error.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithViper(path)
	return cfg, err
}

// LoadWithViper is Load that also returns the viper instance, for callers
// that report where settings came from.
func LoadWithViper(path string) (*Config, *viper.Viper, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Validate rejects settings the editor cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.AutoPan.EdgeThreshold <= 0 {
		errs = append(errs, errors.New("autopan.edge_threshold must be positive"))
	}
	if c.AutoPan.MaxSpeed <= 0 {
		errs = append(errs, errors.New("autopan.max_speed must be positive"))
	}
	if c.AutoPan.FrameInterval <= 0 {
		errs = append(errs, errors.New("autopan.frame_interval must be positive"))
	}
	if c.Editor.ZoomStep <= 1 {
		errs = append(errs, errors.New("editor.zoom_step must be greater than 1"))
	}
	errs = append(errs, c.Editor.validateKeys()...)
	if len(c.Editor.RelationshipTypes) == 0 {
		errs = append(errs, errors.New("editor.relationship_types must not be empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// HostKeys are handled by the editor itself and cannot arm a tool.
var HostKeys = []string{
	"h", "j", "k", "l", "H", "J", "K", "L",
	"d", "x", "y", "n", "q", "?", "+", "=", "-", "0", "esc",
}

// NodeTypes returns the enabled node types by shortcut key.
func (e EditorConfig) NodeTypes() map[string]string {
	types := make(map[string]string, len(e.NodeKeys))
	for nodeType, key := range e.NodeKeys {
		if key != "" {
			types[key] = nodeType
		}
	}
	return types
}

func (e EditorConfig) validateKeys() []error {
	var errs []error
	reserved := func(key string) bool { return slices.Contains(HostKeys, key) }

	for _, tool := range []struct{ name, key string }{
		{"editor.connect_key", e.ConnectKey},
		{"editor.relationship_key", e.RelationshipKey},
	} {
		if tool.key == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", tool.name))
		} else if reserved(tool.key) {
			errs = append(errs, fmt.Errorf("%s %q is reserved by the editor", tool.name, tool.key))
		}
	}
	if e.ConnectKey != "" && e.ConnectKey == e.RelationshipKey {
		errs = append(errs, fmt.Errorf("editor.connect_key and editor.relationship_key are both %q", e.ConnectKey))
	}

	nodeTypes := make([]string, 0, len(e.NodeKeys))
	for nodeType := range e.NodeKeys {
		nodeTypes = append(nodeTypes, nodeType)
	}
	slices.Sort(nodeTypes)
	owner := make(map[string]string, len(nodeTypes))
	for _, nodeType := range nodeTypes {
		key := e.NodeKeys[nodeType]
		switch {
		case key == "":
			continue
		case reserved(key):
			errs = append(errs, fmt.Errorf("editor.node_keys.%s key %q is reserved by the editor", nodeType, key))
		case key == e.ConnectKey || key == e.RelationshipKey:
			errs = append(errs, fmt.Errorf("editor.node_keys.%s key %q is already bound", nodeType, key))
		case owner[key] != "":
			errs = append(errs, fmt.Errorf("editor.node_keys.%s key %q is already bound to %s", nodeType, key, owner[key]))
		default:
			owner[key] = nodeType
		}
	}
	if len(owner) == 0 && len(errs) == 0 {
		errs = append(errs, errors.New("editor.node_keys must enable at least one node type"))
	}
	return errs
}

// SavePath resolves a document file name against the save directory.
func (c *Config) SavePath(filename string) string {
	if c.Editor.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	dir := c.Editor.SaveDirectory
	if strings.HasPrefix(dir, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return filepath.Join(dir, filename)
}

// ConfigDir returns the directory holding config.toml.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, AppName)
}

// StateDir returns the directory for logs.
func StateDir() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, AppName)
}
