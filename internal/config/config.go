// Package config loads fokus settings from a YAML file and FOKUS_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "FOKUS"

type Config struct {
	// DBPath is the SQLite database holding tasks, settings and history.
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
	// LogFile receives log output while the TUI owns the terminal.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`
	// SettleDelay is the pause before an auto-started session begins.
	SettleDelay time.Duration `yaml:"settle_delay" mapstructure:"settle_delay"`
	// Notifications enables the window title and status line notifications.
	Notifications bool `yaml:"notifications" mapstructure:"notifications"`
	// Sounds enables the terminal bell cues.
	Sounds bool `yaml:"sounds" mapstructure:"sounds"`
}

var keys = []string{"db_path", "log_file", "settle_delay", "notifications", "sounds"}

func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		DBPath:        filepath.Join(dir, "fokus.db"),
		LogFile:       filepath.Join(dir, "fokus.log"),
		SettleDelay:   300 * time.Millisecond,
		Notifications: true,
		Sounds:        true,
	}
}

// Dir is ~/.config/fokus, or the working directory when there is no home.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "fokus")
}

// DefaultPath returns the path of the user config file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load applies the file at path (skipped when missing) and then FOKUS_*
// environment variables over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return cfg, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	if path != "" {
		if err := readFile(v, path); err != nil {
			return cfg, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.DBPath = expandHome(cfg.DBPath)
	cfg.LogFile = expandHome(cfg.LogFile)
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	return cfg, nil
}

func readFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// WriteDefault writes a commented default config file, creating its
// directory.
func WriteDefault(path string) error {
	content := `# fokus configuration

# SQLite database with tasks, settings and session history
db_path: ~/.config/fokus/fokus.db

# Log output while the TUI is running
log_file: ~/.config/fokus/fokus.log

# Pause before a session launched from a task starts counting
settle_delay: 300ms

# Window title and status line notifications
notifications: true

# Terminal bell on phase start and end
sounds: true
`
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
