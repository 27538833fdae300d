package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBaseURL is the REST API root used when none is configured.
const DefaultBaseURL = "https://testapi.doitserver.in.ua/api"

// EnvPrefix prefixes environment variables that override config keys,
// e.g. SIMPLETASKS_API_BASE_URL.
const EnvPrefix = "SIMPLETASKS"

// APIConfig holds settings for the remote task API.
type APIConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// SessionConfig controls where the session token is kept.
type SessionConfig struct {
	// ServiceName namespaces the keyring entry.
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`

	// Key is the keyring item holding the token.
	Key string `mapstructure:"key" yaml:"key"`

	// FileDir is used by the encrypted file backend when no system
	// keyring is available.
	FileDir string `mapstructure:"file_dir" yaml:"file_dir"`

	// LogoutOnUnauthorized ends the session when the API answers 401.
	LogoutOnUnauthorized bool `mapstructure:"logout_on_unauthorized" yaml:"logout_on_unauthorized"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	Path  string `mapstructure:"path" yaml:"path"`
}

// JournalConfig controls the on-disk action journal.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// TasksConfig holds task form preferences.
type TasksConfig struct {
	DefaultDueHours int `mapstructure:"default_due_hours" yaml:"default_due_hours"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Journal JournalConfig `mapstructure:"journal" yaml:"journal"`
	Tasks   TasksConfig   `mapstructure:"tasks" yaml:"tasks"`
}

// ConfigDir returns ~/.config/simpletasks, falling back to the working
// directory when the home directory is unknown.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "simpletasks")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/simpletasks/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *AppConfig {
	dir := ConfigDir()
	return &AppConfig{
		API: APIConfig{
			BaseURL:    DefaultBaseURL,
			TimeoutSec: 30,
		},
		Session: SessionConfig{
			ServiceName:          "com.honcharenko.simpletasks",
			Key:                  "token",
			FileDir:              filepath.Join(dir, "credentials"),
			LogoutOnUnauthorized: true,
		},
		Log: LogConfig{
			Level: "warn",
			Path:  filepath.Join(dir, "simpletasks.log"),
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    filepath.Join(dir, "journal.db"),
		},
		Tasks: TasksConfig{
			DefaultDueHours: 24,
		},
	}
}

// setDefaults registers every key so environment overrides resolve
// even when the file omits them.
func setDefaults(v *viper.Viper, cfg *AppConfig) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.timeout_sec", cfg.API.TimeoutSec)
	v.SetDefault("session.service_name", cfg.Session.ServiceName)
	v.SetDefault("session.key", cfg.Session.Key)
	v.SetDefault("session.file_dir", cfg.Session.FileDir)
	v.SetDefault("session.logout_on_unauthorized", cfg.Session.LogoutOnUnauthorized)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.path", cfg.Log.Path)
	v.SetDefault("journal.enabled", cfg.Journal.Enabled)
	v.SetDefault("journal.path", cfg.Journal.Path)
	v.SetDefault("tasks.default_due_hours", cfg.Tasks.DefaultDueHours)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A .env file next to the config file is loaded into the environment first,
// and SIMPLETASKS_* variables override file values. If the file does not
// exist, defaults (plus environment overrides) are returned.
func LoadConfig(path string) (*AppConfig, error) {
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = 30
	}
	if cfg.Tasks.DefaultDueHours <= 0 {
		cfg.Tasks.DefaultDueHours = 24
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("session", cfg.Session)
	v.Set("log", cfg.Log)
	v.Set("journal", cfg.Journal)
	v.Set("tasks", cfg.Tasks)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
