package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Library LibraryConfig `mapstructure:"library"`
	Cache   CacheConfig   `mapstructure:"cache"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LibraryConfig holds library storage configuration
type LibraryConfig struct {
	DatabasePath string `mapstructure:"database_path"` // BoltDB file location
	MusicDir     string `mapstructure:"music_dir"`     // Root of the music tree
}

// CacheConfig holds cache tuning
type CacheConfig struct {
	SizeMB         int `mapstructure:"size_mb"`          // Total artwork budget
	MetadataTTLMin int `mapstructure:"metadata_ttl_min"` // Metadata staleness window
}

// UIConfig holds UI configuration
type UIConfig struct {
	Theme       string `mapstructure:"theme"`
	ArtworkSize int    `mapstructure:"artwork_size"` // Logical size for track art
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			DatabasePath: defaultDataPath("library.db"),
			MusicDir:     defaultMusicDir(),
		},
		Cache: CacheConfig{
			SizeMB:         256,
			MetadataTTLMin: 5,
		},
		UI: UIConfig{
			Theme:       "default",
			ArtworkSize: 160,
		},
		Logging: LoggingConfig{
			File:  defaultDataPath("aria.log"),
			Level: "INFO",
		},
	}
}

func defaultDataPath(name string) string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "aria", name)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "aria", name)
	}
}

func defaultMusicDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Music")
}

// defaultConfigPath returns the config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "aria")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "aria")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("ARIA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set("library.database_path", cfg.Library.DatabasePath)
	viper.Set("library.music_dir", cfg.Library.MusicDir)

	viper.Set("cache.size_mb", cfg.Cache.SizeMB)
	viper.Set("cache.metadata_ttl_min", cfg.Cache.MetadataTTLMin)

	viper.Set("ui.theme", cfg.UI.Theme)
	viper.Set("ui.artwork_size", cfg.UI.ArtworkSize)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveCacheSize updates just the artwork cache budget in the
// configuration file
func SaveCacheSize(megabytes int) error {
	viper.Set("cache.size_mb", megabytes)

	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
