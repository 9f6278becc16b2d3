package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	MPD      MPDConfig      `toml:"mpd"`
	Database DatabaseConfig `toml:"database"`
	Analysis AnalysisConfig `toml:"analysis"`
	Playlist PlaylistConfig `toml:"playlist"`
}

// MPDConfig contains the MPD connection settings and the music directory
// used to translate MPD-relative paths into absolute analyzer paths.
type MPDConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	Password       string `toml:"password"`
	MusicDirectory string `toml:"music_directory"`
}

// Addr returns the host:port dial address for MPD.
func (m MPDConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// AnalysisConfig controls how the external feature extractor is driven.
type AnalysisConfig struct {
	Command   string  `toml:"command"`    // external analyzer executable
	Workers   int     `toml:"workers"`    // concurrent analyses
	RateLimit float64 `toml:"rate_limit"` // analyses started per second, 0 = unlimited
}

// PlaylistConfig holds default playlist-building parameters, each
// overridable per invocation by CLI flags.
type PlaylistConfig struct {
	Count          int     `toml:"count"`
	Distance       string  `toml:"distance"`
	Dedup          bool    `toml:"dedup"`
	DedupThreshold float64 `toml:"dedup_threshold"`
	Preserve       bool    `toml:"preserve"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
