package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides applied after the file is parsed.
const (
	EnvServerAddress = "TRAVELGLOBE_ADDR"
	EnvDBPath        = "TRAVELGLOBE_DB"
	EnvLogLevel      = "TRAVELGLOBE_LOG_LEVEL"
)

// Config holds the application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Server   ServerConfig   `yaml:"server"`
	Playback PlaybackConfig `yaml:"playback"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
	Seed string `yaml:"seed"` // timeline YAML imported at startup when changed
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// PlaybackConfig holds defaults for flight animation playback.
type PlaybackConfig struct {
	Speed         float64  `yaml:"speed"`
	Clock         string   `yaml:"clock"` // "fixed", "wall"
	FrameInterval Duration `yaml:"frame_interval"`
	Segments      int      `yaml:"segments"`
	DefaultYear   int      `yaml:"default_year"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/travelglobe.db",
			Seed: "./data/timeline.yaml",
		},
		Server: ServerConfig{
			Address: "localhost:1921",
		},
		Playback: PlaybackConfig{
			Speed:         1.0,
			Clock:         "fixed",
			FrameInterval: Duration(16 * time.Millisecond),
			Segments:      50,
			DefaultYear:   time.Now().Year(),
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// A .env file next to the config is loaded first so its variables can override file values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvServerAddress); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Server.Level = v
	}
}

var addrPattern = regexp.MustCompile(`^[^:]*:[0-9]{1,5}$`)

// Validate checks settings that would otherwise fail at runtime.
func (c *Config) Validate() error {
	switch c.Playback.Clock {
	case "fixed", "wall":
	default:
		return fmt.Errorf("invalid playback.clock '%s': must be 'fixed' or 'wall'", c.Playback.Clock)
	}
	if c.Playback.FrameInterval <= 0 {
		return fmt.Errorf("invalid playback.frame_interval %v: must be positive", time.Duration(c.Playback.FrameInterval))
	}
	if c.Playback.Segments < 1 {
		return fmt.Errorf("invalid playback.segments %d: must be at least 1", c.Playback.Segments)
	}
	if !addrPattern.MatchString(c.Server.Address) {
		return fmt.Errorf("invalid server.address '%s': must be host:port", c.Server.Address)
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# TravelGlobe Configuration
# ------------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	reClock := regexp.MustCompile(`(?m)^(\s+)clock:`)
	data = reClock.ReplaceAll(data, []byte("${1}# Options: fixed (deterministic 0.016 per tick), wall (measured frame time)\n${1}clock:"))

	reSpeed := regexp.MustCompile(`(?m)^(\s+)speed:`)
	data = reSpeed.ReplaceAll(data, []byte("${1}# Multiplier, clamped to [0.1, 5]\n${1}speed:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
