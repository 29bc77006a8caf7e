package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override the config file.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvRedirectURI  = "SPOTIFY_REDIRECT_URI"
)

// DefaultRedirectURI is the callback registered for the local listener.
const DefaultRedirectURI = "http://127.0.0.1:8888/callback"

// MaxBatchSize is the most episode ids the API accepts in one request.
const MaxBatchSize = 50

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Storage StorageConfig `toml:"storage"`
	Server  ServerConfig  `toml:"server"`
	HTTP    HTTPConfig    `toml:"http"`
	Delete  DeleteConfig  `toml:"delete"`
	Log     LogConfig     `toml:"log"`
}

// SpotifyConfig contains Spotify API credentials.
//
// ClientID is deliberately not required: a missing id surfaces as a provider error.
type SpotifyConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	RedirectURI  string   `toml:"redirect_uri" validate:"required,url"`
	Scopes       []string `toml:"scopes" validate:"required,min=1"`
}

// StorageConfig locates the refresh token file.
type StorageConfig struct {
	TokenPath string `toml:"token_path" validate:"required"`
}

// ServerConfig contains redirect listener settings.
type ServerConfig struct {
	AuthTimeout Duration `toml:"auth_timeout"`
}

// HTTPConfig contains outbound HTTP client settings.
type HTTPConfig struct {
	Timeout Duration `toml:"timeout"`
}

// DeleteConfig controls batched deletion.
type DeleteConfig struct {
	BatchSize int     `toml:"batch_size" validate:"min=1,max=50"`
	Rate      float64 `toml:"rate" validate:"gte=0"`
}

// LogConfig sets the logger level.
type LogConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

// Duration wraps [time.Duration] so it can be written as "30s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// LoadConfig reads a TOML file on top of [DefaultConfig], so omitted keys keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// ResolveConfig loads path when it exists (defaults otherwise), applies environment
// overrides, expands the token path and validates the result.
func ResolveConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if config, err = LoadConfig(path); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	config.ApplyEnv()

	tokenPath, err := ExpandPath(config.Storage.TokenPath)
	if err != nil {
		return nil, err
	}
	config.Storage.TokenPath = tokenPath

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides Spotify credentials from the environment.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvClientID); ok {
		c.Spotify.ClientID = v
	}
	if v, ok := os.LookupEnv(EnvClientSecret); ok {
		c.Spotify.ClientSecret = v
	}
	if v, ok := os.LookupEnv(EnvRedirectURI); ok && v != "" {
		c.Spotify.RedirectURI = v
	}
}

// Validate checks struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// CreateConfigFile writes the embedded example config to path. Existing files are never overwritten.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
