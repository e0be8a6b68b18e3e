package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the gateway configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Server      ServerConfig      `toml:"server"`
	Upstream    UpstreamConfig    `toml:"upstream"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains the Spotify client-credentials pair.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// ServerConfig contains settings for the two front-ends.
type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	GRPCPort int    `toml:"grpc_port"`
}

// UpstreamConfig contains the upstream API endpoints and token cache tuning.
type UpstreamConfig struct {
	BaseURL  string `toml:"base_url"`
	TokenURL string `toml:"token_url"`
	// TokenSafetyMarginSeconds is subtracted from the upstream token TTL so a
	// credential is never handed out within the margin of its real expiry.
	TokenSafetyMarginSeconds int `toml:"token_safety_margin_seconds"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Environment variables override file values afterwards, see [Config.ApplyEnv].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.ApplyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with defaults loaded from the embedded example config,
// with environment variables applied on top.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.ApplyEnv()
	return &config
}

// ApplyEnv overlays environment variables onto the config: SPOTIFY_CLIENT_ID,
// SPOTIFY_CLIENT_SECRET, PORT and GRPC_PORT.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("GRPC_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.GRPCPort = port
		}
	}
}

// Validate checks that the config carries everything the gateway needs to serve.
func (c *Config) Validate() error {
	if c.Credentials.Spotify.ClientID == "" {
		return fmt.Errorf("%w: spotify client_id (or SPOTIFY_CLIENT_ID)", ErrMissingCredentials)
	}
	if c.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_secret (or SPOTIFY_CLIENT_SECRET)", ErrMissingCredentials)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("%w: grpc port %d out of range", ErrInvalidConfig, c.Server.GRPCPort)
	}
	return nil
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
