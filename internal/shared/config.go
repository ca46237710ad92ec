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
// Backend holds the selection token ("strapi" or "firebase"); everything
// else is backend-specific connection detail.
type Config struct {
	Backend  string         `toml:"backend"`
	Strapi   StrapiConfig   `toml:"strapi"`
	Firebase FirebaseConfig `toml:"firebase"`
	Database DatabaseConfig `toml:"database"`
	Web      WebConfig      `toml:"web"`
}

// StrapiConfig contains connection settings for the REST backend.
type StrapiConfig struct {
	APIURL            string `toml:"api_url"`
	SongsResource     string `toml:"songs_resource"`
	PlaylistsResource string `toml:"playlists_resource"`
	UsersResource     string `toml:"users_resource"`
	SignInPath        string `toml:"sign_in_path"`
	SignUpPath        string `toml:"sign_up_path"`
	MePath            string `toml:"me_path"`
	UploadPath        string `toml:"upload_path"`
}

// FirebaseConfig contains project settings for the document-store backend.
type FirebaseConfig struct {
	ProjectID string `toml:"project_id"`
	APIKey    string `toml:"api_key"`
	// BaseURL and AuthURL override the public Google endpoints; used by tests
	// and local emulators.
	BaseURL string `toml:"base_url"`
	AuthURL string `toml:"auth_url"`
	// TokenURL overrides the secure token refresh endpoint.
	TokenURL string `toml:"token_url"`
}

// DatabaseConfig contains local database settings for the session store.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// WebConfig contains the public web player URLs used by the "open" commands.
type WebConfig struct {
	PlayerURL string `toml:"player_url"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
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
