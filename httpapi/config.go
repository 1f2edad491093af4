package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/blockdoc/docimport"
)

// Config is the server configuration, usually loaded from one YAML file.
type Config struct {
	Listen string           `yaml:"listen"`
	DBPath string           `yaml:"db_path"`
	Auth   AuthConfig       `yaml:"auth"`
	Import docimport.Config `yaml:"import"`

	// MaxJSONBody caps JSON request bodies (default: 16 MB).
	MaxJSONBody int64 `yaml:"max_json_body"`

	Logger *slog.Logger `yaml:"-"`
}

// AuthConfig enables HTTP Basic auth on /api when both fields are set.
type AuthConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// Enabled reports whether credentials are configured.
func (a AuthConfig) Enabled() bool { return a.Username != "" && a.PasswordHash != "" }

func (c *Config) defaults() {
	if c.Listen == "" {
		c.Listen = ":8086"
	}
	if c.DBPath == "" {
		c.DBPath = "data/blockdoc.db"
	}
	if c.MaxJSONBody <= 0 {
		c.MaxJSONBody = 16 << 20
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Import.Logger == nil {
		c.Import.Logger = c.Logger
	}
}

// Validate checks the auth section. The import section is validated when
// the importer is built.
func (c *Config) Validate() error {
	a := c.Auth
	if (a.Username == "") != (a.PasswordHash == "") {
		return errors.New("auth: username and password_hash must be set together")
	}
	if a.PasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(a.PasswordHash)); err != nil {
			return fmt.Errorf("auth: password_hash is not a bcrypt hash: %w", err)
		}
	}
	return nil
}

// LoadConfigFile reads path, applies defaults and validates. An empty path
// yields the defaults.
func LoadConfigFile(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
