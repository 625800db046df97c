// Package config is the on-disk client configuration for lakeacl.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gojson "github.com/goccy/go-json"

	"github.com/tidelake/lakeacl/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigPath = filepath.Join(home, ".lakeacl", "config.json")
	DefaultServerURL  = "https://lake.tidelake.io"
)

var (
	ErrNoAccount   = errors.New("config: account is required")
	ErrNoAccessKey = errors.New("config: access key is required")
)

// Config is what `lakeacl login` persists: enough to mint a fresh
// session on any later invocation. The access key is the long-lived
// secret; short-lived tokens live in the session artifact instead.
type Config struct {
	Account   string `json:"account"`
	ServerURL string `json:"server_url"`
	AccessKey string `json:"access_key"`
	Path      string `json:"-"`
}

func (c *Config) Validate() error {
	if err := utils.ValidateURL(c.ServerURL); err != nil {
		return err
	}
	if c.Account == "" {
		return ErrNoAccount
	}
	if c.AccessKey == "" {
		return ErrNoAccessKey
	}
	return nil
}

// Save writes the config to c.Path (default path when unset). Written
// 0600 since it carries the account key.
func (c *Config) Save() error {
	if c.Path == "" {
		c.Path = DefaultConfigPath
	}
	if err := utils.EnsureParent(c.Path); err != nil {
		return err
	}

	data, err := gojson.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.Path, data, 0o600)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := gojson.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config parse '%s': %w", path, err)
	}

	cfg.Path = path
	return &cfg, nil
}

// LoadValid is Load plus Validate, for callers that need a usable
// login right away.
func LoadValid(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
