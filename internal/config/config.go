// Package config loads the optional YAML file with defaults for the
// keyshare command.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"github.com/wbrc/keyshare"
	"github.com/wbrc/keyshare/armor"
)

// DefaultName is the file looked up in the user config directory.
const DefaultName = "keyshare.yaml"

// Config holds defaults that flags override.
type Config struct {
	// Threshold is the default number of shares required to recover.
	Threshold int `json:"threshold,omitempty"`
	// Shares is the default number of shares to create.
	Shares int `json:"shares,omitempty"`
	// Format of printed shares, base58 or hex.
	Format string `json:"format,omitempty"`
	// SealMode is the AEAD used by seal.
	SealMode string `json:"sealMode,omitempty"`
	// Testnet selects testnet WIF encoding for recovered keys.
	Testnet bool `json:"testnet,omitempty"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Format:   armor.Base58.String(),
		SealMode: "chacha20-poly1305",
	}
}

// DefaultPath returns the default location of the config file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultName), nil
}

// Load reads the config file at path on top of the defaults. A missing file
// is not an error when optional is set.
func Load(path string, optional bool) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && optional {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return c, nil
}

// Validate checks the configured values. Zero counts mean unset. The seal
// mode must be named; the command checks it against its cipher table.
func (c *Config) Validate() error {
	if c.Shares < 0 || c.Shares > keyshare.MaxShares {
		return fmt.Errorf("shares must be unset or between 1 and %d, got %d", keyshare.MaxShares, c.Shares)
	}
	if c.Threshold < 0 || (c.Shares > 0 && c.Threshold > c.Shares) {
		return fmt.Errorf("threshold must be unset or between 1 and shares, got %d", c.Threshold)
	}
	if c.SealMode == "" {
		return errors.New("sealMode must not be empty")
	}
	if _, err := armor.ParseFormat(c.Format); err != nil {
		return err
	}
	return nil
}
