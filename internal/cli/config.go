package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	envServer    = "CPMCLI_SERVER"
	envToken     = "CPMCLI_TOKEN"
	envTokenFile = "CPMCLI_TOKEN_FILE"

	defaultServer = "http://localhost:8080"
)

// Config holds CLI configuration resolved from flags and environment
type Config struct {
	Server    string
	Token     string
	TokenFile string
	Output    string
}

// Resolve fills unset fields from the environment and, for the token,
// from the token file.
func (c *Config) Resolve() error {
	if c.Server == "" {
		c.Server = os.Getenv(envServer)
	}
	if c.Server == "" {
		c.Server = defaultServer
	}

	if c.TokenFile == "" {
		c.TokenFile = os.Getenv(envTokenFile)
	}
	if c.TokenFile == "" {
		c.TokenFile = defaultTokenFile()
	}

	if c.Token == "" {
		c.Token = os.Getenv(envToken)
	}
	if c.Token == "" && c.TokenFile != "" {
		data, err := os.ReadFile(c.TokenFile)
		if err == nil {
			c.Token = strings.TrimSpace(string(data))
		}
	}

	return nil
}

// SaveToken persists a session token to the token file so subsequent
// commands pick it up without re-authenticating.
func (c *Config) SaveToken(token string) error {
	if c.TokenFile == "" {
		return fmt.Errorf("no token file configured")
	}
	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(c.TokenFile, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// ClearToken removes the stored session token
func (c *Config) ClearToken() error {
	if c.TokenFile == "" {
		return nil
	}
	err := os.Remove(c.TokenFile)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cpmcli", "token")
}
