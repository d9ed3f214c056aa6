package cli

import (
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Secret    string
	RedisURL  string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values. Environment
// overrides are bound to the flags by the root command.
func DefaultConfig() *Config {
	return &Config{
		ServerURL: "http://localhost:8080",
		TokenFile: defaultTokenFile(),
		RedisURL:  "redis://localhost:6379",
		Output:    "text",
	}
}

// LoadToken loads the token from file if not already set
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No token file is fine
		}
		return err
	}

	c.Token = string(data)
	return nil
}

// SaveToken saves the token to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wordduel/token"
	}
	return filepath.Join(home, ".wordduel", "token")
}
