package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

const (
	configDir  = ".ledgerlens"
	configFile = "config"
	configType = "yaml"

	// keyringService is the service name passwords are stored under in
	// the OS keyring, keyed by connection name.
	keyringService = "ledgerlens"
)

// Load reads the configuration from ~/.ledgerlens/config.yaml.
// Returns an empty config if the file does not exist.
func Load() (*Config, error) {
	dir, err := configDirPath()
	if err != nil {
		return nil, fmt.Errorf("config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName(configFile)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	// Defaults
	v.SetDefault("preferences.log_level", "info")

	cfg := &Config{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	for _, c := range cfg.Connections {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Save writes the configuration to ~/.ledgerlens/config.yaml.
func Save(cfg *Config) error {
	dir, err := configDirPath()
	if err != nil {
		return fmt.Errorf("config dir: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.Set("connections", cfg.Connections)
	v.Set("preferences", cfg.Preferences)

	path := filepath.Join(dir, configFile+"."+configType)
	return v.WriteConfigAs(path)
}

// DefaultConnection returns the default connection from config, or the first one.
func DefaultConnection(cfg *Config) *Connection {
	if len(cfg.Connections) == 0 {
		return nil
	}

	if cfg.Preferences.DefaultConnection != "" {
		for i := range cfg.Connections {
			if cfg.Connections[i].Name == cfg.Preferences.DefaultConnection {
				return &cfg.Connections[i]
			}
		}
	}

	return &cfg.Connections[0]
}

// ResolvePassword fills in the connection password from the OS keyring
// when the config file does not carry one. A missing keyring entry is
// not an error; the connection is attempted without a password.
func ResolvePassword(conn *Connection) error {
	if conn.Password != "" {
		return nil
	}

	secret, err := keyring.Get(keyringService, conn.Name)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil
		}
		return fmt.Errorf("keyring lookup for %q: %w", conn.Name, err)
	}

	conn.Password = secret
	return nil
}

// StorePassword saves a connection password in the OS keyring.
func StorePassword(conn *Connection, password string) error {
	return keyring.Set(keyringService, conn.Name, password)
}

func configDirPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}
