package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName     = "tucal"
	configFileName    = "config.yaml"
	configDirPermMode = 0o700
)

// GetConfigDir returns the configuration directory path (~/.config/tucal)
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return configDir, nil
}

// GetConfigPath returns the path to the YAML configuration file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	// Check if directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		// Create directory with restricted permissions
		if err := os.MkdirAll(configDir, configDirPermMode); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	return nil
}
