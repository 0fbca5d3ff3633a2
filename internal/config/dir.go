package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// configDirName is a directory in the user's config directory where jironimo configuration is stored
	configDirName string = "jironimo"
	// configFileName is the settings file within the config directory
	configFileName string = "config.yaml"
)

func MustJironimoConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		panic(fmt.Errorf("cannot obtain user config dir: %w", err))
	}

	return filepath.Join(configDir, configDirName)
}

// DefaultConfigFile returns the path of the settings file in the config directory
func DefaultConfigFile() string {
	return filepath.Join(MustJironimoConfigDir(), configFileName)
}
