package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DataDirEnv overrides the directory holding the workspace store
	DataDirEnv = "JIRONIMO_DATA_DIR"

	appDirName = "jironimo"
)

// JironimoDataDir resolves where the workspace store lives: $JIRONIMO_DATA_DIR
// as given, else jironimo/ under $XDG_DATA_HOME or ~/.local/share. Relative
// paths are made absolute so the store does not depend on the working directory.
func JironimoDataDir() (string, error) {
	return resolveDataDir(os.Getenv, os.UserHomeDir)
}

func resolveDataDir(getenv func(string) string, home func() (string, error)) (string, error) {
	dir := getenv(DataDirEnv)
	if dir == "" {
		base := getenv("XDG_DATA_HOME")
		if base == "" {
			homeDir, err := home()
			if err != nil {
				return "", fmt.Errorf("cannot obtain user home dir: %w", err)
			}
			base = filepath.Join(homeDir, ".local", "share")
		}
		dir = filepath.Join(base, appDirName)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("cannot resolve data dir %q: %w", dir, err)
	}
	return abs, nil
}
