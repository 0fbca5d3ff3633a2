package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	workspacesFileName = "workspaces.yaml"
)

// Store handles persistent storage of the workspaces
type Store struct {
	dataDir string
}

// NewStore creates a new storage instance
func NewStore(dataDir string) *Store {
	return &Store{
		dataDir: dataDir,
	}
}

// ensureDataDir creates the data directory if it doesn't exist
func (s *Store) ensureDataDir() error {
	return os.MkdirAll(s.dataDir, 0755)
}

func (s *Store) filePath() string {
	return filepath.Join(s.dataDir, workspacesFileName)
}

// Load reads the workspaces, returning the built-in default list when none were saved yet
func (s *Store) Load() (*Workspaces, error) {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultWorkspaces(), nil
		}
		return nil, fmt.Errorf("failed to read workspaces file: %w", err)
	}

	var workspaces Workspaces
	if err := yaml.Unmarshal(data, &workspaces); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workspaces: %w", err)
	}

	if len(workspaces.Entries) == 0 {
		return DefaultWorkspaces(), nil
	}

	return &workspaces, nil
}

// Save writes the workspaces
func (s *Store) Save(workspaces *Workspaces) error {
	if err := s.ensureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := yaml.Marshal(workspaces)
	if err != nil {
		return fmt.Errorf("failed to marshal workspaces: %w", err)
	}

	if err := os.WriteFile(s.filePath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write workspaces file: %w", err)
	}

	return nil
}

// GetDataDir returns the data directory path
func (s *Store) GetDataDir() string {
	return s.dataDir
}
