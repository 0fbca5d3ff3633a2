package storage

import (
	"errors"
)

const (
	// MaxWorkspaces is the number of workspaces beyond which no more can be added
	MaxWorkspaces = 11
	// ImportedIcon is the icon given to workspaces imported from favourite filters
	ImportedIcon = "heart-2"
	// DefaultIcon is the icon given to new workspaces
	DefaultIcon = "bug"
)

var (
	// ErrTooManyWorkspaces is returned when adding a workspace to a full list
	ErrTooManyWorkspaces = errors.New("too many workspaces")
	// ErrLastWorkspace is returned when removing the only workspace
	ErrLastWorkspace = errors.New("cannot remove the last workspace")
	// ErrNoSuchWorkspace is returned for an index out of range
	ErrNoSuchWorkspace = errors.New("no such workspace")
)

// Workspace is a named, saved JQL query
type Workspace struct {
	Title     string `yaml:"title"`
	Query     string `yaml:"query"`
	Icon      string `yaml:"icon"`
	IsDefault bool   `yaml:"is_default"`
}

// Workspaces is the list of workspaces and the index of the last used one
type Workspaces struct {
	Entries []Workspace `yaml:"workspaces"`
	Last    *int        `yaml:"last,omitempty"`
}
