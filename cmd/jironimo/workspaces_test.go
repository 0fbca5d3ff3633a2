package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petr-muller/jironimo/internal/jironimo/storage"
)

func TestUpdateWorkspace(t *testing.T) {
	t.Setenv(storage.DataDirEnv, "")
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	store, workspaces, err := loadWorkspaces()
	require.NoError(t, err)
	require.NoError(t, workspaces.Add(storage.Workspace{Title: "Team", Query: "project = ABC"}))
	require.NoError(t, store.Save(workspaces))

	require.NoError(t, updateWorkspace("2", func(w *storage.Workspaces, index int) error {
		return w.SetDefault(index)
	}))

	_, workspaces, err = loadWorkspaces()
	require.NoError(t, err)
	assert.False(t, workspaces.Entries[0].IsDefault)
	assert.True(t, workspaces.Entries[1].IsDefault)
}

func TestUpdateWorkspaceInvalidIndex(t *testing.T) {
	t.Setenv(storage.DataDirEnv, "")
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	testCases := []struct {
		name string
		arg  string
	}{
		{name: "not a number", arg: "first"},
		{name: "zero", arg: "0"},
		{name: "out of range", arg: "5"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			err := updateWorkspace(tc.arg, func(*storage.Workspaces, int) error {
				called = true
				return nil
			})
			assert.Error(t, err)
			assert.False(t, called)
		})
	}
}
