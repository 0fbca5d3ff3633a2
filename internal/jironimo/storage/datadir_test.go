package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDataDir(t *testing.T) {
	cwd, err := filepath.Abs(".")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		env      map[string]string
		expected string
	}{
		{
			name:     "home fallback",
			expected: "/home/jdoe/.local/share/jironimo",
		},
		{
			name:     "XDG data home",
			env:      map[string]string{"XDG_DATA_HOME": "/xdg"},
			expected: "/xdg/jironimo",
		},
		{
			name:     "override wins and is used as is",
			env:      map[string]string{"XDG_DATA_HOME": "/xdg", DataDirEnv: "/srv/boards"},
			expected: "/srv/boards",
		},
		{
			name:     "relative override is made absolute",
			env:      map[string]string{DataDirEnv: "boards"},
			expected: filepath.Join(cwd, "boards"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir, err := resolveDataDir(
				func(key string) string { return tc.env[key] },
				func() (string, error) { return "/home/jdoe", nil },
			)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, dir)
		})
	}
}

func TestResolveDataDirWithoutHome(t *testing.T) {
	noHome := func() (string, error) { return "", errors.New("no home") }

	_, err := resolveDataDir(func(string) string { return "" }, noHome)
	require.Error(t, err)

	dir, err := resolveDataDir(func(key string) string {
		if key == DataDirEnv {
			return "/srv/boards"
		}
		return ""
	}, noHome)
	require.NoError(t, err)
	assert.Equal(t, "/srv/boards", dir)
}

func TestJironimoDataDirFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(DataDirEnv, dir)

	resolved, err := JironimoDataDir()
	require.NoError(t, err)
	assert.Equal(t, dir, resolved)
}
