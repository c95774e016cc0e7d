package testutil

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// NewMemFS returns an in-memory filesystem holding files (path -> content).
func NewMemFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		WriteFile(t, fs, path, content)
	}
	return fs
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

// ReadFile returns the content at path.
func ReadFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}
