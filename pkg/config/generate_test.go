package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/clipfmt/pkg/paths"
)

func TestEnsureDefaults(t *testing.T) {
	t.Run("creates every missing file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		p := paths.NewWithRoot("/home/user/.config/clipfmt", "/state")

		created, err := EnsureDefaults(fs, p)
		require.NoError(t, err)
		assert.Equal(t, p.WatchedFiles(), created)

		data, err := afero.ReadFile(fs, p.ReplacementsFile())
		require.NoError(t, err)
		assert.Equal(t, DefaultReplacementsContent(), string(data))
	})

	t.Run("keeps existing files", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		p := paths.NewWithRoot("/cfg", "/state")
		require.NoError(t, afero.WriteFile(fs, p.ConfigFile(), []byte("[app]\n"), 0644))

		created, err := EnsureDefaults(fs, p)
		require.NoError(t, err)
		assert.Equal(t, []string{p.ReplacementsFile(), p.ExclusionsFile()}, created)

		data, err := afero.ReadFile(fs, p.ConfigFile())
		require.NoError(t, err)
		assert.Equal(t, "[app]\n", string(data))
	})

	t.Run("resolved yaml rules are not shadowed", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		p := paths.NewWithRoot("/cfg", "/state")
		require.NoError(t, afero.WriteFile(fs, "/cfg/replacements.yaml", []byte("replacements: []\n"), 0644))
		p.Resolve(fs)

		created, err := EnsureDefaults(fs, p)
		require.NoError(t, err)
		assert.Equal(t, []string{"/cfg/config.toml", "/cfg/exclusions.toml"}, created)

		exists, err := afero.Exists(fs, "/cfg/replacements.toml")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("second run creates nothing", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		p := paths.NewWithRoot("/cfg", "/state")

		_, err := EnsureDefaults(fs, p)
		require.NoError(t, err)
		created, err := EnsureDefaults(fs, p)
		require.NoError(t, err)
		assert.Empty(t, created)
	})

	t.Run("read only filesystem", func(t *testing.T) {
		fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
		p := paths.NewWithRoot("/cfg", "/state")

		_, err := EnsureDefaults(fs, p)
		assert.Error(t, err)
	})
}
