package rules

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/clipfmt/pkg/config"
	"github.com/arthur-debert/clipfmt/pkg/errors"
	"github.com/arthur-debert/clipfmt/pkg/formatter"
)

const (
	settingsPath     = "/cfg/config.toml"
	replacementsPath = "/cfg/replacements.toml"
	exclusionsPath   = "/cfg/exclusions.toml"

	validReplacements = `
[[replacements]]
original = "foo"
replacement = "bar"

[[replacements]]
original = "baz"
replacement = "qux"
`
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func newTestStore(t *testing.T, files map[string]string) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	store := NewStore(fs,
		Source{Path: settingsPath, Kind: KindSettings},
		Source{Path: replacementsPath, Kind: KindReplacements},
		Source{Path: exclusionsPath, Kind: KindExclusions},
	)
	return store, fs
}

func write(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

func TestStore_LoadAll(t *testing.T) {
	store, _ := newTestStore(t, map[string]string{
		settingsPath:     "[app]\nclipboard_poll_interval = 200\n",
		replacementsPath: validReplacements,
		exclusionsPath:   `exclusions = ["！", "？"]`,
	})

	require.NoError(t, store.LoadAll())

	assert.Equal(t, 200*time.Millisecond, store.Settings().ClipboardPollInterval)
	assert.Len(t, store.Replacements(), 2)
	assert.True(t, store.Exclusions().Contains('？'))
	assert.Equal(t, []string{settingsPath, replacementsPath, exclusionsPath}, store.Paths())

	got := formatter.Format("foo baz １２３４！？", store.Replacements(), store.Exclusions())
	assert.Equal(t, "bar qux 1234！？", got)
}

func TestStore_LoadAllYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, settingsPath, "[app]\n")
	write(t, fs, "/cfg/replacements.yaml", "replacements:\n  foo: bar\n  bar: baz\n")
	write(t, fs, "/cfg/exclusions.yml", "exclusions:\n  - \"！\"\n")
	store := NewStore(fs,
		Source{Path: settingsPath, Kind: KindSettings},
		Source{Path: "/cfg/replacements.yaml", Kind: KindReplacements},
		Source{Path: "/cfg/exclusions.yml", Kind: KindExclusions},
	)

	require.NoError(t, store.LoadAll())
	assert.Equal(t, "baz 1！", formatter.Format("foo １！", store.Replacements(), store.Exclusions()))

	write(t, fs, "/cfg/replacements.yaml", "replacements:\n  foo: 1\n")
	outcome, err := store.Reload("/cfg/replacements.yaml")
	require.Error(t, err)
	assert.Equal(t, Failed, outcome)
	assert.Len(t, store.Replacements(), 2)
}

func TestStore_DefaultsBeforeLoad(t *testing.T) {
	store, _ := newTestStore(t, nil)
	assert.Equal(t, config.Defaults(), store.Settings())
	assert.Empty(t, store.Replacements())
	assert.Equal(t, 0, store.Exclusions().Len())
}

func TestStore_LoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		store, _ := newTestStore(t, nil)
		err := store.LoadAll()
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
	})

	t.Run("malformed initial file", func(t *testing.T) {
		store, _ := newTestStore(t, map[string]string{replacementsPath: "[[replacements]\n"})
		err := store.Load(replacementsPath)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrRulesParse))
	})

	t.Run("unregistered path", func(t *testing.T) {
		store, _ := newTestStore(t, nil)
		err := store.Load("/elsewhere.toml")
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})
}

func TestStore_ReloadResilience(t *testing.T) {
	logs := captureLogs(t)
	store, fs := newTestStore(t, map[string]string{replacementsPath: validReplacements})
	require.NoError(t, store.Load(replacementsPath))
	good := store.Replacements()

	// broken content keeps the previous rules and reports the failure
	write(t, fs, replacementsPath, "[[replacements]\noriginal = ")
	outcome, err := store.Reload(replacementsPath)
	require.Error(t, err)
	assert.Equal(t, Failed, outcome)
	assert.Equal(t, good, store.Replacements())
	assert.True(t, store.Failing(replacementsPath))

	// valid content is installed and clears the failure flag
	write(t, fs, replacementsPath, "[[replacements]]\noriginal = \"x\"\nreplacement = \"y\"\n")
	outcome, err = store.Reload(replacementsPath)
	require.NoError(t, err)
	assert.Equal(t, Updated, outcome)
	assert.Equal(t, formatter.Rules{{Original: "x", Replacement: "y"}}, store.Replacements())
	assert.False(t, store.Failing(replacementsPath))

	assert.Contains(t, logs.String(), "Failed to reload")
	assert.Contains(t, logs.String(), "Reloaded replacements.toml")
}

func TestStore_WarnsOncePerFailureStreak(t *testing.T) {
	logs := captureLogs(t)
	store, fs := newTestStore(t, map[string]string{exclusionsPath: `exclusions = ["！"]`})
	require.NoError(t, store.Load(exclusionsPath))

	write(t, fs, exclusionsPath, `exclusions = ["！？"]`)
	outcome, _ := store.Reload(exclusionsPath)
	assert.Equal(t, Failed, outcome)

	// the same broken bytes again: no new warning
	outcome, _ = store.Reload(exclusionsPath)
	assert.Equal(t, Suppressed, outcome)
	outcome, _ = store.Reload(exclusionsPath)
	assert.Equal(t, Suppressed, outcome)
	assert.Equal(t, 1, strings.Count(logs.String(), "Failed to reload"))
	assert.Contains(t, logs.String(), `"code":"RULES_INVALID"`)

	// a different broken content is a new change and warns again
	write(t, fs, exclusionsPath, `exclusions = [`)
	outcome, _ = store.Reload(exclusionsPath)
	assert.Equal(t, Failed, outcome)
	assert.Equal(t, 2, strings.Count(logs.String(), "Failed to reload"))

	// recovery to the same good content ends the streak without replacing state
	write(t, fs, exclusionsPath, `exclusions = ["！"]`)
	outcome, err := store.Reload(exclusionsPath)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, outcome)
	assert.False(t, store.Failing(exclusionsPath))
	assert.Contains(t, logs.String(), "valid again")

	// a fresh failure after recovery warns again
	write(t, fs, exclusionsPath, `exclusions = ["！？"]`)
	outcome, _ = store.Reload(exclusionsPath)
	assert.Equal(t, Failed, outcome)
	assert.Equal(t, 3, strings.Count(logs.String(), "Failed to reload"))
}

func TestStore_ReloadUnchangedContent(t *testing.T) {
	store, fs := newTestStore(t, map[string]string{replacementsPath: validReplacements})
	require.NoError(t, store.Load(replacementsPath))

	// whitespace-only edits parse to the same rules
	write(t, fs, replacementsPath, validReplacements+"\n\n# comment\n")
	outcome, err := store.Reload(replacementsPath)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, outcome)
}

func TestStore_ReloadRemovedFileKeepsState(t *testing.T) {
	store, fs := newTestStore(t, map[string]string{replacementsPath: validReplacements})
	require.NoError(t, store.Load(replacementsPath))

	require.NoError(t, fs.Remove(replacementsPath))
	outcome, err := store.Reload(replacementsPath)
	require.Error(t, err)
	assert.Equal(t, Failed, outcome)
	assert.Len(t, store.Replacements(), 2)
}

func TestStore_ReloadSettings(t *testing.T) {
	store, fs := newTestStore(t, map[string]string{settingsPath: "[app]\n"})
	require.NoError(t, store.Load(settingsPath))
	assert.Equal(t, config.Defaults(), store.Settings())

	write(t, fs, settingsPath, "[app]\nclipboard_poll_interval = 50\n")
	outcome, err := store.Reload(settingsPath)
	require.NoError(t, err)
	assert.Equal(t, Updated, outcome)
	assert.Equal(t, 50*time.Millisecond, store.Settings().ClipboardPollInterval)

	write(t, fs, settingsPath, "[app]\nclipboard_poll_interval = -1\n")
	outcome, err = store.Reload(settingsPath)
	require.Error(t, err)
	assert.Equal(t, Failed, outcome)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	assert.Equal(t, 50*time.Millisecond, store.Settings().ClipboardPollInterval)
}

func TestStore_ReloadIgnoresUnknownPaths(t *testing.T) {
	store, _ := newTestStore(t, nil)
	outcome, err := store.Reload("/cfg/other.toml")
	require.NoError(t, err)
	assert.Equal(t, Ignored, outcome)
	assert.False(t, store.Failing("/cfg/other.toml"))
}

func TestStore_PathsAreCleaned(t *testing.T) {
	store, _ := newTestStore(t, map[string]string{replacementsPath: validReplacements})
	require.NoError(t, store.Load("/cfg/./replacements.toml"))

	outcome, err := store.Reload("/cfg/sub/../replacements.toml")
	require.NoError(t, err)
	assert.Equal(t, Unchanged, outcome)
}

func TestKindAndOutcomeStrings(t *testing.T) {
	assert.Equal(t, "settings", KindSettings.String())
	assert.Equal(t, "replacements", KindReplacements.String())
	assert.Equal(t, "exclusions", KindExclusions.String())
	assert.Equal(t, "unknown", Kind(0).String())
	assert.Equal(t, "suppressed", Suppressed.String())
	assert.Equal(t, "ignored", Ignored.String())
}
