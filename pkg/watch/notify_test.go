package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/clipfmt/pkg/config"
	"github.com/arthur-debert/clipfmt/pkg/errors"
)

func collectUntil(t *testing.T, w Watcher, want func([]Event) bool) []Event {
	t.Helper()
	var got []Event
	require.Eventually(t, func() bool {
		events, err := w.Poll()
		if err != nil {
			return false
		}
		got = append(got, events...)
		return want(got)
	}, 5*time.Second, 10*time.Millisecond)
	return got
}

func hasEvent(path string) func([]Event) bool {
	return func(events []Event) bool {
		for _, ev := range events {
			if ev.Path == path {
				return true
			}
		}
		return false
	}
}

func TestNotifyWatcher_ForwardsWatchedFilesOnly(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "replacements.toml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(watched, []byte("a"), 0644))

	w, err := New(Options{Backend: config.BackendFSNotify})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()
	require.NoError(t, w.Watch(watched))

	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(watched, []byte("b"), 0644))

	events := collectUntil(t, w, hasEvent(watched))
	for _, ev := range events {
		assert.Equal(t, watched, ev.Path)
	}
}

func TestNotifyWatcher_SeesReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "exclusions.toml")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0644))

	w, err := New(Options{Backend: config.BackendFSNotify})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()
	require.NoError(t, w.Watch(target))

	tmp := filepath.Join(dir, ".exclusions.toml.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("b"), 0644))
	require.NoError(t, os.Rename(tmp, target))

	events := collectUntil(t, w, hasEvent(target))
	assert.Equal(t, target, events[0].Path)
}

func TestNotifyWatcher_MissingDirectory(t *testing.T) {
	w, err := New(Options{Backend: config.BackendFSNotify})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	err = w.Watch(filepath.Join(t.TempDir(), "missing", "config.toml"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrWatchAdd))
}

func TestNotifyWatcher_CloseDisconnects(t *testing.T) {
	w, err := New(Options{Backend: config.BackendFSNotify})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = w.Poll()
	assert.ErrorIs(t, err, ErrDisconnected)
}

func TestTranslateOp(t *testing.T) {
	tests := []struct {
		in   fsnotify.Op
		want Op
		ok   bool
	}{
		{fsnotify.Create, Create, true},
		{fsnotify.Write, Write, true},
		{fsnotify.Remove, Remove, true},
		{fsnotify.Rename, Remove, true},
		{fsnotify.Create | fsnotify.Write, Create, true},
		{fsnotify.Chmod, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			got, ok := translateOp(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
