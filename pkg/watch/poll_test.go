package watch

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/clipfmt/pkg/errors"
)

// newIdlePollWatcher never ticks on its own during a test; scans are
// triggered by calling scan directly.
func newIdlePollWatcher(t *testing.T, fs afero.Fs, queueSize int) *pollWatcher {
	t.Helper()
	w := newPollWatcher(fs, time.Hour, queueSize)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestPollWatcher_CreateWriteRemove(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := newIdlePollWatcher(t, fs, DefaultQueueSize)
	require.NoError(t, w.Watch("/cfg/rules.toml"))

	w.scan()
	events, err := w.Poll()
	require.NoError(t, err)
	assert.Empty(t, events, "nothing changed since Watch")

	require.NoError(t, afero.WriteFile(fs, "/cfg/rules.toml", []byte("a"), 0644))
	w.scan()
	events, err = w.Poll()
	require.NoError(t, err)
	assert.Equal(t, []Event{{Path: "/cfg/rules.toml", Op: Create}}, events)

	require.NoError(t, afero.WriteFile(fs, "/cfg/rules.toml", []byte("bb"), 0644))
	w.scan()
	events, err = w.Poll()
	require.NoError(t, err)
	assert.Equal(t, []Event{{Path: "/cfg/rules.toml", Op: Write}}, events)

	require.NoError(t, fs.Remove("/cfg/rules.toml"))
	w.scan()
	events, err = w.Poll()
	require.NoError(t, err)
	assert.Equal(t, []Event{{Path: "/cfg/rules.toml", Op: Remove}}, events)

	w.scan()
	events, err = w.Poll()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPollWatcher_IgnoresUnwatchedFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := newIdlePollWatcher(t, fs, DefaultQueueSize)
	require.NoError(t, w.Watch("/cfg/a.toml"))

	require.NoError(t, afero.WriteFile(fs, "/cfg/b.toml", []byte("x"), 0644))
	w.scan()
	events, err := w.Poll()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPollWatcher_FullQueueDelaysEvents(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := newIdlePollWatcher(t, fs, 1)
	require.NoError(t, w.Watch("/cfg/a.toml", "/cfg/b.toml"))

	require.NoError(t, afero.WriteFile(fs, "/cfg/a.toml", []byte("x"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/cfg/b.toml", []byte("y"), 0644))
	w.scan()

	events, err := w.Poll()
	require.NoError(t, err)
	assert.Equal(t, []Event{{Path: "/cfg/a.toml", Op: Create}}, events)

	w.scan()
	events, err = w.Poll()
	require.NoError(t, err)
	assert.Equal(t, []Event{{Path: "/cfg/b.toml", Op: Create}}, events)
}

func TestPollWatcher_Ticks(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := newPollWatcher(fs, 5*time.Millisecond, DefaultQueueSize)
	defer func() { _ = w.Close() }()
	require.NoError(t, w.Watch("/cfg/a.toml"))

	require.NoError(t, afero.WriteFile(fs, "/cfg/a.toml", []byte("x"), 0644))

	var got []Event
	require.Eventually(t, func() bool {
		events, err := w.Poll()
		if err != nil {
			return false
		}
		got = append(got, events...)
		return len(got) > 0
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, Event{Path: "/cfg/a.toml", Op: Create}, got[0])
}

func TestPollWatcher_CloseDisconnects(t *testing.T) {
	w := newPollWatcher(afero.NewMemMapFs(), time.Hour, DefaultQueueSize)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "close is idempotent")

	_, err := w.Poll()
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrDisconnected))
	assert.True(t, errors.IsErrorCode(err, errors.ErrWatchDisconnected))
}

func TestNew(t *testing.T) {
	t.Run("poll is the default backend", func(t *testing.T) {
		w, err := New(Options{Fs: afero.NewMemMapFs(), Interval: time.Second})
		require.NoError(t, err)
		defer func() { _ = w.Close() }()
		assert.IsType(t, &pollWatcher{}, w)
	})

	t.Run("poll needs an interval", func(t *testing.T) {
		_, err := New(Options{Backend: "poll"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrWatchCreate))
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := New(Options{Backend: "inotify", Interval: time.Second})
		assert.True(t, errors.IsErrorCode(err, errors.ErrWatchCreate))
	})
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "create", Create.String())
	assert.Equal(t, "write", Write.String())
	assert.Equal(t, "remove", Remove.String())
	assert.Equal(t, "unknown", Op(0).String())
}
