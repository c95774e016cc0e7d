package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/clipfmt/pkg/fingerprint"
	"github.com/arthur-debert/clipfmt/pkg/logging"
)

type snapshot struct {
	exists  bool
	size    int64
	modTime time.Time
	digest  fingerprint.Digest
}

func (s snapshot) equal(o snapshot) bool {
	if s.exists != o.exists {
		return false
	}
	if !s.exists {
		return true
	}
	return s.size == o.size && s.modTime.Equal(o.modTime) && s.digest == o.digest
}

// pollWatcher stats every watched file on a ticker.
type pollWatcher struct {
	fs       afero.Fs
	interval time.Duration
	logger   zerolog.Logger

	mu    sync.Mutex
	files map[string]snapshot
	order []string

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newPollWatcher(fs afero.Fs, interval time.Duration, queueSize int) *pollWatcher {
	w := &pollWatcher{
		fs:       fs,
		interval: interval,
		logger:   logging.GetLogger("watch"),
		files:    make(map[string]snapshot),
		events:   make(chan Event, queueSize),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	w.logger.Debug().Dur("interval", interval).Msg("Started poll watcher")
	return w
}

// Watch records the current state of each path; later scans compare against it.
func (w *pollWatcher) Watch(paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range paths {
		p = filepath.Clean(p)
		if _, ok := w.files[p]; ok {
			continue
		}
		w.files[p] = w.stat(p)
		w.order = append(w.order, p)
	}
	return nil
}

func (w *pollWatcher) Poll() ([]Event, error) {
	return drain(w.events)
}

func (w *pollWatcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
	})
	return nil
}

func (w *pollWatcher) run() {
	defer w.wg.Done()
	defer close(w.events)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.scan()
		case <-w.done:
			return
		}
	}
}

// scan compares every file with its last delivered snapshot. A snapshot is
// only advanced once its event is queued, so a full queue postpones a change
// to the next scan instead of losing it.
func (w *pollWatcher) scan() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, path := range w.order {
		prev := w.files[path]
		cur := w.stat(path)
		if prev.equal(cur) {
			continue
		}

		ev := Event{Path: path, Op: opBetween(prev, cur)}
		select {
		case w.events <- ev:
			w.files[path] = cur
			w.logger.Trace().Str("path", path).Str("op", ev.Op.String()).Msg("File changed")
		default:
			w.logger.Debug().Str("path", path).Msg("Event queue full, retrying on next scan")
		}
	}
}

func (w *pollWatcher) stat(path string) snapshot {
	info, err := w.fs.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Debug().Err(err).Str("path", path).Msg("Cannot stat watched file")
		}
		return snapshot{}
	}
	snap := snapshot{exists: true, size: info.Size(), modTime: info.ModTime()}
	if digest, err := fingerprint.File(w.fs, path); err == nil {
		snap.digest = digest
	}
	return snap
}

func opBetween(prev, cur snapshot) Op {
	switch {
	case !prev.exists && cur.exists:
		return Create
	case prev.exists && !cur.exists:
		return Remove
	default:
		return Write
	}
}
