package testutil

import (
	"sync"

	"github.com/arthur-debert/clipfmt/pkg/config"
	"github.com/arthur-debert/clipfmt/pkg/watch"
)

// FakeWatcher is a watch.Watcher driven by the test.
type FakeWatcher struct {
	mu           sync.Mutex
	watched      []string
	queue        []watch.Event
	disconnected bool
	closed       bool
	watchErr     error
}

func (w *FakeWatcher) Watch(paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watchErr != nil {
		return w.watchErr
	}
	w.watched = append(w.watched, paths...)
	return nil
}

func (w *FakeWatcher) Poll() ([]watch.Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := w.queue
	w.queue = nil
	if w.disconnected || w.closed {
		return events, watch.ErrDisconnected
	}
	return events, nil
}

func (w *FakeWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// Push queues events for the next Poll.
func (w *FakeWatcher) Push(events ...watch.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.queue = append(w.queue, events...)
}

// Disconnect makes every later Poll report watch.ErrDisconnected.
func (w *FakeWatcher) Disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disconnected = true
}

// Watched returns the registered paths.
func (w *FakeWatcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.watched))
	copy(out, w.watched)
	return out
}

// Closed reports whether Close was called.
func (w *FakeWatcher) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// WatcherFactory hands out FakeWatchers and records the settings each was
// built with.
type WatcherFactory struct {
	mu       sync.Mutex
	Created  []*FakeWatcher
	Settings []config.Settings
	// Err, when set, fails creation.
	Err error
	// WatchErr, when set, fails registration on watchers created afterwards.
	WatchErr error
}

// New matches the signature the monitor expects.
func (f *WatcherFactory) New(settings config.Settings) (watch.Watcher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	w := &FakeWatcher{watchErr: f.WatchErr}
	f.Created = append(f.Created, w)
	f.Settings = append(f.Settings, settings)
	return w, nil
}

// Last returns the most recently created watcher, or nil.
func (f *WatcherFactory) Last() *FakeWatcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Created) == 0 {
		return nil
	}
	return f.Created[len(f.Created)-1]
}

// Count returns how many watchers were created.
func (f *WatcherFactory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Created)
}
