package watch

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/clipfmt/pkg/errors"
	"github.com/arthur-debert/clipfmt/pkg/logging"
)

// notifyWatcher forwards kernel notifications. Parent directories are
// watched rather than the files so that editors which save by renaming a
// temporary file over the original are still seen.
type notifyWatcher struct {
	fsw    *fsnotify.Watcher
	logger zerolog.Logger

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]struct{}

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newNotifyWatcher(queueSize int) (*notifyWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrWatchCreate, "failed to create fsnotify watcher")
	}
	w := &notifyWatcher{
		fsw:    fsw,
		logger: logging.GetLogger("watch"),
		files:  make(map[string]struct{}),
		dirs:   make(map[string]struct{}),
		events: make(chan Event, queueSize),
		done:   make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	w.logger.Debug().Msg("Started fsnotify watcher")
	return w, nil
}

func (w *notifyWatcher) Watch(paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range paths {
		p = filepath.Clean(p)
		dir := filepath.Dir(p)
		if _, ok := w.dirs[dir]; !ok {
			if err := w.fsw.Add(dir); err != nil {
				return errors.Wrapf(err, errors.ErrWatchAdd, "failed to watch %s", dir).WithDetail("path", p)
			}
			w.dirs[dir] = struct{}{}
		}
		w.files[p] = struct{}{}
	}
	return nil
}

func (w *notifyWatcher) Poll() ([]Event, error) {
	return drain(w.events)
}

func (w *notifyWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *notifyWatcher) run() {
	defer w.wg.Done()
	defer close(w.events)

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.forward(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("File watcher error")
		case <-w.done:
			return
		}
	}
}

func (w *notifyWatcher) forward(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	w.mu.Lock()
	_, watched := w.files[path]
	w.mu.Unlock()
	if !watched {
		return
	}

	op, ok := translateOp(ev.Op)
	if !ok {
		return
	}
	select {
	case w.events <- Event{Path: path, Op: op}:
	case <-w.done:
	}
}

func translateOp(op fsnotify.Op) (Op, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Create, true
	case op.Has(fsnotify.Write):
		return Write, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return Remove, true
	default:
		return 0, false
	}
}
