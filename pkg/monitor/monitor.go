// Package monitor runs the polling loop that keeps the clipboard formatted
// and the rule files loaded.
//
// Each iteration first handles the clipboard, then drains file events, then
// sleeps for the configured poll interval. Every failure inside an iteration
// is logged and recovered from locally; nothing escapes to the next one.
package monitor

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/clipfmt/pkg/clipboard"
	"github.com/arthur-debert/clipfmt/pkg/config"
	"github.com/arthur-debert/clipfmt/pkg/diffview"
	"github.com/arthur-debert/clipfmt/pkg/errors"
	"github.com/arthur-debert/clipfmt/pkg/fingerprint"
	"github.com/arthur-debert/clipfmt/pkg/formatter"
	"github.com/arthur-debert/clipfmt/pkg/logging"
	"github.com/arthur-debert/clipfmt/pkg/rules"
	"github.com/arthur-debert/clipfmt/pkg/watch"
)

// WatcherFactory builds a watcher for the current settings.
type WatcherFactory func(settings config.Settings) (watch.Watcher, error)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options wires a Monitor to its collaborators.
type Options struct {
	Clipboard clipboard.Factory
	Watcher   WatcherFactory
	// Diff prints a coloured diff of every rewrite when settings allow. Optional.
	Diff *diffview.Printer
	// Sleep defaults to a timer bound to the context.
	Sleep SleepFunc
}

// Monitor owns the clipboard handle, the watcher and the rule store. It is
// driven by a single goroutine.
type Monitor struct {
	store      *rules.Store
	acquire    clipboard.Factory
	newWatcher WatcherFactory
	diff       *diffview.Printer
	sleep      SleepFunc
	logger     zerolog.Logger

	port    clipboard.Port
	tracker fingerprint.Tracker

	watcher        watch.Watcher
	watchInterval  time.Duration
	watchBackend   string
	watcherFailing bool
}

// New acquires the clipboard and starts watching every store source.
// Failure of either is fatal for the caller.
func New(store *rules.Store, opts Options) (*Monitor, error) {
	if opts.Clipboard == nil || opts.Watcher == nil {
		return nil, errors.New(errors.ErrInvalidInput, "monitor needs a clipboard and a watcher factory")
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}

	m := &Monitor{
		store:      store,
		acquire:    opts.Clipboard,
		newWatcher: opts.Watcher,
		diff:       opts.Diff,
		sleep:      opts.Sleep,
		logger:     logging.GetLogger("monitor"),
	}

	port, err := m.acquire()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrClipboardAcquire, "failed to access clipboard")
	}
	m.port = port

	if err := m.startWatcher(); err != nil {
		return nil, err
	}
	return m, nil
}

// Run iterates until ctx is cancelled. Cancellation is a normal exit.
func (m *Monitor) Run(ctx context.Context) error {
	defer m.Close()

	m.logger.Info().Str("settings", m.store.Settings().String()).Msg("Watching clipboard")
	for {
		if ctx.Err() != nil {
			return nil
		}
		d := m.Step()
		if err := m.sleep(ctx, d); err != nil {
			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

// Step runs one iteration and returns how long to sleep before the next.
func (m *Monitor) Step() time.Duration {
	backoff := !m.checkClipboard()
	m.checkFiles()
	m.refreshWatcher()

	settings := m.store.Settings()
	d := settings.ClipboardPollInterval
	if backoff {
		d += settings.ClipboardRetryInterval
	}
	return d
}

// Close stops the watcher.
func (m *Monitor) Close() {
	m.closeWatcher()
}

// checkClipboard reports false when the clipboard could not be re-acquired
// and the caller should back off.
func (m *Monitor) checkClipboard() bool {
	if m.port == nil && !m.reacquire() {
		return false
	}

	text, err := m.port.Read()
	if err != nil {
		m.logger.Warn().Err(err).Msg("Failed to read clipboard")
		m.port = nil
		return m.reacquire()
	}

	m.format(text)
	return true
}

func (m *Monitor) reacquire() bool {
	port, err := m.acquire()
	if err != nil {
		m.logger.Warn().Err(err).Msg("Failed to re-acquire clipboard")
		return false
	}
	m.port = port
	m.logger.Info().Msg("Re-acquired clipboard")
	return true
}

func (m *Monitor) format(text string) {
	if !m.tracker.Observe(fingerprint.String(text)) {
		return
	}

	formatted := formatter.Format(text, m.store.Replacements(), m.store.Exclusions())
	if formatted == text {
		return
	}

	m.logger.Info().Int("before", len(text)).Int("after", len(formatted)).Msg("Formatted clipboard text")
	if m.diff != nil && m.store.Settings().ShowDiff {
		if err := m.diff.Print(text, formatted); err != nil {
			m.logger.Debug().Err(err).Msg("Failed to print diff")
		}
	}

	if err := m.port.Write(formatted); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to write clipboard")
		return
	}
	// our own write must not be picked up as a new copy
	m.tracker.Set(fingerprint.String(formatted))
}

func (m *Monitor) checkFiles() {
	if m.watcher == nil {
		if err := m.startWatcher(); err != nil {
			return
		}
		m.resync()
	}

	events, err := m.watcher.Poll()
	for _, ev := range events {
		outcome, _ := m.store.Reload(ev.Path)
		m.logger.Trace().Str("path", ev.Path).Str("op", ev.Op.String()).Str("outcome", outcome.String()).Msg("Handled file event")
	}

	if err != nil {
		m.logger.Warn().Err(err).Msg("File watcher disconnected, reconnecting")
		m.restartWatcher()
	}
}

// refreshWatcher replaces the watcher when a settings reload changed how it
// should run.
func (m *Monitor) refreshWatcher() {
	if m.watcher == nil {
		return
	}
	settings := m.store.Settings()
	if settings.ConfigReloadInterval == m.watchInterval && settings.WatchBackend == m.watchBackend {
		return
	}
	m.logger.Debug().
		Dur("interval", settings.ConfigReloadInterval).
		Str("backend", settings.WatchBackend).
		Msg("Watch settings changed, restarting watcher")
	m.restartWatcher()
}

func (m *Monitor) restartWatcher() {
	m.closeWatcher()
	if err := m.startWatcher(); err == nil {
		m.resync()
	}
}

// resync reloads every source after a watcher was replaced. Changes made
// while no watcher was registered produced no events.
func (m *Monitor) resync() {
	for _, path := range m.store.Paths() {
		outcome, _ := m.store.Reload(path)
		m.logger.Trace().Str("path", path).Str("outcome", outcome.String()).Msg("Resynced file")
	}
}

// startWatcher creates a watcher and registers every source. Repeated
// failures are only warned about once.
func (m *Monitor) startWatcher() error {
	settings := m.store.Settings()
	w, err := m.newWatcher(settings)
	if err == nil {
		if err = w.Watch(m.store.Paths()...); err != nil {
			_ = w.Close()
		}
	}
	if err != nil {
		if !m.watcherFailing {
			m.logger.Warn().Err(err).Msg("Failed to create file watcher")
		}
		m.watcherFailing = true
		return errors.Wrap(err, errors.ErrWatchCreate, "failed to create file watcher")
	}

	if m.watcherFailing {
		m.logger.Info().Msg("File watcher re-created")
	}
	m.watcherFailing = false
	m.watcher = w
	m.watchInterval = settings.ConfigReloadInterval
	m.watchBackend = settings.WatchBackend
	return nil
}

func (m *Monitor) closeWatcher() {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Close(); err != nil {
		m.logger.Debug().Err(err).Msg("Failed to close file watcher")
	}
	m.watcher = nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
