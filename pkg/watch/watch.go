// Package watch reports changes to a fixed set of files.
//
// A Watcher runs one producer goroutine that pushes events onto a buffered
// channel. The consumer calls Poll from its own loop; Poll never blocks and
// returns ErrDisconnected once the producer has stopped, after which the
// Watcher must be replaced.
package watch

import (
	"time"

	"github.com/spf13/afero"

	"github.com/arthur-debert/clipfmt/pkg/config"
	"github.com/arthur-debert/clipfmt/pkg/errors"
)

// Op is the kind of change observed on a file.
type Op int

const (
	Create Op = iota + 1
	Write
	Remove
)

func (o Op) String() string {
	switch o {
	case Create:
		return "create"
	case Write:
		return "write"
	case Remove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event is one observed change.
type Event struct {
	Path string
	Op   Op
}

// ErrDisconnected is returned by Poll once the producer is gone.
var ErrDisconnected = errors.New(errors.ErrWatchDisconnected, "file watcher disconnected")

// DefaultQueueSize bounds the number of undelivered events.
const DefaultQueueSize = 64

// Watcher observes files registered through Watch.
type Watcher interface {
	Watch(paths ...string) error
	Poll() ([]Event, error)
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	// Backend is config.BackendPoll (the default when empty) or config.BackendFSNotify.
	Backend string
	// Fs is the filesystem the poll backend stats. Defaults to the OS filesystem.
	// The fsnotify backend always watches the OS filesystem.
	Fs afero.Fs
	// Interval between scans of the poll backend.
	Interval time.Duration
	// QueueSize bounds pending events. Defaults to DefaultQueueSize.
	QueueSize int
}

// New starts a watcher for the configured backend.
func New(opts Options) (Watcher, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}

	switch opts.Backend {
	case "", config.BackendPoll:
		if opts.Interval <= 0 {
			return nil, errors.Newf(errors.ErrWatchCreate, "poll interval must be positive, got %s", opts.Interval)
		}
		return newPollWatcher(opts.Fs, opts.Interval, opts.QueueSize), nil
	case config.BackendFSNotify:
		return newNotifyWatcher(opts.QueueSize)
	default:
		return nil, errors.Newf(errors.ErrWatchCreate, "unknown watch backend %q", opts.Backend)
	}
}

// drain collects everything queued without blocking. The channel is closed
// by the producer when it exits.
func drain(events <-chan Event) ([]Event, error) {
	var out []Event
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out, ErrDisconnected
			}
			out = append(out, ev)
		default:
			return out, nil
		}
	}
}
