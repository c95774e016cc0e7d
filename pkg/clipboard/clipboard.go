// Package clipboard abstracts the system text clipboard behind a small port
// so the monitor can re-acquire a handle after failures and tests can run
// without a display.
package clipboard

import (
	"github.com/atotto/clipboard"

	"github.com/arthur-debert/clipfmt/pkg/errors"
)

// Port reads and writes the text content of one clipboard.
type Port interface {
	Read() (string, error)
	Write(text string) error
}

// Factory acquires a fresh Port.
type Factory func() (Port, error)

// System is the platform clipboard.
type System struct{}

// NewSystem acquires the platform clipboard. A handle is only returned when
// the clipboard answers either a read or an empty write.
func NewSystem() (Port, error) {
	if clipboard.Unsupported {
		return nil, errors.New(errors.ErrClipboardAcquire, "no clipboard utility available on this system")
	}

	s := System{}
	if _, readErr := clipboard.ReadAll(); readErr != nil {
		if writeErr := clipboard.WriteAll(""); writeErr != nil {
			return nil, errors.Wrap(readErr, errors.ErrClipboardAcquire, "clipboard did not answer").
				WithDetail("writeError", writeErr.Error())
		}
	}
	return s, nil
}

// SystemFactory is a Factory for the platform clipboard.
func SystemFactory() (Port, error) {
	return NewSystem()
}

func (System) Read() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrClipboardRead, "failed to read clipboard")
	}
	return text, nil
}

func (System) Write(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return errors.Wrap(err, errors.ErrClipboardWrite, "failed to write clipboard")
	}
	return nil
}
