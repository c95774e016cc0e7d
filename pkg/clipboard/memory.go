package clipboard

import (
	"sync"

	"github.com/arthur-debert/clipfmt/pkg/errors"
)

// Memory is an in-process clipboard. Failures can be injected to exercise
// recovery paths.
type Memory struct {
	mu        sync.Mutex
	text      string
	writes    []string
	failRead  error
	failWrite error
}

// NewMemory returns a Memory clipboard holding text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead != nil {
		return "", errors.Wrap(m.failRead, errors.ErrClipboardRead, "failed to read clipboard")
	}
	return m.text, nil
}

func (m *Memory) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return errors.Wrap(m.failWrite, errors.ErrClipboardWrite, "failed to write clipboard")
	}
	m.text = text
	m.writes = append(m.writes, text)
	return nil
}

// Set replaces the content as if another application copied text.
func (m *Memory) Set(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
}

// Text returns the current content.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Writes returns every text written through Write, oldest first.
func (m *Memory) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.writes))
	copy(out, m.writes)
	return out
}

// FailReads makes subsequent reads fail with err; nil restores them.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRead = err
}

// FailWrites makes subsequent writes fail with err; nil restores them.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite = err
}

// Factory returns a Factory that always hands out m.
func (m *Memory) Factory() Factory {
	return func() (Port, error) { return m, nil }
}
