package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/arthur-debert/clipfmt/pkg/clipboard"
)

// MockClipboard is a testify mock of clipboard.Port.
type MockClipboard struct {
	mock.Mock
}

var _ clipboard.Port = (*MockClipboard)(nil)

func (m *MockClipboard) Read() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockClipboard) Write(text string) error {
	args := m.Called(text)
	return args.Error(0)
}
