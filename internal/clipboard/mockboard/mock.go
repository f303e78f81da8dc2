// Package mockboard provides an in-memory clipboard for tests.
package mockboard

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

// MockClipboard implements clipboard.Clipboard in memory.
type MockClipboard struct {
	mu          sync.Mutex
	data        []byte
	writes      int
	unsupported bool
	failWrites  bool
}

// New creates an empty mock clipboard.
func New() *MockClipboard {
	return &MockClipboard{}
}

// Unsupported returns a mock that reports it cannot be used.
func Unsupported() *MockClipboard {
	return &MockClipboard{unsupported: true}
}

func (m *MockClipboard) Read() (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return io.NopCloser(bytes.NewReader(bytes.Clone(m.data))), nil
}

func (m *MockClipboard) Write(r io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites {
		return errors.New("mock clipboard write failure")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.data = data
	m.writes++
	return nil
}

func (m *MockClipboard) IsSupported() bool {
	return !m.unsupported
}

// FailWrites makes every later Write return an error.
func (m *MockClipboard) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = fail
}

// Text returns the current contents.
func (m *MockClipboard) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data)
}

// Writes counts successful writes.
func (m *MockClipboard) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
