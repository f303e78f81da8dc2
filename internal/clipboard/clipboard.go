// Package clipboard defines the clipboard the UI copies routes to.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnsupported is returned when no clipboard is reachable.
var ErrUnsupported = errors.New("clipboard not supported on this system")

// Clipboard reads and writes text.
type Clipboard interface {
	Read() (io.ReadCloser, error)
	Write(r io.Reader) error
	IsSupported() bool
}

// WriteString copies s to cb.
func WriteString(cb Clipboard, s string) error {
	if cb == nil || !cb.IsSupported() {
		return ErrUnsupported
	}
	if err := cb.Write(strings.NewReader(s)); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// ReadString returns the clipboard's text.
func ReadString(cb Clipboard) (string, error) {
	if cb == nil || !cb.IsSupported() {
		return "", ErrUnsupported
	}
	rc, err := cb.Read()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return string(data), nil
}
