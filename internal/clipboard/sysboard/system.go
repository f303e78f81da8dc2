// Package sysboard is the system clipboard. It uses the native clipboard
// through golang.design/x/clipboard and falls back to pbcopy/pbpaste or
// xclip/xsel when the native one cannot be initialized (headless X, Wayland).
package sysboard

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

func native() bool {
	initOnce.Do(func() {
		initErr = clipboard.Init()
	})
	return initErr == nil
}

// SystemClipboard implements clipboard.Clipboard.
type SystemClipboard struct{}

// New creates a SystemClipboard.
func New() *SystemClipboard {
	return &SystemClipboard{}
}

// IsSupported reports whether either the native clipboard or one of the
// command line tools is available.
func (s *SystemClipboard) IsSupported() bool {
	if native() {
		return true
	}
	_, _, ok := commands()
	return ok
}

func (s *SystemClipboard) Read() (io.ReadCloser, error) {
	if native() {
		return io.NopCloser(bytes.NewReader(clipboard.Read(clipboard.FmtText))), nil
	}

	read, _, ok := commands()
	if !ok {
		return nil, fmt.Errorf("clipboard operations not supported on %s: %w", runtime.GOOS, initErr)
	}

	var out bytes.Buffer
	cmd := exec.Command(read[0], read[1:]...)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", read[0], err)
	}
	return io.NopCloser(&out), nil
}

func (s *SystemClipboard) Write(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	if native() {
		clipboard.Write(clipboard.FmtText, data)
		return nil
	}

	_, write, ok := commands()
	if !ok {
		return fmt.Errorf("clipboard operations not supported on %s: %w", runtime.GOOS, initErr)
	}

	cmd := exec.Command(write[0], write[1:]...)
	cmd.Stdin = bytes.NewReader(data)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to run %s: %w", write[0], err)
	}
	return nil
}

// commands returns the read and write command lines for the first tool found.
func commands() (read, write []string, ok bool) {
	switch runtime.GOOS {
	case "darwin":
		if has("pbcopy") && has("pbpaste") {
			return []string{"pbpaste"}, []string{"pbcopy"}, true
		}
	case "linux":
		if has("xclip") {
			return []string{"xclip", "-selection", "clipboard", "-o"}, []string{"xclip", "-selection", "clipboard"}, true
		}
		if has("xsel") {
			return []string{"xsel", "--clipboard", "--output"}, []string{"xsel", "--clipboard", "--input"}, true
		}
	}
	return nil, nil, false
}

func has(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
