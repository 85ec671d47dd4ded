package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// setupLogger opens the log file named by path (or the config) and returns a
// text logger writing to it. Without a log file everything is discarded; the
// terminal belongs to the editor.
func setupLogger(cfg *Config, path string) (*slog.Logger, io.Closer, error) {
	if path == "" {
		path = cfg.LogFile
	}
	if path == "" {
		return slog.New(slog.DiscardHandler), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("log file: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("log file: %w", err)
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.slogLevel()})
	return slog.New(h).With("pid", os.Getpid()), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func baseName(path string) string {
	return filepath.Base(path)
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func floorDiv(v, d float64) int {
	return int(math.Floor(v / d))
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}

// padRight pads s with spaces to n runes.
func padRight(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

// insertAt inserts text at rune offset pos of s.
func insertAt(s string, pos int, text string) string {
	r := []rune(s)
	pos = min(max(pos, 0), len(r))
	return string(r[:pos]) + text + string(r[pos:])
}

// deleteBefore removes the rune before pos.
func deleteBefore(s string, pos int) (string, int) {
	r := []rune(s)
	if pos <= 0 || pos > len(r) {
		return s, pos
	}
	return string(r[:pos-1]) + string(r[pos:]), pos - 1
}
