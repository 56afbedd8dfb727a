package fsmediator

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// ReadTextFile reads the file at the canonical path and applies the
// offset/limit line-window semantics. offset and limit are 1-based
// inclusive/exclusive-count; nil means absent.
func ReadTextFile(canonicalPath string, offset, limit *int) (string, error) {
	raw, err := os.ReadFile(canonicalPath)
	if err != nil {
		return "", fmt.Errorf("file not found")
	}
	if bytes.IndexByte(raw, 0x00) >= 0 {
		return "", fmt.Errorf("binary file not supported")
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("file contains invalid UTF-8")
	}
	text := string(raw)

	if offset == nil && limit == nil {
		return text, nil
	}

	lines := splitLines(text)

	if offset == nil {
		n := *limit
		if n > len(lines) {
			n = len(lines)
		}
		if n < 0 {
			n = 0
		}
		return strings.Join(lines[:n], "\n"), nil
	}

	m := *offset
	if m > len(lines) {
		m = len(lines) + 1 // one past the end: slice below is empty
	}
	if m < 1 {
		m = 1
	}
	start := m - 1

	if limit == nil {
		return strings.Join(lines[start:], "\n"), nil
	}

	end := start + *limit
	if end > len(lines) {
		end = len(lines)
	}
	if end < start {
		end = start
	}
	return strings.Join(lines[start:end], "\n"), nil
}

// splitLines implements "lines" semantics: split on \n, but a trailing
// newline does not produce an empty trailing entry.
func splitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	trimmed := strings.TrimSuffix(text, "\n")
	return strings.Split(trimmed, "\n")
}
