// Package fsmediator implements the path sandbox, text file reader, and
// permission cache the bridge places between the agent and the local
// filesystem.
package fsmediator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// forbiddenPrefixes is a blacklist, not a root-containment check: a
// canonical path under any location other than these six is permitted,
// including the caller's home directory and project trees outside the
// bridge's working directory. Known-fragile by design; do not tighten
// this into root containment without changing the documented contract.
var forbiddenPrefixes = []string{
	"/etc/",
	"/var/",
	"/root/",
	"/usr/",
	"/boot/",
	"/proc/",
}

func hasForbiddenPrefix(path string) bool {
	for _, prefix := range forbiddenPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Canonicalize resolves path into the canonical absolute string used as
// the sandbox decision, cache key, and I/O target. forWrite selects the
// write-of-possibly-new-file resolution rule; otherwise the read rule
// applies, which requires the file to already exist.
func Canonicalize(cwd, path string, forWrite bool) (string, error) {
	if hasForbiddenPrefix(path) {
		return "", fmt.Errorf("path outside project root")
	}

	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(cwd, resolved)
	}

	canonical, err := canonicalizePath(resolved, forWrite)
	if err != nil {
		return "", err
	}

	if hasForbiddenPrefix(canonical) {
		return "", fmt.Errorf("path outside project root")
	}

	return canonical, nil
}

func canonicalizePath(resolved string, forWrite bool) (string, error) {
	real, err := filepath.EvalSymlinks(resolved)
	if err == nil {
		return real, nil
	}
	if !forWrite {
		return "", fmt.Errorf("file not found")
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("invalid path")
	}

	// Writing a file that doesn't exist yet: canonicalize the parent
	// directory instead and re-append the file-name component.
	dir := filepath.Dir(resolved)
	name := filepath.Base(resolved)
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", fmt.Errorf("invalid path")
	}
	return filepath.Join(realDir, name), nil
}
