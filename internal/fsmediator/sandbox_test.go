package fsmediator

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalizeRejectsForbiddenPrefixesPreCanonicalization(t *testing.T) {
	for _, p := range []string{"/etc/passwd", "/var/log/x", "/root/.ssh/id_rsa", "/usr/bin/x", "/boot/vmlinuz", "/proc/self/mem"} {
		if _, err := Canonicalize("/tmp", p, false); err == nil {
			t.Errorf("expected rejection for %q", p)
		}
	}
}

func TestCanonicalizeResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Canonicalize(dir, "notes.txt", false)
	if err != nil {
		t.Fatalf("Canonicalize() error = %v", err)
	}
	want, _ := filepath.EvalSymlinks(path)
	if got != want {
		t.Errorf("Canonicalize() = %q, want %q", got, want)
	}
}

func TestCanonicalizeReadMissingFileFails(t *testing.T) {
	dir := t.TempDir()
	if _, err := Canonicalize(dir, "missing.txt", false); err == nil {
		t.Error("expected error reading a missing file")
	}
}

func TestCanonicalizeWriteExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Canonicalize(dir, path, true)
	if err != nil {
		t.Fatalf("Canonicalize() error = %v", err)
	}
	want, _ := filepath.EvalSymlinks(path)
	if got != want {
		t.Errorf("Canonicalize() = %q, want %q", got, want)
	}
}

func TestCanonicalizeWriteNewFileUsesParentDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new.txt")

	got, err := Canonicalize(dir, path, true)
	if err != nil {
		t.Fatalf("Canonicalize() error = %v", err)
	}
	realDir, _ := filepath.EvalSymlinks(dir)
	want := filepath.Join(realDir, "new.txt")
	if got != want {
		t.Errorf("Canonicalize() = %q, want %q", got, want)
	}
}

func TestCanonicalizeWriteNewFileMissingParentFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nosuchdir", "new.txt")

	if _, err := Canonicalize(dir, path, true); err == nil {
		t.Error("expected error when parent directory does not exist")
	}
}

func TestCanonicalizeRejectsForbiddenPrefixesPostCanonicalization(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(dir, "etc-link")
	if err := os.Symlink("/etc", link); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	target := filepath.Join(link, "passwd")
	if _, err := Canonicalize(dir, target, false); err == nil {
		t.Error("expected rejection of a path resolving into /etc via symlink")
	}
}
