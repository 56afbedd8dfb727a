// Package login automates the Claude CLI's one-time login flow: it
// spawns the CLI in a pseudoterminal, nudges it with periodic input to
// surface its one-shot login URL, scrapes that URL, and returns while
// the child keeps running in the background.
package login

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/creack/pty"
)

// Result is the successful outcome of one login automation run.
type Result struct {
	LoginURL string
}

const (
	ptyRows        = 24
	ptyCols        = 80
	writerInterval = 250 * time.Millisecond
	readChunkSize  = 4096
	captureTimeout = 30 * time.Second
)

// Extractor runs the login automation against a resolved CLI.
type Extractor struct {
	cwd string
}

// NewExtractor returns an extractor that resolves the login CLI
// relative to cwd.
func NewExtractor(cwd string) *Extractor {
	return &Extractor{cwd: cwd}
}

// Extract spawns the login CLI in a PTY and returns as soon as the first
// login URL is observed, or fails on timeout or early child exit. The
// child process is never killed or awaited: on any exit path it is left
// running, detached.
func (e *Extractor) Extract(ctx context.Context) (*Result, error) {
	cmd, err := resolveCLI(e.cwd)
	if err != nil {
		return nil, err
	}

	ptmx, tty, err := pty.Open()
	if err != nil {
		return nil, internalErr("failed to open pty")
	}
	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: ptyRows, Cols: ptyCols}); err != nil {
		ptmx.Close()
		tty.Close()
		return nil, internalErr("failed to size pty")
	}

	args := append(append([]string{}, cmd.args...), "/login")
	child := exec.Command(cmd.path, args...)
	child.Dir = e.cwd
	child.Env = os.Environ()
	child.Stdin = tty
	child.Stdout = tty
	child.Stderr = tty

	if err := child.Start(); err != nil {
		ptmx.Close()
		tty.Close()
		return nil, internalErr("failed to spawn login CLI")
	}
	tty.Close() // detach the slave in this process; the child keeps its own copy

	var stop atomic.Bool
	chunks := make(chan []byte, 64)
	done := make(chan struct{})

	go writerLoop(ptmx, &stop)
	go readerLoop(ptmx, &stop, chunks, done)

	url, err := capture(ctx, chunks, done)
	stop.Store(true)
	<-done
	ptmx.Close()

	if err != nil {
		return nil, err
	}
	return &Result{LoginURL: url}, nil
}

func writerLoop(ptmx *os.File, stop *atomic.Bool) {
	ticker := time.NewTicker(writerInterval)
	defer ticker.Stop()
	for !stop.Load() {
		<-ticker.C
		if stop.Load() {
			return
		}
		ptmx.Write([]byte("\r"))
	}
}

func readerLoop(ptmx *os.File, stop *atomic.Bool, chunks chan<- []byte, done chan<- struct{}) {
	defer close(done)
	buf := make([]byte, readChunkSize)
	for {
		if stop.Load() {
			return
		}
		n, err := ptmx.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case chunks <- chunk:
			default:
			}
		}
		if err != nil {
			close(chunks)
			return
		}
	}
}

func capture(ctx context.Context, chunks <-chan []byte, readerDone <-chan struct{}) (string, error) {
	timeout := time.NewTimer(captureTimeout)
	defer timeout.Stop()

	var buf bytes.Buffer
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				return "", internalErr("login CLI exited before emitting a login URL")
			}
			buf.Write(chunk)
			if url, found := scrapeURL(buf.Bytes()); found {
				return url, nil
			}
		case <-timeout.C:
			return "", internalErr("timed out waiting for Claude login URL")
		case <-ctx.Done():
			return "", internalErr("timed out waiting for Claude login URL")
		case <-readerDone:
			return "", internalErr("login CLI exited before emitting a login URL")
		}
	}
}

// scrapeURL finds the first "https://..." token, ending at whitespace,
// a quote character, BEL (0x07), ESC (0x1B), or end of buffer.
func scrapeURL(buf []byte) (string, bool) {
	const marker = "https://"
	start := bytes.Index(buf, []byte(marker))
	if start < 0 {
		return "", false
	}

	end := len(buf)
	for i := start; i < len(buf); i++ {
		c := buf[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '"' || c == '\'' || c == 0x07 || c == 0x1B {
			end = i
			break
		}
	}
	return string(buf[start:end]), true
}
