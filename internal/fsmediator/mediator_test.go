package fsmediator

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/loopwire/acpbridge/internal/acp"
)

type fakeAgent struct {
	response *acp.RequestPermissionResponse
	err      error
}

func (f *fakeAgent) Initialize(context.Context, json.RawMessage) (json.RawMessage, error) {
	return nil, nil
}
func (f *fakeAgent) NewSession(context.Context, json.RawMessage) (json.RawMessage, error) {
	return nil, nil
}
func (f *fakeAgent) Prompt(context.Context, acp.PromptRequest, acp.NotificationSender) (*acp.PromptResponse, error) {
	return nil, nil
}
func (f *fakeAgent) RequestPermission(context.Context, acp.RequestPermissionRequest) (*acp.RequestPermissionResponse, error) {
	return f.response, f.err
}

func mediatorErrCode(t *testing.T, err error) int {
	t.Helper()
	var me *MediatorError
	if !errors.As(err, &me) {
		t.Fatalf("expected *MediatorError, got %T (%v)", err, err)
	}
	return me.Code
}

func TestWriteTextFileCacheAllowAlwaysSkipsAgent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	cache := NewPermissionCache()
	canonical, err := Canonicalize(dir, path, true)
	if err != nil {
		t.Fatalf("Canonicalize() error = %v", err)
	}
	cache.Set(canonical, DecisionAllowAlways)

	m := NewMediator(cache, dir)
	agent := &fakeAgent{err: errors.New("should not be called")}
	if err := m.WriteTextFile(context.Background(), agent, "sess", path, "hello"); err != nil {
		t.Fatalf("WriteTextFile() error = %v", err)
	}
	got, _ := os.ReadFile(canonical)
	if string(got) != "hello" {
		t.Errorf("file content = %q", got)
	}
}

func TestWriteTextFileCacheRejectAlwaysSkipsAgent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	cache := NewPermissionCache()
	canonical, _ := Canonicalize(dir, path, true)
	cache.Set(canonical, DecisionRejectAlways)

	m := NewMediator(cache, dir)
	agent := &fakeAgent{err: errors.New("should not be called")}
	err := m.WriteTextFile(context.Background(), agent, "sess", path, "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if code := mediatorErrCode(t, err); code != acp.PolicyDenied {
		t.Errorf("code = %d, want PolicyDenied", code)
	}
	if _, statErr := os.Stat(canonical); statErr == nil {
		t.Error("expected file not to be written")
	}
}

func TestWriteTextFileAllowOnceDoesNotCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	cache := NewPermissionCache()
	m := NewMediator(cache, dir)
	agent := &fakeAgent{response: &acp.RequestPermissionResponse{Outcome: acp.OutcomeSelected, OptionID: "allow_once"}}

	if err := m.WriteTextFile(context.Background(), agent, "sess", path, "hi"); err != nil {
		t.Fatalf("WriteTextFile() error = %v", err)
	}
	canonical, _ := Canonicalize(dir, path, true)
	if _, ok := cache.Get(canonical); ok {
		t.Error("expected allow_once not to be cached")
	}
}

func TestWriteTextFileAllowAlwaysCaches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	cache := NewPermissionCache()
	m := NewMediator(cache, dir)
	agent := &fakeAgent{response: &acp.RequestPermissionResponse{Outcome: acp.OutcomeSelected, OptionID: "allow_always"}}

	if err := m.WriteTextFile(context.Background(), agent, "sess", path, "hi"); err != nil {
		t.Fatalf("WriteTextFile() error = %v", err)
	}
	canonical, _ := Canonicalize(dir, path, true)
	d, ok := cache.Get(canonical)
	if !ok || d != DecisionAllowAlways {
		t.Errorf("got (%v, %v), want (DecisionAllowAlways, true)", d, ok)
	}
}

func TestWriteTextFileRejectAlwaysCaches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	cache := NewPermissionCache()
	m := NewMediator(cache, dir)
	agent := &fakeAgent{response: &acp.RequestPermissionResponse{Outcome: acp.OutcomeSelected, OptionID: "reject_always"}}

	err := m.WriteTextFile(context.Background(), agent, "sess", path, "hi")
	if code := mediatorErrCode(t, err); code != acp.PolicyDenied {
		t.Errorf("code = %d, want PolicyDenied", code)
	}
	canonical, _ := Canonicalize(dir, path, true)
	d, ok := cache.Get(canonical)
	if !ok || d != DecisionRejectAlways {
		t.Errorf("got (%v, %v), want (DecisionRejectAlways, true)", d, ok)
	}
}

func TestWriteTextFileUnknownOptionID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	m := NewMediator(NewPermissionCache(), dir)
	agent := &fakeAgent{response: &acp.RequestPermissionResponse{Outcome: acp.OutcomeSelected, OptionID: "bogus"}}

	err := m.WriteTextFile(context.Background(), agent, "sess", path, "hi")
	if code := mediatorErrCode(t, err); code != acp.PolicyDenied {
		t.Errorf("code = %d, want PolicyDenied", code)
	}
}

func TestWriteTextFileCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	m := NewMediator(NewPermissionCache(), dir)
	agent := &fakeAgent{response: &acp.RequestPermissionResponse{Outcome: acp.OutcomeCancelled}}

	err := m.WriteTextFile(context.Background(), agent, "sess", path, "hi")
	if code := mediatorErrCode(t, err); code != acp.PolicyDenied {
		t.Errorf("code = %d, want PolicyDenied", code)
	}
}

func TestWriteTextFileAgentCallFailed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	m := NewMediator(NewPermissionCache(), dir)
	agent := &fakeAgent{err: errors.New("boom")}

	err := m.WriteTextFile(context.Background(), agent, "sess", path, "hi")
	if code := mediatorErrCode(t, err); code != acp.InternalError {
		t.Errorf("code = %d, want InternalError", code)
	}
}

func TestWriteTextFileSandboxRejectionSkipsAgent(t *testing.T) {
	m := NewMediator(NewPermissionCache(), "/tmp")
	agent := &fakeAgent{err: errors.New("should not be called")}

	err := m.WriteTextFile(context.Background(), agent, "sess", "/etc/passwd", "hi")
	if code := mediatorErrCode(t, err); code != acp.InternalError {
		t.Errorf("code = %d, want InternalError", code)
	}
}
