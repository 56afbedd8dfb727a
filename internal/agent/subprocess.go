// Package agent implements acp.AgentTransport over a subprocess speaking
// JSON-RPC 2.0 on stdin/stdout, one line per message.
package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/loopwire/acpbridge/internal/acp"
)

// Subprocess manages a spawned ACP agent process and implements
// acp.AgentTransport over its stdio.
type Subprocess struct {
	command string
	args    []string
	env     []string
	workDir string
	timeout time.Duration

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	stderr *bufio.Reader

	requestID atomic.Int64
	pending   map[string]chan *acp.Response
	pendingMu sync.Mutex

	senderMu sync.Mutex
	sender   acp.NotificationSender

	done      chan struct{}
	closeOnce sync.Once
}

// Config holds the parameters for spawning the agent subprocess.
type Config struct {
	Command string
	Args    []string
	Env     []string
	WorkDir string
	Timeout time.Duration
}

// DefaultTimeout bounds a single call when Config.Timeout is zero. The
// timeout applies alongside any deadline on the caller's context.
const DefaultTimeout = 30 * time.Second

// New creates a Subprocess transport, unstarted.
func New(config Config) *Subprocess {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Subprocess{
		command: config.Command,
		args:    config.Args,
		env:     config.Env,
		workDir: config.WorkDir,
		timeout: timeout,
		pending: make(map[string]chan *acp.Response),
		done:    make(chan struct{}),
	}
}

// Start spawns the agent process and begins reading its stdout/stderr.
func (s *Subprocess) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		return fmt.Errorf("agent subprocess already started")
	}

	cmd := exec.CommandContext(ctx, s.command, s.args...)
	if s.workDir != "" {
		cmd.Dir = s.workDir
	}
	if len(s.env) > 0 {
		cmd.Env = append(os.Environ(), s.env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		stdout.Close()
		return fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		stderr.Close()
		return fmt.Errorf("start agent process: %w", err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)
	s.stderr = bufio.NewReader(stderr)

	go s.readResponses()
	go s.readStderr()

	return nil
}

func (s *Subprocess) readResponses() {
	defer s.Close()

	for {
		select {
		case <-s.done:
			return
		default:
		}

		line, err := s.stdout.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				fmt.Fprintf(os.Stderr, "[agent] stdout read error: %v\n", err)
			}
			return
		}
		if line == "" || line == "\n" {
			continue
		}

		var msg struct {
			ID     json.RawMessage `json:"id,omitempty"`
			Method string          `json:"method,omitempty"`
			Params json.RawMessage `json:"params,omitempty"`
		}
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			fmt.Fprintf(os.Stderr, "[agent] malformed message: %v\n", err)
			continue
		}

		if msg.Method != "" && (msg.ID == nil || string(msg.ID) == "null") {
			s.deliverNotification(msg.Method, msg.Params)
			continue
		}

		if msg.ID != nil && string(msg.ID) != "null" {
			idKey := string(msg.ID)
			s.pendingMu.Lock()
			ch, ok := s.pending[idKey]
			if ok {
				delete(s.pending, idKey)
			}
			s.pendingMu.Unlock()
			if ok {
				var resp acp.Response
				json.Unmarshal([]byte(line), &resp)
				ch <- &resp
			}
		}
	}
}

func (s *Subprocess) readStderr() {
	for {
		select {
		case <-s.done:
			return
		default:
		}
		line, err := s.stderr.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				fmt.Fprintf(os.Stderr, "[agent] stderr read error: %v\n", err)
			}
			return
		}
		if line != "" {
			fmt.Fprintf(os.Stderr, "[agent] %s", line)
		}
	}
}

// deliverNotification forwards an agent-emitted notification (e.g.
// session/update) to whichever NotificationSender is bound to the
// currently outstanding Prompt call, if any.
func (s *Subprocess) deliverNotification(method string, params json.RawMessage) {
	s.senderMu.Lock()
	sender := s.sender
	s.senderMu.Unlock()
	if sender == nil {
		return
	}
	var v any
	if len(params) > 0 {
		json.Unmarshal(params, &v)
	}
	sender.Send(context.Background(), method, v)
}

// call sends a request and blocks for the matching response.
func (s *Subprocess) call(ctx context.Context, method string, params json.RawMessage) (*acp.Response, error) {
	s.mu.Lock()
	if s.cmd == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("agent subprocess not started")
	}
	s.mu.Unlock()

	id := s.requestID.Add(1)
	idJSON, _ := json.Marshal(id)
	idKey := string(idJSON)

	req := acp.Request{JSONRPC: "2.0", ID: idJSON, Method: method, Params: params}

	respCh := make(chan *acp.Response, 1)
	s.pendingMu.Lock()
	s.pending[idKey] = respCh
	s.pendingMu.Unlock()
	defer func() {
		s.pendingMu.Lock()
		delete(s.pending, idKey)
		s.pendingMu.Unlock()
	}()

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	s.mu.Lock()
	_, err = fmt.Fprintf(s.stdin, "%s\n", data)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-respCh:
		return resp, nil
	case <-time.After(s.timeout):
		return nil, fmt.Errorf("agent call %q timed out", method)
	case <-s.done:
		return nil, fmt.Errorf("agent subprocess closed")
	}
}

func marshalParams(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Initialize implements acp.AgentTransport.
func (s *Subprocess) Initialize(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	resp, err := s.call(ctx, "initialize", params)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("agent initialize failed: %s", resp.Error.Message)
	}
	return marshalResult(resp.Result)
}

// NewSession implements acp.AgentTransport.
func (s *Subprocess) NewSession(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	resp, err := s.call(ctx, "session/new", params)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("agent new_session failed: %s", resp.Error.Message)
	}
	return marshalResult(resp.Result)
}

// Prompt implements acp.AgentTransport. While the call is outstanding, any
// notification the agent emits is forwarded through sender, in emission
// order; the terminal reply follows them all.
func (s *Subprocess) Prompt(ctx context.Context, req acp.PromptRequest, sender acp.NotificationSender) (*acp.PromptResponse, error) {
	s.senderMu.Lock()
	s.sender = sender
	s.senderMu.Unlock()
	defer func() {
		s.senderMu.Lock()
		s.sender = nil
		s.senderMu.Unlock()
	}()

	params, err := marshalParams(req)
	if err != nil {
		return nil, fmt.Errorf("marshal prompt request: %w", err)
	}
	resp, err := s.call(ctx, "session/prompt", params)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("agent prompt failed: %s", resp.Error.Message)
	}

	resultJSON, err := marshalResult(resp.Result)
	if err != nil {
		return nil, err
	}
	var out acp.PromptResponse
	if err := json.Unmarshal(resultJSON, &out); err != nil {
		return nil, fmt.Errorf("parse prompt response: %w", err)
	}
	return &out, nil
}

// RequestPermission implements acp.AgentTransport.
func (s *Subprocess) RequestPermission(ctx context.Context, req acp.RequestPermissionRequest) (*acp.RequestPermissionResponse, error) {
	params, err := marshalParams(req)
	if err != nil {
		return nil, fmt.Errorf("marshal permission request: %w", err)
	}
	resp, err := s.call(ctx, "session/request_permission", params)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("agent request_permission failed: %s", resp.Error.Message)
	}

	resultJSON, err := marshalResult(resp.Result)
	if err != nil {
		return nil, err
	}
	var out acp.RequestPermissionResponse
	if err := json.Unmarshal(resultJSON, &out); err != nil {
		return nil, fmt.Errorf("parse permission response: %w", err)
	}
	return &out, nil
}

func marshalResult(result any) (json.RawMessage, error) {
	if raw, ok := result.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(result)
}

// Close terminates the agent process, waiting up to five seconds for a
// graceful exit before killing it.
func (s *Subprocess) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		defer s.mu.Unlock()

		if s.stdin != nil {
			s.stdin.Close()
		}

		if s.cmd != nil && s.cmd.Process != nil {
			exited := make(chan error, 1)
			go func() { exited <- s.cmd.Wait() }()

			select {
			case <-exited:
			case <-time.After(5 * time.Second):
				s.cmd.Process.Kill()
				<-exited
			}
		}

		s.pendingMu.Lock()
		for _, ch := range s.pending {
			close(ch)
		}
		s.pending = make(map[string]chan *acp.Response)
		s.pendingMu.Unlock()
	})
	return nil
}
