package smoke

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/alucardeht/mcp-proxy-devtools/internal/logger"
)

// ErrNoResponse is returned when the server closes stdout before a full
// response line arrived.
var ErrNoResponse = errors.New("server closed stdout without responding")

const (
	stderrLimit = 64 * 1024
	killAfter   = 5 * time.Second
)

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

// Session is one server process spoken to over stdin/stdout, one JSON object
// per line. It is not safe for concurrent use.
type Session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	writer *bufio.Writer
	reader *bufio.Reader
	stderr *tailBuffer
	log    *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Start launches command. Cancelling ctx kills the process, which also
// unblocks a pending ReadLine.
func Start(ctx context.Context, command string, args ...string) (*Session, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.WaitDelay = killAfter

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}

	stderr := &tailBuffer{limit: stderrLimit}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", command, err)
	}

	log := logger.ForComponent("smoke").With("command", command, "pid", cmd.Process.Pid)
	log.Debug("server started")

	return &Session{
		cmd:    cmd,
		stdin:  stdin,
		writer: bufio.NewWriter(stdin),
		reader: bufio.NewReader(stdout),
		stderr: stderr,
		log:    log,
	}, nil
}

// Send writes msg followed by a newline and flushes.
func (s *Session) Send(msg *jsonrpc2.Request) error {
	line, err := EncodeLine(msg)
	if err != nil {
		return err
	}

	if _, err := s.writer.Write(line); err != nil {
		return fmt.Errorf("failed to write %s: %w", msg.Method, err)
	}
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", msg.Method, err)
	}

	s.log.Debug("sent", "method", msg.Method, "notification", msg.Notif)
	return nil
}

// ReadLine blocks until the server writes one line and returns it with
// surrounding whitespace, line terminator included, removed. A final line
// without terminator is returned the same way.
func (s *Session) ReadLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", ErrNoResponse
			}
			return strings.TrimSpace(line), nil
		}
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Stderr returns the tail of what the server wrote to stderr. It is complete
// only after Close.
func (s *Session) Stderr() string {
	return s.stderr.String()
}

// Close closes stdin, sends the termination signal and waits for the
// process. A server still running after killAfter is killed. The exit status
// is logged, not returned, since a terminated server never exits cleanly.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.stdin.Close()

		if err := terminate(s.cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
			s.log.Debug("failed to signal server", "error", err)
		}

		done := make(chan error, 1)
		go func() {
			done <- s.cmd.Wait()
		}()

		var err error
		select {
		case err = <-done:
		case <-time.After(killAfter):
			s.log.Warn("server ignored termination signal, killing")
			s.cmd.Process.Kill()
			err = <-done
		}

		var exitErr *exec.ExitError
		switch {
		case err == nil:
			s.log.Debug("server exited")
		case errors.As(err, &exitErr):
			s.log.Debug("server exited", "state", exitErr.String())
		default:
			s.closeErr = fmt.Errorf("failed to wait for server: %w", err)
		}

		if tail := strings.TrimSpace(s.stderr.String()); tail != "" {
			s.log.Debug("server stderr", "output", tail)
		}
	})
	return s.closeErr
}
