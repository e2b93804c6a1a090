package e2e

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/creack/pty"
)

// Options describes a program run under a pseudo terminal
type Options struct {
	Command string
	Args    []string
	Env     []string
	Rows    uint16
	Cols    uint16
	// Timeout kills the program if it is still running
	Timeout time.Duration
}

// Session is a running program attached to a pseudo terminal
type Session struct {
	cmd    *exec.Cmd
	ptmx   *os.File
	cancel context.CancelFunc
	rows   int
	cols   int

	mu     sync.Mutex
	output []byte

	readDone chan struct{}
	waitOnce sync.Once
	waitErr  error
	exited   chan struct{}
}

// BuildBinary compiles the main package at pkgDir into dir
func BuildBinary(dir, pkgDir string) (string, error) {
	bin := filepath.Join(dir, "go-log-monitor")
	out, err := exec.Command("go", "build", "-o", bin, pkgDir).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("go build failed: %w\n%s", err, out)
	}
	return bin, nil
}

// Start launches the program
func Start(opts Options) (*Session, error) {
	if opts.Rows == 0 {
		opts.Rows = 30
	}
	if opts.Cols == 0 {
		opts.Cols = 100
	}
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	cmd := exec.CommandContext(ctx, opts.Command, opts.Args...)
	cmd.Env = append(os.Environ(), opts.Env...)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: opts.Rows, Cols: opts.Cols})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start under pty: %w", err)
	}

	s := &Session{
		cmd:      cmd,
		ptmx:     ptmx,
		cancel:   cancel,
		rows:     int(opts.Rows),
		cols:     int(opts.Cols),
		readDone: make(chan struct{}),
		exited:   make(chan struct{}),
	}
	go s.capture()
	go func() {
		s.waitErr = cmd.Wait()
		close(s.exited)
	}()
	return s, nil
}

func (s *Session) capture() {
	defer close(s.readDone)
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.output = append(s.output, buf[:n]...)
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Send types keys into the terminal
func (s *Session) Send(keys string) error {
	_, err := s.ptmx.Write([]byte(keys))
	return err
}

// Output returns everything the program has written so far
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.output)
}

// Screen replays the output onto a fresh screen of the session size
func (s *Session) Screen() *Screen {
	screen := NewScreen(s.rows, s.cols)
	screen.Feed(s.Output())
	return screen
}

// WaitFor polls the screen until it shows text
func (s *Session) WaitFor(text string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.Screen().Contains(text) {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for %q; screen:\n%s", text, s.Screen())
}

// Wait blocks until the program exits or timeout passes
func (s *Session) Wait(timeout time.Duration) error {
	select {
	case <-s.exited:
		return s.waitErr
	case <-time.After(timeout):
		return errors.New("program still running")
	}
}

// Close kills the program if needed and releases the terminal
func (s *Session) Close() error {
	s.cancel()
	select {
	case <-s.exited:
	case <-time.After(2 * time.Second):
	}
	return s.ptmx.Close()
}
