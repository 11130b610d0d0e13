// Package tuitest drives a terminal program through a pseudo terminal and
// records what it draws.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth   = 120
	defaultHeight  = 32
	defaultTimeout = 5 * time.Second
	pollInterval   = 50 * time.Millisecond
)

// Step is one scripted interaction. Delay is waited first; WaitFor, when set,
// blocks until the screen shows that text; Input is then written.
type Step struct {
	Delay   time.Duration
	WaitFor string
	Input   []byte
}

// Config describes the program to spawn and the script to replay.
type Config struct {
	Command          []string
	Dir              string
	Env              []string
	Width            int
	Height           int
	Steps            []Step
	Timeout          time.Duration
	AllowedExitCodes []int
	AllowInterrupt   bool
}

// Recording holds the raw terminal stream and its frames.
type Recording struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

type screenBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *screenBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *screenBuffer) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.buf.Bytes())
}

func (s *screenBuffer) Shows(text string) bool {
	return strings.Contains(stripANSI(string(s.Bytes())), text)
}

// Run starts cfg.Command in a pty, replays the steps and waits for the program
// to exit.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, orDefault(cfg.Timeout, defaultTimeout))
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(cfg.Env)

	size := &pty.Winsize{
		Rows: uint16(orDefault(cfg.Height, defaultHeight)),
		Cols: uint16(orDefault(cfg.Width, defaultWidth)),
	}
	term, err := pty.StartWithSize(cmd, size)
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	defer func() { _ = term.Close() }()

	screen := &screenBuffer{}
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		answerer := newProbeAnswerer(term)
		chunk := make([]byte, 4096)
		for {
			n, err := term.Read(chunk)
			if n > 0 {
				answerer.Feed(chunk[:n])
				_, _ = screen.Write(chunk[:n])
			}
			if err != nil {
				return
			}
		}
	}()

	start := time.Now()
	for i, step := range cfg.Steps {
		if err := replay(ctx, term, screen, step); err != nil {
			return nil, fmt.Errorf("tuitest: step %d: %w", i, err)
		}
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()
	select {
	case err := <-exited:
		if err != nil && !acceptableExit(err, cfg) {
			return nil, fmt.Errorf("tuitest: program exited with error: %w", err)
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("tuitest: timeout waiting for program exit: %w", ctx.Err())
	}

	_ = term.Close()
	<-drained

	raw := screen.Bytes()
	return &Recording{Raw: raw, Frames: parseFrames(raw), Duration: time.Since(start)}, nil
}

func replay(ctx context.Context, term *os.File, screen *screenBuffer, step Step) error {
	if step.Delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(step.Delay):
		}
	}
	if step.WaitFor != "" {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for !screen.Shows(step.WaitFor) {
			select {
			case <-ctx.Done():
				return fmt.Errorf("waiting for %q: %w", step.WaitFor, ctx.Err())
			case <-ticker.C:
			}
		}
	}
	if len(step.Input) > 0 {
		if _, err := term.Write(step.Input); err != nil {
			return fmt.Errorf("write input: %w", err)
		}
	}
	return nil
}

func acceptableExit(err error, cfg Config) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		for _, code := range cfg.AllowedExitCodes {
			if exitErr.ExitCode() == code {
				return true
			}
		}
	}
	return cfg.AllowInterrupt && strings.Contains(err.Error(), "signal: interrupt")
}

func orDefault[T int | time.Duration](v, fallback T) T {
	if v <= 0 {
		return fallback
	}
	return v
}

func buildEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

// Input sequences for scripted steps.
var (
	KeyEnter = []byte{'\r'}
	KeyCtrlC = []byte{3}
	KeyCtrlB = []byte{2}
	KeyEsc   = []byte{27}
	KeyTab   = []byte{'\t'}
	KeyDown  = []byte("\x1b[B")
	KeyUp    = []byte("\x1b[A")
)
