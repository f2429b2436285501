// Package shell runs external tools inside a pseudo terminal.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// Session is a running command attached to a pseudo terminal.
// Reads return the command output, writes feed its input.
type Session struct {
	cmd  *exec.Cmd
	ptmx *os.File

	waitOnce  sync.Once
	waitErr   error
	closeOnce sync.Once
}

func (s *Session) Read(p []byte) (int, error) {
	return s.ptmx.Read(p)
}

func (s *Session) Write(p []byte) (int, error) {
	return s.ptmx.Write(p)
}

// Wait blocks until the command exits. It is safe to call more than once.
func (s *Session) Wait() error {
	s.waitOnce.Do(func() {
		s.waitErr = s.cmd.Wait()
	})
	return s.waitErr
}

// Close kills the command if it is still running and releases the terminal.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		err = s.ptmx.Close()
	})
	return err
}

// Executor implements ports.Executor on top of pseudo terminals.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor. Output of commands run without a writer goes to logger.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Spawn starts the command and hands its terminal to the caller.
// The terminal runs in raw mode so input written to the session is not echoed back.
func (e *Executor) Spawn(ctx context.Context, cmd ports.Command) (ports.LoginSession, error) {
	return start(ctx, cmd)
}

func start(ctx context.Context, command ports.Command) (*Session, error) {
	if command.Name == "" {
		return nil, zerr.New("empty command")
	}

	cmdEnv := resolveEnvironment(os.Environ(), command.Env)

	executable := command.Name
	if !filepath.IsAbs(executable) {
		if lp, err := lookPath(executable, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, command.Args...) //nolint:gosec // configured toolchain
	cmd.Args[0] = command.Name
	cmd.Dir = command.Dir
	cmd.Env = cmdEnv

	ptmx, tty, err := pty.Open()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open pty")
	}
	defer func() { _ = tty.Close() }()

	if _, err := term.MakeRaw(int(tty.Fd())); err != nil {
		_ = ptmx.Close()
		return nil, zerr.Wrap(err, "failed to configure pty")
	}

	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}

	if err := cmd.Start(); err != nil {
		_ = ptmx.Close()
		return nil, zerr.With(zerr.Wrap(err, "failed to start command"), "command", command.Name)
	}

	return &Session{cmd: cmd, ptmx: ptmx}, nil
}

// Execute runs the command and waits for it to complete.
// The terminal merges both streams, so everything is written to stdout.
// When stdout is nil the output is logged line by line instead.
func (e *Executor) Execute(ctx context.Context, cmd ports.Command, stdout, _ io.Writer) error {
	var sink io.Writer = stdout
	var lw *logWriter
	if stdout == nil {
		lw = &logWriter{logger: e.logger}
		sink = lw
	}

	sess, err := start(ctx, cmd)
	if err != nil {
		return err
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// Reading a pty whose child has exited ends with EIO.
		_, _ = io.Copy(sink, sess)
	}()

	waitErr := sess.Wait()
	<-ioDone
	_ = sess.Close()
	if lw != nil {
		_ = lw.Close()
	}

	if waitErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		err := zerr.With(zerr.Wrap(waitErr, "command failed"), "command", cmd.Name)
		return zerr.With(err, "exit_code", exitCode)
	}

	return nil
}

type logWriter struct {
	logger ports.Logger
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// PTYs may introduce \r. Remove it.
	msg := strings.TrimSuffix(string(line), "\r")
	if msg == "" {
		return
	}
	w.logger.Info(msg)
}

// resolveEnvironment overlays extra "KEY=VALUE" entries on the inherited environment.
// The node toolchain reads its configuration from NODE_* and npm_config_* variables,
// so nothing is filtered out.
func resolveEnvironment(sysEnv, extra []string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(extra))
	for _, list := range [][]string{sysEnv, extra} {
		for _, entry := range list {
			if k, v, ok := strings.Cut(entry, "="); ok && k != "" {
				envMap[k] = v
			}
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the directories named by the PATH of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if p, ok := strings.CutPrefix(e, "PATH="); ok {
			path = p
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
