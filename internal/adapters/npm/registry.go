// Package npm implements ports.Registry with the npm command line client.
package npm

import (
	"bytes"
	"context"
	"io"
	"strings"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

// needAuthCode is printed by whoami when no session exists.
const needAuthCode = "ENEEDAUTH"

// Runner runs registry client commands. Spawn hands over an interactive terminal.
type Runner interface {
	ports.Executor
	Spawn(ctx context.Context, cmd ports.Command) (ports.LoginSession, error)
}

// Registry talks to a package registry through the npm client binary.
type Registry struct {
	runner Runner
	bin    string
}

// NewRegistry creates a Registry invoking bin (usually "npm").
func NewRegistry(runner Runner, bin string) *Registry {
	return &Registry{runner: runner, bin: bin}
}

// Whoami returns the logged-in user for the channel registry, or "" when there is no session.
func (r *Registry) Whoami(ctx context.Context, ch domain.ReleaseChannel) (string, error) {
	var out bytes.Buffer
	if err := r.runner.Execute(ctx, r.command(ch, "whoami"), &out, &out); err != nil {
		if strings.Contains(out.String(), needAuthCode) {
			return "", nil
		}
		return "", r.commandError(err, ch, "whoami", out.String())
	}
	return lastLine(out.String()), nil
}

// Logout ends the session for the channel registry.
func (r *Registry) Logout(ctx context.Context, ch domain.ReleaseChannel) error {
	var out bytes.Buffer
	if err := r.runner.Execute(ctx, r.command(ch, "logout"), &out, &out); err != nil {
		return r.commandError(err, ch, "logout", out.String())
	}
	return nil
}

// StartLogin spawns the interactive login dialogue.
func (r *Registry) StartLogin(ctx context.Context, ch domain.ReleaseChannel) (ports.LoginSession, error) {
	sess, err := r.runner.Spawn(ctx, r.command(ch, "login"))
	if err != nil {
		return nil, zerr.With(domain.WrapCause(domain.ErrLoginFailed, err), "channel", ch.Name)
	}
	return sess, nil
}

// Publish uploads the package in dir.
func (r *Registry) Publish(ctx context.Context, ch domain.ReleaseChannel, dir string, out io.Writer) error {
	cmd := r.command(ch, "publish")
	cmd.Dir = dir
	if err := r.runner.Execute(ctx, cmd, out, out); err != nil {
		return zerr.With(r.commandError(err, ch, "publish", ""), "dir", dir)
	}
	return nil
}

func (r *Registry) command(ch domain.ReleaseChannel, sub string) ports.Command {
	return ports.Command{Name: r.bin, Args: Args(ch, sub)}
}

func (r *Registry) commandError(err error, ch domain.ReleaseChannel, sub, output string) error {
	wrapped := zerr.With(domain.WrapCause(domain.ErrRegistryCommandFailed, err), "command", r.bin+" "+sub)
	wrapped = zerr.With(wrapped, "channel", ch.Name)
	if line := lastLine(output); line != "" {
		wrapped = zerr.With(wrapped, "output", line)
	}
	return wrapped
}

// Args builds the client arguments for a subcommand against the channel.
// Public access is requested only when publishing to the default registry.
func Args(ch domain.ReleaseChannel, sub string) []string {
	args := []string{sub}
	if sub == "publish" && ch.Registry == "" {
		args = append(args, "--access", "public")
	}
	if ch.Registry != "" {
		args = append(args, "--registry", ch.Registry)
	}
	return args
}

func lastLine(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r", ""), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
