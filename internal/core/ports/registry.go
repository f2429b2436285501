package ports

import (
	"context"
	"io"

	"go.trai.ch/crate/internal/core/domain"
)

// Registry is the package registry client used by the release pipeline.
//
//go:generate mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks
type Registry interface {
	// Whoami returns the authenticated principal for the channel, or "" when not logged in.
	Whoami(ctx context.Context, ch domain.ReleaseChannel) (string, error)

	// Logout ends the current session for the channel.
	Logout(ctx context.Context, ch domain.ReleaseChannel) error

	// StartLogin spawns the interactive login for the channel.
	StartLogin(ctx context.Context, ch domain.ReleaseChannel) (LoginSession, error)

	// Publish uploads the package in dir to the channel. Client output is streamed to out.
	Publish(ctx context.Context, ch domain.ReleaseChannel, dir string, out io.Writer) error
}

// LoginSession is a running interactive login subprocess.
// Reads return the subprocess output; writes feed its input.
type LoginSession interface {
	io.ReadWriter

	// Wait blocks until the subprocess exits and returns nil on exit code 0.
	Wait() error

	// Close terminates the subprocess if it is still running and releases its resources.
	Close() error
}
