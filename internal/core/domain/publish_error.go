package domain

import "fmt"

// PublishError reports a failed registry interaction for a channel.
// It matches ErrPublish under errors.Is and unwraps to the client failure.
type PublishError struct {
	Channel string
	// Package is empty when the failure happened before any upload, e.g. during login.
	Package string
	Err     error
}

// NewPublishError returns a PublishError for the channel and package.
func NewPublishError(channel, pkg string, err error) *PublishError {
	return &PublishError{Channel: channel, Package: pkg, Err: err}
}

// Message returns the error message without the cause chain.
func (e *PublishError) Message() string {
	if e.Package == "" {
		return fmt.Sprintf("release to channel %q failed", e.Channel)
	}
	return fmt.Sprintf("publish of package %q to channel %q failed", e.Package, e.Channel)
}

func (e *PublishError) Error() string {
	if e.Err == nil {
		return e.Message()
	}
	return e.Message() + ": " + e.Err.Error()
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the ErrPublish kind.
func (e *PublishError) Is(target error) bool {
	return target == ErrPublish
}
