// Package output provides utilities for creating termenv.Output with consistent
// color profile and TTY handling across the CLI.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// NoColor reports whether the user disabled colors through NO_COLOR.
func NoColor() bool {
	return os.Getenv("NO_COLOR") != ""
}

// ColorProfile returns the color profile for terminals.
// NO_COLOR forces Ascii; otherwise the terminal's capabilities are detected.
func ColorProfile() termenv.Profile {
	if NoColor() {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// ColorProfileANSI returns the color profile for CI logs.
// NO_COLOR forces Ascii; otherwise plain ANSI is used for broad compatibility.
func ColorProfileANSI() termenv.Profile {
	if NoColor() {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// New creates a new termenv.Output using the detected terminal profile.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	return NewWithProfile(w, ColorProfile, opts...)
}

// NewWithProfile creates a new termenv.Output with a custom profile selector.
func NewWithProfile(w io.Writer, profileFn func() termenv.Profile, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(profileFn()),
		termenv.WithTTY(true),
	)

	return termenv.NewOutput(w, opts...)
}
