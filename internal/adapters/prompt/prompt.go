// Package prompt implements ports.Prompter with terminal forms.
package prompt

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/huh"
	"go.trai.ch/crate/internal/adapters/detector"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/crate/internal/ui/style"
)

// Option configures a Form prompter.
type Option func(*Form)

// WithInput reads answers from r instead of the terminal.
func WithInput(r io.Reader) Option {
	return func(f *Form) { f.input = r }
}

// WithOutput renders questions to w instead of the terminal.
func WithOutput(w io.Writer) Option {
	return func(f *Form) { f.output = w }
}

// WithAccessible switches to line based prompts that work without cursor control.
func WithAccessible(accessible bool) Option {
	return func(f *Form) { f.accessible = accessible }
}

// Form asks questions through huh forms.
type Form struct {
	input      io.Reader
	output     io.Writer
	accessible bool
	theme      *huh.Theme
}

// NewForm creates a Form prompter using the brand theme.
func NewForm(opts ...Option) *Form {
	f := &Form{theme: style.Theme()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ForMode returns the prompter matching the resolved prompt mode.
func ForMode(mode detector.PromptMode, opts ...Option) ports.Prompter {
	switch detector.ResolveMode(mode, false) {
	case detector.ModeInteractive:
		return NewForm(opts...)
	case detector.ModeDefaults:
		return Defaults{}
	default:
		return Disabled{}
	}
}

// ChooseSubset lets the user tick any number of options.
func (f *Form) ChooseSubset(ctx context.Context, title string, options []ports.Option) ([]string, error) {
	if len(options) == 0 {
		return nil, nil
	}

	var chosen []string
	field := huh.NewMultiSelect[string]().
		Title(title).
		Options(huhOptions(options)...).
		Filterable(false).
		Value(&chosen)

	if err := f.run(ctx, field); err != nil {
		return nil, err
	}
	return chosen, nil
}

// Confirm asks a yes/no question. def is preselected.
func (f *Form) Confirm(ctx context.Context, title string, def bool) (bool, error) {
	answer := def
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&answer)

	if err := f.run(ctx, field); err != nil {
		return false, err
	}
	return answer, nil
}

// SelectOne lets the user pick exactly one option.
func (f *Form) SelectOne(ctx context.Context, title string, options []ports.Option) (string, error) {
	if len(options) == 0 {
		return "", domain.ErrPromptCanceled
	}

	var chosen string
	field := huh.NewSelect[string]().
		Title(title).
		Options(huhOptions(options)...).
		Value(&chosen)

	if err := f.run(ctx, field); err != nil {
		return "", err
	}
	return chosen, nil
}

// CollectSecret reads a masked value.
func (f *Form) CollectSecret(ctx context.Context, title string, validate func(string) error) (string, error) {
	return f.ask(ctx, title, validate, huh.EchoModePassword)
}

// Input reads a free-text value.
func (f *Form) Input(ctx context.Context, title string, validate func(string) error) (string, error) {
	return f.ask(ctx, title, validate, huh.EchoModeNormal)
}

func (f *Form) ask(
	ctx context.Context,
	title string,
	validate func(string) error,
	mode huh.EchoMode,
) (string, error) {
	if validate == nil {
		validate = func(string) error { return nil }
	}

	var value string
	field := huh.NewInput().
		Title(title).
		EchoMode(mode).
		Validate(validate).
		Value(&value)

	if err := f.run(ctx, field); err != nil {
		return "", err
	}
	return value, nil
}

func (f *Form) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(f.theme).
		WithAccessible(f.accessible).
		WithShowHelp(!f.accessible)
	if f.input != nil {
		form = form.WithInput(f.input)
	}
	if f.output != nil {
		form = form.WithOutput(f.output)
	}

	err := form.RunWithContext(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, huh.ErrUserAborted):
		return domain.ErrPromptCanceled
	default:
		return err
	}
}

func huhOptions(options []ports.Option) []huh.Option[string] {
	out := make([]huh.Option[string], len(options))
	for i, o := range options {
		label := o.Label
		if o.Description != "" {
			label += " " + style.Arrow + " " + o.Description
		}
		out[i] = huh.NewOption(label, o.Value)
	}
	return out
}
