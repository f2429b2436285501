package prompt

import (
	"context"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
)

// Defaults answers every question without asking: confirmations take their
// default, subsets are empty and single choices take the first option.
// Values only a person can supply are unavailable.
type Defaults struct{}

// ChooseSubset chooses nothing.
func (Defaults) ChooseSubset(context.Context, string, []ports.Option) ([]string, error) {
	return nil, nil
}

// Confirm returns def.
func (Defaults) Confirm(_ context.Context, _ string, def bool) (bool, error) {
	return def, nil
}

// SelectOne returns the first option.
func (Defaults) SelectOne(_ context.Context, title string, options []ports.Option) (string, error) {
	if len(options) == 0 {
		return "", unavailable(title)
	}
	return options[0].Value, nil
}

func (Defaults) CollectSecret(_ context.Context, title string, _ func(string) error) (string, error) {
	return "", unavailable(title)
}

func (Defaults) Input(_ context.Context, title string, _ func(string) error) (string, error) {
	return "", unavailable(title)
}

// Disabled fails every question. It is used when no terminal is attached.
type Disabled struct{}

func (Disabled) ChooseSubset(_ context.Context, title string, _ []ports.Option) ([]string, error) {
	return nil, unavailable(title)
}

func (Disabled) Confirm(_ context.Context, title string, _ bool) (bool, error) {
	return false, unavailable(title)
}

func (Disabled) SelectOne(_ context.Context, title string, _ []ports.Option) (string, error) {
	return "", unavailable(title)
}

func (Disabled) CollectSecret(_ context.Context, title string, _ func(string) error) (string, error) {
	return "", unavailable(title)
}

func (Disabled) Input(_ context.Context, title string, _ func(string) error) (string, error) {
	return "", unavailable(title)
}

func unavailable(title string) error {
	return domain.Annotate(domain.ErrPromptUnavailable, "question", title)
}
