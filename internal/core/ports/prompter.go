package ports

import "context"

// Option is one entry offered by a selection prompt.
type Option struct {
	Label       string
	Description string
	Value       string
}

// Prompter is the decision point for choices that need a human.
// Implementations return domain.ErrPromptUnavailable when no one can answer.
//
//go:generate mockgen -source=prompter.go -destination=mocks/mock_prompter.go -package=mocks
type Prompter interface {
	// ChooseSubset lets the user pick any number of options and returns the chosen values.
	ChooseSubset(ctx context.Context, title string, options []Option) ([]string, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, title string, def bool) (bool, error)

	// SelectOne lets the user pick exactly one option and returns its value.
	SelectOne(ctx context.Context, title string, options []Option) (string, error)

	// CollectSecret reads a value without echoing it.
	CollectSecret(ctx context.Context, title string, validate func(string) error) (string, error)

	// Input reads a free-text value.
	Input(ctx context.Context, title string, validate func(string) error) (string, error)
}
