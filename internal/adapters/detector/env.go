// Package detector decides whether the orchestrator may ask questions on the terminal.
package detector

import (
	"os"

	"golang.org/x/term"
)

// PromptMode selects how user decisions are obtained.
type PromptMode int

const (
	// ModeAuto defers the decision to environment detection.
	ModeAuto PromptMode = iota
	// ModeInteractive asks the user through terminal forms.
	ModeInteractive
	// ModeDefaults answers every question with its default (--yes).
	ModeDefaults
	// ModeDisabled fails any question that needs an answer.
	ModeDisabled
)

func (m PromptMode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeDefaults:
		return "defaults"
	case ModeDisabled:
		return "disabled"
	default:
		return "auto"
	}
}

var isTerminal = term.IsTerminal

// DetectEnvironment returns ModeInteractive when both stdin and stdout are
// terminals and no CI environment variable is set, ModeDisabled otherwise.
func DetectEnvironment() PromptMode {
	tty := isTerminal(int(os.Stdin.Fd())) && isTerminal(int(os.Stdout.Fd()))

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !tty || isCI {
		return ModeDisabled
	}
	return ModeInteractive
}

// ResolveMode applies the --yes flag to the detected mode.
func ResolveMode(detected PromptMode, assumeYes bool) PromptMode {
	if assumeYes {
		return ModeDefaults
	}
	if detected == ModeAuto {
		return DetectEnvironment()
	}
	return detected
}
