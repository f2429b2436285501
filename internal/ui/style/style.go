// Package style provides shared UI styling primitives including brand colors,
// icons and the prompt theme.
package style

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Brand Colors.
var (
	Copper = lipgloss.Color("#C2703D")
	Slate  = lipgloss.Color("#667085")
	Ink    = lipgloss.Color("#0B0F19")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
	Cyan   = lipgloss.Color("#0EA5E9")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "»"
	Dot     = "●"
	Circle  = "○"
)

// Theme returns the prompt theme in the brand colors.
func Theme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderForeground(Slate)
	t.Focused.Card = t.Focused.Base
	t.Focused.Title = t.Focused.Title.Foreground(Copper).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(Slate)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(Copper)
	t.Focused.MultiSelectSelector = t.Focused.MultiSelectSelector.Foreground(Copper)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(Green)
	t.Focused.SelectedPrefix = t.Focused.SelectedPrefix.Foreground(Green)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(Red)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(Red)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(Copper).Foreground(Ink)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())
	t.Blurred.Card = t.Blurred.Base

	return t
}
