package detector

// SetIsTerminal replaces the terminal probe for the duration of a test.
func SetIsTerminal(fn func(fd int) bool) (restore func()) {
	prev := isTerminal
	isTerminal = fn
	return func() { isTerminal = prev }
}
