package logger

// ErrorEntry exposes errorEntry for black-box tests.
type ErrorEntry = errorEntry

var (
	CollectErrorEntries = collectErrorEntries
	FormatErrorEntries  = formatErrorEntries
)
