package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess = "✓" // Action succeeded
	SymbolFail    = "✗" // Action failed
	SymbolPending = "○" // Not yet run
	SymbolSkipped = "⊘" // Declined or skipped
)
