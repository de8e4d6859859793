// Package ui renders the non-interactive output of resmon's one-shot
// commands (ps, drives, sysinfo, kill, start).
//
// The full-screen dashboard lives in internal/monitor; this package covers
// the plain terminal output around it:
//
//	RenderSimpleTable - process and drive listings
//	RenderKeyValues   - aligned label/value blocks (sysinfo)
//	RenderUsageBar    - [████░░░░]  50% bars colored by threshold
//	Spinner           - "Sampling..." indicator while a CPU window elapses
//
// Colors are ANSI codes so output degrades cleanly in plain terminals.
// DisableColors switches lipgloss to monochrome for --no-color and NO_COLOR.
package ui
