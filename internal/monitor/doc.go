// Package monitor implements the live host telemetry dashboard.
//
// The dashboard is a Bubble Tea program that consumes sampler events through
// a sampler.ChannelConsumer. It never reads metrics itself: every redraw is
// driven by a Snapshot or a drive-list change delivered by the sampler.
//
// # Architecture
//
// The package follows The Elm Architecture (Model-Update-View):
//
//   - Model: the latest snapshot, one series buffer per chart, the process
//     table, the filter and the active prompt
//   - Update: keystrokes, mouse clicks, sampler events and action results
//   - View: renders the current state to a string
//
// # Message Flow
//
//  1. waitForEvent blocks on the consumer channel in a command goroutine
//  2. eventMsg arrives; snapshots are pushed into the chart buffers and the
//     process table is rebuilt through the filter
//  3. View re-renders and waitForEvent is scheduled again
//
// Start and terminate requests run as commands and report back with an
// actionMsg, shown in the status line.
//
// # Tabs
//
//	Processes - filterable, sortable process table
//	Graphs    - aggregate CPU, memory and per-core braille charts
//	Drives    - usage bar per readable volume
//	System    - host information in a scrollable viewport
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C      - Quit
//	tab, 1-4, i    - Switch tab
//	/              - Edit the filter
//	m              - Toggle substring/exact matching
//	s              - Cycle sort order (name/pid/cpu/mem/threads)
//	n              - Start a process
//	x / X          - Terminate / force kill the selected process
//	esc            - Clear the filter
//	?              - Toggle help overlay
package monitor
