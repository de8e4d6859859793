package monitor

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/resmon/internal/filter"
)

// SortOrder defines how the process table is ordered.
type SortOrder int

const (
	SortByName SortOrder = iota
	SortByPID
	SortByCPU
	SortByMem
	SortByThreads
	sortOrderCount
)

// String returns the config/flag spelling of the sort order.
func (s SortOrder) String() string {
	switch s {
	case SortByPID:
		return "pid"
	case SortByCPU:
		return "cpu"
	case SortByMem:
		return "mem"
	case SortByThreads:
		return "threads"
	default:
		return "name"
	}
}

// Next cycles to the next sort order.
func (s SortOrder) Next() SortOrder {
	return (s + 1) % sortOrderCount
}

// ParseSortOrder maps a config/flag value to a SortOrder. Unknown values
// fall back to name.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pid":
		return SortByPID
	case "cpu":
		return SortByCPU
	case "mem", "memory":
		return SortByMem
	case "threads":
		return SortByThreads
	default:
		return SortByName
	}
}

// Tab identifies a dashboard page.
type Tab int

const (
	TabProcesses Tab = iota
	TabGraphs
	TabDrives
	TabSystem
	tabCount
)

var tabNames = map[Tab]string{
	TabProcesses: "Processes",
	TabGraphs:    "Graphs",
	TabDrives:    "Drives",
	TabSystem:    "System",
}

func (t Tab) String() string {
	return tabNames[t]
}

// inputMode is the modal state of the dashboard. Only one prompt is active
// at a time.
type inputMode int

const (
	modeNormal inputMode = iota
	modeFilter
	modeStart
	modeConfirmKill
)

// keyMap holds the dashboard bindings. It implements help.KeyMap so the
// footer and the help overlay are generated from the same definitions.
type keyMap struct {
	Quit      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Tab1      key.Binding
	Tab2      key.Binding
	Tab3      key.Binding
	Tab4      key.Binding
	SysInfo   key.Binding
	Filter    key.Binding
	MatchMode key.Binding
	Sort      key.Binding
	Start     key.Binding
	Terminate key.Binding
	Kill      key.Binding
	Up        key.Binding
	Down      key.Binding
	Clear     key.Binding
	Help      key.Binding
}

// ShortHelp returns the bindings shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.NextTab, k.Filter, k.Sort, k.Terminate, k.Quit}
}

// FullHelp returns the groups shown in the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Tab1, k.Tab2, k.Tab3, k.Tab4, k.SysInfo},
		{k.Up, k.Down, k.Filter, k.MatchMode, k.Sort, k.Clear},
		{k.Start, k.Terminate, k.Kill, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	PrevTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
	Tab1:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "processes")),
	Tab2:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "graphs")),
	Tab3:      key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "drives")),
	Tab4:      key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "system")),
	SysInfo:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "system info")),
	Filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	MatchMode: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "match mode")),
	Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Start:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "start process")),
	Terminate: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "terminate")),
	Kill:      key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "force kill")),
	Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "select previous")),
	Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/dn", "select next")),
	Clear:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// HandleKeyMsg processes keyboard input outside of prompts.
// Returns true if the key was handled, false if it should reach the table.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	// Help toggle takes priority
	if key.Matches(msg, keys.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp {
		if msg.String() == "esc" {
			m.showHelp = false
			return true, nil
		}
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return true, tea.Quit
		}
		return true, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return true, tea.Quit
	case key.Matches(msg, keys.NextTab):
		m.setTab((m.tab + 1) % tabCount)
	case key.Matches(msg, keys.PrevTab):
		m.setTab((m.tab - 1 + tabCount) % tabCount)
	case key.Matches(msg, keys.Tab1):
		m.setTab(TabProcesses)
	case key.Matches(msg, keys.Tab2):
		m.setTab(TabGraphs)
	case key.Matches(msg, keys.Tab3):
		m.setTab(TabDrives)
	case key.Matches(msg, keys.Tab4), key.Matches(msg, keys.SysInfo):
		m.setTab(TabSystem)
		return true, m.hostInfoCmd()
	case key.Matches(msg, keys.Filter):
		m.setTab(TabProcesses)
		return true, m.openFilter()
	case key.Matches(msg, keys.MatchMode):
		m.toggleMatchMode()
	case key.Matches(msg, keys.Sort):
		m.sortOrder = m.sortOrder.Next()
		m.refreshTable()
	case key.Matches(msg, keys.Start):
		return true, m.openStartPrompt()
	case key.Matches(msg, keys.Terminate):
		m.confirmTerminate(false)
	case key.Matches(msg, keys.Kill):
		m.confirmTerminate(true)
	case key.Matches(msg, keys.Clear):
		if m.filterText != "" {
			m.setFilter("")
		}
		m.clearStatus()
	default:
		return false, nil
	}
	return true, nil
}

// handlePromptKey routes keys while a prompt is active.
func (m *Model) handlePromptKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch m.mode {
	case modeFilter:
		switch msg.String() {
		case "enter":
			m.mode = modeNormal
			m.filterInput.Blur()
			return true, nil
		case "esc":
			m.mode = modeNormal
			m.filterInput.Blur()
			m.filterInput.SetValue(m.savedFilter)
			m.setFilter(m.savedFilter)
			return true, nil
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.setFilter(m.filterInput.Value())
		return true, cmd

	case modeStart:
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.startInput.Value())
			m.mode = modeNormal
			m.startInput.Blur()
			m.startInput.Reset()
			if line == "" {
				return true, nil
			}
			return true, m.startCmd(line)
		case "esc":
			m.mode = modeNormal
			m.startInput.Blur()
			m.startInput.Reset()
			return true, nil
		}
		var cmd tea.Cmd
		m.startInput, cmd = m.startInput.Update(msg)
		return true, cmd

	case modeConfirmKill:
		target := m.pendingKill
		m.mode = modeNormal
		m.pendingKill = nil
		switch msg.String() {
		case "y", "Y", "enter":
			if target != nil {
				return true, m.terminateCmd(*target)
			}
		}
		m.clearStatus()
		return true, nil
	}
	return false, nil
}

func (m *Model) toggleMatchMode() {
	m.matchMode = m.matchMode.Toggle()
	m.expr = filter.Compile(m.filterText, m.matchMode)
	m.refreshTable()
}
