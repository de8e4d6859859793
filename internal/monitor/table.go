package monitor

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/resmon/internal/filter"
	"github.com/rileyhilliard/resmon/internal/metrics"
	"golang.org/x/text/cases"
)

// Fixed column widths; the name column takes whatever is left.
const (
	colPID     = 8
	colThreads = 8
	colUser    = 14
	colMemory  = 12
	colCPU     = 8
	minColName = 12
	cellPad    = 2
)

func processColumns(width int) []table.Column {
	name := width - (colPID + colThreads + colUser + colMemory + colCPU) - 6*cellPad
	if name < minColName {
		name = minColName
	}
	return []table.Column{
		{Title: "PID", Width: colPID},
		{Title: "Name", Width: name},
		{Title: "Threads", Width: colThreads},
		{Title: "User", Width: colUser},
		{Title: "Memory", Width: colMemory},
		{Title: "CPU", Width: colCPU},
	}
}

func newProcessTable() table.Model {
	t := table.New(
		table.WithColumns(processColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Foreground(ColorTextSecondary).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(ColorDarkBg).
		Background(ColorAccent).
		Bold(true)
	t.SetStyles(s)
	return t
}

// layoutTable sizes the table to the content area. The header and its
// border take two rows.
func (m *Model) layoutTable(width, height int) {
	m.table.SetColumns(processColumns(width))
	m.table.SetWidth(width)
	h := height - 2
	if h < 1 {
		h = 1
	}
	m.table.SetHeight(h)
}

// refreshTable rebuilds the visible rows from the latest snapshot and the
// current filter and sort, keeping the selected PID selected when it is
// still visible.
func (m *Model) refreshTable() {
	if m.snap == nil {
		return
	}

	visible := filter.Apply(m.snap.Processes, m.expr)
	rows := visible[:0]
	for _, p := range visible {
		if p.Name != "" {
			rows = append(rows, p)
		}
	}
	SortProcesses(rows, m.sortOrder)
	m.rows = rows

	tableRows := make([]table.Row, len(rows))
	for i, p := range rows {
		tableRows[i] = processRow(p)
	}
	m.table.SetRows(tableRows)

	if len(rows) == 0 {
		return
	}
	cursor := m.table.Cursor()
	for i, p := range rows {
		if p.PID == m.selectedPID {
			cursor = i
			break
		}
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	m.table.SetCursor(cursor)
	m.selectedPID = rows[cursor].PID
}

func processRow(p metrics.ProcessRecord) table.Row {
	return table.Row(ProcessCells(p))
}

// ProcessCells formats a record as the process table shows it:
// pid, name, threads, user, memory and CPU.
func ProcessCells(p metrics.ProcessRecord) []string {
	return []string{
		fmt.Sprintf("%d", p.PID),
		p.Name,
		humanize.Comma(int64(p.Threads)),
		p.User,
		fmt.Sprintf("%.2f MB", p.ResidentMemoryMB),
		fmt.Sprintf("%.1f%%", p.CPUPercent),
	}
}

// syncSelection records the PID under the cursor after navigation.
func (m *Model) syncSelection() {
	if c := m.table.Cursor(); c >= 0 && c < len(m.rows) {
		m.selectedPID = m.rows[c].PID
	}
}

// selected returns the process under the cursor.
func (m *Model) selected() (metrics.ProcessRecord, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.rows) {
		return metrics.ProcessRecord{}, false
	}
	return m.rows[c], true
}

// SortProcesses orders records in place. Name sorts case-insensitively and
// PID ascending; the resource columns put the heaviest process first. Ties
// fall back to PID so the order is stable across refreshes.
func SortProcesses(records []metrics.ProcessRecord, order SortOrder) {
	folder := cases.Fold()
	keys := make(map[int32]string, len(records))
	if order == SortByName {
		for _, r := range records {
			keys[r.PID] = folder.String(r.Name)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch order {
		case SortByName:
			if keys[a.PID] != keys[b.PID] {
				return keys[a.PID] < keys[b.PID]
			}
		case SortByCPU:
			if a.CPUPercent != b.CPUPercent {
				return a.CPUPercent > b.CPUPercent
			}
		case SortByMem:
			if a.ResidentMemoryMB != b.ResidentMemoryMB {
				return a.ResidentMemoryMB > b.ResidentMemoryMB
			}
		case SortByThreads:
			if a.Threads != b.Threads {
				return a.Threads > b.Threads
			}
		}
		return a.PID < b.PID
	})
}
