package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/resmon/internal/metrics"
	"github.com/rileyhilliard/resmon/internal/series"
)

const matchZoneID = "match-mode"

func tabZoneID(t Tab) string {
	return fmt.Sprintf("tab-%d", t)
}

func coreLabel(i int) string {
	return fmt.Sprintf("CPU %d", i)
}

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.snap == nil {
		return m.renderWaiting()
	}

	sections := []string{
		m.renderHeader(),
		m.renderGauges(),
		m.renderTabs(),
		clipLines(m.renderContent(), m.contentHeight()),
		m.renderStatusLine(),
		m.renderFooter(),
	}
	return strings.Join(sections, "\n")
}

// renderWaiting is shown until the first snapshot arrives.
func (m Model) renderWaiting() string {
	msg := m.spinner.View() + " " + LabelStyle.Render("Reading system metrics...")
	if m.width == 0 || m.height == 0 {
		return msg
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}

// renderHeader renders the title line with summary stats.
func (m Model) renderHeader() string {
	title := titleStyle.Render("resmon")

	parts := []string{
		fmt.Sprintf("%s processes", humanize.Comma(int64(len(m.snap.Processes)))),
		fmt.Sprintf("%d cores", len(m.snap.PerCoreCPU)),
		"updated " + humanize.Time(m.lastUpdate),
	}
	if m.host != nil && m.host.Hostname != "" {
		parts = append([]string{m.host.Hostname}, parts...)
	}
	stats := LabelStyle.Render(" | " + strings.Join(parts, " | "))

	return HeaderStyle.Render(title + stats)
}

// renderGauges renders the CPU, memory and disk gauges.
func (m Model) renderGauges() string {
	snap := m.snap

	cpu := gauge("CPU", snap.AggregateCPUPercent, !snap.Failed(metrics.CategoryCPU))
	if !snap.Failed(metrics.CategoryCPU) {
		cpu += " " + RenderColoredMiniSparkline(m.cpu.Values(), 12)
	}
	mem := gauge("Mem", snap.MemoryPercent, !snap.Failed(metrics.CategoryMemory))

	diskLabel := "Disk"
	if dev := primaryDevice(snap.Volumes, snap.PrimaryVolume); dev != "" {
		diskLabel = fmt.Sprintf("Disk (%s)", dev)
	}
	diskOK := !snap.Failed(metrics.CategoryDisk) && snap.PrimaryVolume != ""
	disk := gauge(diskLabel, snap.DiskPercent, diskOK)

	return " " + strings.Join([]string{cpu, mem, disk}, "   ")
}

func gauge(label string, percent float64, ok bool) string {
	l := LabelStyle.Render(label + " ")
	if !ok {
		return l + MutedStyle.Render("n/a")
	}
	value := lipgloss.NewStyle().Foreground(MetricColor(percent)).Render(fmt.Sprintf("%5.1f%%", percent))
	return l + ProgressBar(10, percent) + " " + value
}

// primaryDevice returns the device backing the primary mountpoint.
func primaryDevice(volumes []metrics.Volume, mountpoint string) string {
	for _, v := range volumes {
		if v.Mountpoint == mountpoint {
			return v.Device
		}
	}
	return ""
}

// renderTabs renders the clickable tab bar.
func (m Model) renderTabs() string {
	tabs := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%d %s", t+1, t)
		style := tabStyle
		if t == m.tab {
			style = activeTabStyle
		}
		tabs = append(tabs, m.zones.Mark(tabZoneID(t), style.Render(label)))
	}
	return " " + strings.Join(tabs, " ")
}

func (m Model) renderContent() string {
	switch m.tab {
	case TabGraphs:
		return m.renderGraphs()
	case TabDrives:
		return m.renderDrives()
	case TabSystem:
		return m.sysinfo.View()
	default:
		return m.renderProcesses()
	}
}

func (m Model) renderProcesses() string {
	if len(m.rows) == 0 {
		if m.snap.Failed(metrics.CategoryProcesses) {
			return MutedStyle.Render("  Process list unavailable")
		}
		return MutedStyle.Render("  No processes match the filter")
	}
	return m.table.View()
}

// renderGraphs lays out the aggregate CPU and memory charts on top and one
// chart per core below in an OptimalGrid arrangement.
func (m Model) renderGraphs() string {
	width := m.width
	if width < 20 {
		width = 20
	}
	height := m.contentHeight()

	topHeight := height / 3
	if topHeight < 4 {
		topHeight = 4
	}
	half := width / 2
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		renderPanel(m.cpu, half, topHeight),
		renderPanel(m.mem, width-half, topHeight),
	)

	if len(m.cores) == 0 {
		return top
	}

	rows, cols := OptimalGrid(len(m.cores))
	cellWidth := width / cols
	cellHeight := (height - topHeight) / rows
	if cellHeight < 3 {
		cellHeight = 3
	}

	grid := []string{top}
	for r := 0; r < rows; r++ {
		var cells []string
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i >= len(m.cores) {
				break
			}
			cells = append(cells, renderPanel(m.cores[i], cellWidth, cellHeight))
		}
		grid = append(grid, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, grid...)
}

// renderPanel draws one chart inside a bordered panel of the given outer
// size. The latest value is shown in the header.
func renderPanel(b *series.Buffer, width, height int) string {
	if width < 10 || height < 3 {
		return ""
	}
	lines := []string{SectionHeader(b.Label(), fmt.Sprintf("%.1f%%", b.Last()), width)}
	for _, l := range strings.Split(RenderChart(b, width-4, height-2), "\n") {
		lines = append(lines, SectionContentLine(l, width))
	}
	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}

// renderStatusLine shows the active prompt, or the last action result and
// the filter summary.
func (m Model) renderStatusLine() string {
	switch m.mode {
	case modeFilter:
		return " " + m.filterInput.View() + "  " + m.renderMatchMode()
	case modeStart:
		return " " + m.startInput.View()
	case modeConfirmKill:
		if t := m.pendingKill; t != nil {
			verb := "Terminate"
			if t.Force {
				verb = "Force kill"
			}
			return " " + StatusErrorStyle.Render(fmt.Sprintf("%s %s (%d)? [y/N]", verb, t.Name, t.PID))
		}
	}

	var parts []string
	if m.status != "" {
		style := StatusOKStyle
		if m.statusErr {
			style = StatusErrorStyle
		}
		parts = append(parts, style.Render(m.status))
	}
	if m.filterText != "" {
		summary := fmt.Sprintf("filter: %s  %s of %s",
			m.filterText,
			humanize.Comma(int64(len(m.rows))),
			humanize.Comma(int64(len(m.snap.Processes))))
		parts = append(parts, LabelStyle.Render(summary))
	}
	parts = append(parts, m.renderMatchMode(), MutedStyle.Render("sort: "+m.sortOrder.String()))
	return " " + strings.Join(parts, "  ")
}

func (m Model) renderMatchMode() string {
	return m.zones.Mark(matchZoneID, promptStyle.Render("["+m.matchMode.String()+"]"))
}

// renderFooter renders the key hints.
func (m Model) renderFooter() string {
	switch m.mode {
	case modeFilter:
		return FooterStyle.Render("enter apply | esc cancel")
	case modeStart:
		return FooterStyle.Render("enter run | esc cancel")
	case modeConfirmKill:
		return FooterStyle.Render("y confirm | any other key cancels")
	}
	return FooterStyle.Render(m.help.ShortHelpView(keys.ShortHelp()))
}

// clipLines keeps at most n lines of s.
func clipLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
