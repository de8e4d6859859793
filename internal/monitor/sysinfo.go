package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/resmon/internal/metrics"
)

var sysKeyStyle = lipgloss.NewStyle().
	Foreground(ColorTextSecondary).
	Width(14)

// SysInfoLines returns the label/value pairs of the system information
// view in display order. Empty values are omitted.
func SysInfoLines(info metrics.HostInfo) [][2]string {
	platform := strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
	kernel := info.KernelVersion
	if info.KernelArch != "" {
		kernel = strings.TrimSpace(kernel + " (" + info.KernelArch + ")")
	}

	lines := [][2]string{
		{"Hostname", info.Hostname},
		{"OS", info.OS},
		{"Platform", platform},
		{"Kernel", kernel},
		{"Uptime", FormatUptime(info.Uptime)},
	}
	if !info.BootTime.IsZero() {
		lines = append(lines, [2]string{"Booted",
			info.BootTime.Format("2006-01-02 15:04") + " (" + humanize.Time(info.BootTime) + ")"})
	}
	lines = append(lines,
		[2]string{"CPU", info.CPUModel},
		[2]string{"Cores", countOrEmpty(uint64(info.LogicalCores))},
		[2]string{"Memory", sizeOrEmpty(info.MemoryTotal)},
		[2]string{"Processes", countOrEmpty(info.Procs)},
	)

	out := lines[:0]
	for _, l := range lines {
		if l[1] != "" {
			out = append(out, l)
		}
	}
	return out
}

// FormatUptime renders a duration as "3d 4h 12m", dropping leading zero
// units.
func FormatUptime(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Minute)
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	mins := int(d % time.Hour / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

func countOrEmpty(n uint64) string {
	if n == 0 {
		return ""
	}
	return humanize.Comma(int64(n))
}

func sizeOrEmpty(n uint64) string {
	if n == 0 {
		return ""
	}
	return metrics.FormatSize(n)
}

// renderSysInfo renders the system tab contents for the viewport.
func (m Model) renderSysInfo() string {
	if m.host == nil {
		return MutedStyle.Render("  Loading system information...")
	}

	var b strings.Builder
	b.WriteString("  " + titleStyle.Render("System Information") + "\n\n")
	for _, l := range SysInfoLines(*m.host) {
		b.WriteString("  " + sysKeyStyle.Render(l[0]) + ValueStyle.Render(l[1]) + "\n")
	}
	return b.String()
}
