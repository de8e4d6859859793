package monitor

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/resmon/internal/metrics"
)

// DriveRow is one readable volume as shown on the drives tab.
type DriveRow struct {
	Volume metrics.Volume
	Usage  metrics.VolumeUsage
}

// Title returns "device (mountpoint)".
func (d DriveRow) Title() string {
	return d.Volume.Device + " (" + d.Volume.Mountpoint + ")"
}

// DriveRows pairs a drive list with one cycle's usage readings. Volumes
// without a reading are skipped, as are excluded filesystem types.
func DriveRows(volumes []metrics.Volume, usage map[string]metrics.VolumeUsage, exclude []string) []DriveRow {
	rows := make([]DriveRow, 0, len(volumes))
	for _, v := range volumes {
		if slices.Contains(exclude, v.Fstype) {
			continue
		}
		u, ok := usage[v.Mountpoint]
		if !ok || u.Total == 0 {
			continue
		}
		rows = append(rows, DriveRow{Volume: v, Usage: u})
	}
	return rows
}

// driveRows uses the last drive-list event when one has arrived, otherwise
// the snapshot's own list.
func (m Model) driveRows() []DriveRow {
	if m.snap == nil {
		return nil
	}
	volumes := m.volumes
	if !m.haveDrives {
		volumes = m.snap.Volumes
	}
	return DriveRows(volumes, m.snap.DiskUsage, m.opts.ExcludeFstypes)
}

// renderDrives renders each volume as a title, a usage bar and a
// "used/total (pct%)" line. Usage above the critical threshold renders in
// the critical color.
func (m Model) renderDrives() string {
	rows := m.driveRows()
	if len(rows) == 0 {
		return MutedStyle.Render("  No readable drives")
	}

	width := m.width - 4
	if width < 10 {
		width = 10
	}
	driveTitle := lipgloss.NewStyle().Foreground(ColorTextPrimary).Bold(true)

	var b strings.Builder
	for i, d := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		pct := d.Usage.Percent()
		usageStyle := LabelStyle
		if pct > m.opts.CriticalPercent {
			usageStyle = StatusErrorStyle
		}
		b.WriteString("  " + driveTitle.Render(d.Title()) + "\n")
		b.WriteString("  " + UsageBar(width, pct, m.opts.CriticalPercent) + "\n")
		b.WriteString("  " + usageStyle.Render(metrics.FormatUsage(d.Usage)) + "\n")
	}
	return b.String()
}
