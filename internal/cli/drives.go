package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/rileyhilliard/resmon/internal/metrics"
	"github.com/rileyhilliard/resmon/internal/monitor"
	"github.com/rileyhilliard/resmon/internal/ui"
	"github.com/spf13/cobra"
)

var drivesJSON bool

var drivesCmd = &cobra.Command{
	Use:   "drives",
	Short: "Print volume usage",
	Long: `Print the usage of every readable mounted volume and exit.

Volumes whose filesystem type is listed in drives.exclude_fstypes are hidden.
Usage above drives.critical_percent is highlighted.

Examples:
  resmon drives
  resmon drives --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return drivesCommand(cmd.Context(), cmd.OutOrStdout(), drivesJSON)
	},
}

func init() {
	drivesCmd.Flags().BoolVar(&drivesJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(drivesCmd)
}

// DriveOutput is one volume in `resmon drives --json`.
type DriveOutput struct {
	Device     string  `json:"device"`
	Mountpoint string  `json:"mountpoint"`
	Fstype     string  `json:"fstype"`
	Total      uint64  `json:"total"`
	Used       uint64  `json:"used"`
	Percent    float64 `json:"percent"`
	Critical   bool    `json:"critical"`
}

const driveBarWidth = 24

// drivesCommand samples volumes once and prints their usage.
func drivesCommand(ctx context.Context, out io.Writer, asJSON bool) error {
	machineMode = asJSON

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	snap, err := sampleOnce(ctx, newSource(), 0)
	if err != nil {
		return err
	}
	if snap.Failed(metrics.CategoryDisk) {
		return errors.New(errors.ErrSource,
			"Couldn't list mounted volumes",
			"Check that the mount table is readable by this user.")
	}

	critical := cfg.Drives.CriticalPercent
	rows := monitor.DriveRows(snap.Volumes, snap.DiskUsage, cfg.Drives.ExcludeFstypes)

	if asJSON {
		drives := make([]DriveOutput, len(rows))
		for i, d := range rows {
			pct := d.Usage.Percent()
			drives[i] = DriveOutput{
				Device:     d.Volume.Device,
				Mountpoint: d.Volume.Mountpoint,
				Fstype:     d.Volume.Fstype,
				Total:      d.Usage.Total,
				Used:       d.Usage.Used,
				Percent:    pct,
				Critical:   pct > critical,
			}
		}
		return WriteJSONSuccess(out, drives)
	}

	if len(rows) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No readable drives."))
		return nil
	}
	fmt.Fprint(out, renderDriveList(rows, critical))
	return nil
}

// renderDriveList prints each volume as a title line followed by a usage
// bar and "used/total (pct%)".
func renderDriveList(rows []monitor.DriveRow, critical float64) string {
	titleWidth := 0
	for _, d := range rows {
		if w := len([]rune(d.Title())); w > titleWidth {
			titleWidth = w
		}
	}

	var b strings.Builder
	for _, d := range rows {
		pct := d.Usage.Percent()
		usage := metrics.FormatUsage(d.Usage)
		if pct > critical {
			usage = failStyle.Render(usage)
		} else {
			usage = mutedStyle.Render(usage)
		}
		fmt.Fprintf(&b, "%s  %s  %s\n",
			ui.PadRight(d.Title(), titleWidth),
			ui.RenderUsageBar(pct, driveBarWidth, critical),
			usage)
	}
	return b.String()
}
