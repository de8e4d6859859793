package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rileyhilliard/resmon/internal/monitor"
	"github.com/rileyhilliard/resmon/internal/ui"
	"github.com/spf13/cobra"
)

var sysinfoJSON bool

var sysinfoCmd = &cobra.Command{
	Use:   "sysinfo",
	Short: "Print host information",
	Long: `Print hostname, OS, kernel, uptime, CPU model, core count and memory.

Examples:
  resmon sysinfo
  resmon sysinfo --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sysinfoCommand(cmd.Context(), cmd.OutOrStdout(), sysinfoJSON)
	},
}

func init() {
	sysinfoCmd.Flags().BoolVar(&sysinfoJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(sysinfoCmd)
}

// sysinfoCommand reads host information once and prints it.
func sysinfoCommand(ctx context.Context, out io.Writer, asJSON bool) error {
	machineMode = asJSON

	info, err := newSource().HostInfo(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		return WriteJSONSuccess(out, info)
	}
	fmt.Fprint(out, ui.RenderKeyValues("System Information", monitor.SysInfoLines(info)))
	return nil
}
