package cli

import (
	"context"
	"io"
	"strings"

	"github.com/rileyhilliard/resmon/internal/procctl"
	"github.com/spf13/cobra"
)

var startJSON bool

// startProcess is swapped out in tests.
var startProcess = procctl.Start

var startCmd = &cobra.Command{
	Use:   "start <command line>",
	Short: "Start a detached process",
	Long: `Start a command through the system shell, detached from resmon.

The process keeps running after resmon exits and shows up in the process
table on the next sample.

Examples:
  resmon start "sleep 600"
  resmon start python3 -m http.server 8080`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return startCommand(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), startJSON)
	},
}

func init() {
	startCmd.Flags().BoolVar(&startJSON, "json", false, "output in JSON format")
	// Everything after the command name belongs to it, flags included.
	startCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(startCmd)
}

// startCommand launches commandLine and reports the new pid.
func startCommand(ctx context.Context, out io.Writer, commandLine string, asJSON bool) error {
	machineMode = asJSON

	res, err := startProcess(ctx, commandLine)
	if err != nil {
		return err
	}
	if asJSON {
		return WriteJSONSuccess(out, res)
	}
	printOK(out, res.String())
	return nil
}
