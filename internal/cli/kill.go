package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/rileyhilliard/resmon/internal/procctl"
	"github.com/rileyhilliard/resmon/internal/util"
	"github.com/spf13/cobra"
)

// killOptions holds the kill command flags.
type killOptions struct {
	Force bool
	Yes   bool
	JSON  bool
}

var killOpts killOptions

// terminateAll and confirmPrompt are swapped out in tests.
var (
	terminateAll  = procctl.TerminateAll
	confirmPrompt = huhConfirm
)

var killCmd = &cobra.Command{
	Use:   "kill <pid>...",
	Short: "Terminate processes",
	Long: `Ask one or more processes to terminate.

By default each process gets a polite terminate signal. --force kills it
outright. On a terminal you are asked to confirm first; scripts must pass
--yes. A process that already exited or belongs to another user is reported
and the rest are still handled.

Examples:
  resmon kill 4242
  resmon kill 4242 4243 --force
  resmon kill 4242 --yes --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return killCommand(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, killOpts)
	},
}

func init() {
	killCmd.Flags().BoolVarP(&killOpts.Force, "force", "f", false, "kill immediately instead of asking the process to exit")
	killCmd.Flags().BoolVarP(&killOpts.Yes, "yes", "y", false, "skip the confirmation prompt")
	killCmd.Flags().BoolVar(&killOpts.JSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(killCmd)
}

// KillOutput is one outcome in `resmon kill --json`.
type KillOutput struct {
	PID    int32  `json:"pid"`
	Name   string `json:"name,omitempty"`
	Action string `json:"action"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// killCommand confirms, terminates each pid and reports every outcome.
// It exits non-zero if any termination failed.
func killCommand(ctx context.Context, out, errOut io.Writer, args []string, opts killOptions) error {
	machineMode = opts.JSON

	pids, err := ParsePIDs(args)
	if err != nil {
		return err
	}

	if !opts.Yes {
		if !stdinIsTerminal() {
			return errors.New(errors.ErrProcess,
				"Refusing to terminate processes without confirmation",
				"Pass --yes when running non-interactively.")
		}
		ok, err := confirmPrompt(killPromptTitle(pids, opts.Force))
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrUI,
				"Failed to get confirmation",
				"Pass --yes to skip the prompt.")
		}
		if !ok {
			fmt.Fprintln(errOut, mutedStyle.Render("Cancelled."))
			return nil
		}
	}

	results := terminateAll(ctx, pids, opts.Force)
	failed := procctl.Failed(results)

	if opts.JSON {
		outputs := make([]KillOutput, len(results))
		for i, r := range results {
			outputs[i] = KillOutput{PID: r.PID, Name: r.Name, Action: string(r.Action), OK: r.OK()}
			if r.Err != nil {
				outputs[i].Error = errors.Summary(r.Err)
			}
		}
		if err := writeJSONEnvelope(out, JSONEnvelope{Success: len(failed) == 0, Data: outputs}); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.OK() {
				printOK(out, r.String())
			} else {
				printFail(errOut, r.Err)
			}
		}
	}

	if len(failed) > 0 {
		return errors.NewExitError(1)
	}
	return nil
}

// killPromptTitle describes what is about to happen.
func killPromptTitle(pids []int32, force bool) string {
	ids := make([]string, len(pids))
	for i, pid := range pids {
		ids[i] = fmt.Sprintf("%d", pid)
	}
	verb := "Terminate"
	if force {
		verb = "Force kill"
	}
	noun := util.Pluralize(len(pids), "process", "processes")
	return fmt.Sprintf("%s %s %s?", verb, noun, strings.Join(ids, ", "))
}

// huhConfirm shows a yes/no prompt defaulting to no.
func huhConfirm(title string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}
