package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rileyhilliard/resmon/internal/config"
	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/rileyhilliard/resmon/internal/logger"
	"github.com/rileyhilliard/resmon/internal/metrics"
	"github.com/rileyhilliard/resmon/internal/sampler"
	"github.com/rileyhilliard/resmon/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Global flags
var (
	cfgFile string
	verbose bool
	noColor bool
)

// dashFlags is shared by the root command and `dash`.
var dashFlags DashFlags

// newSource builds the metric source for every command. Tests swap it for a
// fake.
var newSource = func() metrics.Source {
	return metrics.NewHostSource()
}

// stdinIsTerminal reports whether prompts can be shown.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var rootCmd = &cobra.Command{
	Use:   "resmon",
	Short: "Live resource monitor for the local machine",
	Long: `resmon shows CPU, memory, disk and process activity for this machine in a
full-screen terminal dashboard, and offers one-shot commands for scripts.

Running resmon without a subcommand opens the dashboard.

Examples:
  resmon                         # open the dashboard
  resmon --filter "user:root"    # dashboard with an initial filter
  resmon ps "cpu>10" --sort cpu  # one-shot process table
  resmon drives --json           # volume usage for scripts
  resmon kill 4242               # terminate a process`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
		if verbose {
			_ = os.Setenv(logger.DebugEnv, "1")
		}
		return config.LoadEnvFile(".")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashCommand(cmd.Context(), dashFlags)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .resmon.yaml, then ~/.config/resmon/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	AddDashFlags(rootCmd, &dashFlags)
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// loadConfig resolves and validates the active config. A missing file is
// not an error; defaults and RESMON_* overrides apply.
func loadConfig() (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(Config())
	if err != nil {
		return nil, "", err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// sampleOnce reads one snapshot. With a positive window it primes the
// source first and reads again after the window, so both aggregate and
// per-process CPU cover the window instead of reading 0.
func sampleOnce(ctx context.Context, src metrics.Source, window time.Duration) (*sampler.Snapshot, error) {
	s := sampler.New(src, sampler.Options{Logger: logger.NewEnvLogger("[sampler]")})
	if window <= 0 {
		return s.Once(ctx)
	}

	if _, err := s.Once(ctx); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, errors.WrapWithCode(ctx.Err(), errors.ErrSource, "Sampling cancelled", "")
	case <-time.After(window):
	}
	return s.Once(ctx)
}

// Execute runs the root command and exits with the right status code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(handleError(err, os.Stdout, os.Stderr))
	}
}

// handleError reports err and returns the exit code. Errors already
// reported by the command carry their own code and print nothing more.
func handleError(err error, stdout, stderr io.Writer) int {
	if code, ok := errors.GetExitCode(err); ok {
		return code
	}

	if machineMode {
		_ = WriteJSONFromError(stdout, err)
		return 1
	}

	if isUnknownCommandError(err) {
		fmt.Fprintf(stderr, "%s %v\n", ui.SymbolFail, err)
		if name := extractUnknownCommand(err); name != "" {
			if suggestions := rootCmd.SuggestionsFor(name); len(suggestions) > 0 {
				fmt.Fprintf(stderr, "\n  Did you mean: %s?\n", strings.Join(suggestions, ", "))
			}
		}
		fmt.Fprintln(stderr, "\n  Run 'resmon --help' to see what's available.")
		return 1
	}

	fmt.Fprintln(stderr, strings.TrimRight(err.Error(), "\n"))
	return 1
}

// isUnknownCommandError reports whether cobra rejected the command line.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unknown command") || strings.Contains(msg, "unknown flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "resmon"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
