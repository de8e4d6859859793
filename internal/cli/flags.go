package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/resmon/internal/config"
	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/rileyhilliard/resmon/internal/filter"
	"github.com/spf13/cobra"
)

// DashFlags holds dashboard overrides layered on top of the config file.
type DashFlags struct {
	Interval string
	Window   int
	Filter   string
	Exact    bool
	NoMouse  bool
}

// AddDashFlags registers --interval, --window, --filter, --exact and
// --no-mouse on a command. The root command and `dash` share one DashFlags.
func AddDashFlags(cmd *cobra.Command, flags *DashFlags) {
	cmd.Flags().StringVar(&flags.Interval, "interval", "", "time between samples (e.g., 500ms, 2s)")
	cmd.Flags().IntVar(&flags.Window, "window", 0, "samples kept per chart")
	cmd.Flags().StringVar(&flags.Filter, "filter", "", "initial process filter (e.g., \"user:root cpu>5\")")
	cmd.Flags().BoolVar(&flags.Exact, "exact", false, "match filter text exactly instead of by substring")
	cmd.Flags().BoolVar(&flags.NoMouse, "no-mouse", false, "disable mouse support")
}

// Apply layers the flags onto cfg and re-validates the result.
func (f DashFlags) Apply(cfg *config.Config) error {
	interval, err := ParseDuration(f.Interval, "--interval")
	if err != nil {
		return err
	}
	if interval > 0 {
		cfg.Sampler.Interval = interval
	}
	if f.Window != 0 {
		cfg.Series.Window = f.Window
	}
	if f.Exact {
		cfg.Filter.MatchMode = filter.MatchExact.String()
	}
	if f.NoMouse {
		cfg.UI.Mouse = false
	}
	return config.Validate(cfg)
}

// ParseDuration parses a duration flag value. Returns zero if the flag is
// empty.
func ParseDuration(value, flagName string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		if err == nil {
			err = fmt.Errorf("negative duration %s", value)
		}
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid duration for %s", value, flagName),
			"Try something like 500ms, 2s, or 1m.")
	}
	return d, nil
}

// ParsePIDs converts command arguments to process IDs, rejecting anything
// that is not a positive integer.
func ParsePIDs(args []string) ([]int32, error) {
	pids := make([]int32, 0, len(args))
	for _, arg := range args {
		pid, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 32)
		if err != nil || pid <= 0 {
			if err == nil {
				err = fmt.Errorf("pid must be positive")
			}
			return nil, errors.WrapWithCode(err, errors.ErrProcess,
				fmt.Sprintf("'%s' is not a valid process id", arg),
				"Pass numeric PIDs, e.g. resmon kill 4242. Find them with 'resmon ps'.")
		}
		pids = append(pids, int32(pid))
	}
	return pids, nil
}

// matchMode resolves the configured mode, letting --exact win.
func matchMode(configured string, exact bool) filter.MatchMode {
	if exact {
		return filter.MatchExact
	}
	mode, err := filter.ParseMatchMode(configured)
	if err != nil {
		return filter.MatchSubstring
	}
	return mode
}
