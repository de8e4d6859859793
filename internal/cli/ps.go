package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/resmon/internal/config"
	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/rileyhilliard/resmon/internal/filter"
	"github.com/rileyhilliard/resmon/internal/metrics"
	"github.com/rileyhilliard/resmon/internal/monitor"
	"github.com/rileyhilliard/resmon/internal/sampler"
	"github.com/rileyhilliard/resmon/internal/ui"
	"github.com/rileyhilliard/resmon/internal/util"
	"github.com/spf13/cobra"
)

// psOptions holds the ps command flags.
type psOptions struct {
	Filter string
	Exact  bool
	Sort   string
	Limit  int
	JSON   bool
	Sample string
}

var psOpts psOptions

var psCmd = &cobra.Command{
	Use:   "ps [filter...]",
	Short: "Print a filtered process table",
	Long: `Print one sample of the process table and exit.

Filter terms are AND-combined and use the same syntax as the dashboard:
  name            name contains (or equals, with --exact) the text
  pid:<n>         process id
  user:<name>     owning user
  cpu>N cpu<N     CPU percent
  mem>N mem<N     resident memory in MB
  threads>N threads<N

Per-process CPU is measured over the --sample window.

Examples:
  resmon ps
  resmon ps postgres --sort mem
  resmon ps "user:root" "cpu>5" --limit 10
  resmon ps nginx --exact --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := psOpts
		opts.Filter = strings.Join(args, " ")
		return psCommand(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
	},
}

func init() {
	psCmd.Flags().BoolVar(&psOpts.Exact, "exact", false, "match name, pid and user exactly")
	psCmd.Flags().StringVar(&psOpts.Sort, "sort", "", "sort by name, pid, cpu, mem or threads (default from config)")
	psCmd.Flags().IntVar(&psOpts.Limit, "limit", 0, "show at most N processes (0 = all)")
	psCmd.Flags().BoolVar(&psOpts.JSON, "json", false, "output in JSON format")
	psCmd.Flags().StringVar(&psOpts.Sample, "sample", "1s", "CPU measurement window (0 reports no CPU usage)")
	rootCmd.AddCommand(psCmd)
}

// PSOutput is the JSON form of `resmon ps`.
type PSOutput struct {
	Filter    string                  `json:"filter"`
	MatchMode string                  `json:"match_mode"`
	Sort      string                  `json:"sort"`
	Total     int                     `json:"total"`
	Processes []metrics.ProcessRecord `json:"processes"`
}

// psCommand samples processes once and prints the filtered, sorted table.
func psCommand(ctx context.Context, out, errOut io.Writer, opts psOptions) error {
	machineMode = opts.JSON

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	sortKey, err := resolveSort(opts.Sort, cfg.Table.Sort)
	if err != nil {
		return err
	}
	if opts.Limit < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("--limit can't be negative (got %d)", opts.Limit),
			"Use 0 to show every process.")
	}
	window, err := ParseDuration(opts.Sample, "--sample")
	if err != nil {
		return err
	}

	var snap *sampler.Snapshot
	err = withSpinner(errOut, "Sampling processes", func() error {
		var sampleErr error
		snap, sampleErr = sampleOnce(ctx, newSource(), window)
		return sampleErr
	})
	if err != nil {
		return err
	}
	if snap.Failed(metrics.CategoryProcesses) {
		return errors.New(errors.ErrSource,
			"Couldn't read the process list",
			"Check that the process table is readable by this user.")
	}

	expr := filter.Compile(opts.Filter, matchMode(cfg.Filter.MatchMode, opts.Exact))
	if !expr.Valid() && !opts.JSON {
		printWarn(errOut, invalidTermsWarning(expr))
	}

	rows := filter.Apply(snap.Processes, expr)
	rows = slices.DeleteFunc(rows, func(p metrics.ProcessRecord) bool { return p.Name == "" })
	monitor.SortProcesses(rows, monitor.ParseSortOrder(sortKey))
	total := len(rows)
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}

	if opts.JSON {
		return WriteJSONSuccess(out, PSOutput{
			Filter:    opts.Filter,
			MatchMode: expr.Mode().String(),
			Sort:      sortKey,
			Total:     total,
			Processes: rows,
		})
	}

	if len(rows) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No processes match."))
		return nil
	}

	cells := make([][]string, len(rows))
	for i, p := range rows {
		cells[i] = monitor.ProcessCells(p)
	}
	fmt.Fprintln(out, ui.RenderSimpleTable(psColumns(rows), cells))
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%s of %s %s, sorted by %s",
		humanize.Comma(int64(len(rows))), humanize.Comma(int64(len(snap.Processes))),
		util.Pluralize(len(snap.Processes), "process", "processes"), sortKey)))
	return nil
}

// resolveSort picks the flag value over the configured one and validates it.
func resolveSort(flag, configured string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(flag))
	if key == "" {
		key = strings.ToLower(configured)
	}
	if key == "" {
		return "name", nil
	}
	if !slices.Contains(config.SortKeys, key) {
		suggestion := "Use one of: " + strings.Join(config.SortKeys, ", ")
		if similar := util.SuggestSimilar(key, config.SortKeys, 2); len(similar) > 0 {
			suggestion = fmt.Sprintf("Did you mean '%s'? %s", similar[0], suggestion)
		}
		return "", errors.New(errors.ErrConfig,
			fmt.Sprintf("Can't sort by '%s'", key), suggestion)
	}
	return key, nil
}

// psColumns sizes the name column to the longest name shown.
func psColumns(rows []metrics.ProcessRecord) []ui.TableColumn {
	name := 12
	for _, p := range rows {
		if w := len([]rune(p.Name)); w > name {
			name = w
		}
	}
	if name > 40 {
		name = 40
	}
	return []ui.TableColumn{
		{Title: "PID", Width: 8},
		{Title: "Name", Width: name},
		{Title: "Threads", Width: 8},
		{Title: "User", Width: 14},
		{Title: "Memory", Width: 12},
		{Title: "CPU", Width: 7},
	}
}

// invalidTermsWarning names the terms that make the filter match nothing.
func invalidTermsWarning(expr filter.Expression) string {
	var bad []string
	for _, t := range expr.Terms() {
		if !t.Valid() {
			bad = append(bad, fmt.Sprintf("%q", t.String()))
		}
	}
	return errors.New(errors.ErrFilter,
		fmt.Sprintf("Malformed filter %s %s matches no process",
			util.Pluralize(len(bad), "term", "terms"), strings.Join(bad, ", ")), "").Short()
}
