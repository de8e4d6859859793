package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/resmon/internal/config"
	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/spf13/cobra"
)

// configInitOptions holds the config init flags.
type configInitOptions struct {
	Global   bool
	Force    bool
	Defaults bool
}

var (
	configInitOpts configInitOptions
	configShowJSON bool
)

// configForm collects config values interactively. Swapped out in tests.
var configForm = huhConfigForm

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage resmon configuration",
	Long: `Create, inspect and edit the resmon config file.

resmon looks for .resmon.yaml in the current directory and its parents
(stopping at the git root or home), then ~/.config/resmon/config.yaml.
Any key can be overridden with RESMON_<SECTION>_<KEY>, and a .env file in
the working directory is loaded first.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file",
	Long: `Create .resmon.yaml in the current directory, or the global config with
--global. On a terminal you are asked for each setting; otherwise (or with
--defaults) the defaults are written.

Examples:
  resmon config init
  resmon config init --global --defaults`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitCommand(cmd.OutOrStdout(), configInitOpts)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCommand(cmd.OutOrStdout(), configShowJSON)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print which config file is in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configPathCommand(cmd.OutOrStdout())
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the config file",
	Long: `Set a dotted key in the active config file, keeping its comments.

Examples:
  resmon config set sampler.interval 500ms
  resmon config set table.sort cpu
  resmon config set ui.theme.accent "#7D56F4"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetCommand(cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitOpts.Global, "global", false, "write ~/.config/resmon/config.yaml instead")
	configInitCmd.Flags().BoolVar(&configInitOpts.Force, "force", false, "overwrite an existing file")
	configInitCmd.Flags().BoolVar(&configInitOpts.Defaults, "defaults", false, "write defaults without prompting")
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")

	configCmd.AddCommand(configInitCmd, configShowCmd, configPathCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configInitCommand writes a new config file.
func configInitCommand(out io.Writer, opts configInitOptions) error {
	path := config.ConfigFileName
	if opts.Global {
		path = config.GlobalPath()
		if path == "" {
			return errors.New(errors.ErrConfig,
				"Couldn't find your home directory",
				"Set HOME, or create .resmon.yaml in the project instead.")
		}
	}

	interactive := stdinIsTerminal() && !opts.Defaults

	if _, err := os.Stat(path); err == nil && !opts.Force {
		if !interactive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}
		overwrite, err := confirmPrompt(fmt.Sprintf("'%s' already exists. Overwrite?", path))
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if interactive {
		if err := configForm(cfg); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Run with --defaults to skip the prompts.")
		}
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	printOK(out, "Wrote "+path)
	return nil
}

// configShowCommand prints the resolved config and where it came from.
func configShowCommand(out io.Writer, asJSON bool) error {
	machineMode = asJSON

	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	if asJSON {
		return WriteJSONSuccess(out, map[string]interface{}{
			"path":   path,
			"config": cfg,
		})
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, mutedStyle.Render("# source: "+describePath(path)))
	fmt.Fprint(out, string(data))
	return nil
}

// configPathCommand prints the active config path, or how to create one.
func configPathCommand(out io.Writer) error {
	path, err := config.Find(Config())
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(out, mutedStyle.Render("No config file found; using defaults."))
		fmt.Fprintln(out, mutedStyle.Render("Create one with 'resmon config init'."))
		return nil
	}
	fmt.Fprintln(out, path)
	return nil
}

// configSetCommand updates one key and rolls back if the result is invalid.
func configSetCommand(out io.Writer, key, value string) error {
	path, err := config.Find(Config())
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config file found to update",
			"Run 'resmon config init' first.")
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't read "+path, "")
	}
	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't set %s", key),
			"Keys look like sampler.interval or ui.theme.accent.")
	}

	cfg, err := config.Load(path)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		if restoreErr := os.WriteFile(path, original, 0644); restoreErr != nil {
			return errors.WrapWithCode(restoreErr, errors.ErrConfig,
				"Couldn't restore "+path+" after a bad value", "")
		}
		return err
	}

	printOK(out, fmt.Sprintf("Set %s = %s in %s", key, value, path))
	return nil
}

func describePath(path string) string {
	if path == "" {
		return "defaults"
	}
	return path
}

// huhConfigForm asks for the settings people most often change.
func huhConfigForm(cfg *config.Config) error {
	interval := cfg.Sampler.Interval.String()
	window := strconv.Itoa(cfg.Series.Window)
	mode := cfg.Filter.MatchMode
	sortKey := cfg.Table.Sort
	accent := cfg.UI.Theme.Accent
	mouse := cfg.UI.Mouse

	sortOptions := make([]huh.Option[string], len(config.SortKeys))
	for i, k := range config.SortKeys {
		sortOptions[i] = huh.NewOption(k, k)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sample interval").
				Description("Time between snapshots, e.g. 1s or 500ms").
				Value(&interval).
				Validate(func(s string) error {
					d, err := time.ParseDuration(s)
					if err != nil {
						return fmt.Errorf("not a duration")
					}
					if d < config.MinInterval {
						return fmt.Errorf("use at least %v", config.MinInterval)
					}
					return nil
				}),
			huh.NewInput().
				Title("Chart history").
				Description("Samples kept per chart").
				Value(&window).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < config.MinSeriesSize || n > config.MaxSeriesSize {
						return fmt.Errorf("enter %d-%d", config.MinSeriesSize, config.MaxSeriesSize)
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Filter match mode").
				Options(huh.NewOption("substring", "substring"), huh.NewOption("exact", "exact")).
				Value(&mode),
			huh.NewSelect[string]().
				Title("Default sort").
				Options(sortOptions...).
				Value(&sortKey),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Accent color").
				Description("Hex (#FF2E97) or ANSI number; empty keeps the default").
				Value(&accent),
			huh.NewConfirm().
				Title("Enable mouse support?").
				Value(&mouse),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	// Inputs were validated by the form.
	cfg.Sampler.Interval, _ = time.ParseDuration(interval)
	cfg.Series.Window, _ = strconv.Atoi(window)
	cfg.Filter.MatchMode = mode
	cfg.Table.Sort = sortKey
	cfg.UI.Theme.Accent = accent
	cfg.UI.Mouse = mouse
	return nil
}
