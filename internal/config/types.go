package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .resmon.yaml configuration file.
type Config struct {
	Version int           `yaml:"version" mapstructure:"version"`
	Sampler SamplerConfig `yaml:"sampler" mapstructure:"sampler"`
	Series  SeriesConfig  `yaml:"series" mapstructure:"series"`
	Filter  FilterConfig  `yaml:"filter" mapstructure:"filter"`
	Table   TableConfig   `yaml:"table" mapstructure:"table"`
	Drives  DrivesConfig  `yaml:"drives" mapstructure:"drives"`
	UI      UIConfig      `yaml:"ui" mapstructure:"ui"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SamplerConfig controls the background sampling loop.
type SamplerConfig struct {
	// Interval is the target time between snapshots.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// CPUWindow is how long the first cycle blocks to measure CPU load.
	// Zero reports the load since process start on the first cycle.
	CPUWindow time.Duration `yaml:"cpu_window" mapstructure:"cpu_window"`
}

// SeriesConfig controls the chart history.
type SeriesConfig struct {
	// Window is the number of samples each chart keeps.
	Window int `yaml:"window" mapstructure:"window"`
}

// FilterConfig sets the initial search behavior.
type FilterConfig struct {
	// MatchMode is "substring" or "exact".
	MatchMode string `yaml:"match_mode" mapstructure:"match_mode"`
}

// TableConfig controls the process table.
type TableConfig struct {
	// Sort is the initial sort column: name, pid, cpu, mem or threads.
	Sort string `yaml:"sort" mapstructure:"sort"`
}

// DrivesConfig controls the drives tab.
type DrivesConfig struct {
	// CriticalPercent is the usage above which a volume is highlighted.
	CriticalPercent float64 `yaml:"critical_percent" mapstructure:"critical_percent"`

	// ExcludeFstypes hides pseudo filesystems such as squashfs or tmpfs.
	ExcludeFstypes []string `yaml:"exclude_fstypes" mapstructure:"exclude_fstypes"`
}

// UIConfig controls the dashboard look and input.
type UIConfig struct {
	Theme ThemeConfig `yaml:"theme" mapstructure:"theme"`

	// Mouse enables clickable tabs and toggles.
	Mouse bool `yaml:"mouse" mapstructure:"mouse"`
}

// ThemeConfig holds user color overrides.
type ThemeConfig struct {
	// Accent is a hex color or ANSI number used for highlights. Empty keeps
	// the built-in palette.
	Accent string `yaml:"accent" mapstructure:"accent"`
}

// LogConfig controls where the dashboard logs while it owns the terminal.
type LogConfig struct {
	// File is the log path. Supports ~ and ${HOME}/${USER}. Empty uses the
	// RESMON_LOG environment variable or the temp directory.
	File string `yaml:"file" mapstructure:"file"`
}

// Valid sort keys for the process table.
var SortKeys = []string{"name", "pid", "cpu", "mem", "threads"}

// Bounds for validated values.
const (
	MinInterval   = 250 * time.Millisecond
	MaxCPUWindow  = 10 * time.Second
	MinSeriesSize = 2
	MaxSeriesSize = 3600
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Sampler: SamplerConfig{
			Interval:  time.Second,
			CPUWindow: 0,
		},
		Series: SeriesConfig{
			Window: 61,
		},
		Filter: FilterConfig{
			MatchMode: "substring",
		},
		Table: TableConfig{
			Sort: "name",
		},
		Drives: DrivesConfig{
			CriticalPercent: 90,
			ExcludeFstypes:  []string{},
		},
		UI: UIConfig{
			Mouse: true,
		},
	}
}
