package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/rileyhilliard/resmon/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	// Check version
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but resmon only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest resmon release.")
	}

	checks := []struct {
		section string
		check   func(*Config) error
	}{
		{"sampler", validateSampler},
		{"series", validateSeries},
		{"filter", validateFilter},
		{"table", validateTable},
		{"drives", validateDrives},
		{"ui", validateUI},
	}

	for _, c := range checks {
		if err := c.check(cfg); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
				fmt.Sprintf("Check the '%s' section in your %s.", c.section, ConfigFileName))
		}
	}
	return nil
}

// validateSampler checks the sampling cadence.
func validateSampler(cfg *Config) error {
	s := cfg.Sampler
	if s.Interval < MinInterval {
		return fmt.Errorf("sampler.interval %v is too short - use at least %v", s.Interval, MinInterval)
	}
	if s.CPUWindow < 0 {
		return fmt.Errorf("sampler.cpu_window can't be negative - that doesn't make sense")
	}
	if s.CPUWindow > MaxCPUWindow {
		return fmt.Errorf("sampler.cpu_window %v would stall the first frame - keep it under %v", s.CPUWindow, MaxCPUWindow)
	}
	return nil
}

// validateSeries checks the chart history length.
func validateSeries(cfg *Config) error {
	if w := cfg.Series.Window; w < MinSeriesSize || w > MaxSeriesSize {
		return fmt.Errorf("series.window needs to be %d-%d samples (got %d)", MinSeriesSize, MaxSeriesSize, w)
	}
	return nil
}

// validateFilter checks the match mode.
func validateFilter(cfg *Config) error {
	switch cfg.Filter.MatchMode {
	case "", "substring", "exact":
		return nil
	}
	return fmt.Errorf("filter.match_mode '%s' isn't valid - use 'substring' or 'exact'", cfg.Filter.MatchMode)
}

// validateTable checks the sort column.
func validateTable(cfg *Config) error {
	if cfg.Table.Sort == "" || slices.Contains(SortKeys, cfg.Table.Sort) {
		return nil
	}
	return fmt.Errorf("table.sort '%s' isn't valid - try: %s", cfg.Table.Sort, strings.Join(SortKeys, ", "))
}

// validateDrives checks the critical threshold and excluded filesystems.
func validateDrives(cfg *Config) error {
	d := cfg.Drives
	if d.CriticalPercent <= 0 || d.CriticalPercent > 100 {
		return fmt.Errorf("drives.critical_percent needs to be between 0 and 100 (got %g)", d.CriticalPercent)
	}
	for _, fs := range d.ExcludeFstypes {
		if strings.TrimSpace(fs) == "" {
			return fmt.Errorf("drives.exclude_fstypes has an empty entry - remove it or add a filesystem type")
		}
	}
	return nil
}

// validateUI checks the accent color.
func validateUI(cfg *Config) error {
	accent := cfg.UI.Theme.Accent
	if accent == "" || isColor(accent) {
		return nil
	}
	return fmt.Errorf("ui.theme.accent '%s' isn't a color - use a hex value like '#7D56F4' or an ANSI number 0-255", accent)
}

// isColor accepts #rgb, #rrggbb or an ANSI color number.
func isColor(s string) bool {
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 3 && len(hex) != 6 {
			return false
		}
		_, err := strconv.ParseUint(hex, 16, 32)
		return err == nil
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= 255
}
