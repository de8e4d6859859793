package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/resmon/internal/config"
	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/rileyhilliard/resmon/internal/logger"
	"github.com/rileyhilliard/resmon/internal/monitor"
	"github.com/rileyhilliard/resmon/internal/sampler"
)

// dashOptions maps config onto the dashboard model options.
func dashOptions(cfg *config.Config, initialFilter string, actions monitor.Actions) monitor.Options {
	return monitor.Options{
		Window:          cfg.Series.Window,
		Filter:          initialFilter,
		MatchMode:       matchMode(cfg.Filter.MatchMode, false),
		Sort:            monitor.ParseSortOrder(cfg.Table.Sort),
		CriticalPercent: cfg.Drives.CriticalPercent,
		ExcludeFstypes:  cfg.Drives.ExcludeFstypes,
		Mouse:           cfg.UI.Mouse,
		Accent:          cfg.UI.Theme.Accent,
		Actions:         actions,
		Logger:          logger.NewEnvLogger("[dash]"),
	}
}

// logPath picks log.file from config, then RESMON_LOG, then the temp dir.
func logPath(cfg *config.Config) string {
	if cfg.Log.File != "" {
		return config.ExpandTilde(config.Expand(cfg.Log.File))
	}
	return logger.LogFilePath()
}

// dashCommand runs the full-screen dashboard until the user quits.
func dashCommand(ctx context.Context, flags DashFlags) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if err := flags.Apply(cfg); err != nil {
		return err
	}

	// The dashboard owns the terminal, so log lines go to a file.
	path := logPath(cfg)
	logFile, err := tea.LogToFile(path, "resmon")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrUI,
			"Couldn't open log file "+path,
			"Set RESMON_LOG or log.file to a writable path.")
	}
	defer logFile.Close()
	log := logger.NewEnvLogger("[dash]")

	src := newSource()
	s := sampler.New(src, sampler.Options{
		Cadence:   cfg.Sampler.Interval,
		CPUWindow: cfg.Sampler.CPUWindow,
		Logger:    logger.NewEnvLogger("[sampler]"),
	})
	feed := sampler.NewChannelConsumer(0)
	s.Subscribe(feed)

	if err := s.Start(ctx); err != nil {
		return err
	}

	model := monitor.NewModel(feed.Events(), dashOptions(cfg, flags.Filter, monitor.SystemActions{Source: src}))
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	_, runErr := tea.NewProgram(model, opts...).Run()
	s.Stop()
	feed.Close()

	stats := s.Stats()
	log.Info("dashboard closed: %d cycles, %d skipped, %d degraded, %d events dropped",
		stats.Cycles, stats.Skipped, stats.Degraded, feed.Dropped())

	if runErr != nil {
		return errors.WrapWithCode(runErr, errors.ErrUI,
			"The dashboard stopped unexpectedly",
			"Check the log at "+path+" and try a larger terminal window.")
	}
	return nil
}
