package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".resmon.yaml"
	// GlobalConfigDir is the directory for global config, relative to home.
	GlobalConfigDir = ".config/resmon"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. RESMON_SAMPLER_INTERVAL.
	EnvPrefix = "RESMON"
	// EnvFileName is the dotenv file read from the working directory.
	EnvFileName = ".env"
)

// Load reads config from the specified path. Environment overrides apply on
// top of the file.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'resmon config init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .resmon.yaml in current directory
// 3. .resmon.yaml in parent directories (stops at git root or home)
// 4. ~/.config/resmon/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	// 1. Explicit path takes precedence
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	// 2. Current directory
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	if p := findUpward(cwd); p != "" {
		return p, nil
	}

	// 4. Global config
	if p := GlobalPath(); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", nil
}

// findUpward checks dir and its parents for ConfigFileName, stopping at the
// git root, the home directory or the filesystem root.
func findUpward(dir string) string {
	home, _ := os.UserHomeDir()
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		if isGitRoot(dir) {
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		if home != "" && parent == home {
			// Don't go above home directory
			return ""
		}
		dir = parent
	}
}

// GlobalPath returns ~/.config/resmon/config.yaml, or "" if the home
// directory is unknown.
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// LoadOrDefault loads config from the found path, or returns defaults with
// environment overrides applied if no file exists.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg, err := parseConfig(newViper(), "environment")
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

// LoadEnvFile reads KEY=value pairs from dir/.env into the environment.
// Variables that are already set win. A missing file is not an error.
func LoadEnvFile(dir string) error {
	path := filepath.Join(dir, EnvFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read "+path,
			"Each line should look like RESMON_SAMPLER_INTERVAL=2s")
	}
	return nil
}

// newViper returns a viper instance with defaults and RESMON_* overrides.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	cfg.Filter.MatchMode = strings.ToLower(strings.TrimSpace(cfg.Filter.MatchMode))
	cfg.Table.Sort = strings.ToLower(strings.TrimSpace(cfg.Table.Sort))
	cfg.Log.File = ExpandTilde(Expand(cfg.Log.File))

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal; viper only consults the environment for keys it knows about.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("sampler.interval", d.Sampler.Interval.String())
	v.SetDefault("sampler.cpu_window", d.Sampler.CPUWindow.String())
	v.SetDefault("series.window", d.Series.Window)
	v.SetDefault("filter.match_mode", d.Filter.MatchMode)
	v.SetDefault("table.sort", d.Table.Sort)
	v.SetDefault("drives.critical_percent", d.Drives.CriticalPercent)
	v.SetDefault("drives.exclude_fstypes", d.Drives.ExcludeFstypes)
	v.SetDefault("ui.theme.accent", d.UI.Theme.Accent)
	v.SetDefault("ui.mouse", d.UI.Mouse)
	v.SetDefault("log.file", d.Log.File)
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
