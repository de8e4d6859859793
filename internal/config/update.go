package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/resmon/internal/errors"
	"gopkg.in/yaml.v3"
)

// Marshal renders cfg as the YAML that Save writes, header comment included.
func Marshal(cfg *Config) ([]byte, error) {
	var buf strings.Builder
	buf.WriteString("# resmon configuration\n")
	buf.WriteString("# Any key can be overridden with RESMON_<SECTION>_<KEY>, e.g. RESMON_SAMPLER_INTERVAL=2s\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(toFile(cfg)); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}
	encoder.Close()
	return []byte(buf.String()), nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't create config directory",
			"Check permissions on "+filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write config file",
			"Check permissions on "+path)
	}
	return nil
}

// fileConfig mirrors Config with durations as strings so the YAML reads
// "1s" instead of nanoseconds.
type fileConfig struct {
	Version int `yaml:"version"`
	Sampler struct {
		Interval  string `yaml:"interval"`
		CPUWindow string `yaml:"cpu_window"`
	} `yaml:"sampler"`
	Series SeriesConfig `yaml:"series"`
	Filter FilterConfig `yaml:"filter"`
	Table  TableConfig  `yaml:"table"`
	Drives DrivesConfig `yaml:"drives"`
	UI     UIConfig     `yaml:"ui"`
	Log    LogConfig    `yaml:"log,omitempty"`
}

func toFile(cfg *Config) fileConfig {
	var f fileConfig
	f.Version = cfg.Version
	f.Sampler.Interval = cfg.Sampler.Interval.String()
	f.Sampler.CPUWindow = cfg.Sampler.CPUWindow.String()
	f.Series = cfg.Series
	f.Filter = cfg.Filter
	f.Table = cfg.Table
	f.Drives = cfg.Drives
	f.UI = cfg.UI
	f.Log = cfg.Log
	return f
}

// SetValue sets a dotted key (e.g. "sampler.interval") in an existing config
// file. It preserves the existing YAML structure and comments, creating
// intermediate sections as needed.
func SetValue(configPath, key, value string) error {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("invalid key %q", key)
		}
	}

	// Read the existing file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse as yaml.Node to preserve structure
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if root.Kind == 0 {
		// Empty file
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	node := root.Content[0]
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	// Walk or create each section
	for _, section := range parts[:len(parts)-1] {
		child := findMapValue(node, section)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, scalar(section), child)
		}
		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("'%s' is not a section in config", section)
		}
		node = child
	}

	leaf := parts[len(parts)-1]
	if existing := findMapValue(node, leaf); existing != nil {
		if existing.Kind != yaml.ScalarNode {
			return fmt.Errorf("'%s' is a section, not a value", key)
		}
		existing.Value = value
		existing.Tag = ""
		existing.Style = 0
	} else {
		n := scalar(value)
		n.Tag = ""
		node.Content = append(node.Content, scalar(leaf), n)
	}

	// Write back to file
	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(configPath, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}
