package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/resmon/internal/config"
	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useWorkspace runs the test inside an empty project under a fake home,
// with no --config flag.
func useWorkspace(t *testing.T) (home, project string) {
	t.Helper()
	home = t.TempDir()
	project = filepath.Join(home, "project")
	require.NoError(t, os.MkdirAll(project, 0755))
	t.Setenv("HOME", home)
	chdir(t, project)

	orig := cfgFile
	cfgFile = ""
	t.Cleanup(func() { cfgFile = orig })
	return home, project
}

func useConfigForm(t *testing.T, fn func(*config.Config) error) {
	t.Helper()
	orig := configForm
	configForm = fn
	t.Cleanup(func() { configForm = orig })
}

func TestConfigInit_Defaults(t *testing.T) {
	_, project := useWorkspace(t)
	useTerminal(t, false)

	var out bytes.Buffer
	require.NoError(t, configInitCommand(&out, configInitOptions{}))
	assert.Contains(t, out.String(), "Wrote "+config.ConfigFileName)

	cfg, err := config.Load(filepath.Join(project, config.ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Sampler.Interval, cfg.Sampler.Interval)
}

func TestConfigInit_ExistingFile(t *testing.T) {
	useWorkspace(t)
	useTerminal(t, false)

	var out bytes.Buffer
	require.NoError(t, configInitCommand(&out, configInitOptions{}))

	err := configInitCommand(&out, configInitOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	assert.NoError(t, configInitCommand(&out, configInitOptions{Force: true}))
}

func TestConfigInit_InteractiveOverwriteDeclined(t *testing.T) {
	useWorkspace(t)
	require.NoError(t, os.WriteFile(config.ConfigFileName, []byte("version: 1\n"), 0644))

	useTerminal(t, true)
	titles := useConfirm(t, false, nil)
	useConfigForm(t, func(*config.Config) error {
		t.Fatal("form should not run after declining")
		return nil
	})

	var out bytes.Buffer
	require.NoError(t, configInitCommand(&out, configInitOptions{}))
	assert.Contains(t, out.String(), "Cancelled.")
	assert.Len(t, *titles, 1)

	data, err := os.ReadFile(config.ConfigFileName)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(data))
}

func TestConfigInit_InteractiveForm(t *testing.T) {
	_, project := useWorkspace(t)
	useTerminal(t, true)
	useConfigForm(t, func(cfg *config.Config) error {
		cfg.Sampler.Interval = 2 * time.Second
		cfg.Table.Sort = "cpu"
		return nil
	})

	var out bytes.Buffer
	require.NoError(t, configInitCommand(&out, configInitOptions{}))

	cfg, err := config.Load(filepath.Join(project, config.ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Sampler.Interval)
	assert.Equal(t, "cpu", cfg.Table.Sort)
}

func TestConfigInit_FormError(t *testing.T) {
	useWorkspace(t)
	useTerminal(t, true)
	useConfigForm(t, func(*config.Config) error { return fmt.Errorf("user aborted") })

	var out bytes.Buffer
	err := configInitCommand(&out, configInitOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.NoFileExists(t, config.ConfigFileName)
}

func TestConfigInit_Global(t *testing.T) {
	home, _ := useWorkspace(t)
	useTerminal(t, true)

	var out bytes.Buffer
	require.NoError(t, configInitCommand(&out, configInitOptions{Global: true, Defaults: true}))
	assert.FileExists(t, filepath.Join(home, config.GlobalConfigDir, config.GlobalConfigFile))
	assert.NoFileExists(t, config.ConfigFileName)
}

func TestConfigShow(t *testing.T) {
	path := useConfig(t, "version: 1\ntable:\n  sort: mem\n")

	var out bytes.Buffer
	require.NoError(t, configShowCommand(&out, false))
	assert.Contains(t, out.String(), "# source: "+path)
	assert.Contains(t, out.String(), "sort: mem")
	assert.Contains(t, out.String(), "interval: 1s")
}

func TestConfigShow_JSON(t *testing.T) {
	resetMachineMode(t)
	path := useConfig(t, "version: 1\nseries:\n  window: 30\n")

	var out bytes.Buffer
	require.NoError(t, configShowCommand(&out, true))

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Path   string `json:"path"`
			Config struct {
				Series struct {
					Window int `json:"Window"`
				} `json:"Series"`
			} `json:"config"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, path, env.Data.Path)
	assert.Equal(t, 30, env.Data.Config.Series.Window)
}

func TestConfigPath(t *testing.T) {
	path := useConfig(t, "")

	var out bytes.Buffer
	require.NoError(t, configPathCommand(&out))
	assert.Equal(t, path+"\n", out.String())
}

func TestConfigPath_NoFile(t *testing.T) {
	useWorkspace(t)

	var out bytes.Buffer
	require.NoError(t, configPathCommand(&out))
	assert.Contains(t, out.String(), "No config file found")
	assert.Contains(t, out.String(), "resmon config init")
}

func TestConfigSet(t *testing.T) {
	path := useConfig(t, "# mine\nversion: 1\ntable:\n  sort: name\n")

	var out bytes.Buffer
	require.NoError(t, configSetCommand(&out, "table.sort", "cpu"))
	assert.Contains(t, out.String(), "Set table.sort = cpu")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cpu", cfg.Table.Sort)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# mine")
}

func TestConfigSet_RollsBackInvalidValue(t *testing.T) {
	body := "version: 1\nsampler:\n  interval: 1s\n"
	path := useConfig(t, body)

	var out bytes.Buffer
	err := configSetCommand(&out, "sampler.interval", "1ms")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Empty(t, out.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
}

func TestConfigSet_NoFile(t *testing.T) {
	useWorkspace(t)

	var out bytes.Buffer
	err := configSetCommand(&out, "table.sort", "cpu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resmon config init")
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}
