package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/resmon/internal/metrics"
	metricstest "github.com/rileyhilliard/resmon/internal/metrics/testing"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// useSource points every command at src for the duration of the test.
func useSource(t *testing.T, src metrics.Source) {
	t.Helper()
	orig := newSource
	newSource = func() metrics.Source { return src }
	t.Cleanup(func() { newSource = orig })
}

// useConfig writes body to a temp config file and selects it with --config.
// An empty body still isolates the test from any real config on the host.
func useConfig(t *testing.T, body string) string {
	t.Helper()
	if body == "" {
		body = "version: 1\n"
	}
	path := filepath.Join(t.TempDir(), "resmon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	orig := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = orig })
	return path
}

// useTerminal fakes whether stdin is interactive.
func useTerminal(t *testing.T, interactive bool) {
	t.Helper()
	orig := stdinIsTerminal
	stdinIsTerminal = func() bool { return interactive }
	t.Cleanup(func() { stdinIsTerminal = orig })
}

// resetMachineMode restores machineMode after a --json command.
func resetMachineMode(t *testing.T) {
	t.Helper()
	orig := machineMode
	t.Cleanup(func() { machineMode = orig })
}

// processFixture returns a source with a small, known process table.
func processFixture() *metricstest.FakeSource {
	return metricstest.NewFakeSource().
		SetCPU(10, 30).
		SetMemory(metrics.MemoryUsage{Total: 8 << 30, Used: 2 << 30, Percent: 25}).
		SetProcesses(
			metrics.ProcessRecord{PID: 42, Name: "postgres", Threads: 12, User: "pg", ResidentMemoryMB: 512, CPUPercent: 7.5},
			metrics.ProcessRecord{PID: 7, Name: "nginx", Threads: 2, User: "www", ResidentMemoryMB: 48, CPUPercent: 0.4},
			metrics.ProcessRecord{PID: 1, Name: "init", Threads: 1, User: "root", ResidentMemoryMB: 12, CPUPercent: 0},
			metrics.ProcessRecord{PID: 99, Name: "", Threads: 1, User: "root", ResidentMemoryMB: 1, CPUPercent: 0},
		)
}
