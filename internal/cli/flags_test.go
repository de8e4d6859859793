package cli

import (
	"testing"
	"time"

	"github.com/rileyhilliard/resmon/internal/config"
	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/rileyhilliard/resmon/internal/filter"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		want    time.Duration
		wantErr bool
	}{
		{name: "empty string returns zero", flag: "", want: 0},
		{name: "valid seconds", flag: "5s", want: 5 * time.Second},
		{name: "valid milliseconds", flag: "500ms", want: 500 * time.Millisecond},
		{name: "valid complex duration", flag: "1m30s", want: 90 * time.Second},
		{name: "zero", flag: "0", want: 0},
		{name: "missing unit", flag: "5", wantErr: true},
		{name: "not a duration", flag: "fast", wantErr: true},
		{name: "negative", flag: "-1s", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.flag, "--interval")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				assert.Contains(t, err.Error(), "--interval")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePIDs(t *testing.T) {
	pids, err := ParsePIDs([]string{"42", " 7 ", "65535"})
	require.NoError(t, err)
	assert.Equal(t, []int32{42, 7, 65535}, pids)

	for _, bad := range []string{"abc", "0", "-3", "1.5", "99999999999"} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParsePIDs([]string{"1", bad})
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrProcess))
		})
	}
}

func TestDashFlags_Apply(t *testing.T) {
	cfg := config.DefaultConfig()
	flags := DashFlags{Interval: "500ms", Window: 120, Exact: true, NoMouse: true}

	require.NoError(t, flags.Apply(cfg))
	assert.Equal(t, 500*time.Millisecond, cfg.Sampler.Interval)
	assert.Equal(t, 120, cfg.Series.Window)
	assert.Equal(t, "exact", cfg.Filter.MatchMode)
	assert.False(t, cfg.UI.Mouse)
}

func TestDashFlags_ApplyKeepsConfigWhenUnset(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sampler.Interval = 2 * time.Second

	require.NoError(t, DashFlags{}.Apply(cfg))
	assert.Equal(t, 2*time.Second, cfg.Sampler.Interval)
	assert.Equal(t, 61, cfg.Series.Window)
	assert.True(t, cfg.UI.Mouse)
}

func TestDashFlags_ApplyValidates(t *testing.T) {
	err := DashFlags{Interval: "10ms"}.Apply(config.DefaultConfig())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	err = DashFlags{Window: 1}.Apply(config.DefaultConfig())
	require.Error(t, err)
}

func TestAddDashFlags(t *testing.T) {
	var flags DashFlags
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	AddDashFlags(cmd, &flags)

	cmd.SetArgs([]string{"--interval", "2s", "--window", "30", "--filter", "user:root", "--exact", "--no-mouse"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, DashFlags{Interval: "2s", Window: 30, Filter: "user:root", Exact: true, NoMouse: true}, flags)
}

func TestMatchMode(t *testing.T) {
	assert.Equal(t, filter.MatchSubstring, matchMode("substring", false))
	assert.Equal(t, filter.MatchExact, matchMode("exact", false))
	assert.Equal(t, filter.MatchExact, matchMode("substring", true))
	assert.Equal(t, filter.MatchSubstring, matchMode("bogus", false))
}
