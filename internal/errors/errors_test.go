package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrSource,
		ErrProcess,
		ErrFilter,
		ErrExec,
		ErrUI,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in .resmon.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "source error",
			code:       ErrSource,
			message:    "Couldn't read CPU times",
			suggestion: "Check that /proc is mounted",
		},
		{
			name:       "process error",
			code:       ErrProcess,
			message:    "Process 42 is gone",
			suggestion: "Refresh the process list",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "basic error formatting",
			err:           New(ErrConfig, "Invalid configuration", "Check .resmon.yaml syntax"),
			expectedParts: []string{"✗", "Invalid configuration", "Check .resmon.yaml syntax"},
		},
		{
			name:          "error with cause",
			err:           WrapWithCode(errors.New("permission denied"), ErrProcess, "Couldn't terminate 42", ""),
			expectedParts: []string{"Couldn't terminate 42", "permission denied"},
		},
		{
			name:          "error without suggestion",
			err:           New(ErrExec, "Command failed", ""),
			expectedParts: []string{"Command failed"},
			notExpected:   []string{"\n\n  \n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()

			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("open /proc/stat: no such file or directory"),
		ErrSource,
		"Couldn't read CPU times",
		"Check that /proc is mounted",
	)

	lines := strings.Split(err.Error(), "\n")

	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "✗"))
	assert.Contains(t, lines[0], "Couldn't read CPU times")
}

func TestWrap(t *testing.T) {
	cause := errors.New("no such file")
	wrapped := Wrap(cause, "Couldn't list volumes")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrSource, wrapped.Code, "Wrap should default to ErrSource code")
	assert.Equal(t, cause, wrapped.Cause)
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("file not found")
	wrapped := WrapWithCode(cause, ErrConfig, "Failed to load config", "Run resmon config init")

	assert.Equal(t, ErrConfig, wrapped.Code)
	assert.Equal(t, "Run resmon config init", wrapped.Suggestion)
	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, cause, wrapped.Unwrap())
}

func TestShortAndSummary(t *testing.T) {
	assert.Equal(t, "Couldn't start", New(ErrProcess, "Couldn't start", "x").Short())
	assert.Equal(t, "Couldn't start: not found",
		WrapWithCode(errors.New("not found"), ErrProcess, "Couldn't start", "").Short())

	assert.Equal(t, "", Summary(nil))
	assert.Equal(t, "plain", Summary(errors.New("plain\n")))
	wrapped := fmt.Errorf("outer: %w", New(ErrUI, "inner", "hint"))
	assert.Equal(t, "inner", Summary(wrapped))
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Config error", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrSource))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))
	assert.True(t, IsCode(fmt.Errorf("ctx: %w", err), ErrConfig))
}

func TestExitError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		wantMsg string
	}{
		{"zero exit code", 0, "exit code 0"},
		{"non-zero exit code", 1, "exit code 1"},
		{"signal exit code", 137, "exit code 137"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewExitError(tt.code)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOk   bool
	}{
		{"ExitError returns code", NewExitError(42), 42, true},
		{"wrapped ExitError", fmt.Errorf("kill: %w", NewExitError(3)), 3, true},
		{"standard error returns false", errors.New("standard error"), 0, false},
		{"nil error returns false", nil, 0, false},
		{"structured Error returns false", New(ErrExec, "test", ""), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := GetExitCode(tt.err)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}
