package config

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax - just ~ for the current user.
func ExpandTilde(path string) string {
	if path == "" {
		return path
	}

	// Handle ~/path
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path // Return unchanged if we can't get home
		}
		return filepath.Join(home, path[2:])
	}

	// Handle standalone ~
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}

	return path
}

// Expand replaces variables in a string with their values.
// Supported variables:
//   - ${USER}   - current username
//   - ${HOME}   - user's home directory
//   - ${TMPDIR} - the OS temp directory
//
// Note: Does NOT expand ~ - use ExpandTilde for that.
func Expand(s string) string {
	if s == "" {
		return s
	}

	// Get values lazily to avoid unnecessary work
	result := s

	if strings.Contains(result, "${USER}") {
		result = strings.ReplaceAll(result, "${USER}", getUser())
	}

	if strings.Contains(result, "${HOME}") {
		result = strings.ReplaceAll(result, "${HOME}", getHome())
	}

	if strings.Contains(result, "${TMPDIR}") {
		result = strings.ReplaceAll(result, "${TMPDIR}", filepath.Clean(os.TempDir()))
	}

	return result
}

// getUser returns the current username for ${USER} expansion.
func getUser() string {
	// Try USER env var first (most common)
	if u := os.Getenv("USER"); u != "" {
		return u
	}

	// Try LOGNAME (POSIX standard)
	if u := os.Getenv("LOGNAME"); u != "" {
		return u
	}

	// Try USERNAME (Windows)
	if u := os.Getenv("USERNAME"); u != "" {
		return u
	}

	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "user"
}

// getHome returns the home directory for ${HOME} expansion.
func getHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}

	// Fallback to HOME env var
	if home := os.Getenv("HOME"); home != "" {
		return home
	}

	return "~"
}
