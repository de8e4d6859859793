package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerState represents the current state of a spinner.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerRunning
	SpinnerSuccess
	SpinnerFailed
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerInterval = 80 * time.Millisecond

// Spinner shows an animated "label..." line while a one-shot command waits
// on a sample. It writes carriage-return frames, so it belongs on a TTY.
type Spinner struct {
	mu        sync.Mutex
	out       io.Writer
	label     string
	state     SpinnerState
	frame     int
	started   time.Time
	stop      chan struct{}
	done      chan struct{}
	lastWidth int
}

// NewSpinner creates a spinner that renders to out.
func NewSpinner(out io.Writer, label string) *Spinner {
	return &Spinner{out: out, label: label}
}

// Start begins the animation. Calling Start twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.state == SpinnerRunning {
		s.mu.Unlock()
		return
	}
	s.state = SpinnerRunning
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.renderLocked()
	s.mu.Unlock()

	go s.animate()
}

// Success stops the spinner and prints a check line with the elapsed time.
func (s *Spinner) Success() { s.finish(SpinnerSuccess) }

// Fail stops the spinner and prints a failure line.
func (s *Spinner) Fail() { s.finish(SpinnerFailed) }

// State returns the current spinner state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Label returns the spinner's label.
func (s *Spinner) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

func (s *Spinner) finish(state SpinnerState) {
	s.mu.Lock()
	if s.state != SpinnerRunning {
		s.state = state
		s.mu.Unlock()
		return
	}
	close(s.stop)
	s.mu.Unlock()
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state

	symbol := lipgloss.NewStyle().Foreground(ColorSuccess).Render(SymbolSuccess)
	if state == SpinnerFailed {
		symbol = lipgloss.NewStyle().Foreground(ColorError).Render(SymbolFail)
	}
	timing := lipgloss.NewStyle().Foreground(ColorMuted).Render(FormatElapsed(time.Since(s.started)))
	s.clearLocked()
	fmt.Fprintf(s.out, "%s %s %s\n", symbol, s.label, timing)
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.renderLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Spinner) renderLocked() {
	color := spinnerColors[(s.frame/2)%len(spinnerColors)]
	symbol := lipgloss.NewStyle().Foreground(color).Render(spinnerFrames[s.frame])
	line := fmt.Sprintf("%s %s...", symbol, s.label)
	s.clearLocked()
	fmt.Fprint(s.out, line)
	s.lastWidth = lipgloss.Width(line)
}

func (s *Spinner) clearLocked() {
	if s.lastWidth == 0 {
		return
	}
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", s.lastWidth)+"\r")
	s.lastWidth = 0
}

// FormatElapsed formats a duration for display (e.g., "0.05s", "1.2s").
func FormatElapsed(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
