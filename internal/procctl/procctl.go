// Package procctl starts and terminates processes on behalf of the user.
//
// Every operation reports what happened and returns; nothing here feeds
// back into the sampler. A process started here is detached from resmon's
// lifetime and simply shows up in the next snapshot.
package procctl

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/shirou/gopsutil/v3/process"
)

// Action names what was attempted.
type Action string

const (
	ActionStart     Action = "start"
	ActionTerminate Action = "terminate"
	ActionKill      Action = "kill"
)

// Result describes the outcome of one operation.
type Result struct {
	Action   Action        `json:"action"`
	PID      int32         `json:"pid"`
	Name     string        `json:"name,omitempty"`
	Command  string        `json:"command,omitempty"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// String renders a one-line status message for the UI.
func (r Result) String() string {
	target := fmt.Sprintf("%d", r.PID)
	if r.Name != "" {
		target = fmt.Sprintf("%s (%d)", r.Name, r.PID)
	}
	switch {
	case r.Err != nil:
		return errors.Summary(r.Err)
	case r.Action == ActionStart:
		return fmt.Sprintf("Started %s as pid %d", r.Command, r.PID)
	case r.Action == ActionKill:
		return "Killed " + target
	default:
		return "Sent terminate to " + target
	}
}

// shellCommand builds the platform shell invocation for a command line.
func shellCommand(commandLine string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.Command("cmd", "/C", commandLine)
	}
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return exec.Command(shell, "-c", commandLine)
}

// Start launches commandLine through the user's shell without waiting for
// it. Output is discarded. The child is reaped in the background.
func Start(ctx context.Context, commandLine string) (Result, error) {
	commandLine = strings.TrimSpace(commandLine)
	res := Result{Action: ActionStart, Command: commandLine}
	if commandLine == "" {
		res.Err = errors.New(errors.ErrExec,
			"Nothing to start",
			"Type a command line, e.g. 'sleep 60'.")
		return res, res.Err
	}
	if err := ctx.Err(); err != nil {
		res.Err = errors.WrapWithCode(err, errors.ErrExec, "Start cancelled", "")
		return res, res.Err
	}

	started := time.Now()
	cmd := shellCommand(commandLine)
	if err := cmd.Start(); err != nil {
		res.Err = errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Couldn't start '%s'", commandLine),
			"Make sure the command exists and is executable.")
		return res, res.Err
	}
	res.PID = int32(cmd.Process.Pid)
	res.Duration = time.Since(started)

	go func() {
		_ = cmd.Wait()
	}()

	return res, nil
}

// Terminate asks pid to exit, or kills it outright when force is set.
// A vanished process or a permission error is returned as a PROCESS error.
func Terminate(ctx context.Context, pid int32, force bool) (Result, error) {
	res := Result{Action: ActionTerminate, PID: pid}
	if force {
		res.Action = ActionKill
	}

	if pid <= 0 {
		res.Err = errors.New(errors.ErrProcess,
			fmt.Sprintf("Invalid process ID %d", pid),
			"Pick a process from the table or pass a positive PID.")
		return res, res.Err
	}
	if int(pid) == os.Getpid() {
		res.Err = errors.New(errors.ErrProcess,
			"Refusing to terminate resmon itself",
			"Quit with 'q' instead.")
		return res, res.Err
	}

	started := time.Now()
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		res.Err = notRunning(pid, err)
		return res, res.Err
	}
	if name, err := p.NameWithContext(ctx); err == nil {
		res.Name = name
	}

	if force {
		err = p.KillWithContext(ctx)
	} else {
		err = p.TerminateWithContext(ctx)
	}
	res.Duration = time.Since(started)
	if err != nil {
		res.Err = classify(pid, res.Action, err)
		return res, res.Err
	}
	return res, nil
}

// TerminateAll terminates each pid in order and reports every outcome.
// It keeps going after a failure.
func TerminateAll(ctx context.Context, pids []int32, force bool) []Result {
	results := make([]Result, 0, len(pids))
	for _, pid := range pids {
		if ctx.Err() != nil {
			results = append(results, Result{
				Action: ActionTerminate,
				PID:    pid,
				Err:    errors.WrapWithCode(ctx.Err(), errors.ErrProcess, "Cancelled before terminating", ""),
			})
			continue
		}
		res, _ := Terminate(ctx, pid, force)
		results = append(results, res)
	}
	return results
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

func notRunning(pid int32, err error) *errors.Error {
	return errors.WrapWithCode(err, errors.ErrProcess,
		fmt.Sprintf("Process %d is not running", pid),
		"It may have already exited. The table refreshes on the next cycle.")
}

func classify(pid int32, action Action, err error) *errors.Error {
	switch {
	case stderrors.Is(err, os.ErrPermission), stderrors.Is(err, syscall.EPERM):
		return errors.WrapWithCode(err, errors.ErrProcess,
			fmt.Sprintf("Not allowed to %s process %d", action, pid),
			"The process belongs to another user. Re-run resmon with elevated privileges.")
	case stderrors.Is(err, os.ErrProcessDone), stderrors.Is(err, syscall.ESRCH),
		stderrors.Is(err, process.ErrorProcessNotRunning):
		return notRunning(pid, err)
	}
	return errors.WrapWithCode(err, errors.ErrProcess,
		fmt.Sprintf("Couldn't %s process %d", action, pid), "")
}
