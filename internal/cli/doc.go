// Package cli implements the resmon command-line interface.
//
// The root command opens the dashboard; every other command is a one-shot
// that samples once, prints, and exits:
//
//	resmon [dash]             - Live dashboard (processes, charts, drives, system)
//	resmon ps [filter...]     - Filtered, sorted process table
//	resmon drives             - Volume usage
//	resmon kill <pid>...      - Terminate processes (confirmation on a TTY)
//	resmon start <cmdline>    - Start a detached process
//	resmon sysinfo            - Host information
//	resmon config init|show|path|set
//	resmon version, resmon completion
//
// # Configuration
//
// Commands call loadConfig, which resolves --config, .resmon.yaml and the
// global file through internal/config. Dashboard flags are layered on top
// with DashFlags.Apply and re-validated.
//
// # Output
//
// Human output goes through internal/ui. Commands with --json set machine
// mode, write a JSONEnvelope on stdout, and Execute renders any error as an
// envelope too. Commands that have already reported their own failures
// return errors.ExitError so nothing is printed twice.
//
// # Testing
//
// newSource, stdinIsTerminal, terminateAll, confirmPrompt, startProcess and
// configForm are package variables so tests can run commands against fakes.
package cli
