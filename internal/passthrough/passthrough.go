// Package passthrough runs bash commands as a subprocess and reconciles
// the resulting environment and working directory back into the calling
// fish session by printing fish `set`/`cd` statements to stdout.
package passthrough

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/reef-shell/reef/internal/envdiff"
	"github.com/reef-shell/reef/internal/state"
)

// NUL-delimited sentinels separate command output from the env/cwd dump
// appended by buildScript. NUL bytes can't appear in ordinary command output.
const (
	envMarker = "\x00__REEF_ENV__\x00"
	cwdMarker = "\x00__REEF_CWD__\x00"
)

// ExitBashNotFound is returned in place of a command's own exit code when
// bash itself could not be found on PATH.
const ExitBashNotFound = 127

func bashNotFound(err error) bool {
	return err != nil && errors.Is(err, exec.ErrNotFound)
}

// Exec runs command through bash, streaming both its stdout and its stderr
// to the caller's stderr, and prints nothing to stdout itself. It returns the command's
// exit code. Callers that also need the resulting environment delta should
// use ExecEnvDiff or ExecWithState instead.
func Exec(command string) int {
	script := buildScript(shellEscapeForBash(command), " >&2", true, false)

	cmd := exec.Command("bash", "-c", script)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if err != nil {
		if bashNotFound(err) {
			return ExitBashNotFound
		}
		if _, ok := err.(*exec.ExitError); !ok {
			fmt.Fprintf(os.Stderr, "reef: failed to run bash: %v\n", err)
			return 1
		}
	}

	return exitCode(cmd)
}

// ExecEnvDiff runs command through bash with all output suppressed and
// only prints the resulting environment diff. Used for sourcing bash
// scripts purely for their side effects on the environment.
func ExecEnvDiff(command string) int {
	before := envdiff.CaptureCurrent()
	script := buildScript(shellEscapeForBash(command), " >/dev/null 2>&1", false, true)

	cmd := exec.Command("bash", "-c", script)
	stdout, err := cmd.Output()
	if err != nil {
		if bashNotFound(err) {
			return ExitBashNotFound
		}
		if _, ok := err.(*exec.ExitError); !ok {
			fmt.Fprintf(os.Stderr, "reef: failed to run bash: %v\n", err)
			return 1
		}
	}

	diffAndPrintEnv(before, stdout)

	if cmd.ProcessState != nil && cmd.ProcessState.Success() {
		return 0
	}
	return exitCode(cmd)
}

// ExecWithState behaves like Exec but first sources statePath (if it
// exists) to restore variables from a prior invocation, then re-saves the
// resulting environment back to statePath after the command runs and, as
// ExecEnvDiff does, prints the resulting environment diff to stdout.
func ExecWithState(command, statePath string) int {
	before := envdiff.CaptureCurrent()

	prefix := state.Prefix(statePath)
	body := buildScript(shellEscapeForBash(command), " >&2", true, true)

	var script strings.Builder
	script.WriteString(prefix)
	script.WriteString(body)

	cmd := exec.Command("bash", "-c", script.String())
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr
	stdout, err := cmd.Output()
	if err != nil {
		if bashNotFound(err) {
			return ExitBashNotFound
		}
		if _, ok := err.(*exec.ExitError); !ok {
			fmt.Fprintf(os.Stderr, "reef: failed to run bash: %v\n", err)
			return 1
		}
	}

	code := exitCode(cmd)
	diffAndPrintEnvSaveState(before, stdout, statePath)
	return code
}

// exitCode extracts the exit status from a completed *exec.Cmd, translating
// death-by-signal into the shell convention of 128+signal.
func exitCode(cmd *exec.Cmd) int {
	ps := cmd.ProcessState
	if ps == nil {
		return 1
	}
	if status, ok := ps.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return ps.ExitCode()
}

func extractEnvSections(rawStdout []byte) (envSection, cwdSection string, ok bool) {
	stdout := string(rawStdout)
	envPos := strings.Index(stdout, envMarker)
	if envPos < 0 {
		return "", "", false
	}
	cwdPos := strings.Index(stdout, cwdMarker)
	if cwdPos < 0 {
		return "", "", false
	}
	envSection = stdout[envPos+len(envMarker) : cwdPos]
	cwdSection = strings.TrimSpace(stdout[cwdPos+len(cwdMarker):])
	return envSection, cwdSection, true
}

func diffAndPrintEnv(before envdiff.Snapshot, rawStdout []byte) {
	envSection, cwdSection, ok := extractEnvSections(rawStdout)
	if !ok {
		return
	}
	after := envdiff.New(envdiff.ParseNullSeparatedEnv(envSection), cwdSection)
	var buf strings.Builder
	before.DiffInto(after, &buf)
	if buf.Len() > 0 {
		os.Stdout.WriteString(buf.String())
	}
}

func diffAndPrintEnvSaveState(before envdiff.Snapshot, rawStdout []byte, statePath string) {
	envSection, cwdSection, ok := extractEnvSections(rawStdout)
	if !ok {
		return
	}
	_ = state.Save(statePath, envSection)
	after := envdiff.New(envdiff.ParseNullSeparatedEnv(envSection), cwdSection)
	var buf strings.Builder
	before.DiffInto(after, &buf)
	if buf.Len() > 0 {
		os.Stdout.WriteString(buf.String())
	}
}

// buildScript wraps escapedCmd in an eval and redirects its output per
// redirect. When trackExit is set, the command's own exit code is
// preserved past whatever runs afterward. When dumpEnv is set, sentinel-
// delimited env/cwd state is dumped for a diff — callers that don't need a
// diff (a plain no-flag exec) skip this so nothing unexpected reaches
// stdout.
func buildScript(escapedCmd, redirect string, trackExit, dumpEnv bool) string {
	var s strings.Builder
	s.Grow(len(escapedCmd) + 100)
	s.WriteString("eval ")
	s.WriteString(escapedCmd)
	s.WriteString(redirect)
	s.WriteByte('\n')
	if trackExit {
		s.WriteString("__reef_exit=$?\n")
	}
	if dumpEnv {
		s.WriteString("printf '\\0__REEF_ENV__\\0'\nenv -0\nprintf '\\0__REEF_CWD__\\0'\npwd")
		if trackExit {
			s.WriteByte('\n')
		}
	}
	if trackExit {
		s.WriteString("exit $__reef_exit")
	}
	return s.String()
}

// shellEscapeForBash single-quotes s for safe embedding in a bash eval
// statement, escaping any embedded single quotes.
func shellEscapeForBash(s string) string {
	var out strings.Builder
	out.Grow(len(s) + 2)
	out.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out.WriteString(`'\''`)
		} else {
			out.WriteByte(s[i])
		}
	}
	out.WriteByte('\'')
	return out.String()
}
