package pacman

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrToolUnavailable means a required external program is missing.
	// This is fatal: the module cannot function without its tools.
	ErrToolUnavailable = errors.New("required tool not found")
	// ErrToolFailed means a tool ran but failed (non-zero exit or timeout).
	// The previous result for that origin is kept.
	ErrToolFailed = errors.New("tool invocation failed")
	// ErrNoNetwork means a network-dependent query could not reach a
	// remote source. Handled exactly like ErrToolFailed.
	ErrNoNetwork = errors.New("no network")
)

// DefaultTimeout bounds a single tool invocation. A hung subprocess must
// not stall the scheduler tick forever.
const DefaultTimeout = 30 * time.Second

// ExecRunner runs external tools with a per-invocation deadline.
type ExecRunner struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewExecRunner creates an ExecRunner. A zero timeout falls back to
// DefaultTimeout.
func NewExecRunner(timeout time.Duration, logger *slog.Logger) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{timeout: timeout, logger: logger}
}

// Run executes the tool under a deadline derived from ctx. Cancelling ctx
// kills the subprocess rather than leaking it.
func (r *ExecRunner) Run(ctx context.Context, stdin, name string, args ...string) (Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	res := Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		// A killed subprocess surfaces as an ExitError ("signal:
		// killed"), so the context must be consulted first: otherwise
		// a timeout would be mistaken for a regular non-zero exit.
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			r.logger.Warn("tool timed out", "tool", name, "timeout", r.timeout)
			return res, fmt.Errorf("%w: %s timed out after %s", ErrToolFailed, name, r.timeout)
		case runCtx.Err() != nil:
			return res, errors.Join(ErrToolFailed, runCtx.Err())
		case errors.As(err, &exitErr):
			// The tool ran to completion; let the caller interpret
			// the exit code (checkupdates uses 2 for "no updates").
			res.ExitCode = exitErr.ExitCode()
		case errors.Is(err, exec.ErrNotFound):
			return res, fmt.Errorf("%w: %s", ErrToolUnavailable, name)
		default:
			return res, errors.Join(ErrToolFailed, err)
		}
	}

	r.logger.Debug("tool finished",
		"tool", name,
		"args", strings.Join(args, " "),
		"exit", res.ExitCode,
		"elapsed", elapsed.Round(time.Millisecond))

	return res, nil
}

// LookupTools verifies that every tool the configured checks depend on is
// installed. Called once at startup; a missing tool is a hard error.
func LookupTools(checkAUR bool) error {
	tools := []string{checkupdatesTool}
	if checkAUR {
		tools = append(tools, pacmanTool, aurHelperTool)
	}
	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%w: %s", ErrToolUnavailable, tool)
		}
	}
	return nil
}
