package pacman

import "context"

// Runner executes one external tool invocation with captured output.
// This interface allows the query adapter to be tested with canned output
// instead of real package-manager calls.
type Runner interface {
	// Run executes name with args, feeding stdin to the process when
	// non-empty. It returns the captured output and exit code once the
	// process finishes. The error is non-nil only when the tool could not
	// be started, timed out, or was killed; a non-zero exit by itself is
	// reported through Result.ExitCode.
	Run(ctx context.Context, stdin, name string, args ...string) (Result, error)
}

// Result is the captured outcome of a finished tool invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}
