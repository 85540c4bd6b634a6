package pacman

import "context"

// MockRunner implements Runner for testing. Invocations are dispatched to
// RunFunc and recorded in Calls.
type MockRunner struct {
	RunFunc func(ctx context.Context, stdin, name string, args ...string) (Result, error)
	Calls   []MockCall
}

// MockCall records one invocation seen by the mock.
type MockCall struct {
	Name  string
	Args  []string
	Stdin string
}

func (m *MockRunner) Run(ctx context.Context, stdin, name string, args ...string) (Result, error) {
	m.Calls = append(m.Calls, MockCall{Name: name, Args: args, Stdin: stdin})
	if m.RunFunc != nil {
		return m.RunFunc(ctx, stdin, name, args...)
	}
	return Result{}, nil
}

// Ensure MockRunner implements the Runner interface
var _ Runner = (*MockRunner)(nil)
