package infrastructure

import "context"

type runnerCall struct {
	binary string
	args   []string
}

// recordingRunner records every invocation; act may simulate a tool's side effects
type recordingRunner struct {
	calls []runnerCall
	act   func(binary string, args []string) error
	fail  func(binary string, args []string) error
}

func (r *recordingRunner) Run(ctx context.Context, binary string, args ...string) error {
	r.calls = append(r.calls, runnerCall{binary: binary, args: append([]string(nil), args...)})
	if r.fail != nil {
		if err := r.fail(binary, args); err != nil {
			return err
		}
	}
	if r.act != nil {
		return r.act(binary, args)
	}
	return nil
}
