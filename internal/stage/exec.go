package stage

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Result is what a finished external process left behind.
type Result struct {
	// ExitCode is the process exit status, -1 if it was killed by a signal.
	ExitCode int
	// Output is stdout and stderr interleaved.
	Output []byte
}

// Executor runs an external program with an explicit argument list. A
// process that ran and exited non-zero is reported through Result.ExitCode
// with a nil error; the error is reserved for processes that could not be
// started or were abandoned because ctx ended.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// defaultWaitDelay bounds how long a cancelled tool may keep its output
// pipes open after being killed.
const defaultWaitDelay = 5 * time.Second

// OSExecutor spawns real processes with os/exec. No shell is involved.
type OSExecutor struct {
	WaitDelay time.Duration
}

// Run implements Executor.
func (e OSExecutor) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = e.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = defaultWaitDelay
	}

	err := cmd.Run()
	res := Result{Output: out.Bytes()}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	default:
		return res, err
	}
}
