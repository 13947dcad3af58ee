package wolfram

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// Runner executes a command and returns its standard output and error.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands as subprocesses. The process is killed when ctx
// is done.
type ExecRunner struct {
	// WaitDelay bounds how long Run waits for output pipes to close after the
	// process is killed. Zero means one second.
	WaitDelay time.Duration
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = time.Second
	}
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
