package handler

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Runner runs a CGI program and returns everything it wrote to stdout.
type Runner interface {
	Run(ctx context.Context, path string, env []string, stdin []byte) ([]byte, error)
}

// ExecRunner runs programs as child processes.
type ExecRunner struct {
	// Timeout kills the child after this long. Zero means no limit.
	Timeout time.Duration
}

func (r ExecRunner) Run(ctx context.Context, path string, env []string, stdin []byte) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", path)
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, abs)
	cmd.Env = env
	cmd.Dir = filepath.Dir(abs)
	cmd.WaitDelay = time.Second
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	out, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && len(ee.Stderr) > 0 {
			return nil, errors.Wrapf(err, "run %s: %s", path, bytes.TrimSpace(ee.Stderr))
		}
		return nil, errors.Wrapf(err, "run %s", path)
	}
	return out, nil
}
