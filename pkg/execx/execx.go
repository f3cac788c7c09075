// Package execx runs external commands for the render stage. Callers depend
// on the Runner interface so tests can substitute a recording fake.
package execx

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/dlanger/typecast/pkg/errors"
)

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type osRunner struct{}

// New returns a Runner backed by os/exec.
func New() Runner {
	return &osRunner{}
}

// Run executes the command and returns its stdout. Stderr is folded into the
// error context when the command fails.
func (r *osRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		e := errors.Newf(errors.CodeRender, "command %q failed", name).
			WithContext("args", strings.Join(args, " "))
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			e = e.WithContext("stderr", msg)
		}
		e.Err = err
		return "", e
	}

	return stdout.String(), nil
}
