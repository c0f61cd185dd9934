package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Worker is the external unit of work run once per iteration. The contract
// is its exit code alone: 0 done, 2 blocked, anything else transient.
type Worker interface {
	Run(ctx context.Context) (int, error)
}

// CommandWorker runs the configured scraper command as a subprocess. Its
// output passes straight through to the controller's stdout/stderr; the
// controller itself never reads it.
type CommandWorker struct {
	Command string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// Run executes the command and returns its exit code. A command that could
// not be started at all reports an error alongside exit code -1.
func (w *CommandWorker) Run(ctx context.Context) (int, error) {
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, w.Command, w.Args...)
	cmd.Dir = w.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("worker failed to start: %w", err)
	}
	return 0, nil
}
