// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

const (
	// maxPipeDrain caps the time spent collecting output after a timed-out command is killed.
	maxPipeDrain = 100 * time.Millisecond
	// minPipeDrain keeps WaitDelay positive; zero would wait on open pipes forever.
	minPipeDrain = time.Millisecond
)

type (
	// Prober performs the best-effort environment probes used during detection.
	// No method returns an error: failures are reported as "absent".
	Prober interface {
		// PathExists reports whether path exists. Permission and availability
		// errors count as "does not exist".
		PathExists(path string) bool
		// ReadAllText returns the contents of path and whether it could be read.
		ReadAllText(path string) (string, bool)
		// Run executes name with args, capturing standard output. It returns
		// false when the command cannot be started or does not finish within timeout.
		Run(ctx context.Context, timeout time.Duration, name string, args ...string) (string, bool)
	}

	// OSProber is the production Prober backed by the os and os/exec packages.
	OSProber struct {
		// Logger receives debug records for swallowed errors. Nil uses slog.Default().
		Logger *slog.Logger
	}
)

// PathExists implements Prober.
func (p OSProber) PathExists(path string) bool {
	_, err := os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		p.logger().Debug("path probe failed", "path", path, "error", err)
	}
	return err == nil
}

// ReadAllText implements Prober.
func (p OSProber) ReadAllText(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			p.logger().Debug("file probe failed", "path", path, "error", err)
		}
		return "", false
	}
	return string(data), true
}

// Run implements Prober. The process is killed early enough that draining its
// pipes, bounded by WaitDelay, still ends within timeout, so a grandchild
// holding stdout open cannot keep the caller waiting.
func (p OSProber) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (string, bool) {
	drain := pipeDrainDelay(timeout)
	runCtx, cancel := context.WithTimeout(ctx, timeout-drain)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.WaitDelay = drain

	out, err := cmd.Output()
	if runCtx.Err() != nil {
		p.logger().Debug("command probe timed out", "command", name, "timeout", timeout)
		return "", false
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			p.logger().Debug("command probe failed", "command", name, "error", err)
			return "", false
		}
		// The command ran to completion; its output is still usable.
		p.logger().Debug("command probe exited with error", "command", name, "code", exitErr.ExitCode())
	}
	return string(out), true
}

// pipeDrainDelay is the part of timeout reserved for collecting output after
// the kill: a quarter of it, clamped to [minPipeDrain, maxPipeDrain].
func pipeDrainDelay(timeout time.Duration) time.Duration {
	return max(min(timeout/4, maxPipeDrain), minPipeDrain)
}

func (p OSProber) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
