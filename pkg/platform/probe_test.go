// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// sleepCommand returns the path of a sleep binary or skips the test.
func sleepCommand(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == GOOSWindows {
		t.Skip("sleep is not available on Windows")
	}
	path, err := exec.LookPath("sleep")
	if err != nil {
		t.Skipf("sleep not found in PATH: %v", err)
	}
	return path
}

func TestOSProber_PathExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "present")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	p := OSProber{}
	if !p.PathExists(file) {
		t.Errorf("PathExists(%q) = false, want true", file)
	}
	if p.PathExists(filepath.Join(dir, "absent")) {
		t.Error("PathExists(absent) = true, want false")
	}
}

func TestOSProber_ReadAllText(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "version")
	if err := os.WriteFile(file, []byte("Linux version 6.1.0\n"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	p := OSProber{}
	text, ok := p.ReadAllText(file)
	if !ok || text != "Linux version 6.1.0\n" {
		t.Errorf("ReadAllText() = %q, %v", text, ok)
	}

	if _, ok := p.ReadAllText(filepath.Join(t.TempDir(), "absent")); ok {
		t.Error("ReadAllText(absent) should report false")
	}
}

func TestOSProber_RunMissingCommand(t *testing.T) {
	t.Parallel()

	out, ok := OSProber{}.Run(context.Background(), time.Second, "hostprobe-no-such-command")
	if ok || out != "" {
		t.Errorf("Run(missing) = %q, %v; want empty, false", out, ok)
	}
}

func TestOSProber_RunCapturesOutput(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == GOOSWindows {
		t.Skip("uses a POSIX shell")
	}

	out, ok := OSProber{}.Run(context.Background(), 5*time.Second, "sh", "-c", "echo hello; exit 3")
	if !ok {
		t.Fatal("Run() should succeed for a command that completes")
	}
	if out != "hello\n" {
		t.Errorf("Run() = %q, want %q", out, "hello\n")
	}
}

func TestOSProber_RunTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping subprocess test in short mode")
	}
	sleep := sleepCommand(t)

	start := time.Now()
	out, ok := OSProber{}.Run(context.Background(), 100*time.Millisecond, sleep, "10")
	elapsed := time.Since(start)

	if ok || out != "" {
		t.Errorf("Run() = %q, %v; want empty, false on timeout", out, ok)
	}
	if elapsed > 3*time.Second {
		t.Errorf("Run() returned after %v, want about the 100ms timeout", elapsed)
	}
}

func TestOSProber_RunTimeoutWithLingeringChild(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping subprocess test in short mode")
	}
	sleepCommand(t)
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skipf("sh not found in PATH: %v", err)
	}

	// The backgrounded sleep inherits stdout and survives the kill of sh.
	const timeout = 500 * time.Millisecond
	start := time.Now()
	out, ok := OSProber{}.Run(context.Background(), timeout, "sh", "-c", "sleep 5 & sleep 5")
	elapsed := time.Since(start)

	if ok || out != "" {
		t.Errorf("Run() = %q, %v; want empty, false on timeout", out, ok)
	}
	if limit := timeout + 150*time.Millisecond; elapsed > limit {
		t.Errorf("Run() returned after %v, want within %v", elapsed, limit)
	}
}

func TestPipeDrainDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		timeout time.Duration
		want    time.Duration
	}{
		{time.Second, maxPipeDrain},
		{10 * time.Second, maxPipeDrain},
		{200 * time.Millisecond, 50 * time.Millisecond},
		{2 * time.Millisecond, minPipeDrain},
		{0, minPipeDrain},
	}

	for _, tt := range tests {
		got := pipeDrainDelay(tt.timeout)
		if got != tt.want {
			t.Errorf("pipeDrainDelay(%v) = %v, want %v", tt.timeout, got, tt.want)
		}
		if tt.timeout > 0 && got >= tt.timeout {
			t.Errorf("pipeDrainDelay(%v) = %v leaves no time for the command", tt.timeout, got)
		}
	}
}
