// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcexec "github.com/testcontainers/testcontainers-go/exec"

	"github.com/hostprobe/hostprobe/pkg/locator"
)

// containerProber runs every probe inside a container, so the detector
// classifies the container's userland instead of the test host.
type containerProber struct {
	ctx context.Context
	ctr testcontainers.Container
}

func (p containerProber) PathExists(path string) bool {
	code, _, err := p.ctr.Exec(p.ctx, []string{"test", "-e", path})
	return err == nil && code == 0
}

func (p containerProber) ReadAllText(path string) (string, bool) {
	code, r, err := p.ctr.Exec(p.ctx, []string{"cat", path}, tcexec.Multiplexed())
	if err != nil || code != 0 {
		return "", false
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (p containerProber) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (string, bool) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, r, err := p.ctr.Exec(runCtx, append([]string{name}, args...), tcexec.Multiplexed())
	if err != nil {
		return "", false
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// checkTestcontainersAvailable safely checks if testcontainers can be used.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

func TestDetector_LinuxContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping container integration test: testcontainers provider not available")
	}

	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "alpine:3.20",
			Cmd:   []string{"sleep", "300"},
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Skipf("skipping container integration test: failed to start container: %v", err)
	}

	prober := containerProber{ctx: ctx, ctr: ctr}

	t.Run("KernelInfo", func(t *testing.T) {
		d := New(
			WithSignal(SignalUnix),
			WithLocator(locator.Static{}),
			WithProber(prober),
			WithNativeVersion(func() string { return "" }),
		)
		if got := d.Type(); got != Linux {
			t.Errorf("Type() = %s, want Linux (version %q)", got, d.SystemVersionString())
		}
	})

	t.Run("VersionCommand", func(t *testing.T) {
		d := New(
			WithSignal(SignalUnix),
			WithLocator(locator.Static{}),
			WithProber(prober),
			WithKernelInfoPath(""),
			WithProbeTimeout(10*time.Second),
			WithNativeVersion(func() string { return "" }),
		)
		if got := d.Type(); got != Linux {
			t.Errorf("Type() = %s, want Linux (version %q)", got, d.SystemVersionString())
		}
	})
}
