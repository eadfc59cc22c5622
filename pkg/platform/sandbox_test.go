// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"testing"

	"github.com/hostprobe/hostprobe/pkg/locator"
)

func TestDetectSandboxFrom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		env      map[string]string
		paths    map[string]bool
		expected SandboxType
	}{
		{
			name:     "no sandbox",
			expected: SandboxNone,
		},
		{
			name:     "flatpak info file",
			paths:    map[string]bool{flatpakInfoPath: true},
			expected: SandboxFlatpak,
		},
		{
			name:     "snap name set",
			env:      map[string]string{snapNameEnv: "test-snap"},
			expected: SandboxSnap,
		},
		{
			name:     "flatpak takes precedence over snap",
			env:      map[string]string{snapNameEnv: "test-snap"},
			paths:    map[string]bool{flatpakInfoPath: true},
			expected: SandboxFlatpak,
		},
		{
			name:     "empty snap name ignored",
			env:      map[string]string{snapNameEnv: ""},
			expected: SandboxNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lookupEnv := func(key string) string { return tt.env[key] }
			pathExists := func(path string) bool { return tt.paths[path] }

			if got := detectSandboxFrom(lookupEnv, pathExists); got != tt.expected {
				t.Errorf("detectSandboxFrom() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDetector_SandboxCaching(t *testing.T) {
	t.Parallel()

	snapName := ""
	d := New(
		WithSignal(SignalUnix),
		WithLocator(locator.Static{}),
		WithProber(&fakeProber{}),
		WithLookupEnv(func(string) string { return snapName }),
	)

	first := d.Sandbox()
	snapName = "test-snap"
	second := d.Sandbox()

	if first != SandboxNone {
		t.Errorf("first Sandbox() = %q, want none", first)
	}
	if first != second {
		t.Errorf("Sandbox() should return cached result: first=%q, second=%q", first, second)
	}
}

func TestSandboxType_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sandbox  SandboxType
		expected string
	}{
		{SandboxNone, "none"},
		{SandboxFlatpak, "flatpak"},
		{SandboxSnap, "snap"},
	}

	for _, tt := range tests {
		if got := tt.sandbox.String(); got != tt.expected {
			t.Errorf("SandboxType(%q).String() = %q, want %q", string(tt.sandbox), got, tt.expected)
		}
		text, err := tt.sandbox.MarshalText()
		if err != nil || string(text) != tt.expected {
			t.Errorf("SandboxType(%q).MarshalText() = %q, %v; want %q", string(tt.sandbox), text, err, tt.expected)
		}
	}
}

func TestSandboxTypeConstants(t *testing.T) {
	t.Parallel()

	types := []SandboxType{SandboxNone, SandboxFlatpak, SandboxSnap}
	seen := make(map[SandboxType]bool)

	for _, st := range types {
		if seen[st] {
			t.Errorf("duplicate SandboxType constant: %q", st)
		}
		seen[st] = true
	}

	// SandboxNone stays the zero value so callers can test it directly.
	if SandboxNone != "" {
		t.Errorf("SandboxNone should be empty string, got %q", SandboxNone)
	}
}
