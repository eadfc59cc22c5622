// SPDX-License-Identifier: MPL-2.0

package platform

// Sandbox type constants.
const (
	// SandboxNone indicates no sandbox environment detected.
	SandboxNone SandboxType = ""
	// SandboxFlatpak indicates a Flatpak sandbox environment.
	SandboxFlatpak SandboxType = "flatpak"
	// SandboxSnap indicates a Snap sandbox environment.
	SandboxSnap SandboxType = "snap"

	flatpakInfoPath = "/.flatpak-info"
	snapNameEnv     = "SNAP_NAME"
)

// SandboxType identifies the application sandbox the process runs in, if any.
type SandboxType string

// String returns "none" for SandboxNone and the sandbox name otherwise.
func (st SandboxType) String() string {
	if st == SandboxNone {
		return "none"
	}
	return string(st)
}

// MarshalText renders "none" for SandboxNone so reports never carry an empty value.
func (st SandboxType) MarshalText() ([]byte, error) {
	return []byte(st.String()), nil
}

// DetectSandbox returns the sandbox of the current process using the default detector.
func DetectSandbox() SandboxType {
	return Default().Sandbox()
}

// Sandbox returns the application sandbox the process runs in. Flatpak takes
// precedence over Snap. The result is cached under KeySandbox.
func (d *Detector) Sandbox() SandboxType {
	return Memo(d.cache, KeySandbox, func() SandboxType {
		return detectSandboxFrom(d.lookupEnv, d.prober.PathExists)
	})
}

// detectSandboxFrom performs sandbox detection with injected lookups.
func detectSandboxFrom(lookupEnv func(string) string, pathExists func(string) bool) SandboxType {
	// /.flatpak-info is always present inside Flatpak sandboxes.
	if pathExists(flatpakInfoPath) {
		return SandboxFlatpak
	}

	// SNAP_NAME is set for all snaps.
	if lookupEnv(snapNameEnv) != "" {
		return SandboxSnap
	}

	return SandboxNone
}
