// SPDX-License-Identifier: MPL-2.0

//go:build unix

package platform

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// NativeVersion returns the short OS descriptor the host exposes natively:
// the kernel name and release, e.g. "Linux 6.8.0-45-generic".
func NativeVersion() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return runtime.GOOS
	}

	sysname := unix.ByteSliceToString(uts.Sysname[:])
	release := unix.ByteSliceToString(uts.Release[:])
	if release == "" {
		return sysname
	}
	return sysname + " " + release
}
