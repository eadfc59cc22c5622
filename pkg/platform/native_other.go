// SPDX-License-Identifier: MPL-2.0

//go:build !unix && !windows

package platform

import "runtime"

// NativeVersion returns the GOOS name; hosts outside the Unix and Windows
// families expose no richer descriptor.
func NativeVersion() string {
	return runtime.GOOS
}
