// SPDX-License-Identifier: MPL-2.0

//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// NativeVersion returns the short OS descriptor the host exposes natively,
// e.g. "Microsoft Windows NT 10.0.22631".
func NativeVersion() string {
	v := windows.RtlGetVersion()
	return fmt.Sprintf("Microsoft Windows NT %d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber)
}
