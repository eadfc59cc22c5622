// SPDX-License-Identifier: MPL-2.0

package platform

// GOOS name constants for runtime.GOOS comparisons.
const (
	GOOSWindows = "windows"
	GOOSDarwin  = "darwin"
	GOOSLinux   = "linux"
	GOOSAndroid = "android"
	GOOSJS      = "js"
	GOOSWASIP1  = "wasip1"
	GOOSPlan9   = "plan9"
)
