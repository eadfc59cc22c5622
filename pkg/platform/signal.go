// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"runtime"
	"strconv"
)

// OS family signals. The numeric values follow the classic host platform IDs.
const (
	SignalWin32S       Signal = 0
	SignalWin32NT      Signal = 1
	SignalWin32Windows Signal = 2
	SignalWinCE        Signal = 3
	SignalUnix         Signal = 4
	SignalXbox         Signal = 5
	SignalMacOSX       Signal = 6
	SignalUnix128      Signal = 128

	// SignalOther is reported for hosts outside every known family.
	SignalOther Signal = 255
)

// Signal is the coarse OS family tag supplied by the host before finer classification.
type Signal int

// String returns the name of the signal, or its number when unrecognized.
func (s Signal) String() string {
	switch s {
	case SignalWin32S:
		return "Win32S"
	case SignalWin32NT:
		return "Win32NT"
	case SignalWin32Windows:
		return "Win32Windows"
	case SignalWinCE:
		return "WinCE"
	case SignalUnix:
		return "Unix"
	case SignalXbox:
		return "Xbox"
	case SignalMacOSX:
		return "MacOSX"
	case SignalUnix128:
		return "Unix128"
	default:
		return "Other(" + strconv.Itoa(int(s)) + ")"
	}
}

// MarshalText renders the signal by name for JSON and TOML output.
func (s Signal) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsMicrosoft reports whether the signal belongs to a Microsoft OS family.
func (s Signal) IsMicrosoft() bool {
	switch s {
	case SignalWin32S, SignalWin32NT, SignalWin32Windows, SignalWinCE, SignalXbox:
		return true
	default:
		return false
	}
}

// HostSignal returns the OS family signal of the running process.
// Every Unix-like GOOS, including darwin and android, reports SignalUnix
// so that the detector narrows it down by probing.
func HostSignal() Signal {
	return signalForGOOS(runtime.GOOS)
}

func signalForGOOS(goos string) Signal {
	switch goos {
	case GOOSWindows:
		return SignalWin32NT
	case GOOSJS, GOOSWASIP1, GOOSPlan9:
		return SignalOther
	default:
		return SignalUnix
	}
}
