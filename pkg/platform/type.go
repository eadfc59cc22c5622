// SPDX-License-Identifier: MPL-2.0

package platform

import "strings"

const (
	// Unknown is returned when the OS family signal is not recognized.
	Unknown Type = iota
	// Windows covers the Win32 families as well as Cygwin and MSYS environments.
	Windows
	// CompactFramework is Windows CE.
	CompactFramework
	// Linux is any Linux distribution except Android.
	Linux
	// MacOS is Apple macOS (Darwin).
	MacOS
	// Solaris is Oracle/Sun Solaris.
	Solaris
	// BSD is a BSD system whose version string starts with "bsd".
	BSD
	// UnknownUnix is a Unix-family system that could not be narrowed down.
	UnknownUnix
	// Android is the Android runtime.
	Android
	// Xbox is the Xbox console.
	Xbox
)

// Type identifies the platform the process runs on.
type Type int

// versionPrefixes lists the lower-case version-string prefixes checked for
// Unix-family hosts, in precedence order.
var versionPrefixes = []struct {
	prefix string
	typ    Type
}{
	{"linux", Linux},
	{"darwin", MacOS},
	{"solaris", Solaris},
	{"bsd", BSD},
	{"msys", Windows},
	{"cygwin", Windows},
}

// String returns the name of the platform type.
func (t Type) String() string {
	switch t {
	case Unknown:
		return "Unknown"
	case Windows:
		return "Windows"
	case CompactFramework:
		return "CompactFramework"
	case Linux:
		return "Linux"
	case MacOS:
		return "MacOS"
	case Solaris:
		return "Solaris"
	case BSD:
		return "BSD"
	case UnknownUnix:
		return "UnknownUnix"
	case Android:
		return "Android"
	case Xbox:
		return "Xbox"
	default:
		return "Unknown"
	}
}

// MarshalText renders the type by name for JSON and TOML output.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// TypeFromVersion classifies a Unix-family version string by prefix.
// Only the start of the lower-cased string is examined, so "Darwin ... bsd"
// is MacOS. Strings matching no known prefix yield UnknownUnix.
func TypeFromVersion(version string) Type {
	lower := strings.ToLower(version)
	for _, p := range versionPrefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.typ
		}
	}
	return UnknownUnix
}
