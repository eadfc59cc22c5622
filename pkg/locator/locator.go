// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
)

// Marker identifiers consumed by platform detection.
const (
	// Android marks the Android runtime.
	Android = "Mono.Android"
	// Mono marks the Mono runtime.
	Mono = "Mono.Runtime"
)

// Sources a marker can be resolved from.
const (
	// SourceModuleMap means a shared object matching the marker is mapped into the process.
	SourceModuleMap Source = "module-map"
	// SourceBuildInfo means the marker names a Go module linked into the binary.
	SourceBuildInfo Source = "build-info"
	// SourceGOOS means the binary targets the operating system the marker stands for.
	SourceGOOS Source = "goos"
)

// defaultModuleMapPath lists the shared objects mapped into the current process on Linux.
const defaultModuleMapPath = "/proc/self/maps"

// defaultPatterns maps markers to shared-object name fragments that only the
// corresponding runtime loads.
var defaultPatterns = map[string][]string{
	Android: {"libmonodroid", "libandroid_runtime", "libart.so"},
	Mono:    {"libmonosgen", "libmono-2.0", "libmononative"},
}

type (
	// Locator reports whether a runtime component identified by a marker
	// is resolvable in the current process. Implementations must not panic.
	Locator interface {
		Exists(marker string) bool
	}

	// Source identifies where a marker was found.
	Source string

	// Module describes a resolved marker.
	Module struct {
		// Marker is the requested marker name.
		Marker string
		// Source tells which scan matched.
		Source Source
		// Path is the matched shared object, module path, or GOOS.
		Path string
	}

	// Static answers from a fixed table. Unknown markers are absent.
	Static map[string]bool

	// Func adapts an ordinary function to the Locator interface.
	Func func(marker string) bool

	// Scanner is the production Locator. It inspects the process module map,
	// the Go build information, and the target GOOS.
	Scanner struct {
		moduleMapPath string
		goos          string
		readFile      func(string) ([]byte, error)
		buildInfo     func() (*debug.BuildInfo, bool)
		patterns      map[string][]string
	}

	// ScannerOption configures a Scanner.
	ScannerOption func(*Scanner)
)

// Exists implements Locator.
func (s Static) Exists(marker string) bool {
	return s[marker]
}

// Exists implements Locator.
func (f Func) Exists(marker string) bool {
	return f(marker)
}

// WithModuleMapPath overrides the module map location (default /proc/self/maps).
func WithModuleMapPath(path string) ScannerOption {
	return func(s *Scanner) {
		s.moduleMapPath = path
	}
}

// WithGOOS overrides the operating system the scanner assumes it was built for.
func WithGOOS(goos string) ScannerOption {
	return func(s *Scanner) {
		s.goos = goos
	}
}

// WithBuildInfo overrides the build information source.
func WithBuildInfo(fn func() (*debug.BuildInfo, bool)) ScannerOption {
	return func(s *Scanner) {
		s.buildInfo = fn
	}
}

// WithPattern registers an additional shared-object name fragment for marker.
func WithPattern(marker, fragment string) ScannerOption {
	return func(s *Scanner) {
		s.patterns[marker] = append(s.patterns[marker], fragment)
	}
}

// NewScanner creates a Scanner for the running process.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		moduleMapPath: defaultModuleMapPath,
		goos:          runtime.GOOS,
		readFile:      os.ReadFile,
		buildInfo:     debug.ReadBuildInfo,
		patterns:      make(map[string][]string, len(defaultPatterns)),
	}
	for marker, fragments := range defaultPatterns {
		s.patterns[marker] = append([]string(nil), fragments...)
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Exists implements Locator.
func (s *Scanner) Exists(marker string) bool {
	_, ok := s.Lookup(marker)
	return ok
}

// Lookup resolves marker and reports where it was found.
// The GOOS check runs first, then the module map, then the build information.
func (s *Scanner) Lookup(marker string) (Module, bool) {
	if marker == "" {
		return Module{}, false
	}

	if marker == Android && s.goos == "android" {
		return Module{Marker: marker, Source: SourceGOOS, Path: s.goos}, true
	}

	if path, ok := s.scanModuleMap(marker); ok {
		return Module{Marker: marker, Source: SourceModuleMap, Path: path}, true
	}

	if path, ok := s.scanBuildInfo(marker); ok {
		return Module{Marker: marker, Source: SourceBuildInfo, Path: path}, true
	}

	return Module{}, false
}

// scanModuleMap looks for a mapped shared object whose base name contains
// one of the marker's registered fragments.
func (s *Scanner) scanModuleMap(marker string) (string, bool) {
	fragments := s.patterns[marker]
	if len(fragments) == 0 || s.moduleMapPath == "" {
		return "", false
	}

	data, err := s.readFile(s.moduleMapPath)
	if err != nil {
		return "", false
	}

	for line := range strings.Lines(string(data)) {
		fields := strings.Fields(line)
		// address perms offset dev inode [pathname]
		if len(fields) < 6 {
			continue
		}
		path := strings.Join(fields[5:], " ")
		base := filepath.Base(path)
		for _, fragment := range fragments {
			if strings.Contains(base, fragment) {
				return path, true
			}
		}
	}

	return "", false
}

// scanBuildInfo reports whether marker equals the main module or a dependency path.
func (s *Scanner) scanBuildInfo(marker string) (string, bool) {
	if s.buildInfo == nil {
		return "", false
	}

	info, ok := s.buildInfo()
	if !ok || info == nil {
		return "", false
	}

	if info.Main.Path == marker {
		return info.Main.Path, true
	}
	for _, dep := range info.Deps {
		if dep != nil && dep.Path == marker {
			return dep.Path, true
		}
	}

	return "", false
}
