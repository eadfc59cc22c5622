// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hostprobe/hostprobe/pkg/locator"
)

// Cache keys, one per memoized query.
const (
	KeyType                = "Type"
	KeyIsMicrosoft         = "IsMicrosoft"
	KeyIsAndroid           = "IsAndroid"
	KeyIsMono              = "IsMono"
	KeySystemVersionString = "SystemVersionString"
	KeySandbox             = "Sandbox"
)

const (
	// DefaultProbeTimeout bounds the version command.
	DefaultProbeTimeout = time.Second
	// DefaultKernelInfoPath is read for the version string before running a command.
	DefaultKernelInfoPath = "/proc/version"

	// macOSLibcPath only exists on macOS.
	macOSLibcPath = "/usr/lib/libc.dylib"
)

// DefaultVersionCommand is run when the kernel information file is unavailable.
var DefaultVersionCommand = []string{"uname", "-a"}

// defaultDetector is the process-wide detector returned by Default.
//
// INVARIANT: New MUST NOT panic. sync.OnceValue re-panics on every call after
// a panicking initializer, which would turn one bad probe into a permanent crash.
var defaultDetector = sync.OnceValue(func() *Detector {
	return New()
})

type (
	// Detector classifies the running platform. Each query is computed once and
	// cached; a Detector is safe for concurrent use.
	Detector struct {
		signal         Signal
		locator        locator.Locator
		prober         Prober
		nativeVersion  func() string
		lookupEnv      func(string) string
		kernelInfoPath string
		versionCommand []string
		probeTimeout   time.Duration
		logger         *slog.Logger
		cache          *Cache
	}

	// Option configures a Detector.
	Option func(*Detector)
)

// WithSignal overrides the OS family signal (default HostSignal()).
func WithSignal(s Signal) Option {
	return func(d *Detector) {
		d.signal = s
	}
}

// WithLocator sets the runtime-marker locator (default locator.NewScanner()).
func WithLocator(l locator.Locator) Option {
	return func(d *Detector) {
		d.locator = l
	}
}

// WithProber sets the environment prober (default OSProber).
func WithProber(p Prober) Option {
	return func(d *Detector) {
		d.prober = p
	}
}

// WithNativeVersion overrides the native OS descriptor source (default NativeVersion).
func WithNativeVersion(fn func() string) Option {
	return func(d *Detector) {
		d.nativeVersion = fn
	}
}

// WithLookupEnv overrides environment lookups (default os.Getenv).
func WithLookupEnv(fn func(string) string) Option {
	return func(d *Detector) {
		d.lookupEnv = fn
	}
}

// WithKernelInfoPath sets the kernel information file. An empty path disables the file read.
func WithKernelInfoPath(path string) Option {
	return func(d *Detector) {
		d.kernelInfoPath = path
	}
}

// WithVersionCommand sets the command run to obtain the version string.
// An empty command disables the subprocess probe.
func WithVersionCommand(name string, args ...string) Option {
	return func(d *Detector) {
		if name == "" {
			d.versionCommand = nil
			return
		}
		d.versionCommand = append([]string{name}, args...)
	}
}

// WithProbeTimeout bounds the version command. Non-positive values are ignored.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(d *Detector) {
		if timeout > 0 {
			d.probeTimeout = timeout
		}
	}
}

// WithLogger sets the logger for probe diagnostics (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithCache shares an existing cache. Detectors sharing a cache share answers.
func WithCache(c *Cache) Option {
	return func(d *Detector) {
		if c != nil {
			d.cache = c
		}
	}
}

// New creates a Detector. Nothing is probed until the first query.
func New(opts ...Option) *Detector {
	d := &Detector{
		signal:         HostSignal(),
		nativeVersion:  NativeVersion,
		lookupEnv:      os.Getenv,
		kernelInfoPath: DefaultKernelInfoPath,
		versionCommand: append([]string(nil), DefaultVersionCommand...),
		probeTimeout:   DefaultProbeTimeout,
		logger:         slog.Default(),
		cache:          NewCache(),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.locator == nil {
		d.locator = locator.NewScanner()
	}
	if d.prober == nil {
		d.prober = OSProber{Logger: d.logger}
	}

	return d
}

// Default returns the process-wide Detector. Its answers never change once computed.
func Default() *Detector {
	return defaultDetector()
}

// CurrentType returns the platform type of the running process.
func CurrentType() Type {
	return Default().Type()
}

// Signal returns the OS family signal the detector classifies.
func (d *Detector) Signal() Signal {
	return d.signal
}

// Cache returns the detector's memoization table.
func (d *Detector) Cache() *Cache {
	return d.cache
}

// Type returns the platform type. The result is cached under KeyType.
func (d *Detector) Type() Type {
	return Memo(d.cache, KeyType, d.detectType)
}

// IsMicrosoft reports whether the OS family is Microsoft-like.
func (d *Detector) IsMicrosoft() bool {
	return Memo(d.cache, KeyIsMicrosoft, d.signal.IsMicrosoft)
}

// IsAndroid reports whether the Android runtime marker is present.
func (d *Detector) IsAndroid() bool {
	return Memo(d.cache, KeyIsAndroid, func() bool {
		return d.locator.Exists(locator.Android)
	})
}

// IsMono reports whether the Mono runtime marker is present.
func (d *Detector) IsMono() bool {
	return Memo(d.cache, KeyIsMono, func() bool {
		return d.locator.Exists(locator.Mono)
	})
}

// SystemVersionString returns a single-line description of the OS name and
// version. It may be empty when nothing could be determined.
func (d *Detector) SystemVersionString() string {
	return Memo(d.cache, KeySystemVersionString, d.detectVersion)
}

func (d *Detector) detectType() Type {
	switch d.signal {
	case SignalWin32S, SignalWin32NT, SignalWin32Windows:
		return Windows
	case SignalWinCE:
		return CompactFramework
	case SignalXbox:
		return Xbox
	case SignalMacOSX:
		return MacOS
	case SignalUnix128:
		return UnknownUnix
	case SignalUnix:
		return d.detectUnix()
	default:
		return Unknown
	}
}

func (d *Detector) detectUnix() Type {
	if d.IsAndroid() {
		return Android
	}

	if d.prober.PathExists(macOSLibcPath) {
		return MacOS
	}

	t := TypeFromVersion(d.SystemVersionString())
	d.logger.Debug("classified unix host", "type", t)
	return t
}

func (d *Detector) detectVersion() string {
	version := d.nativeVersion()

	switch {
	case d.IsMicrosoft():
	case d.IsAndroid():
		version = "Android " + version
	default:
		if text, ok := d.readKernelInfo(); ok {
			version = text
		} else if out, ok := d.runVersionCommand(); ok {
			version = out
		}
	}

	return firstLine(version)
}

func (d *Detector) readKernelInfo() (string, bool) {
	if d.kernelInfoPath == "" || !d.prober.PathExists(d.kernelInfoPath) {
		return "", false
	}

	text, ok := d.prober.ReadAllText(d.kernelInfoPath)
	if !ok || strings.TrimSpace(text) == "" {
		d.logger.Debug("kernel info unreadable", "path", d.kernelInfoPath)
		return "", false
	}
	return text, true
}

func (d *Detector) runVersionCommand() (string, bool) {
	if len(d.versionCommand) == 0 {
		return "", false
	}

	out, ok := d.prober.Run(context.Background(), d.probeTimeout, d.versionCommand[0], d.versionCommand[1:]...)
	if !ok || strings.TrimSpace(out) == "" {
		d.logger.Debug("version command gave no output, keeping native descriptor", "command", d.versionCommand[0])
		return "", false
	}
	return out, true
}

// firstLine truncates s at its first newline and trims surrounding whitespace.
func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
