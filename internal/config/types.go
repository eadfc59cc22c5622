// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hostprobe/hostprobe/pkg/platform"
)

const (
	// FormatText renders the report as aligned key/value lines.
	FormatText OutputFormat = "text"
	// FormatJSON renders the report as indented JSON.
	FormatJSON OutputFormat = "json"
	// FormatTOML renders the report as TOML.
	FormatTOML OutputFormat = "toml"
	// FormatMarkdown renders the report as a markdown table.
	FormatMarkdown OutputFormat = "markdown"

	// DefaultServerHost is the report server's default bind address.
	DefaultServerHost = "127.0.0.1"
	// DefaultServerPort is the report server's default port.
	DefaultServerPort = 2222
)

var (
	// ErrInvalidOutputFormat is the sentinel error wrapped by InvalidOutputFormatError.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// OutputFormat selects how reports are rendered.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	// It wraps ErrInvalidOutputFormat for errors.Is() compatibility.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Probe tunes platform detection.
		Probe ProbeConfig `json:"probe" mapstructure:"probe"`
		// Installation locates the installation identity file.
		Installation InstallationConfig `json:"installation" mapstructure:"installation"`
		// Server configures the SSH report server.
		Server ServerConfig `json:"server" mapstructure:"server"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// ProbeConfig tunes the probes behind SystemVersionString.
	ProbeConfig struct {
		// Timeout bounds the version command.
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
		// KernelInfoPath is read before running the version command. Empty disables it.
		KernelInfoPath string `json:"kernel_info_path" mapstructure:"kernel_info_path"`
		// VersionCommand is the command and arguments run for the version string.
		VersionCommand []string `json:"version_command" mapstructure:"version_command"`
	}

	// InstallationConfig locates the installation GUID.
	InstallationConfig struct {
		// Dir holds the GUID file. Empty means the config directory.
		Dir string `json:"dir" mapstructure:"dir"`
	}

	// ServerConfig configures the SSH report server.
	ServerConfig struct {
		Host string `json:"host" mapstructure:"host"`
		// Port 0 picks a free port.
		Port int `json:"port" mapstructure:"port"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Format is the default report format for "show".
		Format OutputFormat `json:"format" mapstructure:"format"`
	}
)

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// Validate returns an *InvalidOutputFormatError when f is not a known format.
func (f OutputFormat) Validate() error {
	switch f {
	case FormatText, FormatJSON, FormatTOML, FormatMarkdown:
		return nil
	default:
		return &InvalidOutputFormatError{Value: f}
	}
}

// Error implements the error interface for InvalidOutputFormatError.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: text, json, toml, markdown)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error {
	return ErrInvalidOutputFormat
}

// Validate checks constraints that survive environment overrides, which
// bypass the CUE schema.
func (c Config) Validate() error {
	var errs []error
	if c.Probe.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("probe.timeout must be positive, got %s", c.Probe.Timeout))
	}
	if len(c.Probe.VersionCommand) > 0 && strings.TrimSpace(c.Probe.VersionCommand[0]) == "" {
		errs = append(errs, errors.New("probe.version_command: command name must not be empty"))
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		errs = append(errs, errors.New("server.host must not be empty"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range 0-65535", c.Server.Port))
	}
	if err := c.UI.Format.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DetectorOptions translates the probe settings into platform detector options.
func (c ProbeConfig) DetectorOptions() []platform.Option {
	opts := []platform.Option{
		platform.WithProbeTimeout(c.Timeout),
		platform.WithKernelInfoPath(c.KernelInfoPath),
	}
	if len(c.VersionCommand) == 0 {
		opts = append(opts, platform.WithVersionCommand(""))
	} else {
		opts = append(opts, platform.WithVersionCommand(c.VersionCommand[0], c.VersionCommand[1:]...))
	}
	return opts
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Probe: ProbeConfig{
			Timeout:        platform.DefaultProbeTimeout,
			KernelInfoPath: platform.DefaultKernelInfoPath,
			VersionCommand: append([]string(nil), platform.DefaultVersionCommand...),
		},
		Installation: InstallationConfig{
			Dir: "", // Will use ConfigDir() if empty
		},
		Server: ServerConfig{
			Host: DefaultServerHost,
			Port: DefaultServerPort,
		},
		UI: UIConfig{
			Verbose: false,
			Format:  FormatText,
		},
	}
}
