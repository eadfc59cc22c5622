// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hostprobe/hostprobe/internal/config"
	"github.com/hostprobe/hostprobe/internal/installid"
	"github.com/hostprobe/hostprobe/internal/issue"
	"github.com/hostprobe/hostprobe/pkg/platform"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// App holds the dependencies shared by all commands of one CLI invocation.
type App struct {
	// Config loads configuration files.
	Config config.Provider
	// DetectorOptions are applied after the configured probe options.
	DetectorOptions []platform.Option

	verbose    bool
	configFile string

	// installDefaultLogger makes setupLogging replace the process-wide slog
	// default. Only Execute sets it.
	installDefaultLogger bool

	cfg     *config.Config
	cfgPath string
	logger  *log.Logger
}

// NewApp creates an App backed by the file configuration provider.
func NewApp() *App {
	return &App{Config: config.NewProvider()}
}

// loadConfig loads the configuration once per invocation and configures logging.
func (a *App) loadConfig(ctx context.Context, stderr io.Writer) error {
	cfg, path, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configFile})
	if err != nil {
		a.setupLogging(stderr, nil)
		return err
	}

	a.cfg, a.cfgPath = cfg, path
	a.setupLogging(stderr, cfg)
	if path != "" {
		a.logger.Debug("loaded configuration", "path", path)
	}
	return nil
}

// setupLogging builds the charmbracelet logger. Debug level is enabled by
// --verbose or ui.verbose.
func (a *App) setupLogging(stderr io.Writer, cfg *config.Config) {
	level := log.InfoLevel
	if a.verbose || (cfg != nil && cfg.UI.Verbose) {
		level = log.DebugLevel
	}

	a.logger = log.NewWithOptions(stderr, log.Options{
		Level:           level,
		ReportTimestamp: level == log.DebugLevel,
	})
	if a.installDefaultLogger {
		slog.SetDefault(slog.New(a.logger))
	}
}

// currentConfig returns the loaded configuration, or defaults when loading was skipped.
func (a *App) currentConfig() *config.Config {
	if a.cfg == nil {
		return config.DefaultConfig()
	}
	return a.cfg
}

// slogger exposes the CLI logger to library packages that log through slog.
func (a *App) slogger() *slog.Logger {
	if a.logger == nil {
		return slog.Default()
	}
	return slog.New(a.logger)
}

// detector builds a platform detector from the probe configuration.
func (a *App) detector() *platform.Detector {
	opts := a.currentConfig().Probe.DetectorOptions()
	opts = append(opts, platform.WithLogger(a.slogger()))
	opts = append(opts, a.DetectorOptions...)
	return platform.New(opts...)
}

// installStore opens the installation identity store.
func (a *App) installStore() (*installid.Store, error) {
	dir, err := config.InstallationDir(a.currentConfig())
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("locate installation directory").
			WithIssue(issue.InstallationIdFailedId).
			Wrap(err).
			BuildError()
	}
	return installid.NewStore(dir, installid.WithLogger(a.slogger())), nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
