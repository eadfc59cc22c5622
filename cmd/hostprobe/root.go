// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hostprobe/hostprobe/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// skipConfigAnnotation marks commands that must run even when the config file is broken.
const skipConfigAnnotation = "hostprobe/skip-config"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the hostprobe command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hostprobe",
		Short: "Identify the host platform and inspect byte order",
		Long: TitleStyle.Render("hostprobe") + SubtitleStyle.Render(" - Identify the host platform and inspect byte order") + `

hostprobe classifies the operating system it runs on, reports the
kernel version string, and converts data between byte orders.

` + SubtitleStyle.Render("Examples:") + `
  hostprobe show                  Print the platform report
  hostprobe show --format json    Print the report as JSON
  hostprobe swap --width 4 0a0b0c0d
  hostprobe serve                 Serve the report over SSH`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfigAnnotation] == "true" {
				app.setupLogging(cmd.ErrOrStderr(), nil)
				return nil
			}
			return app.loadConfig(cmd.Context(), cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&app.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/hostprobe/config.cue)")

	rootCmd.AddCommand(newShowCommand(app))
	rootCmd.AddCommand(newSwapCommand())
	rootCmd.AddCommand(newEndianCommand())
	rootCmd.AddCommand(newIDCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newServeCommand(app))

	return rootCmd
}

// Execute runs the CLI and exits the process with a non-zero status on failure.
// This is called by main.main().
func Execute() {
	app := NewApp()
	app.installDefaultLogger = true

	rootCmd := NewRootCommand(app)
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		renderIssueGuide(os.Stderr, err)
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// renderIssueGuide prints the troubleshooting guide linked to err, if any.
// fang has already printed the error itself.
func renderIssueGuide(w io.Writer, err error) {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return
	}

	guide := ae.Issue()
	if guide == nil {
		return
	}

	style := "notty"
	if isTerminal(w) {
		style = "dark"
	}
	rendered, renderErr := guide.Render(style)
	if renderErr != nil {
		return
	}
	fmt.Fprint(w, rendered)
}
