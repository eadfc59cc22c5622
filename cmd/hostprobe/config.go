// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/hostprobe/hostprobe/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `hostprobe config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage hostprobe configuration",
		Long: `Manage hostprobe configuration.

Configuration is stored in:
  - Linux: ~/.config/hostprobe/config.cue
  - macOS: ~/Library/Application Support/hostprobe/config.cue
  - Windows: %APPDATA%\hostprobe\config.cue

Every setting can be overridden with a HOSTPROBE_ environment variable,
for example HOSTPROBE_PROBE_TIMEOUT=2s. List settings are split like
a shell command line: HOSTPROBE_PROBE_VERSION_COMMAND="uname -sr".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			showConfig(cmd.OutOrStdout(), app.currentConfig(), app.cfgPath)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Long: `Create the default configuration file. An existing file is kept
unless --force is given, which replaces it with the defaults.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := initConfig(force)
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file with the defaults")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:         "path",
		Short:       "Show configuration file path",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.configFile != "" {
				fmt.Fprintln(cmd.OutOrStdout(), app.configFile)
				return nil
			}
			path, err := config.ConfigFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(app.currentConfig()))
			return nil
		},
	})

	return cfgCmd
}

// initConfig writes the default configuration and returns its path. Without
// force an existing file is left untouched.
func initConfig(force bool) (string, error) {
	if !force {
		return config.CreateDefaultConfig()
	}
	if err := config.Save(config.DefaultConfig()); err != nil {
		return "", err
	}
	return config.ConfigFilePath()
}

func showConfig(w io.Writer, cfg *config.Config, path string) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("probe"))
	fmt.Fprintf(w, "  timeout: %s\n", valueStyle.Render(cfg.Probe.Timeout.String()))
	fmt.Fprintf(w, "  kernel_info_path: %s\n", valueStyle.Render(orNone(cfg.Probe.KernelInfoPath)))
	fmt.Fprintf(w, "  version_command: %s\n", valueStyle.Render(orNone(strings.Join(cfg.Probe.VersionCommand, " "))))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("installation"))
	fmt.Fprintf(w, "  dir: %s\n", valueStyle.Render(orNone(cfg.Installation.Dir)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("server"))
	fmt.Fprintf(w, "  host: %s\n", valueStyle.Render(cfg.Server.Host))
	fmt.Fprintf(w, "  port: %s\n", valueStyle.Render(fmt.Sprint(cfg.Server.Port)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))
	fmt.Fprintf(w, "  format: %s\n", valueStyle.Render(cfg.UI.Format.String()))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
