// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/hostprobe/hostprobe/internal/config"

	"github.com/spf13/cobra"
)

func newShowCommand(app *App) *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the platform report",
		Long: `Print the platform report: platform type, OS family signal, runtime
markers, system version string, sandbox and byte order.

The default format comes from ui.format in the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := app.currentConfig().UI.Format
			if cmd.Flags().Changed("format") {
				f = config.OutputFormat(format)
			}
			if err := f.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			data, err := renderReport(app.detector().Report(), f, isTerminal(out))
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", string(config.FormatText), "output format (text, json, toml, markdown)")

	return showCmd
}
