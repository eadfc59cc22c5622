// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/hostprobe/hostprobe/internal/installid"
	"github.com/hostprobe/hostprobe/internal/issue"

	"github.com/spf13/cobra"
)

// exitCodeZeroProgramID is returned when the derived program ID is the reserved zero value.
const exitCodeZeroProgramID = 2

func newIDCommand(app *App) *cobra.Command {
	var (
		program bool
		baseDir string
	)

	idCmd := &cobra.Command{
		Use:   "id",
		Short: "Print the installation GUID",
		Long: `Print the installation GUID, creating it on first use.

With --program, print the 32-bit program ID derived from the GUID and
the directory holding the hostprobe executable (or --base-dir).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.installStore()
			if err != nil {
				return err
			}

			if !program {
				guid, err := store.GUID()
				if err != nil {
					return installIDError(store.Path(), err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), guid)
				return nil
			}

			if baseDir == "" {
				if baseDir, err = installid.BaseDir(); err != nil {
					return err
				}
			}

			id, err := store.ProgramID(baseDir)
			if errors.Is(err, installid.ErrZeroProgramID) {
				return &ExitError{Code: exitCodeZeroProgramID, Err: err}
			}
			if err != nil {
				return installIDError(store.Path(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", id)
			return nil
		},
	}

	idCmd.Flags().BoolVar(&program, "program", false, "print the program ID instead of the GUID")
	idCmd.Flags().StringVar(&baseDir, "base-dir", "", "base directory for the program ID (default: executable directory)")

	return idCmd
}

func installIDError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("read installation ID").
		WithResource(path).
		WithSuggestion("Check that the directory is writable").
		WithSuggestion("Set installation.dir in the configuration file").
		WithIssue(issue.InstallationIdFailedId).
		Wrap(err).
		BuildError()
}
