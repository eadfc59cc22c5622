// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/hostprobe/hostprobe/pkg/endian"

	"github.com/spf13/cobra"
)

func newEndianCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "endian",
		Short: "Print the native byte order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), endian.Machine())
			return nil
		},
	}
}
