// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/hostprobe/hostprobe/internal/issue"
	"github.com/hostprobe/hostprobe/pkg/endian"

	"github.com/spf13/cobra"
)

func newSwapCommand() *cobra.Command {
	var width int

	swapCmd := &cobra.Command{
		Use:   "swap [flags] <hex>...",
		Short: "Reverse the byte order inside fixed-width groups",
		Long: `Reverse the byte order inside every group of --width bytes.

Input is hexadecimal; arguments are concatenated and may contain spaces,
colons or a 0x prefix. A trailing partial group is reversed over the
bytes that remain.`,
		Example: `  hostprobe swap --width 4 0a0b0c0d
  hostprobe swap --width 2 de:ad:be:ef`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := swapHex(strings.Join(args, ""), width)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	swapCmd.Flags().IntVarP(&width, "width", "w", 4, "group width in bytes (at least 2)")

	return swapCmd
}

// swapHex decodes input, swaps it in width-byte groups and returns the groups
// hex encoded and separated by spaces.
func swapHex(input string, width int) (string, error) {
	data, err := decodeHex(input)
	if err != nil {
		return "", swapInputError(err)
	}

	swapped, err := endian.SwapBuffer(data, width)
	if err != nil {
		return "", swapInputError(err)
	}

	var groups []string
	for rest := swapped; len(rest) > 0; {
		n := min(width, len(rest))
		groups = append(groups, hex.EncodeToString(rest[:n]))
		rest = rest[n:]
	}
	return strings.Join(groups, " "), nil
}

func decodeHex(input string) ([]byte, error) {
	clean := strings.NewReplacer(" ", "", ":", "", "\t", "", "\n", "").Replace(input)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("decode hex input: %w", err)
	}
	return data, nil
}

func swapInputError(err error) error {
	return issue.NewErrorContext().
		WithOperation("swap bytes").
		WithSuggestion("Pass hexadecimal bytes, for example 0a0b0c0d").
		WithSuggestion("Use a --width of 2 or more").
		WithIssue(issue.InvalidSwapInputId).
		Wrap(err).
		BuildError()
}
