// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/hostprobe/hostprobe/cmd/hostprobe"

func main() {
	cmd.Execute()
}
