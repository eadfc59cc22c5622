// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors for the hostprobe CLI.
//
// An ActionableError names the failed operation, the resource involved and
// suggestions for fixing it. It may point at a catalog Issue, a markdown
// troubleshooting guide rendered with glamour.
package issue
