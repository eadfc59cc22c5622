// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that fail the test on setup errors
// and restore process state afterwards: environment variables (MustSetenv,
// MustUnsetenv, SetHomeDir), the working directory (MustChdir), files
// (MustWriteFile) and resource cleanup (MustClose, MustStop).
package testutil
