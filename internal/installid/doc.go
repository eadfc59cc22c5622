// SPDX-License-Identifier: MPL-2.0

// Package installid persists a per-installation GUID and derives a 32-bit
// program identifier from it and the program's base directory.
package installid
