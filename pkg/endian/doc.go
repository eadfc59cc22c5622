// SPDX-License-Identifier: MPL-2.0

// Package endian swaps byte order for fixed-width unsigned integers and for
// byte buffers split into fixed-size groups.
//
// The scalar functions are the hot path for wire and binary-format interop
// across architectures; SwapBuffer is the general form they specialize.
package endian
