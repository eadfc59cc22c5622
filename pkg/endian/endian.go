// SPDX-License-Identifier: MPL-2.0

package endian

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

const (
	// None indicates the native byte order could not be determined.
	None Type = iota
	// LittleEndian stores the least significant byte first.
	LittleEndian
	// BigEndian stores the most significant byte first.
	BigEndian
)

// ErrInvalidArgument is returned when a swap is requested with an unusable group size.
var ErrInvalidArgument = errors.New("invalid argument")

type (
	// Type identifies a byte order.
	Type int

	// InvalidGroupSizeError is returned by SwapBuffer when the group size is below 2.
	// It wraps ErrInvalidArgument for errors.Is() compatibility.
	InvalidGroupSizeError struct {
		GroupSize int
	}
)

// String returns a human-readable name for the byte order.
func (t Type) String() string {
	switch t {
	case LittleEndian:
		return "little-endian"
	case BigEndian:
		return "big-endian"
	default:
		return "none"
	}
}

// Error implements the error interface.
func (e *InvalidGroupSizeError) Error() string {
	return fmt.Sprintf("invalid group size %d (must be >= 2)", e.GroupSize)
}

// Unwrap returns ErrInvalidArgument for errors.Is() compatibility.
func (e *InvalidGroupSizeError) Unwrap() error {
	return ErrInvalidArgument
}

// SwapUint16 exchanges the high and low byte of v.
func SwapUint16(v uint16) uint16 {
	return bits.ReverseBytes16(v)
}

// SwapUint32 reverses the byte order of v.
func SwapUint32(v uint32) uint32 {
	return bits.ReverseBytes32(v)
}

// SwapUint64 reverses the byte order of v.
func SwapUint64(v uint64) uint64 {
	return bits.ReverseBytes64(v)
}

// SwapBuffer returns a copy of data with the byte order reversed inside every
// consecutive group of groupSize bytes. Group order is preserved. When
// len(data) is not a multiple of groupSize, the trailing partial group is
// reversed over the bytes that remain.
//
// The input slice is never modified. A groupSize below 2 returns a nil slice
// and an *InvalidGroupSizeError.
func SwapBuffer(data []byte, groupSize int) ([]byte, error) {
	if groupSize < 2 {
		return nil, &InvalidGroupSizeError{GroupSize: groupSize}
	}

	result := make([]byte, len(data))
	for start := 0; start < len(data); start += groupSize {
		end := min(start+groupSize, len(data))
		for i, j := start, end-1; i < end; i, j = i+1, j-1 {
			result[j] = data[i]
		}
	}
	return result, nil
}

// Machine returns the byte order of the running architecture.
func Machine() Type {
	return machineFrom(binary.NativeEndian)
}

// machineFrom classifies an arbitrary ByteOrder by decoding a known pattern.
func machineFrom(order binary.ByteOrder) Type {
	probe := []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0}
	switch order.Uint64(probe) {
	case 0xF0DEBC9A78563412:
		return LittleEndian
	case 0x123456789ABCDEF0:
		return BigEndian
	default:
		return None
	}
}
