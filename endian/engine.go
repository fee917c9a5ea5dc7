// Package endian provides the byte-order engine used by the archive's binary
// codecs.
//
// Every byte-aligned multi-byte field (the FileSize64 TOC entry and the
// dictionary and user-data section headers) is written and parsed
// little-endian through this engine. The bit-packed fields go through
// internal/bitpack instead, which does not use this package. The small
// EndianEngine abstraction, rather than hardcoded encoding/binary.LittleEndian
// calls, gives those codecs one interface for Put/Append operations and lets
// tests exercise a deliberately wrong byte order.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface, so callers writing growable buffers (the string
// pool encoder, the dictionary section writer) get Append* without juggling
// a second interface.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness reports the host's native byte order using a fixed integer
// probe. The on-disk archive format is little-endian regardless of host
// order; this is used only by diagnostics and the endian package's own tests.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. On a little-endian system the LSB (0x00) sits first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host's native byte order is little-endian.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// Engine is the single EndianEngine every Nx codec uses. The archive format
// has no big-endian mode, so this exposes one engine rather than a pair of
// constructors.
func Engine() EndianEngine {
	return binary.LittleEndian
}
