// Package op defines the QT instruction set: the packed word format,
// the opcode numbering and the flag register layout.
package op

import (
	"encoding/binary"
)

// Endian is the byte order of the QT binary image format.
var Endian = binary.BigEndian

const (
	AddressBitWidth = 16                   // All banks are indexed by 16-bit addresses.
	MemSize         = 1 << AddressBitWidth // Cells per bank (ROM, cache, stacks, ports).

	RecordSize = 4 // Bytes per instruction record in a binary image.
)

// Namespace tags accepted in the binary image header.
const (
	NamespaceQT = "QT"
	NamespaceQM = "QM" // Compact encoding variant, recognized but not supported.
)

// Instruction word layout, packed in a 32-bit ROM cell:
//
//	M VVVV`VVVV`VVVV`VVVV OOO`OOOO
//
// bit 23 = memory indirection flag, bits 7-22 = value, bits 0-6 = opcode.
const (
	OpcodeBits = 7
	OpcodeMask = 1<<OpcodeBits - 1

	valueShift = OpcodeBits
	flagShift  = OpcodeBits + 16
)

// Encode packs an instruction word. The fields are not re-masked: an
// opcode above 127 or a flag above 1 bleeds into the neighboring field,
// matching the reference encoder. Callers pre-mask.
func Encode(memoryFlag byte, value uint16, opcode byte) uint32 {
	return uint32(memoryFlag)<<flagShift | uint32(value)<<valueShift | uint32(opcode)
}

// Decode unpacks an instruction word.
func Decode(word uint32) (memoryFlag byte, value uint16, opcode byte) {
	return byte(word>>flagShift) & 1, uint16(word >> valueShift), byte(word & OpcodeMask)
}

// Instruction is a decoded instruction record, as produced by the loader.
type Instruction struct {
	MemoryFlag byte
	Value      uint16
	Opcode     byte
}

// Word packs the record into its 32-bit ROM representation.
func (ins Instruction) Word() uint32 {
	return Encode(ins.MemoryFlag&1, ins.Value, ins.Opcode)
}

// Flag register bits.
const (
	FlagCarry uint16 = 1 << iota
	FlagParity
	FlagZero
	FlagSign
	FlagOverflow
	FlagUnderflow
)

// FlagCount is the number of defined flag bits; higher bits are reserved.
const FlagCount = 6

// Reserved port assignments for the module interrupt convention.
const (
	PortModuleSelector = 0 // Which module a 0x80 interrupt addresses.
	PortScreenGeometry = 1 // (width<<8)|height on first use, then framebuffer offset.
	PortScreenMode     = 2 // Color mode: 1, 8, 16 or 24 bits per pixel.
)

// ModuleSelectorScreen is the port 0 value designating the screen module.
const ModuleSelectorScreen = 1
