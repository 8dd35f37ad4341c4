// Package loader decodes pre-assembled QT binary images into
// instruction records ready for ROM import.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"go.creack.net/qtvm/op"
)

// Decode reads a binary image: a NUL-terminated ASCII namespace tag
// followed by fixed-size instruction records until end of stream.
// The tag must match the requested namespace.
func Decode(r io.Reader, namespace string) ([]op.Instruction, error) {
	br := bufio.NewReader(r)

	tag, err := readTag(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read namespace tag: %w", err)
	}
	if tag != namespace {
		return nil, fmt.Errorf("namespace mismatch: image is %q, expected %q", tag, namespace)
	}
	switch tag {
	case op.NamespaceQT:
	case op.NamespaceQM:
		return nil, fmt.Errorf("namespace %q not supported", tag)
	default:
		return nil, fmt.Errorf("unknown namespace %q", tag)
	}

	var code []op.Instruction
	scratch := make([]byte, op.RecordSize)
	for {
		if _, err := io.ReadFull(br, scratch); err != nil {
			if err == io.EOF {
				return code, nil
			}
			if err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("truncated instruction record at index %d", len(code))
			}
			return nil, fmt.Errorf("failed to read instruction record %d: %w", len(code), err)
		}
		// Record layout: byte 0 bit 0 = memory flag, bytes 1-2 = value
		// (big endian), byte 3 = opcode.
		code = append(code, op.Instruction{
			MemoryFlag: scratch[0] & 1,
			Value:      op.Endian.Uint16(scratch[1:3]),
			Opcode:     scratch[3],
		})
	}
}

// readTag consumes bytes up to the NUL terminator.
func readTag(br *bufio.Reader) (string, error) {
	tag, err := br.ReadString(0)
	if err != nil {
		return "", fmt.Errorf("missing terminator: %w", err)
	}
	return tag[:len(tag)-1], nil
}

// LoadFile decodes the binary image at path.
func LoadFile(path, namespace string) ([]op.Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }() // Best effort.

	code, err := Decode(f, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %q: %w", path, err)
	}
	return code, nil
}

// Encode writes a binary image for the given records, the inverse of
// Decode. Used to produce test fixtures and embedded demo programs.
func Encode(w io.Writer, namespace string, code []op.Instruction) error {
	if _, err := w.Write(append([]byte(namespace), 0)); err != nil {
		return fmt.Errorf("failed to write namespace tag: %w", err)
	}
	scratch := make([]byte, op.RecordSize)
	for i, ins := range code {
		scratch[0] = ins.MemoryFlag & 1
		op.Endian.PutUint16(scratch[1:3], ins.Value)
		scratch[3] = ins.Opcode
		if _, err := w.Write(scratch); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return nil
}
