// Package disasm renders packed QT words back into mnemonic listings.
package disasm

import (
	"fmt"
	"strings"

	"go.creack.net/qtvm/op"
)

// Line renders a single packed word. The memory indirection flag shows
// as a '*' prefix on the value. Unknown opcodes render as raw bytes.
func Line(word uint32) string {
	memoryFlag, value, opcode := op.Decode(word)

	indirect := ""
	if memoryFlag == 1 {
		indirect = "*"
	}
	oc, ok := op.Lookup(opcode)
	if !ok {
		return fmt.Sprintf("%- 8s %s0x%04x", fmt.Sprintf(".0x%02x", opcode), indirect, value)
	}
	return fmt.Sprintf("%- 8s %s0x%04x", oc.Name, indirect, value)
}

// Listing renders the first n ROM words, one address-prefixed line
// each. Runs of zero words compress into a single '*' line, in the
// style of a hex dump.
func Listing(rom []uint32, n int) string {
	if n > len(rom) {
		n = len(rom)
	}
	out := &strings.Builder{}
	for i := 0; i < n; {
		if rom[i] == 0 {
			j := i
			for j < n && rom[j] == 0 {
				j++
			}
			if j-i > 1 {
				fmt.Fprintf(out, "*\n")
				i = j
				continue
			}
		}
		fmt.Fprintf(out, "0x%04x: %s\n", i, Line(rom[i]))
		i++
	}
	return out.String()
}

// Program renders decoded instruction records, address-prefixed.
func Program(code []op.Instruction) string {
	out := &strings.Builder{}
	for i, ins := range code {
		fmt.Fprintf(out, "0x%04x: %s\n", i, Line(ins.Word()))
	}
	return out.String()
}
