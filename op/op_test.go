package op_test

import (
	"testing"

	"go.creack.net/qtvm/op"
)

func TestWordRoundTrip(t *testing.T) {
	values := []uint16{0, 1, 0x7F, 0x80, 0xFF, 0x100, 0x7FFF, 0x8000, 0xFFFF}
	for flag := byte(0); flag <= 1; flag++ {
		for opcode := 0; opcode <= op.OpcodeMask; opcode++ {
			for _, value := range values {
				f, v, o := op.Decode(op.Encode(flag, value, byte(opcode)))
				if f != flag || v != value || o != byte(opcode) {
					t.Fatalf(
						"round trip mismatch for (%d, 0x%04x, %d)\nhave: (%d, 0x%04x, %d)",
						flag, value, opcode, f, v, o,
					)
				}
			}
		}
	}
}

func TestWordPacking(t *testing.T) {
	// M VVVV`VVVV`VVVV`VVVV OOO`OOOO
	if word := op.Encode(1, 0xFFFF, 0x7F); word != 0x00FFFFFF {
		t.Fatalf("packing mismatch\nwant: 0x00ffffff\nhave: 0x%08x", word)
	}
	if word := op.Encode(0, 1, 0); word != 0x80 {
		t.Fatalf("packing mismatch\nwant: 0x80\nhave: 0x%08x", word)
	}
	if word := op.Encode(1, 0, 0); word != 0x800000 {
		t.Fatalf("packing mismatch\nwant: 0x800000\nhave: 0x%08x", word)
	}
}

func TestInstructionWordMasksFlag(t *testing.T) {
	// The record flag byte is masked to its single defined bit.
	ins := op.Instruction{MemoryFlag: 0xFF, Value: 2, Opcode: 3}
	f, v, o := op.Decode(ins.Word())
	if f != 1 || v != 2 || o != 3 {
		t.Fatalf("record packing mismatch: (%d, %d, %d)", f, v, o)
	}
}

func TestOpCodeTable(t *testing.T) {
	seen := map[byte]string{}
	for _, elem := range op.OpCodeTable {
		if elem.Code > op.OpcodeMask {
			t.Errorf("opcode %q out of the 7-bit range: %d", elem.Name, elem.Code)
		}
		if prev, ok := seen[elem.Code]; ok {
			t.Errorf("duplicate opcode %d: %q and %q", elem.Code, prev, elem.Name)
		}
		seen[elem.Code] = elem.Name
	}

	if oc, ok := op.Lookup(op.OpHalt); !ok || oc.Name != "halt" {
		t.Errorf("lookup halt mismatch: %v %v", oc, ok)
	}
	if _, ok := op.Lookup(127); ok {
		t.Error("lookup of an unassigned opcode should fail")
	}
}
