// Package vm implements the QT execution core: the memory banks, the
// register file and the fetch/decode/dispatch loop.
package vm

import (
	"fmt"
	"math/bits"

	"go.creack.net/qtvm/op"
)

// Exit codes reported by Run. Anything else is a guest-supplied
// `int <value>` termination reason.
const (
	ExitHalt            = 0    // Clean stop.
	ExitModuleInterrupt = 0x80 // Yield to a peripheral module, resumable.
	ExitUnknownOpcode   = -1   // Dispatch table trap.
	ExitDivideByZero    = -2   // div/mod with a zero bus value.
)

// Machine is the full QT execution context: one instance owns every
// memory bank and register, mutated only by the thread calling Run.
type Machine struct {
	// Program memory, write-once at load time.
	ROM []uint32

	// Data banks, 16-bit cells over the full address space.
	Cache        []uint16
	Stack        []uint16
	AddressStack []uint16
	Ports        []uint16

	// Register file.
	Acc   uint16 // Accumulator.
	Ptr   uint16 // Pointer register.
	PC    uint16 // Program counter.
	Flags uint16 // Flag bitfield, bits per op.Flag*.
	SP    uint16 // Value stack pointer.
	ASP   uint16 // Address stack pointer.

	Running  bool
	ExitCode int
	Executed int // Instructions dispatched by the last Run invocation.

	// Messages is an optional channel where the VM sends trace events.
	// Needs to be consumed otherwise the VM will block. Left nil, no
	// events are emitted.
	Messages chan Message `json:"-"`
}

// NewMachine returns a machine with all banks allocated and zeroed.
func NewMachine() *Machine {
	m := &Machine{}
	m.InitializeMemory()
	return m
}

// InitializeMemory (re)allocates and zero-fills every memory bank and
// resets the register file. Must be called before ImportCode and Run.
func (m *Machine) InitializeMemory() {
	m.ROM = make([]uint32, op.MemSize)
	m.Cache = make([]uint16, op.MemSize)
	m.Stack = make([]uint16, op.MemSize)
	m.AddressStack = make([]uint16, op.MemSize)
	m.Ports = make([]uint16, op.MemSize)

	m.Acc, m.Ptr, m.PC, m.Flags, m.SP, m.ASP = 0, 0, 0, 0, 0, 0
	m.Running = false
	m.ExitCode = ExitHalt
	m.Executed = 0
}

// ImportCode encodes the decoded instruction records into ROM.
// The ROM holds at most op.MemSize records; more is a caller error.
func (m *Machine) ImportCode(code []op.Instruction) error {
	if m.ROM == nil {
		return fmt.Errorf("memory not initialized")
	}
	if len(code) > op.MemSize {
		return fmt.Errorf("program too large: %d records, rom holds %d", len(code), op.MemSize)
	}
	for i, ins := range code {
		m.ROM[i] = ins.Word()
	}
	return nil
}

// Step fetches, decodes and dispatches a single instruction, refreshes
// the accumulator flags and advances the program counter.
func (m *Machine) Step() {
	memoryFlag, value, opcode := op.Decode(m.ROM[m.PC])

	// Resolve the bus value: immediate, or cache-indirect when the
	// memory flag is set.
	bus := value
	if memoryFlag == 1 {
		bus = m.Cache[value]
	}

	handlers[opcode](m, bus)
	m.Executed++

	// Parity, zero and sign always track the post-instruction
	// accumulator, no matter which instruction ran.
	m.setFlag(op.FlagParity, bits.OnesCount16(m.Acc)&1 == 1)
	m.setFlag(op.FlagZero, m.Acc == 0)
	m.setFlag(op.FlagSign, m.Acc&0x8000 != 0)

	// Uniform advance. Control flow instructions pre-bias their target
	// by -1 so this lands them exactly on it.
	m.PC++
}

// Run executes instructions until a halt, interrupt or trap clears
// Running, and returns the exit code. A Run following an
// ExitModuleInterrupt exit resumes at the instruction after the `int`.
func (m *Machine) Run() int {
	m.Running = true
	m.Executed = 0
	for m.Running {
		m.Step()
	}
	return m.ExitCode
}

func (m *Machine) setFlag(mask uint16, set bool) {
	if set {
		m.Flags |= mask
	} else {
		m.Flags &^= mask
	}
}

// Flag reports whether any flag selected by mask is set.
func (m *Machine) Flag(mask uint16) bool {
	return m.Flags&mask != 0
}

func (m *Machine) emit(mt MessageType, format string, args ...any) {
	if m.Messages == nil {
		return
	}
	m.Messages <- NewMessage(mt, m.PC, fmt.Sprintf(format, args...))
}
