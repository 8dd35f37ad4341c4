package vm

import (
	"math/bits"

	"go.creack.net/qtvm/op"
)

type handlerFunc func(m *Machine, bus uint16)

// trap is the default dispatch slot: any opcode without a registered
// handler halts the machine with a failure exit code.
func trap(m *Machine, _ uint16) {
	m.Running = false
	m.ExitCode = ExitUnknownOpcode
	m.emit(MsgError, "unknown opcode 0x%02x", byte(m.ROM[m.PC]&op.OpcodeMask))
}

var handlers = func() [1 << op.OpcodeBits]handlerFunc {
	var table [1 << op.OpcodeBits]handlerFunc
	for i := range table {
		table[i] = trap
	}

	// halt. int. Stop the machine with an exit code. An int with bus
	// 0x80 is the module interrupt convention: the caller services the
	// module selected by port 0 and re-enters Run.
	table[op.OpHalt] = func(m *Machine, _ uint16) {
		m.Running = false
		m.ExitCode = ExitHalt
		m.emit(MsgHalt, "halt")
	}
	table[op.OpInt] = func(m *Machine, bus uint16) {
		m.Running = false
		m.ExitCode = int(bus)
		if bus == ExitModuleInterrupt {
			m.emit(MsgInterrupt, "module interrupt, selector %d", m.Ports[op.PortModuleSelector])
		} else {
			m.emit(MsgHalt, "int %d", bus)
		}
	}

	// Data movement.
	table[op.OpLoad] = func(m *Machine, bus uint16) { m.Acc = bus }
	table[op.OpStore] = func(m *Machine, bus uint16) { m.Cache[bus] = m.Acc }
	table[op.OpLoadP] = func(m *Machine, _ uint16) { m.Acc = m.Cache[m.Acc] }
	table[op.OpLoadPR] = func(m *Machine, bus uint16) { m.Ptr = bus }
	table[op.OpStoreP] = func(m *Machine, _ uint16) { m.Cache[m.Ptr] = m.Acc }
	table[op.OpTaPR] = func(m *Machine, _ uint16) { m.Ptr = m.Acc }

	// Value stack: increment after write, decrement before read.
	table[op.OpPush] = func(m *Machine, _ uint16) {
		m.Stack[m.SP] = m.Acc
		m.SP++
	}
	table[op.OpPop] = func(m *Machine, _ uint16) {
		m.SP--
		m.Acc = m.Stack[m.SP]
	}

	// Control flow. Targets are biased by -1: the uniform PC advance
	// after dispatch lands exactly on the intended address.
	table[op.OpCall] = func(m *Machine, bus uint16) {
		m.AddressStack[m.ASP] = m.PC
		m.ASP++
		m.PC = bus - 1
	}
	table[op.OpReturn] = func(m *Machine, _ uint16) {
		m.ASP--
		m.PC = m.AddressStack[m.ASP]
	}
	table[op.OpJump] = func(m *Machine, bus uint16) { m.PC = bus - 1 }
	table[op.OpJumpC] = func(m *Machine, bus uint16) {
		// bus is a mask over the flag bits: branch to the pointer
		// register if any selected flag is set.
		if m.Flags&bus != 0 {
			m.PC = m.Ptr - 1
		}
	}

	table[op.OpClf] = func(m *Machine, _ uint16) { m.Flags = 0 }

	// Bitwise logic.
	table[op.OpAnd] = func(m *Machine, bus uint16) { m.Acc &= bus }
	table[op.OpOr] = func(m *Machine, bus uint16) { m.Acc |= bus }
	table[op.OpXor] = func(m *Machine, bus uint16) { m.Acc ^= bus }

	// Shifts latch the bit pushed out first.
	table[op.OpLsl] = func(m *Machine, bus uint16) {
		m.setFlag(op.FlagOverflow, m.Acc&0x8000 != 0)
		m.Acc <<= bus
	}
	table[op.OpLsr] = func(m *Machine, bus uint16) {
		m.setFlag(op.FlagUnderflow, m.Acc&1 != 0)
		m.Acc >>= bus
	}
	table[op.OpRol] = func(m *Machine, bus uint16) {
		m.Acc = bits.RotateLeft16(m.Acc, int(bus%16))
	}
	table[op.OpRor] = func(m *Machine, bus uint16) {
		m.Acc = bits.RotateLeft16(m.Acc, -int(bus%16))
	}

	// comp. Three-way compare: 65535 below, 0 equal, 1 above.
	table[op.OpComp] = func(m *Machine, bus uint16) {
		switch {
		case m.Acc < bus:
			m.Acc = 0xFFFF
		case m.Acc == bus:
			m.Acc = 0
		default:
			m.Acc = 1
		}
	}

	// 17-bit wide arithmetic: the carry flag reports the bit that does
	// not fit in the 16-bit accumulator.
	table[op.OpAdd] = func(m *Machine, bus uint16) {
		sum := uint32(m.Acc) + uint32(bus)
		m.Acc = uint16(sum)
		m.setFlag(op.FlagCarry, sum > 0xFFFF)
	}
	table[op.OpSub] = func(m *Machine, bus uint16) {
		diff := int32(m.Acc) - int32(bus)
		m.Acc = uint16(diff)
		m.setFlag(op.FlagCarry, diff < 0)
	}
	table[op.OpAddC] = func(m *Machine, bus uint16) {
		sum := uint32(m.Acc) + uint32(bus)
		if m.Flag(op.FlagCarry) {
			sum++
		}
		m.Acc = uint16(sum)
		m.setFlag(op.FlagCarry, sum > 0xFFFF)
	}
	table[op.OpSubC] = func(m *Machine, bus uint16) {
		diff := int32(m.Acc) - int32(bus)
		if m.Flag(op.FlagCarry) {
			diff--
		}
		m.Acc = uint16(diff)
		m.setFlag(op.FlagCarry, diff < 0)
	}
	table[op.OpInc] = func(m *Machine, _ uint16) {
		m.Acc++
		m.setFlag(op.FlagCarry, m.Acc == 0)
	}
	table[op.OpDec] = func(m *Machine, _ uint16) {
		m.Acc--
		m.setFlag(op.FlagCarry, m.Acc == 0xFFFF)
	}
	table[op.OpMul] = func(m *Machine, bus uint16) {
		prod := uint32(m.Acc) * uint32(bus)
		m.Acc = uint16(prod)
		m.setFlag(op.FlagOverflow, prod > 0xFFFF)
	}

	// div. mod. A zero bus value traps with a dedicated exit code
	// rather than inheriting a runtime crash.
	table[op.OpDiv] = func(m *Machine, bus uint16) {
		if bus == 0 {
			m.Running = false
			m.ExitCode = ExitDivideByZero
			m.emit(MsgError, "divide by zero")
			return
		}
		m.Acc /= bus
	}
	table[op.OpMod] = func(m *Machine, bus uint16) {
		if bus == 0 {
			m.Running = false
			m.ExitCode = ExitDivideByZero
			m.emit(MsgError, "modulo by zero")
			return
		}
		m.Acc %= bus
	}

	// Port array, the only boundary external modules observe.
	table[op.OpPortW] = func(m *Machine, bus uint16) {
		m.Ports[bus] = m.Acc
		m.emit(MsgPort, "port[%d] <- 0x%04x", bus, m.Acc)
	}
	table[op.OpPortR] = func(m *Machine, bus uint16) {
		m.Acc = m.Ports[bus]
	}

	return table
}()
