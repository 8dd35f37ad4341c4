package vm

// Read-only snapshots for diagnostic writers: each bank is exposed as a
// flat copy of 16-bit cells addressed 0..65535. The copies keep dump
// consumers from aliasing live machine state.

func snapshot(bank []uint16) []uint16 {
	out := make([]uint16, len(bank))
	copy(out, bank)
	return out
}

func (m *Machine) CacheSnapshot() []uint16 { return snapshot(m.Cache) }

func (m *Machine) StackSnapshot() []uint16 { return snapshot(m.Stack) }

func (m *Machine) AddressStackSnapshot() []uint16 { return snapshot(m.AddressStack) }

func (m *Machine) PortsSnapshot() []uint16 { return snapshot(m.Ports) }
