// Package module implements the peripheral layer reached through the
// port/interrupt boundary. The core never calls into this package: it
// halts with exit code 0x80 and the front end services the module
// selected by port 0 before re-entering the run loop.
package module

import (
	"fmt"

	"go.creack.net/qtvm/op"
	"go.creack.net/qtvm/vm"
)

// Module is a peripheral addressable through port 0.
type Module interface {
	// Selector is the port 0 value designating this module.
	Selector() uint16

	// Service handles one 0x80 interrupt. Modules read ports and cache;
	// they never write back into machine state.
	Service(m *vm.Machine) error
}

// Service dispatches a module interrupt to the module matching the
// current port 0 selector.
func Service(m *vm.Machine, modules []Module) error {
	selector := m.Ports[op.PortModuleSelector]
	for _, elem := range modules {
		if elem.Selector() == selector {
			return elem.Service(m)
		}
	}
	return fmt.Errorf("no module registered for selector %d", selector)
}
