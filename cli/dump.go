package cli

import (
	"fmt"
	"io"
	"os"

	"go.creack.net/qtvm/vm"
)

// WriteDump writes the diagnostic memory dump: each bank as a labelled
// hex section of 16-bit cells, 16 per line, with all-zero runs
// compressed into a single '*' line.
func WriteDump(w io.Writer, m *vm.Machine) error {
	sections := []struct {
		name  string
		cells []uint16
	}{
		{"cache", m.CacheSnapshot()},
		{"stack", m.StackSnapshot()},
		{"address stack", m.AddressStackSnapshot()},
		{"ports", m.PortsSnapshot()},
	}
	for _, section := range sections {
		if _, err := fmt.Fprintf(w, "[%s]\n", section.name); err != nil {
			return fmt.Errorf("failed to write section header: %w", err)
		}
		if err := dumpCells(w, section.cells); err != nil {
			return fmt.Errorf("failed to dump %s: %w", section.name, err)
		}
	}
	return nil
}

func dumpCells(w io.Writer, cells []uint16) error {
	const width = 16

	zeroRow := func(i int) bool {
		for j := i; j < i+width; j++ {
			if cells[j] != 0 {
				return false
			}
		}
		return true
	}
	for i := 0; i < len(cells); {
		if zeroRow(i) {
			if _, err := fmt.Fprintf(w, "*\n"); err != nil {
				return err
			}
			for ; i < len(cells) && zeroRow(i); i += width {
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "0x%04X:", i); err != nil {
			return err
		}
		for j := i; j < i+width; j++ {
			if _, err := fmt.Fprintf(w, " %04x", cells[j]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "\n"); err != nil {
			return err
		}
		i += width
	}
	return nil
}

// WriteDumpFile writes the memory dump to a file.
func WriteDumpFile(path string, m *vm.Machine) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dump file: %w", err)
	}
	if err := WriteDump(f, m); err != nil {
		_ = f.Close() // Best effort.
		return err
	}
	return f.Close()
}
