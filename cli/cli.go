// Package cli provides the shared front-end plumbing: flag parsing,
// image loading and the run/resume interrupt-service loop.
package cli

import (
	"bytes"
	"flag"
	"fmt"

	"go.creack.net/qtvm/assets"
	"go.creack.net/qtvm/loader"
	"go.creack.net/qtvm/module"
	"go.creack.net/qtvm/op"
	"go.creack.net/qtvm/vm"
)

type Config struct {
	InputPath string // Binary image; empty means the embedded demo.
	Namespace string
	DumpPath  string // Memory dump output, empty to skip.
	FramesDir string // PNG frame output directory, empty to skip.
	List      bool   // Print the disassembly and exit.
}

// ParseConfig registers and parses the standard front-end flags.
func ParseConfig() (Config, error) {
	cfg := Config{}
	flag.StringVar(&cfg.InputPath, "input", "", "binary image path (default: embedded demo)")
	flag.StringVar(&cfg.Namespace, "namespace", op.NamespaceQT, "code namespace (QT or QM)")
	flag.StringVar(&cfg.DumpPath, "dump", "", "write a memory dump to this path on exit")
	flag.StringVar(&cfg.FramesDir, "frames", "", "write rendered screen frames as PNGs to this directory")
	flag.BoolVar(&cfg.List, "list", false, "print the program disassembly and exit")
	flag.Parse()

	switch cfg.Namespace {
	case op.NamespaceQT, op.NamespaceQM:
	default:
		return Config{}, fmt.Errorf("invalid namespace %q", cfg.Namespace)
	}
	return cfg, nil
}

// Load decodes the configured image and returns a machine with the
// program imported, along with the decoded records.
func (cfg Config) Load() (*vm.Machine, []op.Instruction, error) {
	var code []op.Instruction
	var err error
	if cfg.InputPath == "" {
		code, err = loader.Decode(bytes.NewReader(assets.DemoQT), cfg.Namespace)
	} else {
		code, err = loader.LoadFile(cfg.InputPath, cfg.Namespace)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load image: %w", err)
	}

	m := vm.NewMachine()
	if err := m.ImportCode(code); err != nil {
		return nil, nil, fmt.Errorf("import code: %w", err)
	}
	return m, code, nil
}

// RunToHalt drives the cooperative interrupt loop: run until the
// machine yields, service module interrupts, resume, and stop on any
// terminal exit code. Returns the total instruction count.
func RunToHalt(m *vm.Machine, modules []module.Module) (total, exitCode int, err error) {
	for {
		exitCode = m.Run()
		total += m.Executed
		if exitCode != vm.ExitModuleInterrupt {
			return total, exitCode, nil
		}
		if err := module.Service(m, modules); err != nil {
			return total, exitCode, fmt.Errorf("service module interrupt: %w", err)
		}
	}
}
