// Command qtvm is the headless QT emulator front end: it loads a binary
// image, runs it to completion servicing module interrupts along the
// way, and prints an instruction-count summary.
package main

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"go.creack.net/qtvm/cli"
	"go.creack.net/qtvm/disasm"
	"go.creack.net/qtvm/module"
	"go.creack.net/qtvm/vm"
)

// frameScale blows decoded frames up so small framebuffers stay legible.
const frameScale = 4

// frameRecorder wraps the screen module and writes every decoded frame
// as a numbered PNG.
type frameRecorder struct {
	*module.Screen

	dir string
	n   int
}

func (fr *frameRecorder) Service(m *vm.Machine) error {
	if err := fr.Screen.Service(m); err != nil {
		return err
	}
	// The configure call decodes nothing, only later services do.
	frame := fr.Frame()
	if frame == nil || fr.FrameCount() == fr.n {
		return nil
	}

	scaled := image.NewRGBA(image.Rect(0, 0, frame.Bounds().Dx()*frameScale, frame.Bounds().Dy()*frameScale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), frame, frame.Bounds(), draw.Src, nil)

	path := filepath.Join(fr.dir, fmt.Sprintf("frame-%04d.png", fr.n))
	fr.n++
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	if err := png.Encode(f, scaled); err != nil {
		_ = f.Close() // Best effort.
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	return f.Close()
}

func qtvm() int {
	cfg, err := cli.ParseConfig()
	if err != nil {
		log.Fatalf("Failed to parse CLI config: %s.", err)
	}

	m, code, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load program: %s.", err)
	}

	if cfg.List {
		fmt.Print(disasm.Program(code))
		return 0
	}

	var screenModule module.Module = &module.Screen{}
	if cfg.FramesDir != "" {
		if err := os.MkdirAll(cfg.FramesDir, 0o755); err != nil {
			log.Fatalf("Failed to create frames directory: %s.", err)
		}
		screenModule = &frameRecorder{Screen: screenModule.(*module.Screen), dir: cfg.FramesDir}
	}

	total, exitCode, err := cli.RunToHalt(m, []module.Module{screenModule})
	if err != nil {
		log.Fatalf("Failed to run program: %s.", err)
	}

	if cfg.DumpPath != "" {
		if err := cli.WriteDumpFile(cfg.DumpPath, m); err != nil {
			log.Fatalf("Failed to write memory dump: %s.", err)
		}
	}

	fmt.Printf("executed %d instructions, exit code %d\n", total, exitCode)
	if exitCode != vm.ExitHalt {
		return 1
	}
	return 0
}

func main() {
	os.Exit(qtvm())
}
