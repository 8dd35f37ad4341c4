package cli_test

import (
	"bytes"
	"image/color"
	"testing"

	"go.creack.net/qtvm/assets"
	"go.creack.net/qtvm/cli"
	"go.creack.net/qtvm/loader"
	"go.creack.net/qtvm/module"
	"go.creack.net/qtvm/op"
	"go.creack.net/qtvm/vm"
)

// The embedded demo exercises the full pipeline: loader, arithmetic
// loop, ports, the 0x80 convention and the screen module.
func TestDemoImage(t *testing.T) {
	code, err := loader.Decode(bytes.NewReader(assets.DemoQT), op.NamespaceQT)
	if err != nil {
		t.Fatalf("decode demo: %s", err)
	}

	m := vm.NewMachine()
	if err := m.ImportCode(code); err != nil {
		t.Fatalf("import demo: %s", err)
	}

	screen := &module.Screen{}
	total, exitCode, err := cli.RunToHalt(m, []module.Module{screen})
	if err != nil {
		t.Fatalf("run demo: %s", err)
	}
	if exitCode != vm.ExitHalt {
		t.Fatalf("exit code mismatch\nwant: 0\nhave: %d", exitCode)
	}
	if total != 9229 {
		t.Errorf("instruction count mismatch\nwant: 9229\nhave: %d", total)
	}

	if screen.Width != 32 || screen.Height != 24 || screen.Mode != module.ModeGray {
		t.Fatalf("screen config mismatch: %dx%d mode %d", screen.Width, screen.Height, screen.Mode)
	}
	if screen.FrameCount() != 1 {
		t.Fatalf("frame count mismatch\nwant: 1\nhave: %d", screen.FrameCount())
	}
	// The demo paints a horizontal gradient: pixel value is its index
	// masked to a byte.
	if have := screen.Frame().RGBAAt(1, 0); have != (color.RGBA{1, 1, 1, 0xFF}) {
		t.Errorf("pixel (1,0) mismatch: %v", have)
	}
	if have := screen.Frame().RGBAAt(31, 1); have != (color.RGBA{63, 63, 63, 0xFF}) {
		t.Errorf("pixel (31,1) mismatch: %v", have)
	}
}
