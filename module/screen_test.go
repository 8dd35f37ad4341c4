package module_test

import (
	"image/color"
	"testing"

	"go.creack.net/qtvm/module"
	"go.creack.net/qtvm/op"
	"go.creack.net/qtvm/vm"
)

// newConfigured returns a machine and a screen with the geometry
// latched: width x height in the given mode, framebuffer at offset.
func newConfigured(t *testing.T, width, height, mode int, offset uint16) (*vm.Machine, *module.Screen) {
	t.Helper()

	m := vm.NewMachine()
	m.Ports[op.PortModuleSelector] = op.ModuleSelectorScreen
	m.Ports[op.PortScreenGeometry] = uint16(width<<8 | height)
	m.Ports[op.PortScreenMode] = uint16(mode)

	s := &module.Screen{}
	if err := module.Service(m, []module.Module{s}); err != nil {
		t.Fatalf("configure service: %s", err)
	}
	if !s.Configured() || s.Width != width || s.Height != height || s.Mode != mode {
		t.Fatalf("geometry latch mismatch: %dx%d mode %d", s.Width, s.Height, s.Mode)
	}

	// Port 1 is reinterpreted as the framebuffer offset from now on.
	m.Ports[op.PortScreenGeometry] = offset
	return m, s
}

func assertPixel(t *testing.T, s *module.Screen, x, y int, want color.RGBA) {
	t.Helper()

	if have := s.Frame().RGBAAt(x, y); have != want {
		t.Errorf("pixel (%d,%d) mismatch\nwant: %v\nhave: %v", x, y, want, have)
	}
}

func TestScreenGray(t *testing.T) {
	m, s := newConfigured(t, 4, 2, module.ModeGray, 0x100)
	for i := 0; i < 8; i++ {
		m.Cache[0x100+i] = uint16(i * 10)
	}
	if err := s.Service(m); err != nil {
		t.Fatalf("service: %s", err)
	}

	assertPixel(t, s, 0, 0, color.RGBA{0, 0, 0, 0xFF})
	assertPixel(t, s, 1, 0, color.RGBA{10, 10, 10, 0xFF})
	assertPixel(t, s, 3, 1, color.RGBA{70, 70, 70, 0xFF})
	if s.FrameCount() != 1 {
		t.Fatalf("frame count mismatch\nwant: 1\nhave: %d", s.FrameCount())
	}
}

func TestScreenMono(t *testing.T) {
	m, s := newConfigured(t, 16, 1, module.ModeMono, 0)
	m.Cache[0] = 0x8001 // First and last pixel of the row.
	if err := s.Service(m); err != nil {
		t.Fatalf("service: %s", err)
	}

	white := color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	black := color.RGBA{0, 0, 0, 0xFF}
	assertPixel(t, s, 0, 0, white)
	assertPixel(t, s, 1, 0, black)
	assertPixel(t, s, 15, 0, white)
}

func TestScreenRGB565(t *testing.T) {
	m, s := newConfigured(t, 2, 1, module.ModeRGB565, 0x20)
	m.Cache[0x20] = 0xF800 // Pure red.
	m.Cache[0x21] = 0x07E0 // Pure green.
	if err := s.Service(m); err != nil {
		t.Fatalf("service: %s", err)
	}

	assertPixel(t, s, 0, 0, color.RGBA{0xFF, 0, 0, 0xFF})
	assertPixel(t, s, 1, 0, color.RGBA{0, 0xFF, 0, 0xFF})
}

func TestScreenRGB888(t *testing.T) {
	m, s := newConfigured(t, 1, 1, module.ModeRGB888, 0x30)
	m.Cache[0x30] = 0x1234 // (r<<8)|g.
	m.Cache[0x31] = 0x0056 // b in the low byte.
	if err := s.Service(m); err != nil {
		t.Fatalf("service: %s", err)
	}

	assertPixel(t, s, 0, 0, color.RGBA{0x12, 0x34, 0x56, 0xFF})
}

func TestScreenOffsetMove(t *testing.T) {
	// The guest can point subsequent frames at a different cache
	// region by rewriting the offset port.
	m, s := newConfigured(t, 1, 1, module.ModeGray, 0x10)
	m.Cache[0x10] = 100
	m.Cache[0x40] = 200
	if err := s.Service(m); err != nil {
		t.Fatalf("service: %s", err)
	}
	assertPixel(t, s, 0, 0, color.RGBA{100, 100, 100, 0xFF})

	m.Ports[op.PortScreenGeometry] = 0x40
	if err := s.Service(m); err != nil {
		t.Fatalf("service: %s", err)
	}
	assertPixel(t, s, 0, 0, color.RGBA{200, 200, 200, 0xFF})
}

func TestScreenInvalidConfig(t *testing.T) {
	m := vm.NewMachine()
	m.Ports[op.PortScreenGeometry] = 0 // 0x0 geometry.
	m.Ports[op.PortScreenMode] = module.ModeGray
	if err := (&module.Screen{}).Service(m); err == nil {
		t.Fatal("expected an invalid geometry error")
	}

	m.Ports[op.PortScreenGeometry] = uint16(4<<8 | 4)
	m.Ports[op.PortScreenMode] = 7
	if err := (&module.Screen{}).Service(m); err == nil {
		t.Fatal("expected an invalid color mode error")
	}
}

func TestServiceUnknownSelector(t *testing.T) {
	m := vm.NewMachine()
	m.Ports[op.PortModuleSelector] = 9
	if err := module.Service(m, []module.Module{&module.Screen{}}); err == nil {
		t.Fatal("expected an unknown selector error")
	}
}
