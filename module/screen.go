package module

import (
	"fmt"
	"image"
	"image/color"

	"go.creack.net/qtvm/op"
	"go.creack.net/qtvm/vm"
)

// Color modes, as written to the mode port by the guest.
const (
	ModeMono   = 1  // 16 pixels per cell, MSB first.
	ModeGray   = 8  // One pixel per cell, low byte is the gray level.
	ModeRGB565 = 16 // One pixel per cell.
	ModeRGB888 = 24 // Two cells per pixel: (r<<8)|g then b.
)

// Screen is the framebuffer peripheral. The first service call latches
// the geometry from the ports; every later call reinterprets the
// geometry port as the cache offset of the framebuffer and decodes one
// frame. The dual meaning of the geometry port is part of the guest
// contract.
type Screen struct {
	Width  int
	Height int
	Mode   int

	configured bool
	frames     int
	frame      *image.RGBA
}

func (s *Screen) Selector() uint16 { return op.ModuleSelectorScreen }

// Configured reports whether the geometry has been latched.
func (s *Screen) Configured() bool { return s.configured }

// Frame returns the last decoded frame, nil before the first decode.
func (s *Screen) Frame() *image.RGBA {
	if s.frames == 0 {
		return nil
	}
	return s.frame
}

// FrameCount is the number of frames decoded so far.
func (s *Screen) FrameCount() int { return s.frames }

func (s *Screen) Service(m *vm.Machine) error {
	if !s.configured {
		return s.configure(m)
	}
	return s.decode(m)
}

func (s *Screen) configure(m *vm.Machine) error {
	geometry := m.Ports[op.PortScreenGeometry]
	s.Width = int(geometry >> 8)
	s.Height = int(geometry & 0xFF)
	s.Mode = int(m.Ports[op.PortScreenMode])

	if s.Width == 0 || s.Height == 0 {
		return fmt.Errorf("invalid screen geometry %dx%d", s.Width, s.Height)
	}
	switch s.Mode {
	case ModeMono, ModeGray, ModeRGB565, ModeRGB888:
	default:
		return fmt.Errorf("invalid color mode %d", s.Mode)
	}

	s.frame = image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	s.configured = true
	return nil
}

// decode reads one frame out of the cache at the offset currently held
// in the geometry port. Addresses wrap over the 16-bit cache space.
func (s *Screen) decode(m *vm.Machine) error {
	offset := m.Ports[op.PortScreenGeometry]
	cell := func(i int) uint16 {
		return m.Cache[offset+uint16(i)]
	}

	for p := 0; p < s.Width*s.Height; p++ {
		var c color.RGBA
		c.A = 0xFF
		switch s.Mode {
		case ModeMono:
			if cell(p/16)&(1<<(15-p%16)) != 0 {
				c.R, c.G, c.B = 0xFF, 0xFF, 0xFF
			}
		case ModeGray:
			gray := byte(cell(p))
			c.R, c.G, c.B = gray, gray, gray
		case ModeRGB565:
			v := cell(p)
			r := byte(v >> 11)
			g := byte(v >> 5 & 0x3F)
			b := byte(v & 0x1F)
			// Replicate the high bits to span the full 8-bit range.
			c.R = r<<3 | r>>2
			c.G = g<<2 | g>>4
			c.B = b<<3 | b>>2
		case ModeRGB888:
			rg, b := cell(p*2), cell(p*2+1)
			c.R, c.G, c.B = byte(rg>>8), byte(rg), byte(b)
		}
		s.frame.SetRGBA(p%s.Width, p/s.Width, c)
	}
	s.frames++
	return nil
}
