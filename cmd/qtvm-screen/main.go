// Command qtvm-screen runs a QT program and presents the screen
// module's framebuffer in a window.
package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/bitmapfont/v3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"go.creack.net/qtvm/cli"
	"go.creack.net/qtvm/module"
	"go.creack.net/qtvm/vm"
)

var fontFace = text.NewGoXFace(bitmapfont.Face)

const (
	initialScreenWidth  = 320
	initialScreenHeight = 240

	// stepsPerFrame bounds guest execution per display frame so a busy
	// guest cannot starve the render loop.
	stepsPerFrame = 50000

	statusBarHeight = 16
)

type Game struct {
	m      *vm.Machine
	screen *module.Screen

	frameImg *ebiten.Image
	started  bool
	halted   bool
	status   string
	total    int
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) || ebiten.IsKeyPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if g.halted {
		return nil
	}
	if !g.started {
		g.m.Running = true
		g.started = true
	}

	for i := 0; i < stepsPerFrame && g.m.Running; i++ {
		g.m.Step()
		g.total++
	}
	if g.m.Running {
		return nil
	}

	if g.m.ExitCode == vm.ExitModuleInterrupt {
		if err := module.Service(g.m, []module.Module{g.screen}); err != nil {
			return fmt.Errorf("failed to service module interrupt: %w", err)
		}
		g.uploadFrame()
		g.m.Running = true // Resume the guest.
		return nil
	}

	g.halted = true
	g.status = fmt.Sprintf("stopped: exit code %d, %d instructions", g.m.ExitCode, g.total)
	return nil
}

func (g *Game) uploadFrame() {
	frame := g.screen.Frame()
	if frame == nil {
		return
	}
	if g.frameImg == nil {
		g.frameImg = ebiten.NewImage(g.screen.Width, g.screen.Height)
	}
	g.frameImg.WritePixels(frame.Pix)
	g.status = fmt.Sprintf("%dx%d mode %d, frame %d", g.screen.Width, g.screen.Height, g.screen.Mode, g.screen.FrameCount())
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	if g.frameImg != nil {
		// Integer-scale the framebuffer into the available area.
		bounds := screen.Bounds()
		scale := min(
			bounds.Dx()/g.screen.Width,
			(bounds.Dy()-statusBarHeight)/g.screen.Height,
		)
		if scale < 1 {
			scale = 1
		}
		geom := ebiten.GeoM{}
		geom.Scale(float64(scale), float64(scale))
		geom.Translate(
			float64(bounds.Dx()-g.screen.Width*scale)/2,
			float64(bounds.Dy()-statusBarHeight-g.screen.Height*scale)/2,
		)
		screen.DrawImage(g.frameImg, &ebiten.DrawImageOptions{GeoM: geom})
	}

	textOpts := &text.DrawOptions{}
	textOpts.GeoM.Translate(4, float64(screen.Bounds().Dy()-statusBarHeight+2))
	text.Draw(screen, g.status, fontFace, textOpts)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return initialScreenWidth, initialScreenHeight
}

func main() {
	cfg, err := cli.ParseConfig()
	if err != nil {
		log.Fatalf("Failed to parse CLI config: %s.", err)
	}
	m, _, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load program: %s.", err)
	}

	g := &Game{
		m:      m,
		screen: &module.Screen{},
		status: "running",
	}
	ebiten.SetWindowTitle("qtvm")
	ebiten.SetWindowSize(initialScreenWidth*2, initialScreenHeight*2)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
