// Command qtvm-viewer is a terminal front end for the QT emulator:
// register/flag state, a disassembly window following the program
// counter, cache and port panes, and a log pane fed by the VM's
// message channel.
package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"go.creack.net/qtvm/cli"
	"go.creack.net/qtvm/disasm"
	"go.creack.net/qtvm/module"
	"go.creack.net/qtvm/op"
	"go.creack.net/qtvm/vm"
)

// stepBatch is how many instructions run between UI refreshes.
const stepBatch = 1024

type Game struct {
	app  *tview.Application
	root *tview.Pages

	stateView   *tview.TextView
	programView *tview.TextView
	cacheView   *tview.TextView
	portsView   *tview.TextView
	logsView    *tview.TextView

	m       *vm.Machine
	modules []module.Module

	started bool
	halted  bool

	paused   bool
	pausedMu sync.Mutex

	nextStep   bool
	nextStepMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewGame(ctx context.Context, m *vm.Machine, modules []module.Module) *Game {
	app := tview.NewApplication()

	newTextView := func(title string) *tview.TextView {
		tv := tview.NewTextView().SetDynamicColors(true)
		tv.SetTitle(title).SetBorder(true)
		return tv
	}

	stateView := newTextView("Registers")
	programView := newTextView("Program")
	cacheView := newTextView("Cache")
	portsView := newTextView("Ports")
	logsView := newTextView("Logs")
	logsView.ScrollToEnd()

	leftPane := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(programView, 0, 3, false).
		AddItem(cacheView, 0, 4, false)

	rightPane := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(stateView, 0, 2, false).
		AddItem(portsView, 0, 2, false).
		AddItem(logsView, 0, 3, false)

	flex := tview.NewFlex().
		AddItem(leftPane, 0, 2, true).
		AddItem(rightPane, 0, 1, false)

	pages := tview.NewPages()
	pages.AddPage("main", flex, true, true)

	ctx, cancel := context.WithCancel(ctx)

	return &Game{
		app:  app,
		root: pages,

		stateView:   stateView,
		programView: programView,
		cacheView:   cacheView,
		portsView:   portsView,
		logsView:    logsView,

		m:       m,
		modules: modules,

		ctx:    ctx,
		cancel: cancel,

		paused: true,
	}
}

func (g *Game) Stop() {
	g.app.Stop()
	g.cancel()
}

func (g *Game) Init() {
	g.root.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC, tcell.KeyEscape:
			g.Stop()
			return nil
		}
		switch event.Rune() {
		case 'n':
			g.nextStepMu.Lock()
			g.nextStep = true
			g.nextStepMu.Unlock()
			return nil
		case ' ':
			g.pausedMu.Lock()
			g.paused = !g.paused
			g.pausedMu.Unlock()
			return nil
		case 'q':
			g.Stop()
			return nil
		}
		return event
	})

	go func() {
		for {
			select {
			case msg := <-g.m.Messages:
				g.app.QueueUpdateDraw(func() {
					if msg.Type == vm.MsgClear {
						g.logsView.Clear()
						return
					}
					fmt.Fprintf(g.logsView, "[%s] 0x%04x %s\n", msg.Type, msg.PC, strings.TrimSuffix(msg.Message, "\n"))
				})
			case <-g.ctx.Done():
				return
			}
		}
	}()
}

// Update runs one batch of instructions, servicing module interrupts.
func (g *Game) Update(single bool) {
	if g.halted {
		return
	}
	if !g.started {
		g.m.Running = true
		g.started = true
	}

	batch := stepBatch
	if single {
		batch = 1
	}
	for i := 0; i < batch && g.m.Running; i++ {
		g.m.Step()
	}
	if g.m.Running {
		return
	}

	if g.m.ExitCode == vm.ExitModuleInterrupt {
		if err := module.Service(g.m, g.modules); err != nil {
			g.halted = true
			g.logf("module service failed: %s", err)
			return
		}
		g.m.Running = true // Resume after servicing.
		return
	}
	g.halted = true
	g.logf("machine stopped, exit code %d", g.m.ExitCode)
}

func (g *Game) logf(format string, args ...any) {
	g.app.QueueUpdateDraw(func() {
		fmt.Fprintf(g.logsView, format+"\n", args...)
	})
}

func (g *Game) drawState() {
	sv := g.stateView
	sv.Clear()

	fmt.Fprintf(sv, "ACC: 0x%04x\n", g.m.Acc)
	fmt.Fprintf(sv, "PR:  0x%04x\n", g.m.Ptr)
	fmt.Fprintf(sv, "PC:  0x%04x\n", g.m.PC)
	fmt.Fprintf(sv, "SP:  0x%04x  ASP: 0x%04x\n", g.m.SP, g.m.ASP)
	fmt.Fprintf(sv, "Flags: %s\n", flagString(g.m.Flags))
	fmt.Fprintf(sv, "Executed: %d\n", g.m.Executed)
	if g.halted {
		fmt.Fprintf(sv, "Exit code: %d\n", g.m.ExitCode)
	}
}

func flagString(flags uint16) string {
	names := []struct {
		mask uint16
		name string
	}{
		{op.FlagCarry, "C"},
		{op.FlagParity, "P"},
		{op.FlagZero, "Z"},
		{op.FlagSign, "S"},
		{op.FlagOverflow, "O"},
		{op.FlagUnderflow, "U"},
	}
	parts := make([]string, 0, len(names))
	for _, elem := range names {
		if flags&elem.mask != 0 {
			parts = append(parts, elem.name)
		} else {
			parts = append(parts, "-")
		}
	}
	return strings.Join(parts, "")
}

// drawProgram shows a disassembly window around the program counter,
// highlighting the next instruction to be fetched.
func (g *Game) drawProgram() {
	pv := g.programView
	pv.Clear()

	const window = 16
	start := int(g.m.PC) - window/4
	if start < 0 {
		start = 0
	}
	for i := start; i < start+window && i < len(g.m.ROM); i++ {
		cursor := "  "
		if i == int(g.m.PC) {
			cursor = "[red]> "
		}
		fmt.Fprintf(pv, "%s0x%04x: %s[-]\n", cursor, i, disasm.Line(g.m.ROM[i]))
	}
}

func (g *Game) drawCache() {
	cv := g.cacheView
	cv.Clear()

	const width, rows = 8, 32
	for row := 0; row < rows; row++ {
		fmt.Fprintf(cv, "0x%04x:", row*width)
		for col := 0; col < width; col++ {
			v := g.m.Cache[row*width+col]
			if v == 0 {
				fmt.Fprintf(cv, " [gray]%04x[-]", v)
			} else {
				fmt.Fprintf(cv, " %04x", v)
			}
		}
		fmt.Fprintf(cv, "\n")
	}
}

func (g *Game) drawPorts() {
	pv := g.portsView
	pv.Clear()

	for i := 0; i < 8; i++ {
		fmt.Fprintf(pv, "port %d: 0x%04x\n", i, g.m.Ports[i])
	}
	fmt.Fprintf(pv, "\nstack top:")
	for i := 0; i < 4 && i < int(g.m.SP); i++ {
		fmt.Fprintf(pv, " %04x", g.m.Stack[int(g.m.SP)-1-i])
	}
	fmt.Fprintf(pv, "\n")
}

func (g *Game) Draw() {
	g.drawState()
	g.drawProgram()
	g.drawCache()
	g.drawPorts()
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
	m.Messages = make(chan vm.Message, 10) // Arbitrary size.

	g := NewGame(context.Background(), m, []module.Module{&module.Screen{}})
	g.Init()
	g.Draw()

	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			isPaused := func() bool {
				g.pausedMu.Lock()
				defer g.pausedMu.Unlock()
				return g.paused
			}()
			forceNextStep := func() bool {
				g.nextStepMu.Lock()
				defer g.nextStepMu.Unlock()
				if g.nextStep {
					g.nextStep = false
					return true
				}
				return false
			}()

			// Step outside QueueUpdateDraw: the message consumer needs
			// the app loop free to drain the channel while we emit.
			if forceNextStep || !isPaused {
				g.Update(forceNextStep)
				g.app.QueueUpdateDraw(g.Draw)
			}

			select {
			case <-ticker.C:
			case <-g.ctx.Done():
				return
			}
		}
	}()

	if err := g.app.SetRoot(g.root, true).SetFocus(g.root).Run(); err != nil {
		panic(err)
	}
	log.Printf("Done")
}
