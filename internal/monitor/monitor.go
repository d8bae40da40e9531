// Package monitor is the terminal front panel for the Orange-4 machine: the
// board (numeric display, LED bar, keypad) on the left, memory and registers
// on the right, with step/run/stop control over the VM clock.
package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"

	"github.com/cosocaf/orange4-emulator/internal/config"
	"github.com/cosocaf/orange4-emulator/internal/orange4"
)

// The panel repaints at 60 Hz regardless of the machine clock.
const refreshRate = 60

// Monitor owns a VM and drives it from the terminal. The run loop ticks on
// its own goroutine; every VM access goes through the machine's locked API.
type Monitor struct {
	vm  *orange4.VM
	cfg config.Config
	log *logrus.Logger

	app    *tview.Application
	board  *tview.TextView
	memory *tview.TextView
	regs   *tview.TextView
	status *tview.TextView

	// run-loop state, touched only on the UI event goroutine
	running bool
	stopC   chan struct{}
	doneC   chan struct{}

	quitC chan struct{}
}

// New wires the panel around vm. Guest events go to the status line and log.
func New(vm *orange4.VM, cfg config.Config, log *logrus.Logger) *Monitor {
	m := Monitor{
		vm:    vm,
		cfg:   cfg,
		log:   log,
		app:   tview.NewApplication(),
		quitC: make(chan struct{}),
	}

	m.board = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	m.board.SetBorder(true).SetTitle(" BOARD ")

	m.memory = tview.NewTextView().SetDynamicColors(true)
	m.memory.SetBorder(true).SetTitle(" MEMORY ")

	m.regs = tview.NewTextView().SetDynamicColors(true)
	m.regs.SetBorder(true).SetTitle(" REGISTERS ")

	m.status = tview.NewTextView().SetDynamicColors(true)
	m.status.SetBorder(true).SetTitle(" EVENTS ")

	controller := tview.NewFlex().
		AddItem(m.memory, 55, 0, false).
		AddItem(m.regs, 0, 1, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(m.board, 9, 0, false).
		AddItem(controller, 0, 1, false).
		AddItem(m.status, 3, 0, false)

	m.app.SetRoot(root, true).SetInputCapture(m.handleKey)
	return &m
}

// Run blocks until the user quits.
func (m *Monitor) Run() error {
	go m.drainEvents()
	go m.refreshLoop()
	m.redraw()
	if m.cfg.Autorun {
		m.start()
	}
	defer m.stop()
	return m.app.Run()
}

func (m *Monitor) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if ev.Key() == tcell.KeyEscape {
		m.quit()
		return nil
	}
	if ev.Key() != tcell.KeyRune {
		return ev
	}
	r := ev.Rune()
	switch {
	case r >= '0' && r <= '9':
		m.vm.PressKey(uint8(r - '0'))
	case r >= 'a' && r <= 'f':
		m.vm.PressKey(uint8(r-'a') + 0xA)
	case r == 's':
		m.step()
	case r == 'r':
		m.start()
	case r == 'x':
		m.stop()
	case r == 'q':
		m.quit()
	default:
		return ev
	}
	return nil
}

// step executes exactly one instruction: a pending wait is cancelled first so
// the tick always lands on a fetch, and the keypad is cleared afterwards so a
// held key reads as a single press.
func (m *Monitor) step() {
	if m.running {
		return
	}
	m.vm.ClearWait()
	m.vm.Tick()
	if m.cfg.ReleaseKeys {
		m.vm.ReleaseAllKeys()
	}
}

func (m *Monitor) start() {
	if m.running {
		return
	}
	m.running = true
	m.stopC = make(chan struct{})
	m.doneC = make(chan struct{})
	m.log.WithField("hz", m.cfg.ClockHZ).Debug("run loop started")

	go func(stopC, doneC chan struct{}) {
		defer close(doneC)
		ticker := time.NewTicker(time.Second / time.Duration(m.cfg.ClockHZ))
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.vm.Tick()
				if m.cfg.ReleaseKeys {
					m.vm.ReleaseAllKeys()
				}
			case <-stopC:
				return
			}
		}
	}(m.stopC, m.doneC)
}

func (m *Monitor) stop() {
	if !m.running {
		return
	}
	close(m.stopC)
	<-m.doneC
	m.running = false
	m.log.Debug("run loop stopped")
}

func (m *Monitor) quit() {
	m.stop()
	close(m.quitC)
	m.app.Stop()
}

func (m *Monitor) refreshLoop() {
	ticker := time.NewTicker(time.Second / refreshRate)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.app.QueueUpdateDraw(m.redraw)
		case <-m.quitC:
			return
		}
	}
}

func (m *Monitor) drainEvents() {
	for {
		select {
		case e := <-m.vm.Events():
			m.log.WithField("event", e.String()).Info("guest event")
			m.app.QueueUpdateDraw(func() {
				m.status.SetText(e.String())
			})
		case <-m.quitC:
			return
		}
	}
}

func (m *Monitor) redraw() {
	img := m.vm.MemoryImage()

	var board strings.Builder
	fmt.Fprintf(&board, "\n[black:skyblue] %X [-:-]\n\n", m.vm.NumericLED())
	led := m.vm.BinaryLED()
	for bit := 6; bit >= 0; bit-- {
		if led&(1<<bit) != 0 {
			board.WriteString("[red]●[-] ")
		} else {
			board.WriteString("[gray]○[-] ")
		}
	}
	board.WriteString("\n\nkeys [0-9a-f]  [s]tep [r]un e[x]it-run [q]uit")
	m.board.SetText(board.String())

	var mem strings.Builder
	for row := 0; row < 0x10; row++ {
		fmt.Fprintf(&mem, "[yellow]%02X:[-]", row<<4)
		for col := 0; col < 0x10; col++ {
			fmt.Fprintf(&mem, " %X", img[row<<4|col])
		}
		mem.WriteByte('\n')
	}
	m.memory.SetText(mem.String())

	var regs strings.Builder
	for _, r := range []orange4.Reg{orange4.A, orange4.B, orange4.Y, orange4.Z} {
		fmt.Fprintf(&regs, "%-2s: %X\n", r, m.vm.Register(r))
	}
	for _, r := range []orange4.Reg{orange4.A2, orange4.B2, orange4.Y2, orange4.Z2} {
		fmt.Fprintf(&regs, "%-2s: %X\n", r, m.vm.Register(r))
	}
	fmt.Fprintf(&regs, "F : %X\n", m.vm.Register(orange4.F))
	fmt.Fprintf(&regs, "PC: %02X\n", m.vm.Register(orange4.PC))
	fmt.Fprintf(&regs, "SP: %02X\n", m.vm.Register(orange4.SP))
	fmt.Fprintf(&regs, "\nLAST: %s", m.vm.LastTrace())
	m.regs.SetText(regs.String())
}
