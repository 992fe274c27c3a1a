package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/bradleyjkemp/memviz"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/ch8/chip8"
	"github.com/nf/ch8/cosmac"
)

type debugger struct {
	run *cosmac.Runner

	log   *tview.TextView
	watch *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	mu       sync.Mutex
	syms     symbols
	watches  []watch
	dbg, brk *symbol
	last     snapshot
}

type watch struct {
	symbol
	short bool
}

// snapshot is the machine state last reported to the debugger.
type snapshot struct {
	PC, I   uint16
	V       [16]byte
	Stack   []uint16
	Delay   byte
	Sound   byte
	Keys    chip8.KeySet
	Display chip8.Grid
	Mem     chip8.Memory
}

// commands maps the debugger's commands to those of the execution loop.
var commands = map[string]string{
	"b": "break", "break": "break",
	"d": "debug", "debug": "debug",
	"nb": "nobreak", "nobreak": "nobreak",
	"nd": "nodebug", "nodebug": "nodebug",
	"p": "pause", "pause": "pause",
	"s": "step", "step": "step",
	"c": "cont", "cont": "cont",
	"r": "reset", "reset": "reset",
}

func (d *debugger) symbols() symbols {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.syms
}

func (d *debugger) setSymbols(s symbols) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.syms = s
}

func newDebugger() *debugger {
	d := &debugger{
		log:   tview.NewTextView().SetMaxLines(1000),
		watch: tview.NewTextView().SetWrap(false).SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().SetWrap(false),
		input: tview.NewInputField().SetLabel("> "),
		cols:  tview.NewFlex(),
		rows:  tview.NewFlex().SetDirection(tview.FlexRow),
		app:   tview.NewApplication(),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.setStateStyle(cosmac.ClearState)
	d.cols.
		AddItem(d.watch, 24, 0, false).
		AddItem(d.log, 0, 1, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 4, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(d.complete)
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		line := strings.TrimSpace(d.input.GetText())
		d.input.SetText("")
		if line != "" {
			d.command(line)
		}
	})
	return d
}

// complete offers symbol labels for commands that take an address.
func (d *debugger) complete(text string) (entries []string) {
	cmd, arg, ok := strings.Cut(text, " ")
	if !ok {
		return nil
	}
	switch cmd {
	case "b", "break", "d", "debug", "w", "w2", "watch", "watch2":
		for _, s := range d.symbols().withLabelPrefix(arg) {
			entries = append(entries, cmd+" "+s.label)
		}
	}
	return entries
}

// command runs a line typed at the debugger prompt.
func (d *debugger) command(line string) {
	if line == "exit" {
		d.app.Stop()
		return
	}
	cmd, arg, hasArg := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "viz":
		if !hasArg {
			log.Print("usage: viz file")
			return
		}
		if err := d.viz(arg); err != nil {
			log.Printf("viz: %v", err)
			return
		}
		log.Printf("wrote %s", arg)
		return
	case "w", "w2", "watch", "watch2":
		s, ok := d.symbols().resolve(arg)
		if !ok {
			log.Printf("invalid address %q", arg)
			return
		}
		d.mu.Lock()
		d.watches = append(d.watches,
			watch{symbol: s, short: strings.HasSuffix(cmd, "2")})
		d.mu.Unlock()
		log.Printf("watching %.3x", s.addr)
		return
	}
	name, ok := commands[cmd]
	if !ok {
		log.Printf("unknown command %q", cmd)
		return
	}
	switch name {
	case "break", "debug":
		if !hasArg {
			// A bare b or d clears the address.
			d.run.Debug("no"+name, 0)
			d.mu.Lock()
			if name == "break" {
				d.brk = nil
			} else {
				d.dbg = nil
			}
			d.mu.Unlock()
			log.Printf("cleared %s", name)
			return
		}
		s, ok := d.symbols().resolve(arg)
		if !ok {
			log.Printf("invalid addr %q", arg)
			return
		}
		d.run.Debug(name, s.addr)
		d.mu.Lock()
		if name == "break" {
			d.brk = &s
		} else {
			d.dbg = &s
		}
		d.mu.Unlock()
		log.Printf("set %s %.3x", name, s.addr)
		return
	}
	d.run.Debug(name, 0)
}

func (d *debugger) Run() error { return d.app.Run() }

// stateStyles gives the text and background colours of the state line.
var stateStyles = map[cosmac.StateKind][2]tcell.Color{
	cosmac.ClearState: {tcell.ColorBlack, tcell.ColorDarkGrey},
	cosmac.DebugState: {tcell.ColorBlack, tcell.ColorDarkGrey},
	cosmac.BreakState: {tcell.ColorYellow, tcell.ColorDarkBlue},
	cosmac.PauseState: {tcell.ColorWhite, tcell.ColorDarkBlue},
	cosmac.HaltState:  {tcell.ColorWhite, tcell.ColorDarkRed},
}

func (d *debugger) setStateStyle(k cosmac.StateKind) {
	if st, ok := stateStyles[k]; ok {
		d.state.SetTextColor(st[0])
		d.state.SetBackgroundColor(st[1])
	}
}

// StateFunc is called by the runner's execution loop.
func (d *debugger) StateFunc(m *chip8.Machine, k cosmac.StateKind) {
	d.record(m)
	watch := d.watchContent(m)
	if k == cosmac.QuietState {
		d.app.QueueUpdateDraw(func() { d.watch.SetText(watch) })
		return
	}
	var state string
	if k != cosmac.ClearState {
		state = stateMsg(d.symbols(), m, k)
	}
	d.app.QueueUpdateDraw(func() {
		d.setStateStyle(k)
		d.watch.SetText(watch)
		d.state.SetText(state)
	})
}

func (d *debugger) record(m *chip8.Machine) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = snapshot{
		PC:      m.PC,
		I:       m.I,
		V:       m.V,
		Stack:   m.CallStack(),
		Delay:   m.Timers.Delay(),
		Sound:   m.Timers.Sound(),
		Keys:    m.Keys.Snapshot(),
		Display: m.Display.Snapshot(),
		Mem:     m.Mem,
	}
}

// viz writes a Graphviz description of the last reported state to file.
func (d *debugger) viz(file string) error {
	d.mu.Lock()
	s := d.last
	d.mu.Unlock()
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	memviz.Map(f, &s)
	return f.Close()
}

var stateTags = map[cosmac.StateKind]string{
	cosmac.BreakState: "[break]",
	cosmac.DebugState: "[debug]",
	cosmac.PauseState: "[pause]",
	cosmac.HaltState:  "[HALT!]",
}

func stateMsg(syms symbols, m *chip8.Machine, k cosmac.StateKind) string {
	var (
		op    = chip8.Op(uint16(m.Mem.Read(m.PC))<<8 | uint16(m.Mem.Read(m.PC+1)))
		pcSym string
		sym   string
	)
	if s := syms.forAddr(m.PC); len(s) > 0 {
		pcSym = s[0].String() + " -> "
	}
	if addr, ok := opAddr(m, m.PC); ok {
		for i, s := range syms.forAddr(addr) {
			if i != 0 {
				sym += " "
			}
			sym += s.String()
		}
	}
	kind, ok := stateTags[k]
	if !ok {
		kind = "       "
	}
	var v strings.Builder
	for i, r := range m.V {
		if i != 0 {
			v.WriteByte(' ')
		}
		fmt.Fprintf(&v, "%.2x", r)
	}
	return fmt.Sprintf("%.3x %-16s %s %s%s\nv: %s\ni: %.3x dt: %.2x st: %.2x\nrs: %s\n",
		m.PC, op, kind, pcSym, sym,
		v.String(), m.I, m.Timers.Delay(), m.Timers.Sound(), m.StackString())
}

func (d *debugger) watchContent(m *chip8.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var lines []string
	if s := d.brk; s != nil {
		lines = append(lines, fmt.Sprintf("%s [%.3x] brk!", s.label, s.addr))
	}
	if s := d.dbg; s != nil {
		lines = append(lines, fmt.Sprintf("%s [%.3x] dbg?", s.label, s.addr))
	}
	for _, w := range d.watches {
		v := fmt.Sprintf("  %.2x", m.Mem.Read(w.addr))
		if w.short {
			v = fmt.Sprintf("%.2x%.2x", m.Mem.Read(w.addr), m.Mem.Read(w.addr+1))
		}
		lines = append(lines, fmt.Sprintf("%s [%.3x] %s", w.label, w.addr, v))
	}
	return strings.Join(lines, "\n")
}
