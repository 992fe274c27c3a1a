// Package chip8 provides an implementation of a CHIP-8 interpreter, called
// Machine, that can be used to execute CHIP-8 programs.
package chip8

import (
	"math/rand"
	"time"
)

const (
	ProgramStart = 0x200 // where program images are loaded and run
	StackDepth   = 16
)

// Machine is an implementation of the CHIP-8 virtual machine.
//
// All state is owned by the Machine and mutated only by Step, TickTimers,
// Load and Reset, with the exception of Keys, which may be written at any
// time by another goroutine.
type Machine struct {
	Mem Memory

	V     [16]byte // V[0xf] is the flag register
	I     uint16
	PC    uint16
	SP    byte // call depth, 0 to StackDepth
	Stack [StackDepth]uint16

	Display Display
	Keys    Keypad
	Timers  Timers

	// Rand is the source for the RND instruction. If nil, Step installs
	// one seeded from the clock.
	Rand *rand.Rand

	rom []byte
}

// NewMachine returns a Machine with the glyph table in memory, an empty
// program area and the program counter at ProgramStart.
func NewMachine() *Machine {
	m := &Machine{Rand: newRand()}
	m.Reset()
	return m
}

func newRand() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }

// Load writes rom into memory at ProgramStart and resets the machine.
// Images larger than the program area are rejected with an *ImageError
// and leave the machine unchanged.
func (m *Machine) Load(rom []byte) error {
	if len(rom) > MemSize-ProgramStart {
		return &ImageError{Size: len(rom)}
	}
	m.rom = append([]byte(nil), rom...)
	m.Reset()
	return nil
}

// Reset restores the machine to the state directly after the last
// successful Load: memory holds only the glyphs and the program image,
// every register, timer, key and pixel is cleared and PC is ProgramStart.
func (m *Machine) Reset() {
	m.Mem.init()
	copy(m.Mem[ProgramStart:], m.rom)
	m.V = [16]byte{}
	m.I = 0
	m.PC = ProgramStart
	m.SP = 0
	m.Stack = [StackDepth]uint16{}
	m.Display.Clear()
	m.Keys.Reset()
	m.Timers = Timers{}
}

// TickTimers advances the delay and sound timers by one 60 Hz tick.
func (m *Machine) TickTimers() { m.Timers.Tick() }
