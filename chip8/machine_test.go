package chip8

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

func TestNewMachine(t *testing.T) {
	m := NewMachine()
	for i := range m.Mem {
		w := byte(0)
		if i < len(glyphs) {
			w = glyphs[i]
		}
		if g := m.Mem[i]; g != w {
			t.Errorf("Mem[%.3x] == %.2x, want %.2x", i, g, w)
		}
	}
	if m.PC != ProgramStart {
		t.Errorf("PC is %.3x, want %.3x", m.PC, ProgramStart)
	}
	if m.V != [16]byte{} || m.I != 0 || m.SP != 0 {
		t.Errorf("registers not zero: V=%x I=%x SP=%d", m.V, m.I, m.SP)
	}
	if m.Timers.Delay() != 0 || m.Timers.Sound() != 0 {
		t.Errorf("timers not zero: %+v", m.Timers)
	}
}

func TestGlyphs(t *testing.T) {
	m := NewMachine()
	for d, want := range map[byte][]byte{
		0x0: {0xf0, 0x90, 0x90, 0x90, 0xf0},
		0x1: {0x20, 0x60, 0x20, 0x20, 0x70},
		0x8: {0xf0, 0x90, 0xf0, 0x90, 0xf0},
		0xb: {0xe0, 0x90, 0xe0, 0x90, 0xe0},
		0xf: {0xf0, 0x80, 0xf0, 0x80, 0x80},
	} {
		addr := Glyph(d)
		if got := m.Mem[addr : addr+GlyphSize]; !bytes.Equal(got, want) {
			t.Errorf("glyph %X at %.3x is % x, want % x", d, addr, got, want)
		}
	}
}

func TestLoad(t *testing.T) {
	for _, c := range []struct {
		romSize int
		err     bool
	}{
		{0x000, false},
		{0x001, false},
		{0xdff, false},
		{0xe00, false},
		{0xe01, true},
		{0x1000, true},
	} {
		t.Run(fmt.Sprintf("%.4x", c.romSize), func(t *testing.T) {
			m := NewMachine()
			before := m.Mem
			err := m.Load(bytes.Repeat([]byte{1}, c.romSize))
			if c.err {
				if !errors.Is(err, ErrImageTooLarge) {
					t.Fatalf("got error %v, want %v", err, ErrImageTooLarge)
				}
				var ie *ImageError
				if !errors.As(err, &ie) || ie.Size != c.romSize {
					t.Errorf("got error %#v, want *ImageError with size %d", err, c.romSize)
				}
				if m.Mem != before {
					t.Errorf("memory modified by failed load")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i := ProgramStart; i < MemSize; i++ {
				w := byte(0)
				if i < ProgramStart+c.romSize {
					w = 1
				}
				if g := m.Mem[i]; g != w {
					t.Fatalf("Mem[%.3x] == %.2x, want %.2x", i, g, w)
				}
			}
		})
	}
}

func TestMemoryMasksAddresses(t *testing.T) {
	var mem Memory
	mem.Write(0x1234, 0x42)
	if g := mem[0x234]; g != 0x42 {
		t.Errorf("Mem[234] == %.2x, want 42", g)
	}
	if g := mem.Read(0xf234); g != 0x42 {
		t.Errorf("Read(f234) == %.2x, want 42", g)
	}
}

func TestReset(t *testing.T) {
	m := newTestMachine(0x6142, 0xa300, 0xf155, 0xd005)
	m.Keys.SetKey(3, true)
	m.Timers.SetSound(9)
	for i := 0; i < 4; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}
	m.Reset()

	w := newTestMachine(0x6142, 0xa300, 0xf155, 0xd005)
	if m.Mem != w.Mem {
		t.Error("memory differs from freshly loaded machine")
	}
	if m.V != w.V || m.I != w.I || m.PC != w.PC || m.SP != w.SP {
		t.Errorf("registers differ: V=%x I=%x PC=%x SP=%d", m.V, m.I, m.PC, m.SP)
	}
	if m.Keys.Snapshot() != 0 {
		t.Errorf("keys are %.4x, want none down", m.Keys.Snapshot())
	}
	if m.Timers != (Timers{}) {
		t.Errorf("timers are %+v, want zero", m.Timers)
	}
	if g := m.Display.Snapshot(); g != (Grid{}) {
		t.Errorf("display not clear:\n%v", &g)
	}
}

func TestFetchOrder(t *testing.T) {
	m := NewMachine()
	m.Mem[0x200], m.Mem[0x201] = 0x61, 0x2a
	if _, err := m.Step(); err != nil {
		t.Fatal(err)
	}
	if m.V[1] != 0x2a {
		t.Errorf("V1 is %.2x, want 2a", m.V[1])
	}
	if m.PC != 0x202 {
		t.Errorf("PC is %.3x, want 202", m.PC)
	}
}

func TestCallDepth(t *testing.T) {
	var ops []Op
	for i := 0; i <= StackDepth; i++ {
		ops = append(ops, 0x2000|Op(ProgramStart+2*(i+1)))
	}
	m := newTestMachine(ops...)
	for i := 0; i < StackDepth; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
	}
	if m.SP != StackDepth {
		t.Fatalf("SP is %d, want %d", m.SP, StackDepth)
	}
	_, err := m.Step()
	var h HaltError
	if !errors.As(err, &h) || h.HaltCode != StackOverflow {
		t.Fatalf("got error %v, want %v", err, StackOverflow)
	}

	m = newTestMachine(0x00ee)
	_, err = m.Step()
	if !errors.As(err, &h) || h.HaltCode != StackUnderflow {
		t.Fatalf("got error %v, want %v", err, StackUnderflow)
	}
}

func TestCallReturn(t *testing.T) {
	m := newTestMachine(
		0x2206, // 200: CALL 206
		0x00ee, // 202: RET
		0x6042, // 204: LD V0, 42
		0x61ff, // 206: LD V1, ff
		0x00ee, // 208: RET
	)
	for _, want := range []struct {
		pc uint16
		sp byte
	}{{0x206, 1}, {0x208, 1}, {0x202, 0}} {
		if _, err := m.Step(); err != nil {
			t.Fatal(err)
		}
		if m.PC != want.pc || m.SP != want.sp {
			t.Fatalf("PC=%.3x SP=%d, want PC=%.3x SP=%d", m.PC, m.SP, want.pc, want.sp)
		}
	}
	if m.V[1] != 0xff || m.V[0] != 0 {
		t.Errorf("V0=%.2x V1=%.2x, want V0=00 V1=ff", m.V[0], m.V[1])
	}
}

func TestWaitForKey(t *testing.T) {
	m := newTestMachine(0xf30a, 0x6101)
	for i := 0; i < 10; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatal(err)
		}
		if m.PC != 0x200 {
			t.Fatalf("step %d: PC is %.3x, want 200", i, m.PC)
		}
	}
	m.Keys.SetKey(0x7, true)
	if _, err := m.Step(); err != nil {
		t.Fatal(err)
	}
	if m.V[3] != 0x7 {
		t.Errorf("V3 is %.2x, want 07", m.V[3])
	}
	if m.PC != 0x202 {
		t.Errorf("PC is %.3x, want 202", m.PC)
	}
	if _, err := m.Step(); err != nil {
		t.Fatal(err)
	}
	if m.PC != 0x204 || m.V[1] != 1 {
		t.Errorf("PC=%.3x V1=%.2x after resuming, want PC=204 V1=01", m.PC, m.V[1])
	}
}

func TestTickTimers(t *testing.T) {
	m := newTestMachine(0x600a, 0xf015, 0xf018, 0xf107)
	for i := 0; i < 3; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 3; i++ {
		m.TickTimers()
	}
	if _, err := m.Step(); err != nil {
		t.Fatal(err)
	}
	if m.V[1] != 7 {
		t.Errorf("V1 is %d, want 7", m.V[1])
	}
	for i := 0; i < 7; i++ {
		m.TickTimers()
	}
	if m.Timers.Delay() != 0 || m.Timers.SoundActive() {
		t.Errorf("timers are %+v, want zero", m.Timers)
	}
	m.TickTimers()
	if m.Timers.Delay() != 0 || m.Timers.Sound() != 0 {
		t.Errorf("timers are %+v after extra tick, want zero", m.Timers)
	}
}

func TestRandom(t *testing.T) {
	want := rand.New(rand.NewSource(1))
	m := newTestMachine(0xc10f, 0xc2ff, 0xc300)
	for _, c := range []struct {
		x, kk byte
	}{{1, 0x0f}, {2, 0xff}, {3, 0x00}} {
		if _, err := m.Step(); err != nil {
			t.Fatal(err)
		}
		if w := byte(want.Intn(0x100)) & c.kk; m.V[c.x] != w {
			t.Errorf("V%X is %.2x, want %.2x", c.x, m.V[c.x], w)
		}
	}
}

func TestRandomZeroMachine(t *testing.T) {
	var m Machine
	m.Mem.Write(0x000, 0xc5)
	m.Mem.Write(0x001, 0x00)
	if _, err := m.Step(); err != nil {
		t.Fatal(err)
	}
	if m.Rand == nil {
		t.Error("Rand not installed by RND")
	}
	if m.V[5] != 0 || m.PC != 0x002 {
		t.Errorf("V5=%.2x PC=%.3x, want V5=00 PC=002", m.V[5], m.PC)
	}
}

func TestProgram(t *testing.T) {
	m := newTestMachine(
		0x6005, // LD V0, 5
		0x610a, // LD V1, 10
		0x8014, // ADD V0, V1
		0xa210, // LD I, 210
		0xf033, // LD B, V0
		0xf165, // LD V1, [I]
		0x00e0, // CLS
	)
	for i := 0; i < 7; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if got, want := m.Mem[0x210:0x213], []byte{0, 1, 5}; !bytes.Equal(got, want) {
		t.Errorf("BCD is % x, want % x", got, want)
	}
	if m.V[0] != 0 || m.V[1] != 1 || m.V[0xf] != 0 {
		t.Errorf("V0=%d V1=%d VF=%d, want 0 1 0", m.V[0], m.V[1], m.V[0xf])
	}
	if m.I != 0x212 {
		t.Errorf("I is %.3x, want 212", m.I)
	}
}
