package cosmac

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nf/ch8/chip8"
)

func rom(ops ...uint16) []byte {
	var b []byte
	for _, op := range ops {
		b = append(b, byte(op>>8), byte(op))
	}
	return b
}

func newTestCosmac(t *testing.T, cfg Config, ops ...uint16) *Cosmac {
	t.Helper()
	c, err := New(rom(ops...), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRunHeadless(t *testing.T) {
	c := newTestCosmac(t, DefaultConfig(),
		0xa000, // LD I, $000
		0xd015, // DRW V0, V0, 5
		0x1204, // JP $204
	)
	var out bytes.Buffer
	r := NewRunner(&Headless{Frames: 2, Out: &out}, false, nil)
	if err := r.Run(c); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(out.String(), "\n")
	if len(lines) < chip8.Height {
		t.Fatalf("got %d lines of output, want %d", len(lines), chip8.Height)
	}
	for i, want := range []string{"####.", "#..#.", "#..#.", "#..#.", "####.", "....."} {
		if !strings.HasPrefix(lines[i], want) {
			t.Errorf("line %d is %q, want prefix %q", i, lines[i], want)
		}
	}
}

func TestRunHalts(t *testing.T) {
	c := newTestCosmac(t, DefaultConfig(), 0x00ee)
	r := NewRunner(&Headless{}, false, nil)
	err := r.Run(c)
	var h chip8.HaltError
	if !errors.As(err, &h) || h.HaltCode != chip8.StackUnderflow {
		t.Fatalf("got error %v, want %v", err, chip8.StackUnderflow)
	}
}

func TestRunReportsHaltInDevMode(t *testing.T) {
	c := newTestCosmac(t, DefaultConfig(), 0x00ee)
	var states []StateKind
	r := NewRunner(&Headless{Frames: 3}, true, func(m *chip8.Machine, k StateKind) {
		states = append(states, k)
	})
	if err := r.Run(c); err != nil {
		t.Fatalf("dev mode run returned %v, want nil", err)
	}
	if len(states) != 1 || states[0] != HaltState {
		t.Errorf("reported states %v, want [%v]", states, HaltState)
	}
}

func TestFrameDisplayWait(t *testing.T) {
	ops := []uint16{0x7001, 0x7001, 0x7001, 0xd010}
	for i := 0; i < 10; i++ {
		ops = append(ops, 0x7001)
	}
	for _, c := range []struct {
		wait bool
		v0   byte
	}{
		{true, 3},
		{false, 9},
	} {
		cfg := DefaultConfig()
		cfg.DisplayWait = c.wait
		cm := newTestCosmac(t, cfg, ops...)
		if err := cm.frame(nil); err != nil {
			t.Fatal(err)
		}
		if g := cm.m.V[0]; g != c.v0 {
			t.Errorf("wait=%v: V0 is %d, want %d", c.wait, g, c.v0)
		}
	}
}

func TestFrameTicksTimers(t *testing.T) {
	c := newTestCosmac(t, DefaultConfig(),
		0x600a, // LD V0, 10
		0xf015, // LD DT, V0
		0xf018, // LD ST, V0
		0x1206, // JP $206
	)
	for i := 1; i <= 3; i++ {
		if err := c.frame(nil); err != nil {
			t.Fatal(err)
		}
		if g, w := c.m.Timers.Delay(), byte(10-i); g != w {
			t.Errorf("frame %d: delay is %d, want %d", i, g, w)
		}
	}
}

func TestDebuggerBreak(t *testing.T) {
	c := newTestCosmac(t, DefaultConfig(),
		0x6001, // 200: LD V0, 1
		0x6102, // 202: LD V1, 2
		0x6203, // 204: LD V2, 3
		0x1206, // 206: JP $206
	)
	var d debugger
	d.command(debugCmd{"break", 0x204})
	if err := c.frame(d.check); err != nil {
		t.Fatal(err)
	}
	if !d.paused || d.hit != BreakState {
		t.Fatalf("paused=%v hit=%v, want paused at break", d.paused, d.hit)
	}
	if c.m.PC != 0x204 || c.m.V[2] != 0 {
		t.Fatalf("PC=%.3x V2=%d, want stopped before 204", c.m.PC, c.m.V[2])
	}
	if k, ok := d.command(debugCmd{"cont", 0}); !ok || k != ClearState {
		t.Errorf("cont reported %v, %v", k, ok)
	}
	d.hit = 0
	if err := c.frame(d.check); err != nil {
		t.Fatal(err)
	}
	if d.paused || c.m.V[2] != 3 {
		t.Errorf("paused=%v V2=%d after cont, want running and V2=3", d.paused, c.m.V[2])
	}
}

func TestDebuggerDebugAddr(t *testing.T) {
	c := newTestCosmac(t, DefaultConfig(), 0x6001, 0x1202)
	var d debugger
	d.command(debugCmd{"debug", 0x202})
	if err := c.frame(d.check); err != nil {
		t.Fatal(err)
	}
	if d.paused || d.hit != DebugState {
		t.Errorf("paused=%v hit=%v, want running with debug state", d.paused, d.hit)
	}
	d.hit = 0
	d.command(debugCmd{"nodebug", 0})
	if err := c.frame(d.check); err != nil {
		t.Fatal(err)
	}
	if d.hit != 0 {
		t.Errorf("hit=%v after nodebug, want none", d.hit)
	}
}

func TestNewRejectsLargeImage(t *testing.T) {
	_, err := New(make([]byte, chip8.MemSize), DefaultConfig())
	if !errors.Is(err, chip8.ErrImageTooLarge) {
		t.Errorf("got error %v, want %v", err, chip8.ErrImageTooLarge)
	}
}
