package chip8

import "sync/atomic"

// KeySet holds the state of the 16 keys, one bit per key.
type KeySet uint16

// IsDown reports whether key k (0x0 to 0xf) is down.
func (s KeySet) IsDown(k byte) bool { return s&(1<<(k&0xf)) != 0 }

// FirstDown returns the lowest key that is down, if any.
func (s KeySet) FirstDown() (byte, bool) {
	for k := byte(0); k < 16; k++ {
		if s.IsDown(k) {
			return k, true
		}
	}
	return 0, false
}

// Keypad is the hexadecimal keypad. It is safe to call SetKey from any
// goroutine while the machine is running; each instruction sees a single
// consistent Snapshot.
type Keypad struct {
	state atomic.Uint32
}

func (p *Keypad) SetKey(k byte, down bool) {
	bit := uint32(1) << (k & 0xf)
	for {
		old := p.state.Load()
		v := old &^ bit
		if down {
			v |= bit
		}
		if p.state.CompareAndSwap(old, v) {
			return
		}
	}
}

func (p *Keypad) IsDown(k byte) bool { return p.Snapshot().IsDown(k) }

func (p *Keypad) FirstDown() (byte, bool) { return p.Snapshot().FirstDown() }

func (p *Keypad) Snapshot() KeySet { return KeySet(p.state.Load()) }

// Reset releases every key.
func (p *Keypad) Reset() { p.state.Store(0) }
