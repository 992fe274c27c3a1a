package chip8

// Timers holds the delay and sound counters. Both count down to zero at
// one step per Tick and stop there.
type Timers struct {
	delay, sound byte
}

func (t *Timers) Tick() {
	if t.delay > 0 {
		t.delay--
	}
	if t.sound > 0 {
		t.sound--
	}
}

func (t *Timers) Delay() byte       { return t.delay }
func (t *Timers) SetDelay(v byte)   { t.delay = v }
func (t *Timers) Sound() byte       { return t.sound }
func (t *Timers) SetSound(v byte)   { t.sound = v }
func (t *Timers) SoundActive() bool { return t.sound != 0 }
