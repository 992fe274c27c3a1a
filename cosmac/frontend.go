package cosmac

import (
	"fmt"
	"io"
	"time"

	"github.com/nf/ch8/chip8"
)

// Frontend presents the machine to the user. Run must return once exit is
// closed.
type Frontend interface {
	Run(f *Frames, exit <-chan bool) error
}

// Frames synchronizes a frontend with the execution loop. Once per frame
// the loop offers the running Cosmac on Update; the frontend may read its
// display and sound state until it calls Done, after which the loop runs
// the next frame.
type Frames struct {
	update chan *Cosmac
	done   chan bool
	reset  chan bool
}

func newFrames() *Frames {
	return &Frames{
		update: make(chan *Cosmac),
		done:   make(chan bool),
		reset:  make(chan bool, 1),
	}
}

func (f *Frames) Update() <-chan *Cosmac { return f.update }

func (f *Frames) Done() { f.done <- true }

// Reset asks the execution loop to reset the machine.
func (f *Frames) Reset() {
	select {
	case f.reset <- true:
	default:
	}
}

// frameState is the part of the machine a frontend reads during a frame.
type frameState struct {
	grid  chip8.Grid
	sound bool
}

func (f *Frames) take(c *Cosmac) frameState {
	defer f.Done()
	return frameState{
		grid:  c.m.Display.Snapshot(),
		sound: c.m.Timers.SoundActive(),
	}
}

// Headless runs frames without presenting them. If Frames is non-zero it
// stops after that many frames and writes the final display to Out.
type Headless struct {
	Frames   int
	Interval time.Duration // between frames; zero runs flat out
	Out      io.Writer
}

func (h *Headless) Run(f *Frames, exit <-chan bool) error {
	var tick <-chan time.Time
	if h.Interval > 0 {
		t := time.NewTicker(h.Interval)
		defer t.Stop()
		tick = t.C
	}
	var st frameState
	// The display after frame n is read at the start of frame n+1.
	for n := 0; h.Frames == 0 || n <= h.Frames; n++ {
		if tick != nil {
			select {
			case <-tick:
			case <-exit:
				return nil
			}
		}
		select {
		case c := <-f.Update():
			st = f.take(c)
		case <-exit:
			return nil
		}
	}
	if h.Out != nil {
		if _, err := fmt.Fprint(h.Out, &st.grid); err != nil {
			return err
		}
	}
	return nil
}
