// Package cosmac implements the host computer that runs the CHIP-8
// interpreter: frame pacing, debugging control, display frontends,
// keypad mapping and the beeper.
package cosmac

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/nf/ch8/chip8"
)

// Config holds the host settings chosen on the command line.
type Config struct {
	Speed       int  // instructions per frame
	DisplayWait bool // end the frame's instructions after a draw
	Scale       int  // GUI pixels per CHIP-8 pixel
	Keymap      Keymap
	FG, BG      color.RGBA
	WAV         string // record the beeper to this file, if set
}

func DefaultConfig() Config {
	km, _ := ParseKeymap(DefaultKeys)
	return Config{
		Speed:       10,
		DisplayWait: true,
		Scale:       10,
		Keymap:      km,
		FG:          color.RGBA{0xff, 0xff, 0xff, 0xff},
		BG:          color.RGBA{0x00, 0x00, 0x00, 0xff},
	}
}

type StateKind int

const (
	ClearState StateKind = iota
	QuietState
	DebugState
	BreakState
	PauseState
	HaltState
)

// StateFunc is called from the execution goroutine to report the machine
// state to a debugger. The machine must not be retained after it returns.
type StateFunc func(*chip8.Machine, StateKind)

type Runner struct {
	fe    Frontend
	dev   bool
	state StateFunc

	reset     chan *Cosmac
	resetDone chan bool
	debug     chan debugCmd
}

func NewRunner(fe Frontend, devMode bool, state StateFunc) *Runner {
	if state == nil {
		state = func(*chip8.Machine, StateKind) {}
	}
	return &Runner{
		fe:        fe,
		dev:       devMode,
		state:     state,
		reset:     make(chan *Cosmac),
		resetDone: make(chan bool),
		debug:     make(chan debugCmd),
	}
}

// Reset replaces the running machine with c.
func (r *Runner) Reset(c *Cosmac) {
	if !r.dev {
		panic("Reset called while not running in dev mode")
	}
	r.reset <- c
	<-r.resetDone
}

type debugCmd struct {
	cmd  string
	addr uint16
}

// Debug sends a command to the execution loop. Commands are
// break, nobreak, debug, nodebug (which take addr), pause, step, cont,
// reset and exit.
func (r *Runner) Debug(cmd string, addr uint16) {
	r.debug <- debugCmd{cmd, addr}
}

// Run executes c until the frontend exits or, outside dev mode, the
// machine halts.
func (r *Runner) Run(c *Cosmac) error {
	var (
		f       = newFrames()
		exit    = make(chan bool)
		quit    = make(chan bool)
		execErr error
	)
	go func() {
		execErr = r.exec(c, f, quit)
		close(exit)
	}()
	feErr := r.fe.Run(f, exit)
	close(quit)
	<-exit
	if feErr != nil {
		return feErr
	}
	return execErr
}

func (r *Runner) exec(c *Cosmac, f *Frames, quit <-chan bool) (err error) {
	var (
		d       debugger
		running = true
		frames  = 0
	)
	defer func() {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}()
	for {
		select {
		case <-quit:
			return nil
		case newC := <-r.reset:
			if err := c.Close(); err != nil {
				log.Printf("cosmac: %v", err)
			}
			c = newC
			running = true
			d.paused = false
			r.state(c.m, ClearState)
			r.resetDone <- true
		case <-f.reset:
			c.m.Reset()
			running = true
			r.state(c.m, ClearState)
		case cmd := <-r.debug:
			switch cmd.cmd {
			case "exit":
				return nil
			case "reset":
				c.m.Reset()
				running = true
				r.state(c.m, ClearState)
				continue
			case "step":
				if !running {
					continue
				}
				d.paused = true
				d.resumed = true
				err := c.steps(1, d.check)
				d.hit = 0
				if err != nil {
					if running = r.halt(c, err); !r.dev {
						return err
					}
					continue
				}
			}
			if k, ok := d.command(cmd); ok {
				r.state(c.m, k)
			}
		case f.update <- c:
			<-f.done
			if !running || d.paused {
				continue
			}
			if err := c.frame(d.check); err != nil {
				var h chip8.HaltError
				if !errors.As(err, &h) {
					return err
				}
				if running = r.halt(c, err); !r.dev {
					return err
				}
			}
			if d.hit != 0 {
				r.state(c.m, d.hit)
				d.hit = 0
			} else if frames++; frames%10 == 0 {
				r.state(c.m, QuietState)
			}
		}
	}
}

// halt reports a halted machine and returns false.
func (r *Runner) halt(c *Cosmac, err error) bool {
	if r.dev {
		log.Printf("cosmac: %v", err)
	}
	r.state(c.m, HaltState)
	return false
}

// debugger holds the break and debug addresses of the execution loop.
type debugger struct {
	brk, dbg       uint16
	hasBrk, hasDbg bool
	paused         bool
	resumed        bool      // don't break again at the current PC
	hit            StateKind // state to report at the end of the frame
}

// command applies cmd and returns the state to report, if any.
func (d *debugger) command(cmd debugCmd) (StateKind, bool) {
	switch cmd.cmd {
	case "break":
		d.brk, d.hasBrk = cmd.addr, true
	case "nobreak":
		d.hasBrk = false
	case "debug":
		d.dbg, d.hasDbg = cmd.addr, true
	case "nodebug":
		d.hasDbg = false
	case "pause":
		d.paused = true
		return PauseState, true
	case "step":
		return PauseState, true
	case "cont":
		d.paused = false
		d.resumed = true
		return ClearState, true
	default:
		log.Printf("cosmac: unknown debug command %q", cmd.cmd)
	}
	return 0, false
}

// check is called before each instruction and reports whether execution
// should stop at pc.
func (d *debugger) check(pc uint16) (stop bool) {
	resumed := d.resumed
	d.resumed = false
	if d.hasDbg && pc == d.dbg {
		d.hit = DebugState
	}
	if d.hasBrk && pc == d.brk && !resumed {
		d.paused = true
		d.hit = BreakState
		return true
	}
	return false
}

// Cosmac is a CHIP-8 machine together with its host configuration.
type Cosmac struct {
	m    *chip8.Machine
	cfg  Config
	beep *Beeper
}

// New returns a Cosmac with rom loaded.
func New(rom []byte, cfg Config) (*Cosmac, error) {
	m := chip8.NewMachine()
	if err := m.Load(rom); err != nil {
		return nil, err
	}
	c := &Cosmac{m: m, cfg: cfg}
	if cfg.WAV != "" {
		c.beep = NewBeeper()
	}
	return c, nil
}

// frame runs up to Speed instructions followed by one timer tick. With
// DisplayWait set the instructions end early after a draw, as the
// COSMAC VIP interpreter waited for the vertical blank.
func (c *Cosmac) frame(stop func(pc uint16) bool) error {
	if err := c.steps(c.cfg.Speed, stop); err != nil {
		return err
	}
	c.m.TickTimers()
	if c.beep != nil {
		c.beep.Frame(c.m.Timers.SoundActive())
	}
	return nil
}

func (c *Cosmac) steps(n int, stop func(pc uint16) bool) error {
	for i := 0; i < n; i++ {
		if stop != nil && stop(c.m.PC) {
			return nil
		}
		drew, err := c.m.Step()
		if err != nil {
			return err
		}
		if drew && c.cfg.DisplayWait {
			break
		}
	}
	return nil
}

// Close writes the beeper recording, if one was requested.
func (c *Cosmac) Close() error {
	if c.beep == nil {
		return nil
	}
	f, err := os.Create(c.cfg.WAV)
	if err != nil {
		return fmt.Errorf("beeper: %v", err)
	}
	if err := c.beep.WriteWAV(f); err != nil {
		f.Close()
		return fmt.Errorf("beeper: %v", err)
	}
	c.beep = nil
	return f.Close()
}
