package cosmac

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nf/ch8/chip8"
)

// Terminal presents the display in a terminal, two pixel rows to a cell.
// Terminals report key presses but not releases, so a pressed key is held
// down for Hold. The terminal bell rings when the sound timer starts.
// Escape or Ctrl-C quits and F5 resets the machine.
type Terminal struct {
	cfg  Config
	Hold time.Duration
}

func NewTerminal(cfg Config) *Terminal {
	return &Terminal{cfg: cfg, Hold: 150 * time.Millisecond}
}

func (t *Terminal) Run(f *Frames, exit <-chan bool) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()
	return t.run(s, f, exit)
}

func (t *Terminal) run(s tcell.Screen, f *Frames, exit <-chan bool) error {
	var (
		events = make(chan tcell.Event, 16)
		stop   = make(chan bool)
		ticker = time.NewTicker(time.Second / 60)
		held   [16]time.Time // release deadline of each held key
		cur    *Cosmac
		sound  bool
		fg     = rgb(t.cfg.FG.R, t.cfg.FG.G, t.cfg.FG.B)
		bg     = rgb(t.cfg.BG.R, t.cfg.BG.G, t.cfg.BG.B)
	)
	defer ticker.Stop()
	defer close(stop)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-stop:
				return
			}
		}
	}()

	for {
		select {
		case <-exit:
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				s.Sync()
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					return nil
				case tcell.KeyF5:
					f.Reset()
				case tcell.KeyRune:
					k, ok := t.cfg.Keymap.Key(ev.Rune())
					if !ok || cur == nil {
						break
					}
					held[k] = time.Now().Add(t.Hold)
					cur.m.Keys.SetKey(k, true)
				}
			}

		case now := <-ticker.C:
			if cur != nil {
				for k, d := range held {
					if !d.IsZero() && now.After(d) {
						held[k] = time.Time{}
						cur.m.Keys.SetKey(byte(k), false)
					}
				}
			}
			select {
			case c := <-f.Update():
				cur = c
				st := f.take(c)
				if st.sound && !sound {
					s.Beep()
				}
				sound = st.sound
				drawGrid(s, &st.grid, fg, bg)
				s.Show()
			default:
			}
		}
	}
}

func rgb(r, g, b uint8) tcell.Color {
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// drawGrid draws the display using upper half blocks, the foreground
// colour giving the upper pixel and the background the lower.
func drawGrid(s tcell.Screen, g *chip8.Grid, on, off tcell.Color) {
	pick := func(set bool) tcell.Color {
		if set {
			return on
		}
		return off
	}
	for y := 0; y < chip8.Height; y += 2 {
		for x := 0; x < chip8.Width; x++ {
			st := tcell.StyleDefault.
				Foreground(pick(g[y][x])).
				Background(pick(g[y+1][x]))
			s.SetContent(x, y/2, '▀', nil, st)
		}
	}
}
