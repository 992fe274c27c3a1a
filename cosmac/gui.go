package cosmac

import (
	"image"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/ch8/chip8"
)

// GUI presents the display in a window and reads the keypad from the
// keyboard. Escape closes the window and F5 resets the machine.
type GUI struct {
	cfg Config
	scr Screen

	cur   *Cosmac // last machine offered by the execution loop
	state frameState
	size  image.Point
	buf   screen.Buffer
	tex   screen.Texture
	dirty bool
}

func NewGUI(cfg Config) *GUI {
	return &GUI{
		cfg: cfg,
		scr: Screen{FG: cfg.FG, BG: cfg.BG},
	}
}

func (g *GUI) Run(f *Frames, exit <-chan bool) (err error) {
	driver.Main(func(s screen.Screen) {
		g.size = image.Point{chip8.Width * g.cfg.Scale, chip8.Height * g.cfg.Scale}
		w, werr := s.NewWindow(&screen.NewWindowOptions{
			Title:  "ch8",
			Width:  g.size.X,
			Height: g.size.Y,
		})
		if werr != nil {
			err = werr
			return
		}
		defer w.Release()

		type update struct{}
		go func() {
			t := time.NewTicker(time.Second / 60)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-exit:
					w.Send(lifecycle.Event{To: lifecycle.StageDead})
					return
				}
			}
		}()

		if err = g.alloc(s); err != nil {
			return
		}
		defer g.release()

		var sz size.Event
		for {
			switch e := w.NextEvent().(type) {
			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case size.Event:
				sz = e
				g.dirty = true

			case paint.Event:
				g.dirty = true

			case key.Event:
				switch e.Code {
				case key.CodeEscape:
					return
				case key.CodeF5:
					if e.Direction == key.DirPress {
						f.Reset()
					}
					continue
				}
				g.setKey(e)

			case update:
				select {
				case c := <-f.Update():
					g.cur = c
					st := f.take(c)
					if st.grid != g.state.grid {
						g.dirty = true
					}
					g.state = st
				default:
					// execution loop is busy
				}

			case error:
				log.Print(e)
			}

			if g.dirty && sz.WidthPx > 0 && sz.HeightPx > 0 {
				g.scr.Render(g.buf.RGBA(), &g.state.grid)
				g.tex.Upload(image.Point{}, g.buf, g.buf.Bounds())
				w.Scale(sz.Bounds(), g.tex, g.tex.Bounds(), draw.Src, nil)
				w.Publish()
				g.dirty = false
			}
		}
	})
	return err
}

func (g *GUI) setKey(e key.Event) {
	if g.cur == nil {
		return
	}
	k, ok := g.cfg.Keymap.Key(e.Rune)
	if !ok {
		return
	}
	// DirNone is an auto-repeat of a held key.
	g.cur.m.Keys.SetKey(k, e.Direction != key.DirRelease)
}

func (g *GUI) alloc(s screen.Screen) (err error) {
	g.buf, err = s.NewBuffer(g.size)
	if err != nil {
		return
	}
	g.tex, err = s.NewTexture(g.size)
	return
}

func (g *GUI) release() {
	if g.tex != nil {
		g.tex.Release()
	}
	if g.buf != nil {
		g.buf.Release()
	}
}
