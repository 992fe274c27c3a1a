package chip8

import "strings"

const (
	Width  = 64
	Height = 32
)

// Grid is a copy of the display contents, indexed [y][x].
type Grid [Height][Width]bool

func (g *Grid) String() string {
	var b strings.Builder
	for y := range g {
		for _, on := range g[y] {
			if on {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Display is the monochrome frame buffer.
type Display struct {
	px Grid
}

func (d *Display) Clear() { d.px = Grid{} }

// Pixel reports whether the pixel at (x, y) is set.
// Coordinates outside the grid are never set.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return d.px[y][x]
}

func (d *Display) SetPixel(x, y int, on bool) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	d.px[y][x] = on
}

// Snapshot returns a copy of the display contents.
func (d *Display) Snapshot() Grid { return d.px }

// Draw XORs the sprite rows onto the display with the top-left corner at
// (x, y). The starting coordinates wrap around the display, but sprite
// pixels that fall off the right or bottom edge are clipped. Draw reports
// whether any set pixel was cleared.
func (d *Display) Draw(x, y byte, rows []byte) (collision bool) {
	x0, y0 := int(x)%Width, int(y)%Height
	for j, row := range rows {
		py := y0 + j
		if py >= Height {
			break
		}
		for i := 0; i < 8 && x0+i < Width; i++ {
			if row&(0x80>>i) == 0 {
				continue
			}
			p := &d.px[py][x0+i]
			if *p {
				collision = true
			}
			*p = !*p
		}
	}
	return collision
}
