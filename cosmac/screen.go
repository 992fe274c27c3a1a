package cosmac

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/nf/ch8/chip8"
)

// Screen converts the display into an image in the configured colours.
type Screen struct {
	FG, BG color.RGBA

	img *image.RGBA
}

// Image returns the display as a Width x Height image. The image is
// reused by the next call.
func (s *Screen) Image(g *chip8.Grid) *image.RGBA {
	if s.img == nil {
		s.img = image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height))
	}
	for y := range g {
		for x, on := range g[y] {
			c := s.BG
			if on {
				c = s.FG
			}
			s.img.SetRGBA(x, y, c)
		}
	}
	return s.img
}

// Render draws the display scaled to fill dst.
func (s *Screen) Render(dst *image.RGBA, g *chip8.Grid) {
	src := s.Image(g)
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
}

// ParseColor parses a colour written as six hexadecimal digits.
func ParseColor(s string) (color.RGBA, error) {
	var r, g, b uint8
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("bad colour %q", s)
	}
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("bad colour %q", s)
	}
	return color.RGBA{r, g, b, 0xff}, nil
}
