package chip8

import (
	"errors"
	"fmt"
)

const (
	MemSize  = 0x1000
	AddrMask = MemSize - 1

	GlyphAddr = 0x000
	GlyphSize = 5 // bytes per glyph
)

// Memory is the 4K address space of the machine. Addresses passed to Read
// and Write are masked to 12 bits, so every access is in range.
type Memory [MemSize]byte

func (m *Memory) Read(addr uint16) byte { return m[addr&AddrMask] }

func (m *Memory) Write(addr uint16, v byte) { m[addr&AddrMask] = v }

func (m *Memory) init() {
	*m = Memory{}
	copy(m[GlyphAddr:], glyphs[:])
}

// Glyph returns the address of the sprite for hexadecimal digit d.
func Glyph(d byte) uint16 { return GlyphAddr + uint16(d&0xf)*GlyphSize }

var glyphs = [16 * GlyphSize]byte{
	0xf0, 0x90, 0x90, 0x90, 0xf0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xf0, 0x10, 0xf0, 0x80, 0xf0, // 2
	0xf0, 0x10, 0xf0, 0x10, 0xf0, // 3
	0x90, 0x90, 0xf0, 0x10, 0x10, // 4
	0xf0, 0x80, 0xf0, 0x10, 0xf0, // 5
	0xf0, 0x80, 0xf0, 0x90, 0xf0, // 6
	0xf0, 0x10, 0x20, 0x40, 0x40, // 7
	0xf0, 0x90, 0xf0, 0x90, 0xf0, // 8
	0xf0, 0x90, 0xf0, 0x10, 0xf0, // 9
	0xf0, 0x90, 0xf0, 0x90, 0x90, // A
	0xe0, 0x90, 0xe0, 0x90, 0xe0, // B
	0xf0, 0x80, 0x80, 0x80, 0xf0, // C
	0xe0, 0x90, 0x90, 0x90, 0xe0, // D
	0xf0, 0x80, 0xf0, 0x80, 0xf0, // E
	0xf0, 0x80, 0xf0, 0x80, 0x80, // F
}

// ErrImageTooLarge is wrapped by the *ImageError returned by Load.
var ErrImageTooLarge = errors.New("program image too large")

// ImageError is returned by Load for an image that does not fit in memory.
type ImageError struct {
	Size int
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("%v: %d bytes, maximum is %d", ErrImageTooLarge, e.Size, MemSize-ProgramStart)
}

func (e *ImageError) Unwrap() error { return ErrImageTooLarge }
