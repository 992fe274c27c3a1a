package cosmac

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// DefaultKeys lays the keypad out on the left of a QWERTY keyboard:
//
//	1 2 3 C     1 2 3 4
//	4 5 6 D     q w e r
//	7 8 9 E     a s d f
//	A 0 B F     z x c v
const DefaultKeys = "x123qweasdzc4rfv"

// Keymap maps keypad keys 0x0 to 0xf to the runes that press them.
type Keymap [16]rune

// ParseKeymap parses a string of 16 distinct runes, the first pressing
// key 0 and the last key F.
func ParseKeymap(s string) (Keymap, error) {
	var km Keymap
	if n := utf8.RuneCountInString(s); n != len(km) {
		return km, fmt.Errorf("keymap %q has %d keys, want %d", s, n, len(km))
	}
	seen := map[rune]bool{}
	i := 0
	for _, r := range s {
		r = unicode.ToLower(r)
		if seen[r] {
			return km, fmt.Errorf("keymap %q maps %q twice", s, r)
		}
		seen[r] = true
		km[i] = r
		i++
	}
	return km, nil
}

// Key returns the keypad key pressed by r.
func (km Keymap) Key(r rune) (byte, bool) {
	r = unicode.ToLower(r)
	for k, kr := range km {
		if kr == r {
			return byte(k), true
		}
	}
	return 0, false
}

func (km Keymap) String() string { return string(km[:]) }
