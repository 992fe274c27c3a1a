package cosmac

import "testing"

func TestKeymap(t *testing.T) {
	km, err := ParseKeymap(DefaultKeys)
	if err != nil {
		t.Fatal(err)
	}
	for r, want := range map[rune]byte{
		'x': 0x0, '1': 0x1, 'q': 0x4, 'W': 0x5, 'z': 0xa, '4': 0xc, 'v': 0xf,
	} {
		if k, ok := km.Key(r); !ok || k != want {
			t.Errorf("Key(%q) = %x, %v, want %x, true", r, k, ok, want)
		}
	}
	if k, ok := km.Key('p'); ok {
		t.Errorf("Key('p') = %x, true, want no key", k)
	}
	if s := km.String(); s != DefaultKeys {
		t.Errorf("String() = %q, want %q", s, DefaultKeys)
	}
}

func TestParseKeymapErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"1234",
		"x123qweasdzc4rfvb",
		"x123qweasdzc4rfx",
		"X123qweasdzc4rfx",
	} {
		if _, err := ParseKeymap(s); err == nil {
			t.Errorf("ParseKeymap(%q) succeeded, want error", s)
		}
	}
}
