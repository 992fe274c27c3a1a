package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/nf/ch8/chip8"
)

// symbols is sorted by address.
type symbols []symbol

type symbol struct {
	addr  uint16
	label string
}

func (s symbol) String() string { return fmt.Sprintf("%s (%.3x)", s.label, s.addr) }

func (s symbols) forAddr(addr uint16) (ss []symbol) {
	i := sort.Search(len(s), func(i int) bool { return s[i].addr >= addr })
	for ; i < len(s) && s[i].addr == addr; i++ {
		ss = append(ss, s[i])
	}
	return ss
}

func (s symbols) withLabelPrefix(prefix string) (ss []symbol) {
	for _, sym := range s {
		if strings.HasPrefix(sym.label, prefix) {
			ss = append(ss, sym)
		}
	}
	return ss
}

// resolve looks up a label or parses a hexadecimal address.
func (s symbols) resolve(arg string) (symbol, bool) {
	for _, sym := range s {
		if sym.label == arg {
			return sym, true
		}
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(arg, "$"), 16, 16)
	if err != nil || n > chip8.AddrMask {
		return symbol{}, false
	}
	addr := uint16(n)
	if ss := s.forAddr(addr); len(ss) > 0 {
		return ss[0], true
	}
	return symbol{addr: addr, label: fmt.Sprintf("$%.3x", addr)}, true
}

// parseSymbols reads a symbol file: a sequence of big-endian addresses,
// each followed by a NUL-terminated label.
func parseSymbols(symFile string) (symbols, error) {
	b, err := os.ReadFile(symFile)
	if err != nil {
		return nil, err
	}
	var ss symbols
	for len(b) > 0 {
		if len(b) < 3 {
			return nil, fmt.Errorf("invalid symbol at end of file %q", b)
		}
		s := symbol{addr: uint16(b[0])<<8 + uint16(b[1])}
		b = b[2:]
		i := bytes.IndexByte(b, 0)
		if i < 0 {
			return nil, fmt.Errorf("invalid symbol label at %.3x %q", s.addr, b)
		}
		s.label = string(b[:i])
		b = b[i+1:]
		ss = append(ss, s)
	}
	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].addr < ss[j].addr
	})
	return ss, nil
}

// opAddr returns the address the instruction at pc refers to, if any.
func opAddr(m *chip8.Machine, pc uint16) (uint16, bool) {
	op := chip8.Op(uint16(m.Mem.Read(pc))<<8 | uint16(m.Mem.Read(pc+1)))
	switch op.Kind() {
	case chip8.SYS, chip8.JP, chip8.CALL, chip8.LDA:
		return op.NNN(), true
	case chip8.JPV0:
		return (op.NNN() + uint16(m.V[0])) & chip8.AddrMask, true
	case chip8.DRW, chip8.LDB, chip8.STM, chip8.LDM:
		return m.I & chip8.AddrMask, true
	}
	return 0, false
}
