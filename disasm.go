package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/nf/ch8/chip8"
)

// disassemble lists rom as it would be laid out in memory, one instruction
// per line: address, opcode and mnemonic. Labels from syms are printed
// before the address they name. A trailing odd byte is listed on its own.
func disassemble(w io.Writer, rom []byte, syms symbols) error {
	if len(rom) > chip8.MemSize-chip8.ProgramStart {
		return &chip8.ImageError{Size: len(rom)}
	}
	bw := bufio.NewWriter(w)
	for i := 0; i < len(rom); i += 2 {
		addr := uint16(chip8.ProgramStart + i)
		for _, s := range syms.forAddr(addr) {
			fmt.Fprintf(bw, "%s:\n", s.label)
		}
		if i+1 == len(rom) {
			fmt.Fprintf(bw, "%.3x  %.2x    (incomplete instruction)\n", addr, rom[i])
			break
		}
		op := chip8.Op(uint16(rom[i])<<8 | uint16(rom[i+1]))
		fmt.Fprintf(bw, "%.3x  %.4x  %v\n", addr, uint16(op), op)
	}
	return bw.Flush()
}
