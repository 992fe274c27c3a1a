package chip8

import "fmt"

// Op represents a CHIP-8 instruction.
type Op uint16

func (o Op) X() byte     { return byte(o>>8) & 0xf }
func (o Op) Y() byte     { return byte(o>>4) & 0xf }
func (o Op) N() byte     { return byte(o) & 0xf }
func (o Op) KK() byte    { return byte(o) }
func (o Op) NNN() uint16 { return uint16(o) & 0xfff }

// Kind identifies one of the instructions of the CHIP-8 instruction set.
type Kind byte

const (
	Invalid Kind = iota

	SYS  // 0nnn
	CLS  // 00E0
	RET  // 00EE
	JP   // 1nnn
	CALL // 2nnn
	SEI  // 3xkk
	SNEI // 4xkk
	SE   // 5xy0
	LDI  // 6xkk
	ADDI // 7xkk
	LD   // 8xy0
	OR   // 8xy1
	AND  // 8xy2
	XOR  // 8xy3
	ADD  // 8xy4
	SUB  // 8xy5
	SHR  // 8xy6
	SUBN // 8xy7
	SHL  // 8xyE
	SNE  // 9xy0
	LDA  // Annn
	JPV0 // Bnnn
	RND  // Cxkk
	DRW  // Dxyn
	SKP  // Ex9E
	SKNP // ExA1
	LDVT // Fx07
	LDK  // Fx0A
	LDDT // Fx15
	LDST // Fx18
	ADDA // Fx1E
	LDF  // Fx29
	LDB  // Fx33
	STM  // Fx55
	LDM  // Fx65
)

var aluKinds = [16]Kind{
	0x0: LD, 0x1: OR, 0x2: AND, 0x3: XOR, 0x4: ADD,
	0x5: SUB, 0x6: SHR, 0x7: SUBN, 0xe: SHL,
}

var miscKinds = map[byte]Kind{
	0x07: LDVT, 0x0a: LDK, 0x15: LDDT, 0x18: LDST, 0x1e: ADDA,
	0x29: LDF, 0x33: LDB, 0x55: STM, 0x65: LDM,
}

// Kind decodes the instruction, returning Invalid if the bit pattern is
// not part of the instruction set.
func (o Op) Kind() Kind {
	switch o >> 12 {
	case 0x0:
		switch o {
		case 0x00e0:
			return CLS
		case 0x00ee:
			return RET
		}
		return SYS
	case 0x1:
		return JP
	case 0x2:
		return CALL
	case 0x3:
		return SEI
	case 0x4:
		return SNEI
	case 0x5:
		if o.N() == 0 {
			return SE
		}
	case 0x6:
		return LDI
	case 0x7:
		return ADDI
	case 0x8:
		return aluKinds[o.N()]
	case 0x9:
		if o.N() == 0 {
			return SNE
		}
	case 0xa:
		return LDA
	case 0xb:
		return JPV0
	case 0xc:
		return RND
	case 0xd:
		return DRW
	case 0xe:
		switch o.KK() {
		case 0x9e:
			return SKP
		case 0xa1:
			return SKNP
		}
	case 0xf:
		return miscKinds[o.KK()]
	}
	return Invalid
}

var kindNames = [...]string{
	Invalid: "DW",
	SYS:     "SYS", CLS: "CLS", RET: "RET", JP: "JP", CALL: "CALL",
	SEI: "SE", SNEI: "SNE", SE: "SE", LDI: "LD", ADDI: "ADD",
	LD: "LD", OR: "OR", AND: "AND", XOR: "XOR", ADD: "ADD",
	SUB: "SUB", SHR: "SHR", SUBN: "SUBN", SHL: "SHL", SNE: "SNE",
	LDA: "LD", JPV0: "JP", RND: "RND", DRW: "DRW",
	SKP: "SKP", SKNP: "SKNP",
	LDVT: "LD", LDK: "LD", LDDT: "LD", LDST: "LD", ADDA: "ADD",
	LDF: "LD", LDB: "LD", STM: "LD", LDM: "LD",
}

// Mnemonic returns the assembler mnemonic for the kind of instruction.
func (k Kind) Mnemonic() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// String disassembles the instruction.
func (o Op) String() string {
	k := o.Kind()
	name := k.Mnemonic()
	switch k {
	case Invalid:
		return fmt.Sprintf("%s $%.4X", name, uint16(o))
	case CLS, RET:
		return name
	case SYS, JP, CALL:
		return fmt.Sprintf("%s $%.3X", name, o.NNN())
	case SEI, SNEI, LDI, ADDI, RND:
		return fmt.Sprintf("%s V%X, $%.2X", name, o.X(), o.KK())
	case SE, SNE, LD, OR, AND, XOR, ADD, SUB, SHR, SUBN, SHL:
		return fmt.Sprintf("%s V%X, V%X", name, o.X(), o.Y())
	case LDA:
		return fmt.Sprintf("%s I, $%.3X", name, o.NNN())
	case JPV0:
		return fmt.Sprintf("%s V0, $%.3X", name, o.NNN())
	case DRW:
		return fmt.Sprintf("%s V%X, V%X, %d", name, o.X(), o.Y(), o.N())
	case SKP, SKNP:
		return fmt.Sprintf("%s V%X", name, o.X())
	case LDVT:
		return fmt.Sprintf("%s V%X, DT", name, o.X())
	case LDK:
		return fmt.Sprintf("%s V%X, K", name, o.X())
	case LDDT:
		return fmt.Sprintf("%s DT, V%X", name, o.X())
	case LDST:
		return fmt.Sprintf("%s ST, V%X", name, o.X())
	case ADDA:
		return fmt.Sprintf("%s I, V%X", name, o.X())
	case LDF:
		return fmt.Sprintf("%s F, V%X", name, o.X())
	case LDB:
		return fmt.Sprintf("%s B, V%X", name, o.X())
	case STM:
		return fmt.Sprintf("%s [I], V%X", name, o.X())
	case LDM:
		return fmt.Sprintf("%s V%X, [I]", name, o.X())
	}
	panic("unreachable")
}
