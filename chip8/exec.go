package chip8

import "fmt"

// Step executes the instruction at m.PC. It reports whether the instruction
// drew to the display, and returns a HaltError if the instruction could not
// be executed. A halted machine must be Reset before it is stepped again.
func (m *Machine) Step() (drew bool, err error) {
	var (
		opPC = m.PC & AddrMask
		op   = Op(short(m.Mem.Read(opPC), m.Mem.Read(opPC+1)))
		keys = m.Keys.Snapshot()
	)
	defer func() {
		if e := recover(); e != nil {
			if code, ok := e.(HaltCode); ok {
				err = HaltError{
					Addr:     opPC,
					Op:       op,
					HaltCode: code,
				}
			} else {
				panic(e)
			}
		}
	}()

	m.PC = (opPC + 2) & AddrMask

	var (
		v    = &m.V
		x, y = op.X(), op.Y()
	)
	switch op.Kind() {
	case SYS:
		// Machine code routines are not emulated.
	case CLS:
		m.Display.Clear()
	case RET:
		m.PC = m.pop()
	case JP:
		m.PC = op.NNN()
	case CALL:
		m.push(m.PC)
		m.PC = op.NNN()
	case SEI:
		m.skipIf(v[x] == op.KK())
	case SNEI:
		m.skipIf(v[x] != op.KK())
	case SE:
		m.skipIf(v[x] == v[y])
	case LDI:
		v[x] = op.KK()
	case ADDI:
		v[x] += op.KK()
	case LD:
		v[x] = v[y]
	case OR:
		v[x] |= v[y]
		v[0xf] = 0
	case AND:
		v[x] &= v[y]
		v[0xf] = 0
	case XOR:
		v[x] ^= v[y]
		v[0xf] = 0
	case ADD:
		sum := uint16(v[x]) + uint16(v[y])
		v[x] = byte(sum)
		v[0xf] = flag(sum > 0xff)
	case SUB:
		a, b := v[x], v[y]
		v[x] = a - b
		v[0xf] = flag(a >= b)
	case SUBN:
		a, b := v[y], v[x]
		v[x] = a - b
		v[0xf] = flag(a >= b)
	case SHR:
		b := v[y]
		v[x] = b >> 1
		v[0xf] = b & 0x01
	case SHL:
		b := v[y]
		v[x] = b << 1
		v[0xf] = b >> 7
	case SNE:
		m.skipIf(v[x] != v[y])
	case LDA:
		m.I = op.NNN()
	case JPV0:
		m.PC = (op.NNN() + uint16(v[0])) & AddrMask
	case RND:
		if m.Rand == nil {
			m.Rand = newRand()
		}
		v[x] = byte(m.Rand.Intn(0x100)) & op.KK()
	case DRW:
		rows := make([]byte, op.N())
		for i := range rows {
			rows[i] = m.Mem.Read(m.I + uint16(i))
		}
		v[0xf] = flag(m.Display.Draw(v[x], v[y], rows))
		drew = true
	case SKP:
		m.skipIf(keys.IsDown(v[x]))
	case SKNP:
		m.skipIf(!keys.IsDown(v[x]))
	case LDVT:
		v[x] = m.Timers.Delay()
	case LDK:
		if k, ok := keys.FirstDown(); ok {
			v[x] = k
		} else {
			m.PC = opPC
		}
	case LDDT:
		m.Timers.SetDelay(v[x])
	case LDST:
		m.Timers.SetSound(v[x])
	case ADDA:
		m.I += uint16(v[x])
	case LDF:
		m.I = Glyph(v[x])
	case LDB:
		m.Mem.Write(m.I, v[x]/100)
		m.Mem.Write(m.I+1, v[x]/10%10)
		m.Mem.Write(m.I+2, v[x]%10)
	case STM:
		for i := byte(0); i <= x; i++ {
			m.Mem.Write(m.I+uint16(i), v[i])
		}
		m.I += uint16(x) + 1
	case LDM:
		for i := byte(0); i <= x; i++ {
			v[i] = m.Mem.Read(m.I + uint16(i))
		}
		m.I += uint16(x) + 1
	default:
		panic(UnknownOpcode)
	}

	return drew, nil
}

func (m *Machine) skipIf(cond bool) {
	if cond {
		m.PC = (m.PC + 2) & AddrMask
	}
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// HaltError is returned by Step if the machine cannot continue.
type HaltError struct {
	HaltCode
	Op   Op
	Addr uint16
}

func (e HaltError) Error() string {
	if e.HaltCode == UnknownOpcode {
		return fmt.Sprintf("%s %.4x at %.3x", e.HaltCode, uint16(e.Op), e.Addr)
	}
	return fmt.Sprintf("%s executing %s at %.3x", e.HaltCode, e.Op, e.Addr)
}

// HaltCode signifies the type of condition that halted execution.
type HaltCode byte

const (
	StackOverflow  HaltCode = 0x01
	StackUnderflow HaltCode = 0x02
	UnknownOpcode  HaltCode = 0x03
)

func (c HaltCode) String() string {
	if s, ok := map[HaltCode]string{
		StackOverflow:  "stack overflow",
		StackUnderflow: "stack underflow",
		UnknownOpcode:  "unknown opcode",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}

func short(hi, lo byte) uint16 {
	return uint16(hi)<<8 + uint16(lo)
}
