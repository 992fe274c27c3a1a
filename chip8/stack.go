package chip8

import (
	"fmt"
	"strings"
)

func (m *Machine) push(addr uint16) {
	if m.SP == StackDepth {
		panic(StackOverflow)
	}
	m.SP++
	m.Stack[m.SP-1] = addr
}

func (m *Machine) pop() uint16 {
	if m.SP == 0 {
		panic(StackUnderflow)
	}
	m.SP--
	return m.Stack[m.SP]
}

// CallStack returns the return addresses currently on the stack,
// innermost last.
func (m *Machine) CallStack() []uint16 {
	return append([]uint16(nil), m.Stack[:m.SP]...)
}

// StackString formats the call stack for display.
func (m *Machine) StackString() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, v := range m.Stack[:m.SP] {
		fmt.Fprintf(&b, " %.3x", v)
	}
	b.WriteString(" )")
	return b.String()
}
