package vm

// ops_disc.go: family 7, disc I/O. All disc opcodes are privileged; the
// dispatcher already faults before reaching these handlers from
// unprivileged mode.

func init() {
	register(Write, func(m *Machine, operands []uint32) (bool, error) {
		addr, src := operands[0], Reg(operands[1])
		m.Disc.Store(addr, m.Reg[src], m.Reg[PC])

		return false, nil
	})

	register(Load, func(m *Machine, operands []uint32) (bool, error) {
		dst, addr := Reg(operands[0]), operands[1]
		m.Reg[dst] = m.Disc.Load(addr)

		return false, nil
	})

	// The pointer forms address the disc using a register's value as the
	// low 16 bits of a 32-bit disc address (the upper 16 bits are zero):
	// a deliberate simplification of the "pointer and segment variants"
	// the specification names without giving exact operand shapes.
	register(WritePtr, func(m *Machine, operands []uint32) (bool, error) {
		ptr, src := Reg(operands[0]), Reg(operands[1])
		m.Disc.Store(uint32(m.Reg[ptr]), m.Reg[src], m.Reg[PC])

		return false, nil
	})

	register(LoadPtr, func(m *Machine, operands []uint32) (bool, error) {
		dst, ptr := Reg(operands[0]), Reg(operands[1])
		m.Reg[dst] = m.Disc.Load(uint32(m.Reg[ptr]))

		return false, nil
	})

	register(WriteSeg, func(m *Machine, operands []uint32) (bool, error) {
		discPtr, ramAddr, count := Reg(operands[0]), Word(operands[1]), Word(operands[2])
		discAddr := uint32(m.Reg[discPtr])

		for i := Word(0); i < count; i++ {
			val, f := m.ramLoad(ramAddr + i)
			if f != nil {
				return true, f
			}

			m.Disc.Store(discAddr+uint32(i), val, m.Reg[PC])
		}

		return false, nil
	})

	register(LoadSeg, func(m *Machine, operands []uint32) (bool, error) {
		ramAddr, discPtr, count := Word(operands[0]), Reg(operands[1]), Word(operands[2])
		discAddr := uint32(m.Reg[discPtr])

		for i := Word(0); i < count; i++ {
			val := m.Disc.Load(discAddr + uint32(i))
			if f := m.ramStore(ramAddr+i, val); f != nil {
				return true, f
			}
		}

		return false, nil
	})
}
