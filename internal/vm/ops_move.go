package vm

// ops_move.go: family 2, move & immediate load.

func init() {
	register(Ldi, func(m *Machine, operands []uint32) (bool, error) {
		dst := Reg(operands[0])
		m.Reg[dst] = Word(operands[1])

		return false, nil
	})

	register(Mov, func(m *Machine, operands []uint32) (bool, error) {
		m.Reg[Reg(operands[0])] = m.Reg[Reg(operands[1])]
		return false, nil
	})

	register(Swp, func(m *Machine, operands []uint32) (bool, error) {
		a, b := Reg(operands[0]), Reg(operands[1])
		m.Reg[a], m.Reg[b] = m.Reg[b], m.Reg[a]

		return false, nil
	})

	register(LdiR, func(m *Machine, operands []uint32) (bool, error) {
		addr, val := Word(operands[0]), Word(operands[1])
		if f := m.ramStore(addr, val); f != nil {
			return true, f
		}

		return false, nil
	})

	register(LdiPtr, func(m *Machine, operands []uint32) (bool, error) {
		ptr, val := Reg(operands[0]), Word(operands[1])
		if f := m.ramStore(m.Reg[ptr], val); f != nil {
			return true, f
		}

		return false, nil
	})
}
