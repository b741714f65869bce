package vm

// ops_compare.go: family 5, comparison.

func init() {
	register(Less, func(m *Machine, operands []uint32) (bool, error) {
		a, b := Reg(operands[0]), Reg(operands[1])
		m.setFlag(ConditionFlag, m.Reg[a] < m.Reg[b])

		return false, nil
	})

	register(Grtr, func(m *Machine, operands []uint32) (bool, error) {
		a, b := Reg(operands[0]), Reg(operands[1])
		m.setFlag(ConditionFlag, m.Reg[a] > m.Reg[b])

		return false, nil
	})

	register(Eq, func(m *Machine, operands []uint32) (bool, error) {
		a, b := Reg(operands[0]), Reg(operands[1])
		m.setFlag(ConditionFlag, m.Reg[a] == m.Reg[b])

		return false, nil
	})

	register(LessImm, func(m *Machine, operands []uint32) (bool, error) {
		a, c := Reg(operands[0]), Word(operands[1])
		m.setFlag(ConditionFlag, m.Reg[a] < c)

		return false, nil
	})

	register(GrtrImm, func(m *Machine, operands []uint32) (bool, error) {
		a, c := Reg(operands[0]), Word(operands[1])
		m.setFlag(ConditionFlag, m.Reg[a] > c)

		return false, nil
	})

	register(EqImm, func(m *Machine, operands []uint32) (bool, error) {
		a, c := Reg(operands[0]), Word(operands[1])
		m.setFlag(ConditionFlag, m.Reg[a] == c)

		return false, nil
	})

	register(Zero, func(m *Machine, operands []uint32) (bool, error) {
		a := Reg(operands[0])
		m.setFlag(ConditionFlag, m.Reg[a] == 0)

		return false, nil
	})

	register(ClrFlags, func(m *Machine, operands []uint32) (bool, error) {
		m.setFlag(ConditionFlag, false)
		m.setFlag(ZeroFlag, false)
		m.setFlag(OverflowFlag, false)
		m.setFlag(FaultFlag, false)

		return false, nil
	})

	register(SaveFlags, func(m *Machine, operands []uint32) (bool, error) {
		dst := Reg(operands[0])
		m.Reg[dst] = m.packFlags()

		return false, nil
	})

	register(LoadFlags, func(m *Machine, operands []uint32) (bool, error) {
		src := Reg(operands[0])
		m.unpackFlags(m.Reg[src])

		return false, nil
	})
}
