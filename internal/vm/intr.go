package vm

// intr.go: family 7, interrupts and privileged control. Int/RetInt form the
// software interrupt pair; CallPgrm is how privileged (OS) code hands
// control to an unprivileged program; Kill's halt behavior lives in
// exec.go's afterStep since it needs to short-circuit Run itself.

func init() {
	register(Int, func(m *Machine, operands []uint32) (bool, error) {
		m.Reg[InterruptedLine] = m.Reg[PC] + 3
		m.Reg[PC] = m.Reg[InterruptCallbackAddr]
		m.Reg[Protected] = 1

		return true, nil
	})

	register(RetInt, func(m *Machine, operands []uint32) (bool, error) {
		m.Reg[PC] = m.Reg[InterruptedLine]
		m.Reg[Protected] = 0

		return true, nil
	})

	register(CallPgrm, func(m *Machine, operands []uint32) (bool, error) {
		entry := Reg(operands[0])

		m.Reg[Protected] = 0
		m.Reg[PC] = m.Reg[entry]
		m.heldCycleCount = m.Reg[Cycles]

		return true, nil
	})

	register(Kill, func(m *Machine, operands []uint32) (bool, error) {
		return false, nil
	})

	register(SaveRegisters, func(m *Machine, operands []uint32) (bool, error) {
		addr := Word(operands[0])

		for i := Word(0); i < Word(NumReg); i++ {
			if f := m.ramStore(addr+i, m.Reg[Reg(i)]); f != nil {
				return true, f
			}
		}

		return false, nil
	})

	register(LodRegisters, func(m *Machine, operands []uint32) (bool, error) {
		addr := Word(operands[0])

		for i := Word(0); i < Word(NumReg); i++ {
			val, f := m.ramLoad(addr + i)
			if f != nil {
				return true, f
			}

			m.Reg[Reg(i)] = val
		}

		return false, nil
	})
}
