package vm

// ops_memory.go: family 3, memory.

func init() {
	register(Sto, func(m *Machine, operands []uint32) (bool, error) {
		addr, src := Word(operands[0]), Reg(operands[1])
		if f := m.ramStore(addr, m.Reg[src]); f != nil {
			return true, f
		}

		return false, nil
	})

	// Get's effective address combines the addr operand with the frame
	// offset via bitwise OR rather than addition, matching the source
	// this machine is modeled on. The result equals addr plus the offset
	// only when the two share no set bits; preserved verbatim rather than
	// fixed, per the design decisions.
	register(Get, func(m *Machine, operands []uint32) (bool, error) {
		dst, addr := Reg(operands[0]), Word(operands[1])

		if !m.Privileged() && addr >= m.Reg[RamSize] {
			return true, m.raiseFault(FaultRamBounds, Get)
		}

		eff := addr | frameOffset(m.Reg[Protected], m.Reg[RamFrameStart])
		m.Reg[dst] = m.RAM[eff]

		return false, nil
	})

	register(StoPtr, func(m *Machine, operands []uint32) (bool, error) {
		ptr, src := Reg(operands[0]), Reg(operands[1])
		if f := m.ramStore(m.Reg[ptr], m.Reg[src]); f != nil {
			return true, f
		}

		return false, nil
	})

	register(GetPtr, func(m *Machine, operands []uint32) (bool, error) {
		dst, ptr := Reg(operands[0]), Reg(operands[1])
		val, f := m.ramLoad(m.Reg[ptr])
		if f != nil {
			return true, f
		}

		m.Reg[dst] = val

		return false, nil
	})

	// StoPtrOff: the source this machine is modeled on computes the
	// effective address as (pointer register value + constant) and
	// indexes RAM directly, without applying the frame base — a likely
	// bug the specification recommends fixing. Fixed here: the frame
	// offset is applied like every other memory opcode.
	register(StoPtrOff, func(m *Machine, operands []uint32) (bool, error) {
		ptr, off, src := Reg(operands[0]), Word(operands[1]), Reg(operands[2])
		if f := m.ramStore(m.Reg[ptr]+off, m.Reg[src]); f != nil {
			return true, f
		}

		return false, nil
	})

	register(GetPtrOff, func(m *Machine, operands []uint32) (bool, error) {
		dst, ptr, off := Reg(operands[0]), Reg(operands[1]), Word(operands[2])
		val, f := m.ramLoad(m.Reg[ptr] + off)
		if f != nil {
			return true, f
		}

		m.Reg[dst] = val

		return false, nil
	})

	register(StoPtrOffPtr, func(m *Machine, operands []uint32) (bool, error) {
		ptr, offReg, src := Reg(operands[0]), Reg(operands[1]), Reg(operands[2])
		if f := m.ramStore(m.Reg[ptr]+m.Reg[offReg], m.Reg[src]); f != nil {
			return true, f
		}

		return false, nil
	})

	register(GetPtrOffPtr, func(m *Machine, operands []uint32) (bool, error) {
		dst, ptr, offReg := Reg(operands[0]), Reg(operands[1]), Reg(operands[2])
		val, f := m.ramLoad(m.Reg[ptr] + m.Reg[offReg])
		if f != nil {
			return true, f
		}

		m.Reg[dst] = val

		return false, nil
	})

	register(MovR, func(m *Machine, operands []uint32) (bool, error) {
		dst, src := Word(operands[0]), Word(operands[1])

		val, f := m.ramLoad(src)
		if f != nil {
			return true, f
		}

		if f := m.ramStore(dst, val); f != nil {
			return true, f
		}

		return false, nil
	})

	register(MemCpy, func(m *Machine, operands []uint32) (bool, error) {
		return memCpy(m, Word(operands[0]), Word(operands[1]), Word(operands[2]))
	})

	register(MemCpyPtr, func(m *Machine, operands []uint32) (bool, error) {
		srcPtr, dstPtr := Reg(operands[0]), Reg(operands[1])
		return memCpy(m, m.Reg[dstPtr], m.Reg[srcPtr], Word(operands[2]))
	})

	register(MemCmp, func(m *Machine, operands []uint32) (bool, error) {
		return memCmp(m, Word(operands[0]), Word(operands[1]), Word(operands[2]))
	})

	register(MemCmpPtr, func(m *Machine, operands []uint32) (bool, error) {
		aPtr, bPtr := Reg(operands[0]), Reg(operands[1])
		return memCmp(m, m.Reg[aPtr], m.Reg[bPtr], Word(operands[2]))
	})

	register(MemFill, func(m *Machine, operands []uint32) (bool, error) {
		addr, val, count := Word(operands[0]), Word(operands[1]), Word(operands[2])

		for i := Word(0); i < count; i++ {
			if f := m.ramStore(addr+i, val); f != nil {
				return true, f
			}
		}

		return false, nil
	})
}

// memCpy copies count words from src to dst in RAM, honoring bounds/frame
// rules one word at a time via ramLoad/ramStore.
func memCpy(m *Machine, dst, src, count Word) (bool, error) {
	for i := Word(0); i < count; i++ {
		val, f := m.ramLoad(src + i)
		if f != nil {
			return true, f
		}

		if f := m.ramStore(dst+i, val); f != nil {
			return true, f
		}
	}

	return false, nil
}

// memCmp compares count words starting at a and b, setting ConditionFlag to
// 1 if every word is equal, 0 otherwise.
func memCmp(m *Machine, a, b, count Word) (bool, error) {
	equal := true

	for i := Word(0); i < count; i++ {
		av, f := m.ramLoad(a + i)
		if f != nil {
			return true, f
		}

		bv, f := m.ramLoad(b + i)
		if f != nil {
			return true, f
		}

		if av != bv {
			equal = false
		}
	}

	m.setFlag(ConditionFlag, equal)

	return false, nil
}
