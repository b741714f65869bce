package vm

// ops_branch.go: family 6, branches. Each conditional branch reads one of
// the four flag registers; Jmp is unconditional. Targets are relocated by
// ProgramStart and bounds-checked against ProgramSize when unprivileged,
// exactly like instruction fetch.

func (m *Machine) jumpTo(target Word) *Fault {
	eff, ok := m.programEffective(target)
	if !ok {
		return m.raiseFault(FaultProgramBounds, Jmp)
	}

	m.Reg[PC] = eff

	return nil
}

func (m *Machine) branch(target Word, cond bool) (bool, error) {
	if !cond {
		return false, nil
	}

	if f := m.jumpTo(target); f != nil {
		return true, f
	}

	return true, nil
}

var branchConds = map[Opcode]func(m *Machine) bool{
	Jmp:   func(m *Machine) bool { return true },
	Jic:   func(m *Machine) bool { return m.flag(ConditionFlag) },
	Jnc:   func(m *Machine) bool { return !m.flag(ConditionFlag) },
	Jiz:   func(m *Machine) bool { return m.flag(ZeroFlag) },
	Jnz:   func(m *Machine) bool { return !m.flag(ZeroFlag) },
	JiErr: func(m *Machine) bool { return m.flag(FaultFlag) },
	JnErr: func(m *Machine) bool { return !m.flag(FaultFlag) },
	JiCry: func(m *Machine) bool { return m.flag(OverflowFlag) },
	JnCry: func(m *Machine) bool { return !m.flag(OverflowFlag) },
}

var absOpToPtrOp = map[Opcode]Opcode{
	Jmp: JmpPtr, Jic: JicPtr, Jnc: JncPtr, Jiz: JizPtr, Jnz: JnzPtr,
	JiErr: JiErrPtr, JnErr: JnErrPtr, JiCry: JiCryPtr, JnCry: JnCryPtr,
}

func init() {
	for absOp, cond := range branchConds {
		absOp, cond := absOp, cond

		register(absOp, func(m *Machine, operands []uint32) (bool, error) {
			return m.branch(Word(operands[0]), cond(m))
		})

		register(absOpToPtrOp[absOp], func(m *Machine, operands []uint32) (bool, error) {
			ptr := Reg(operands[0])
			return m.branch(m.Reg[ptr], cond(m))
		})
	}
}
