package vm

// mem.go implements the protection unit: effective-address computation and
// bounds checking for RAM and stack accesses, per the specification's
// frame-base relocation model.

import "errors"

// ErrFault is the sentinel wrapped by every dynamic VM fault.
var ErrFault = errors.New("fault")

// FaultReason names why a fault was raised.
type FaultReason uint8

const (
	FaultRamBounds FaultReason = iota
	FaultStackBounds
	FaultProgramBounds
	FaultDiscBounds
	FaultPrivilegedOpcode
	FaultUnknownOpcode
	FaultTimeout
	FaultDivideByZero
)

func (r FaultReason) String() string {
	switch r {
	case FaultRamBounds:
		return "ram bounds"
	case FaultStackBounds:
		return "stack bounds"
	case FaultProgramBounds:
		return "program bounds"
	case FaultDiscBounds:
		return "disc bounds"
	case FaultPrivilegedOpcode:
		return "privileged opcode"
	case FaultUnknownOpcode:
		return "unknown opcode"
	case FaultTimeout:
		return "timeout"
	case FaultDivideByZero:
		return "divide by zero"
	default:
		return "fault"
	}
}

// Fault is returned (and recorded) when the protection or timeout unit
// diverts control to a callback. Step itself never propagates a Fault as a
// Go error to its caller: every fault, including an unknown opcode, is
// handled in-loop by vectoring PC. Run stops with ErrHalted only on the
// conditions listed there (a privileged Kill among them), none of which is
// a Fault.
type Fault struct {
	Reason FaultReason
	PC     Word
	Opcode Opcode
}

func (f *Fault) Error() string {
	return ErrFault.Error() + ": " + f.Reason.String()
}

func (f *Fault) Is(err error) bool {
	return err == ErrFault //nolint:errorlint
}

// raiseFault performs the divert described in the specification: PC is set
// to FaultCallbackAddr without any ProgramStart offset (the callback lives
// in OS space), Protected is set, and the caller is expected to skip the
// mutating body of the faulting instruction.
func (m *Machine) raiseFault(reason FaultReason, opcode Opcode) *Fault {
	f := &Fault{Reason: reason, PC: m.Reg[PC], Opcode: opcode}

	m.Reg[PC] = m.Reg[FaultCallbackAddr]
	m.Reg[Protected] = 1
	m.setFlag(FaultFlag, true)

	m.log.Warn("fault", "reason", reason.String(), "opcode", opcode.String(), "pc", Word(f.PC).String())

	return f
}

// ramEffective computes the effective RAM address for an unprivileged or
// privileged access and checks it against RamSize when unprivileged. ok is
// false if the access must fault.
func (m *Machine) ramEffective(addr Word) (effective Word, ok bool) {
	if !m.Privileged() && addr >= m.Reg[RamSize] {
		return 0, false
	}

	offset := frameOffset(m.Reg[Protected], m.Reg[RamFrameStart])

	return addr + offset, true
}

func (m *Machine) ramLoad(addr Word) (Word, *Fault) {
	eff, ok := m.ramEffective(addr)
	if !ok {
		return 0, m.raiseFault(FaultRamBounds, 0)
	}

	return m.RAM[eff], nil
}

func (m *Machine) ramStore(addr, val Word) *Fault {
	eff, ok := m.ramEffective(addr)
	if !ok {
		return m.raiseFault(FaultRamBounds, 0)
	}

	m.RAM[eff] = val

	return nil
}

// stackEffective mirrors ramEffective for the stack's address space,
// checking against StackSize.
func (m *Machine) stackEffective(addr Word) (effective Word, ok bool) {
	if !m.Privileged() && addr >= m.Reg[StackSize] {
		return 0, false
	}

	offset := frameOffset(m.Reg[Protected], m.Reg[StackFrameStart])

	return addr + offset, true
}

func (m *Machine) stackLoad(addr Word) (Word, *Fault) {
	eff, ok := m.stackEffective(addr)
	if !ok {
		return 0, m.raiseFault(FaultStackBounds, 0)
	}

	return m.Stack[eff], nil
}

func (m *Machine) stackStore(addr, val Word) *Fault {
	eff, ok := m.stackEffective(addr)
	if !ok {
		return m.raiseFault(FaultStackBounds, 0)
	}

	m.Stack[eff] = val

	return nil
}

// programEffective checks a PC-relative branch/call target against
// ProgramSize and applies the ProgramStart frame base, per the
// specification's note that branch targets are relocated by ProgramStart
// when unprivileged.
func (m *Machine) programEffective(addr Word) (effective Word, ok bool) {
	if !m.Privileged() && addr >= m.Reg[ProgramSize] {
		return 0, false
	}

	offset := frameOffset(m.Reg[Protected], m.Reg[ProgramStart])

	return addr + offset, true
}

// flag bit positions packed by SaveFlags/LoadFlags: condition, zero,
// overflow, fault at bits 0-3 respectively.
const (
	bitCondition = 0
	bitZero      = 1
	bitOverflow  = 2
	bitFault     = 3
)

func flagBit(reg Reg) uint {
	switch reg {
	case ConditionFlag:
		return bitCondition
	case ZeroFlag:
		return bitZero
	case OverflowFlag:
		return bitOverflow
	case FaultFlag:
		return bitFault
	default:
		return 0
	}
}

func (m *Machine) setFlag(reg Reg, v bool) {
	if v {
		m.Reg[reg] = 1
	} else {
		m.Reg[reg] = 0
	}
}

func (m *Machine) flag(reg Reg) bool {
	return m.Reg[reg] != 0
}

// packFlags builds the Word SaveFlags writes: bits {condition, zero,
// overflow, fault} at positions {0,1,2,3}.
func (m *Machine) packFlags() Word {
	var w Word

	if m.flag(ConditionFlag) {
		w |= 1 << bitCondition
	}

	if m.flag(ZeroFlag) {
		w |= 1 << bitZero
	}

	if m.flag(OverflowFlag) {
		w |= 1 << bitOverflow
	}

	if m.flag(FaultFlag) {
		w |= 1 << bitFault
	}

	return w
}

// unpackFlags is LoadFlags' inverse of packFlags.
func (m *Machine) unpackFlags(w Word) {
	m.setFlag(ConditionFlag, w&(1<<bitCondition) != 0)
	m.setFlag(ZeroFlag, w&(1<<bitZero) != 0)
	m.setFlag(OverflowFlag, w&(1<<bitOverflow) != 0)
	m.setFlag(FaultFlag, w&(1<<bitFault) != 0)
}
