package vm

// exec.go implements the fetch/decode/dispatch loop.

import (
	"context"
	"errors"
	"fmt"

	"github.com/smoynes/sixteen/internal/log"
)

// ErrHalted is returned by Run when the machine stops on a terminal
// condition: a privileged Kill, program-size overflow while unprivileged, or
// the kill channel closing.
var ErrHalted = errors.New("halted")

// handler executes one concrete opcode's body. diverted is true if the
// handler has already set PC itself (a taken branch, a fault, a call); when
// false, Step commits PC = pc+3 after the handler returns.
type handler func(m *Machine, operands []uint32) (diverted bool, err error)

var handlers [256]handler

func register(op Opcode, fn handler) {
	if handlers[op] != nil {
		panic(fmt.Sprintf("vm: opcode %s already has a handler", op))
	}

	handlers[op] = fn
}

// Run executes instructions until the machine halts, the context is
// cancelled, or the kill channel is closed or signalled.
func (m *Machine) Run(ctx context.Context) error {
	m.log.Info("START", log.Group("STATE", m))

	var err error

	for {
		select {
		case <-ctx.Done():
			m.log.Warn("CANCELLED")
			return ctx.Err()
		case <-m.kill:
			m.log.Warn("KILLED")
			return ErrHalted
		default:
		}

		if err = m.Step(); err != nil {
			break
		}
	}

	if errors.Is(err, ErrHalted) {
		m.log.Info("HALTED", log.Group("STATE", m))
	} else {
		m.log.Error("HALTED (fault)", "ERR", err, log.Group("STATE", m))
	}

	return err
}

// Kill requests that Run stop at its next opportunity; it is safe to call
// from another goroutine (the display or input task) and safe to call more
// than once.
func (m *Machine) Kill() {
	select {
	case <-m.kill:
	default:
		close(m.kill)
	}
}

// Step fetches, decodes and executes a single instruction, then services the
// timeout unit.
func (m *Machine) Step() error {
	pc := m.Reg[PC]

	words, ok := m.fetchSlot(pc)
	if !ok {
		return fmt.Errorf("step: %w: program bounds at %s", ErrHalted, Word(pc))
	}

	opcode := Opcode(words[0] >> 8)

	m.Reg[Cycles] += opcode.Cycles()

	nextPC := pc + 3

	if opcode.descriptor() == nil {
		m.raiseFault(FaultUnknownOpcode, opcode)

		return m.afterStep(opcode)
	}

	if opcode.Privileged() && !m.Privileged() {
		m.raiseFault(FaultPrivilegedOpcode, opcode)

		return m.afterStep(opcode)
	}

	operands := decodeOperands(opcode, words)

	fn := handlers[opcode]
	if fn == nil {
		m.raiseFault(FaultUnknownOpcode, opcode)

		return m.afterStep(opcode)
	}

	diverted, err := fn(m, operands)

	var fault *Fault
	if errors.As(err, &fault) {
		// The handler's fault already diverted PC; nothing further to do.
		return m.afterStep(opcode)
	} else if err != nil {
		return fmt.Errorf("step: %w", err)
	}

	if !diverted {
		m.Reg[PC] = nextPC
	}

	return m.afterStep(opcode)
}

// afterStep runs after every instruction, privileged or not: the timeout
// unit's preemptive check. It is evaluated even when the instruction itself
// faulted, matching the specification's "after each instruction" wording.
func (m *Machine) afterStep(opcode Opcode) error {
	if opcode == Kill && m.Reg[Protected] != 0 {
		return fmt.Errorf("step: %w: kill", ErrHalted)
	}

	if !m.Privileged() {
		timeout := m.Reg[TimeoutDuration]
		if timeout != 0 && m.Reg[Cycles]-m.heldCycleCount > timeout {
			m.raiseFault(FaultTimeout, opcode)
			m.Reg[PC] = m.Reg[TimeOutCallbackAddr]
		}
	}

	return nil
}

// fetchSlot reads the three words at a program-word index, performing the
// same bounds check and frame relocation as any other program-space access.
func (m *Machine) fetchSlot(pc Word) ([3]Word, bool) {
	var words [3]Word

	for i := Word(0); i < 3; i++ {
		eff, ok := m.programEffective(pc + i)
		if !ok {
			return words, false
		}

		words[i] = m.RAM[eff]
	}

	return words, true
}

// decodeOperands mirrors the emitter's byte packing in reverse: the 6 bytes
// of a slot are byte[0]=opcode, byte[1..]=operand bytes in declaration
// order, zero padded. Word k packs as (high=byte[2k], low=byte[2k+1]).
func decodeOperands(op Opcode, words [3]Word) []uint32 {
	var raw [6]byte

	for k := 0; k < 3; k++ {
		raw[2*k] = byte(words[k] >> 8)
		raw[2*k+1] = byte(words[k])
	}

	kinds := op.Operands()
	out := make([]uint32, len(kinds))
	pos := 1 // byte 0 is the opcode.

	for i, kind := range kinds {
		switch kind {
		case OperandConst16, OperandAddr16:
			out[i] = uint32(raw[pos]) | uint32(raw[pos+1])<<8
			pos += 2
		case OperandAddr32:
			out[i] = uint32(raw[pos]) | uint32(raw[pos+1])<<8 | uint32(raw[pos+2])<<16 | uint32(raw[pos+3])<<24
			pos += 4
		case OperandConst8, OperandReg, OperandPtr:
			out[i] = uint32(raw[pos])
			pos++
		}
	}

	return out
}
