package vm

// traps.go provides a minimal default OS image: a tiny hand-encoded
// instruction sequence for the fault and timeout callbacks, used when a
// program doesn't install its own. It is just enough to halt the machine
// cleanly, in the spirit of the source this machine is modeled on, whose
// trap handlers are likewise small literal instruction sequences rather
// than assembled source.

// DefaultCallbackAddr is where the default fault/timeout handler is placed
// when no other callback address is configured.
const DefaultCallbackAddr Word = RamWords - 3

// defaultHaltRoutine is a single Kill instruction, encoded as a 3-word
// slot: opcode in the high byte of word 0, two words of zero padding.
func defaultHaltRoutine() [3]Word {
	return [3]Word{Word(Kill) << 8, 0, 0}
}

// WithDefaultOSImage installs a minimal OS image at DefaultCallbackAddr and
// points FaultCallbackAddr, TimeOutCallbackAddr and InterruptCallbackAddr at
// it, so a program that never configures its own callbacks still halts
// cleanly on a fault instead of looping.
func WithDefaultOSImage() OptionFn {
	return func(m *Machine) {
		routine := defaultHaltRoutine()
		copy(m.RAM[DefaultCallbackAddr:], routine[:])

		m.Reg[FaultCallbackAddr] = DefaultCallbackAddr
		m.Reg[TimeOutCallbackAddr] = DefaultCallbackAddr
		m.Reg[InterruptCallbackAddr] = DefaultCallbackAddr
	}
}
