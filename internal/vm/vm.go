package vm

// vm.go defines the virtual machine and assembles it from smaller parts.

import (
	"fmt"
	"sync"

	"github.com/smoynes/sixteen/internal/log"
)

const (
	RamWords   = 1 << 16 // 65,536 words.
	StackWords = 1 << 16
	VRAMWords  = 2 * 480 * 320 // Two 480x320 half-buffers.
	VRAMHalf   = VRAMWords / 2
	NumPorts   = 256
)

// Machine is the whole virtual machine: register file, RAM, stack, disc,
// VRAM and ports, plus the bookkeeping needed to run it.
type Machine struct {
	Reg [256]Word // The 256-word register file; see types.go for layout.

	RAM   [RamWords]Word
	Stack [StackWords]Word
	VRAM  [VRAMWords]Word
	Disc  Disc

	In  [NumPorts]Port
	Out [NumPorts]Port

	// vramMu separates the VM's exclusive VRAM writes from the display
	// task's concurrent reads; portMu does the same for port 0 between
	// the VM and the input task. See the concurrency design in
	// SPEC_FULL.md §5.
	vramMu sync.RWMutex
	portMu sync.RWMutex

	// activeBuffer is the VRAM half currently presented; it is not part of
	// the architected register file (the specification never assigns it a
	// register index), but it is machine state and so lives here rather
	// than in a device. It holds 0 or VRAMHalf, which does not fit a Word.
	activeBuffer int

	// heldCycleCount is the Cycles baseline the timeout unit compares
	// against; refreshed only by CallPgrm, per the specification.
	heldCycleCount Word

	display DisplaySink
	input   InputSource

	vblank chan struct{} // zero-capacity: a missed pulse is simply missed.
	kill   chan struct{}

	log *log.Logger
}

// Port is one slot of an input or output port: a value half and a flag half.
type Port struct {
	Value Word
	Flag  bool
}

// An OptionFn configures the machine during initialization. Each function is
// called exactly once during New, after the machine's memory spaces are
// allocated but before the boot image is loaded, mirroring the teacher's
// early/late option pattern but simplified to a single pass since this
// machine has no device-mapping stage to straddle.
type OptionFn func(m *Machine)

// New creates a virtual machine in its reset state: Protected=1 (booting
// runs with system privileges), PC=3 (word 0..2 are reserved for the OS
// header), all frame bases zero, and RamSize, StackSize and ProgramSize at
// 0xffff, the largest value a Word holds, until a loader or option sets
// them.
func New(opts ...OptionFn) *Machine {
	m := &Machine{
		kill:   make(chan struct{}),
		vblank: make(chan struct{}),
		log:    log.DefaultLogger(),
	}

	m.Reg[Protected] = 1
	m.Reg[PC] = 3
	m.Reg[RamSize] = RamWords - 1
	m.Reg[StackSize] = StackWords - 1
	m.Reg[ProgramSize] = RamWords - 1

	m.display = noopDisplay{}
	m.input = noopInput{}

	for _, fn := range opts {
		fn(m)
	}

	return m
}

func (m *Machine) String() string {
	return fmt.Sprintf(
		"PC: %s Protected: %s Cycles: %s\nRamSize: %s StackSize: %s ProgramSize: %s\n"+
			"RamFrameStart: %s StackFrameStart: %s ProgramStart: %s StackTopPtr: %s",
		Word(m.Reg[PC]), Word(m.Reg[Protected]), Word(m.Reg[Cycles]),
		Word(m.Reg[RamSize]), Word(m.Reg[StackSize]), Word(m.Reg[ProgramSize]),
		Word(m.Reg[RamFrameStart]), Word(m.Reg[StackFrameStart]), Word(m.Reg[ProgramStart]),
		Word(m.Reg[StackTopPtr]),
	)
}

// Privileged returns true if the machine is currently running with system
// privileges (Protected == 1): no frame offsets, no bounds checks.
func (m *Machine) Privileged() bool {
	return m.Reg[Protected] != 0
}

// frameOffset implements the specification's branchless protection offset:
// offset = (1 - Protected) * FrameBase. Preserved in this form deliberately;
// it sits on the hot path of every memory opcode.
func frameOffset(protected, base Word) Word {
	return (1 - protected) * base
}

// LogValue renders the machine's control registers as a structured slog
// group, so passing a *Machine to a logging call stays cheap until a handler
// actually needs the fields.
func (m *Machine) LogValue() log.Value {
	return log.GroupValue(
		log.String("PC", Word(m.Reg[PC]).String()),
		log.String("Protected", Word(m.Reg[Protected]).String()),
		log.String("Cycles", Word(m.Reg[Cycles]).String()),
		log.String("FaultFlag", Word(m.Reg[FaultFlag]).String()),
	)
}

// WithLogger configures the machine to log to a particular logger.
func WithLogger(l *log.Logger) OptionFn {
	return func(m *Machine) { m.log = l }
}

// WithDisplaySink configures the device that consumes VRAM frames.
func WithDisplaySink(sink DisplaySink) OptionFn {
	return func(m *Machine) { m.display = sink }
}

// WithInputSource configures the device that feeds input port 0.
func WithInputSource(src InputSource) OptionFn {
	return func(m *Machine) { m.input = src }
}

// WithRamSize overrides the default RamSize control register, primarily
// useful in tests that exercise the protection unit's bounds checks.
func WithRamSize(size Word) OptionFn {
	return func(m *Machine) { m.Reg[RamSize] = size }
}

// WithTimeout configures the TimeoutDuration control register.
func WithTimeout(cycles Word) OptionFn {
	return func(m *Machine) { m.Reg[TimeoutDuration] = cycles }
}
