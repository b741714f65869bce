/*
Package vm implements the virtual machine for a 16-bit CISC instruction
set: a 256-word register file (27 general-purpose registers, rda..rdz and
acc, plus 19 architected control registers), a 64K-word RAM and a 64K-word
stack each relocated by a frame base when running unprivileged, a
32-bit-addressed disc, a double-buffered 480x320 framebuffer and 256 input
and output ports.

# Protection

The machine runs in one of two modes, tracked by the Protected control
register: privileged (system) or unprivileged (program). In privileged
mode, RAM/stack/program addresses are used as given and are never bounds
checked. In unprivileged mode, every address is relocated by the
corresponding frame base (RamFrameStart, StackFrameStart, ProgramStart) and
checked against the corresponding size register (RamSize, StackSize,
ProgramSize); a violation diverts execution to FaultCallbackAddr and
re-raises privilege.

# Instruction encoding

Every instruction occupies exactly three words: the opcode in the high
byte of the first word, operands packed low-byte-first across the
remaining five bytes, zero padded. This uniform stride is what lets PC += 3
be branchless.

# Cycle accounting

Each opcode has a fixed, precomputed cycle cost (opcodes.go); Cycles
accumulates after every fetch. In unprivileged mode, if Cycles exceeds a
baseline by more than TimeoutDuration, execution is preemptively diverted
to TimeOutCallbackAddr, just like a bounds fault.
*/
package vm
