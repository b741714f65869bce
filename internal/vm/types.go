package vm

// types.go defines the basic data types of the machine: words, registers and
// the operand kinds used by the instruction encoding.

import "fmt"

// Word is the base data type on which the machine operates. Registers,
// memory cells, stack cells, VRAM cells, disc cells and the halves of every
// instruction slot are all 16-bit words.
type Word uint16

func (w Word) String() string {
	return fmt.Sprintf("%0#4x", uint16(w))
}

// Reg identifies a slot in the 256-word register file.
type Reg uint8

// General-purpose registers are rda through rdz (26 letters) followed by
// acc, giving indices 0 through 26.
const (
	RDA Reg = iota
	RDB
	RDC
	RDD
	RDE
	RDF
	RDG
	RDH
	RDI
	RDJ
	RDK
	RDL
	RDM
	RDN
	RDO
	RDP
	RDQ
	RDR
	RDS
	RDT
	RDU
	RDV
	RDW
	RDX
	RDY
	RDZ
	ACC

	NumGPR // Count of general-purpose registers.
)

// Control registers occupy indices 27 through 45 of the register file: the
// 19 architected registers named throughout the specification. The four
// flags (ConditionFlag, ZeroFlag, OverflowFlag, FaultFlag) are independent
// registers holding 0 or 1; SaveFlags/LoadFlags pack and unpack them as bits
// 0-3 of a single word.
const (
	PC Reg = NumGPR + iota
	Protected
	ConditionFlag
	ZeroFlag
	OverflowFlag
	FaultFlag
	RamSize
	StackSize
	ProgramSize
	RamFrameStart
	StackFrameStart
	ProgramStart
	FaultCallbackAddr
	TimeOutCallbackAddr
	TimeoutDuration
	InterruptCallbackAddr
	InterruptedLine
	StackTopPtr
	Cycles

	NumCR              // Count of control registers.
	NumReg = PC + NumCR // Count of named registers (GPRs plus control registers).
)

func (r Reg) String() string {
	if name, ok := regNames[r]; ok {
		return name
	}

	return fmt.Sprintf("r%d", uint8(r))
}

var regNames = buildRegNames()

func buildRegNames() map[Reg]string {
	names := map[Reg]string{
		ACC:                   "acc",
		PC:                    "PC",
		Protected:             "Protected",
		ConditionFlag:         "ConditionFlag",
		ZeroFlag:              "ZeroFlag",
		OverflowFlag:          "OverflowFlag",
		FaultFlag:             "FaultFlag",
		RamSize:               "RamSize",
		StackSize:             "StackSize",
		ProgramSize:           "ProgramSize",
		RamFrameStart:         "RamFrameStart",
		StackFrameStart:       "StackFrameStart",
		ProgramStart:          "ProgramStart",
		FaultCallbackAddr:     "FaultCallbackAddr",
		TimeOutCallbackAddr:   "TimeOutCallbackAddr",
		TimeoutDuration:       "TimeoutDuration",
		InterruptCallbackAddr: "InterruptCallbackAddr",
		InterruptedLine:       "InterruptedLine",
		StackTopPtr:           "StackTopPtr",
		Cycles:                "Cycles",
	}

	for i := RDA; i <= RDZ; i++ {
		names[i] = fmt.Sprintf("rd%c", 'a'+byte(i))
	}

	return names
}

// RegByName resolves a source-level register name (case-insensitive) to its
// register file index. It returns false if the name is not a register.
func RegByName(name string) (Reg, bool) {
	return regByLowerName(lower(name))
}

func regByLowerName(name string) (Reg, bool) {
	if name == "acc" {
		return ACC, true
	}

	if len(name) == 3 && name[0] == 'r' && name[1] == 'd' && name[2] >= 'a' && name[2] <= 'z' {
		return RDA + Reg(name[2]-'a'), true
	}

	return 0, false
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}

	return string(b)
}

// OperandKind classifies a decoded operand.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandReg              // 8-bit register index.
	OperandConst8           // 8-bit literal.
	OperandConst16          // 16-bit literal, little-endian in the slot.
	OperandAddr16           // 16-bit address.
	OperandAddr32           // 32-bit address (disc).
	OperandPtr              // 8-bit register index used as an indirection.
)

func (k OperandKind) String() string {
	switch k {
	case OperandReg:
		return "Reg"
	case OperandConst8:
		return "Const8"
	case OperandConst16:
		return "Const16"
	case OperandAddr16:
		return "Addr16"
	case OperandAddr32:
		return "Addr32"
	case OperandPtr:
		return "Ptr"
	default:
		return "None"
	}
}

// Width returns the number of bytes an operand of this kind occupies in an
// encoded instruction slot.
func (k OperandKind) Width() int {
	switch k {
	case OperandConst16, OperandAddr16:
		return 2
	case OperandAddr32:
		return 4
	case OperandConst8, OperandReg, OperandPtr:
		return 1
	default:
		return 0
	}
}
