package asm

// gen.go is the emitter: it serialises the typed instruction stream into a
// program image, packing each instruction into exactly three 16-bit words
// per spec.md §4.4. Grounded on `internal/asm/gen.go`'s Generator
// (cursor-tracked WriteTo/Encode over a SyntaxTable), replaced here with a
// byte-packing body the teacher's whole-word-per-operation emitter never
// needed.

import (
	"fmt"
	"strconv"

	"github.com/smoynes/sixteen/internal/log"
	"github.com/smoynes/sixteen/internal/vm"
)

// Emitter packs a resolved image-entry stream into a vm.Image.
type Emitter struct {
	log *log.Logger
}

// NewEmitter creates an emitter.
func NewEmitter(l *log.Logger) *Emitter {
	return &Emitter{log: l}
}

// Emit serialises entries into a program image. The first three words are
// the OS header (ram_size, program_size, name); instruction slots follow,
// each exactly three words, honouring EntryPage cursor relocations and
// EntryAlloc reservations.
func (e *Emitter) Emit(entries []ImageEntry, traits Traits) (vm.Image, error) {
	words := make([]vm.Word, 3, 3+3*len(entries))

	cursor := vm.Word(3)
	instrCount := 0

	for _, entry := range entries {
		switch entry.Kind {
		case EntryPage:
			cursor = entry.Page
			e.log.Debug("page trait", "cursor", cursor)
		case EntryAlloc:
			cursor += entry.Words
		case EntryInstruction:
			slot, err := packSlot(entry.Instr)
			if err != nil {
				return vm.Image{}, &SyntaxError{Pos: entry.Instr.Pos, Line: entry.Instr.Line, Err: err}
			}

			words = ensureLen(words, int(cursor)+3)
			copy(words[cursor:cursor+3], slot[:])
			cursor += 3
			instrCount++
		}
	}

	words[0] = traitWord(traits, "ram_size", vm.Word(len(words)))
	words[1] = traitWord(traits, "program_size", vm.Word((instrCount+1)*3))
	words[2] = traitWord(traits, "name", 0)

	e.log.Debug("emitted image", "words", len(words), "instructions", instrCount)

	return vm.Image{Words: words}, nil
}

func ensureLen(words []vm.Word, n int) []vm.Word {
	if len(words) >= n {
		return words
	}

	grown := make([]vm.Word, n)
	copy(grown, words)

	return grown
}

func traitWord(traits Traits, name string, deflt vm.Word) vm.Word {
	raw, ok := traits[name]
	if !ok {
		return deflt
	}

	if val, err := strconv.ParseUint(raw, 0, 16); err == nil {
		return vm.Word(val)
	}

	// The `name` trait is a string; fold its first two bytes into a word so
	// it still occupies the header slot spec.md §4.4 reserves for it.
	if len(raw) == 0 {
		return deflt
	} else if len(raw) == 1 {
		return vm.Word(raw[0]) << 8
	}

	return vm.Word(raw[0])<<8 | vm.Word(raw[1])
}

// packSlot builds the 6-byte instruction encoding and packs it into three
// words, per spec.md §4.4's byte order and word-packing rules.
func packSlot(instr Instruction) ([3]vm.Word, error) {
	var bytes [6]byte

	bytes[0] = byte(instr.Opcode)
	pos := 1

	kinds := instr.Opcode.Operands()
	if len(kinds) != len(instr.Operands) {
		return [3]vm.Word{}, fmt.Errorf("%w: %s: expected %d operands, got %d",
			ErrOperand, instr.Opcode, len(kinds), len(instr.Operands))
	}

	for i, kind := range kinds {
		operand := instr.Operands[i]

		switch kind {
		case vm.OperandConst16, vm.OperandAddr16:
			v := uint16(operand.Value)
			if pos+2 > len(bytes) {
				return [3]vm.Word{}, fmt.Errorf("%w: %s: instruction overflows slot", ErrOperand, instr.Opcode)
			}

			bytes[pos] = byte(v)
			bytes[pos+1] = byte(v >> 8)
			pos += 2
		case vm.OperandAddr32:
			v := operand.Value
			if pos+4 > len(bytes) {
				return [3]vm.Word{}, fmt.Errorf("%w: %s: instruction overflows slot", ErrOperand, instr.Opcode)
			}

			bytes[pos] = byte(v)
			bytes[pos+1] = byte(v >> 8)
			bytes[pos+2] = byte(v >> 16)
			bytes[pos+3] = byte(v >> 24)
			pos += 4
		case vm.OperandConst8:
			if pos+1 > len(bytes) {
				return [3]vm.Word{}, fmt.Errorf("%w: %s: instruction overflows slot", ErrOperand, instr.Opcode)
			}

			bytes[pos] = byte(operand.Value)
			pos++
		case vm.OperandReg, vm.OperandPtr:
			if pos+1 > len(bytes) {
				return [3]vm.Word{}, fmt.Errorf("%w: %s: instruction overflows slot", ErrOperand, instr.Opcode)
			}

			bytes[pos] = byte(operand.Reg)
			pos++
		}
	}

	var slot [3]vm.Word
	for k := 0; k < 3; k++ {
		slot[k] = vm.Word(bytes[2*k])<<8 | vm.Word(bytes[2*k+1])
	}

	return slot, nil
}
