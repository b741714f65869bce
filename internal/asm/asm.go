/*
Package asm implements the assembler front-end for the machine: a
unicode-tolerant tokeniser, a label/trait resolution pass, pseudo-instruction
lowering by operand-type dispatch, and a code emitter that packs every
instruction into a fixed 3-word slot.

	! header main
	ldi %rda $5
	ldi %rdb $74
	add %rda %rdb %rdc

Typically, one uses the "sixteen asm" command to assemble source:

	go run github.com/smoynes/sixteen asm -o program.img PROGRAM.asm

See Assembler for the top-level entry point, and internal/vm for the opcode
table the instruction pass resolves mnemonics against.
*/
package asm

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/smoynes/sixteen/internal/log"
	"github.com/smoynes/sixteen/internal/vm"
)

var (
	// ErrOpcode causes a SyntaxError if a mnemonic is unknown, or no pseudo
	// variant matches the parsed operands.
	ErrOpcode = errors.New("opcode error")
)

// SyntaxError is returned when assembly fails. If a field is not known, it
// holds the zero value — for example, Loc is zero when the error occurs
// before any address is assigned.
type SyntaxError struct {
	File string
	Loc  vm.Word
	Pos  vm.Word
	Line string
	Err  error
}

func (se *SyntaxError) Error() string {
	switch {
	case se.Err == nil && se.Line == "":
		return fmt.Sprintf("syntax error: loc: %s", se.Loc)
	case se.Err == nil:
		return fmt.Sprintf("syntax error: line %s: %q", se.Pos, se.Line)
	default:
		return fmt.Sprintf("syntax error: line %s: %s: %q", se.Pos, se.Err, se.Line)
	}
}

func (se *SyntaxError) Unwrap() error { return se.Err }

func (se *SyntaxError) Is(target error) bool {
	other, ok := target.(*SyntaxError)
	if !ok {
		return errors.Is(se.Err, target)
	}

	return se.Pos == other.Pos && se.Line == other.Line && se.Loc == other.Loc
}

// Assembler runs the full front-end pipeline over one or more source
// readers: tokenise, resolve labels, resolve instructions, emit.
type Assembler struct {
	log *log.Logger

	lines [][]Token
}

// NewAssembler creates an assembler.
func NewAssembler(l *log.Logger) *Assembler {
	if l == nil {
		l = log.DefaultLogger()
	}

	return &Assembler{log: l}
}

// AddSource tokenises a source reader's lines and appends them to the
// script. The assembler takes ownership of the reader and closes it.
func (a *Assembler) AddSource(in io.ReadCloser) error {
	defer in.Close()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		a.lines = append(a.lines, Tokenize(scanner.Text()))
	}

	return scanner.Err()
}

// Assemble runs the label pass, then the instruction pass, then the
// emitter, and returns the resulting program image. Per spec.md §7, no
// image is produced if either pass accumulates any error.
func (a *Assembler) Assemble() (vm.Image, error) {
	labels := NewLabelPass()
	if err := labels.Run(a.lines); err != nil {
		return vm.Image{}, err
	}

	instrs := NewInstructionPass(labels.Symbols)

	entries, err := instrs.Run(a.lines)
	if err != nil {
		return vm.Image{}, err
	}

	emitter := NewEmitter(a.log)

	return emitter.Emit(entries, labels.Traits)
}
