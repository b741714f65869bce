package asm

// instr.go is the instruction pass: for each non-label source line it parses
// the sigil-prefixed operands, resolves the mnemonic to a concrete opcode
// (directly if `*`-prefixed, otherwise via pseudo dispatch), and produces a
// typed instruction stream. Grounded on `internal/asm/ops.go`'s per-opcode
// Parse/Generate split, collapsed to one generic parser driven by each
// opcode's declared operand-type list (pseudo.go), since this ISA's ~125
// opcodes share a uniform operand-list shape rather than LC-3's bespoke
// per-opcode bit layouts.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smoynes/sixteen/internal/vm"
)

// EntryKind distinguishes the image entries the emitter consumes.
type EntryKind uint8

const (
	EntryInstruction EntryKind = iota
	EntryPage
	EntryAlloc
)

// Instruction is a fully resolved concrete instruction: an opcode and its
// operands, each narrowed to the numeric value the emitter will pack.
type Instruction struct {
	Opcode   vm.Opcode
	Operands []ParsedOperand

	Pos  vm.Word // Source line number, for error annotation.
	Line string
}

// ImageEntry is the tagged variant the label pass's design note calls for:
// either an instruction to encode, a page-trait cursor relocation, or an
// alloc reservation (cursor advances, nothing is written).
type ImageEntry struct {
	Kind  EntryKind
	Instr Instruction
	Page  vm.Word
	Words vm.Word
}

// InstructionPass walks the tokenised script a second time (after the label
// pass has resolved all names) and produces the typed image-entry stream.
type InstructionPass struct {
	Symbols SymbolTable

	entries []ImageEntry
	errs    []error
	pos     vm.Word
}

// NewInstructionPass creates an instruction pass bound to a label pass's
// resolved symbol table.
func NewInstructionPass(symbols SymbolTable) *InstructionPass {
	return &InstructionPass{Symbols: symbols}
}

// Run processes every tokenised line and returns the accumulated errors, if
// any.
func (ip *InstructionPass) Run(lines [][]Token) ([]ImageEntry, error) {
	for _, tokens := range lines {
		ip.pos++
		ip.line(tokens)
	}

	return ip.entries, errors.Join(ip.errs...)
}

func (ip *InstructionPass) fail(line string, err error) {
	ip.errs = append(ip.errs, &SyntaxError{Pos: ip.pos, Line: line, Err: err})
}

func (ip *InstructionPass) line(tokens []Token) {
	if len(tokens) == 0 {
		return
	}

	text := joinTokens(tokens)

	switch tokens[0].Text {
	case "!":
		ip.labelLine(tokens, text)
	case ".":
		ip.traitLine(tokens, text)
	default:
		ip.instructionLine(tokens, text)
	}
}

// labelLine handles `!alloc`, which reserves image words without emitting
// an instruction; all other label kinds have no emit-time effect.
func (ip *InstructionPass) labelLine(tokens []Token, text string) {
	if len(tokens) >= 2 && strings.EqualFold(tokens[1].Text, "alloc") {
		if len(tokens) < 4 {
			return // already reported by the label pass
		}

		words, err := resolveLiteral(tokens[3].Text, ip.Symbols)
		if err != nil {
			ip.fail(text, err)
			return
		}

		ip.entries = append(ip.entries, ImageEntry{Kind: EntryAlloc, Words: vm.Word(words)})
	}
}

// traitLine handles `.page N`, the one trait with an emit-time effect.
func (ip *InstructionPass) traitLine(tokens []Token, text string) {
	if len(tokens) < 3 || !strings.EqualFold(tokens[1].Text, "page") {
		return
	}

	val, err := resolveLiteral(tokens[2].Text, ip.Symbols)
	if err != nil {
		ip.fail(text, err)
		return
	}

	ip.entries = append(ip.entries, ImageEntry{Kind: EntryPage, Page: vm.Word(val)})
}

func (ip *InstructionPass) instructionLine(tokens []Token, text string) {
	bypass := false

	if tokens[0].Text == "*" {
		bypass = true
		tokens = tokens[1:]
	}

	if len(tokens) == 0 {
		ip.fail(text, fmt.Errorf("%w: empty instruction", ErrOpcode))
		return
	}

	mnemonic := tokens[0].Text
	rest := tokens[1:]

	operands, err := parseOperands(rest, ip.Symbols)
	if err != nil {
		ip.fail(text, err)
		return
	}

	var opcode vm.Opcode

	if bypass {
		op, ok := vm.OpcodeByName(mnemonic)
		if !ok {
			ip.fail(text, fmt.Errorf("%w: %q", ErrOpcode, mnemonic))
			return
		}

		if !matchValid(op.Operands(), operands) {
			ip.fail(text, fmt.Errorf("%w: %q: operand mismatch", ErrOperand, mnemonic))
			return
		}

		opcode = op
	} else {
		op, ok := resolvePseudo(mnemonic, operands)
		if !ok {
			ip.fail(text, fmt.Errorf("%w: %q", ErrOpcode, mnemonic))
			return
		}

		opcode = op
	}

	ip.entries = append(ip.entries, ImageEntry{
		Kind: EntryInstruction,
		Instr: Instruction{
			Opcode:   opcode,
			Operands: operands,
			Pos:      ip.pos,
			Line:     text,
		},
	})
}

func joinTokens(tokens []Token) string {
	var b strings.Builder

	for i, t := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(t.Text)
	}

	return b.String()
}
