package asm

// operand.go parses the sigil-prefixed operand forms of §4.3 into typed,
// resolved operands, and validates them against a concrete instruction's
// declared operand-type list.

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/smoynes/sixteen/internal/vm"
)

// ParsedKind is the coarse operand kind the tokeniser's sigils distinguish.
// It is coarser than vm.OperandKind: a parsed Constant matches either a
// Const8 or Const16 concrete slot; a parsed Address matches either Addr16 or
// Addr32. Narrowing happens at emit time, per spec.
type ParsedKind uint8

//go:generate go run golang.org/x/tools/cmd/stringer -type ParsedKind -output strings_gen.go

const (
	PReg ParsedKind = iota
	PConst
	PAddr
	PPtr
)

// ParsedOperand is one resolved operand: a register index, or a 32-bit
// value wide enough to hold any constant or address.
type ParsedOperand struct {
	Kind  ParsedKind
	Reg   vm.Reg
	Value uint32
}

// matches reports whether a parsed operand satisfies a concrete operand
// slot's declared kind.
func (p ParsedOperand) matches(want vm.OperandKind) bool {
	switch p.Kind {
	case PReg:
		return want == vm.OperandReg
	case PConst:
		return want == vm.OperandConst8 || want == vm.OperandConst16
	case PAddr:
		return want == vm.OperandAddr16 || want == vm.OperandAddr32
	case PPtr:
		return want == vm.OperandPtr
	default:
		return false
	}
}

var (
	// ErrOperand causes a SyntaxError if an opcode's operands are invalid.
	ErrOperand = errors.New("operand error")

	// ErrLiteral causes a SyntaxError if a literal or label reference fails
	// to resolve.
	ErrLiteral = errors.New("literal error")

	// ErrRegister causes a SyntaxError if a register name is unrecognised.
	ErrRegister = errors.New("register error")
)

// parseOperands walks the token stream following a mnemonic, consuming one
// sigil-prefixed operand form at a time, until the tokens are exhausted.
func parseOperands(tokens []Token, symbols SymbolTable) ([]ParsedOperand, error) {
	var operands []ParsedOperand

	i := 0
	for i < len(tokens) {
		op, consumed, err := parseOneOperand(tokens[i:], symbols)
		if err != nil {
			return nil, err
		}

		operands = append(operands, op...)
		i += consumed
	}

	return operands, nil
}

func parseOneOperand(tokens []Token, symbols SymbolTable) ([]ParsedOperand, int, error) {
	if len(tokens) == 0 {
		return nil, 0, fmt.Errorf("%w: missing operand", ErrOperand)
	}

	switch tokens[0].Text {
	case "%":
		if len(tokens) < 2 {
			return nil, 0, fmt.Errorf("%w: missing register name", ErrRegister)
		}

		reg, ok := vm.RegByName(tokens[1].Text)
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrRegister, tokens[1].Text)
		}

		return []ParsedOperand{{Kind: PReg, Reg: reg}}, 2, nil

	case "$", "@":
		if len(tokens) < 2 {
			return nil, 0, fmt.Errorf("%w: missing constant", ErrLiteral)
		}

		val, err := resolveLiteral(tokens[1].Text, symbols)
		if err != nil {
			return nil, 0, err
		}

		return []ParsedOperand{{Kind: PConst, Value: val}}, 2, nil

	case "#":
		if len(tokens) < 2 {
			return nil, 0, fmt.Errorf("%w: missing address", ErrLiteral)
		}

		val, err := resolveLiteral(tokens[1].Text, symbols)
		if err != nil {
			return nil, 0, err
		}

		return []ParsedOperand{{Kind: PAddr, Value: val}}, 2, nil

	case "[":
		return parsePointer(tokens, symbols)

	default:
		return nil, 0, fmt.Errorf("%w: unexpected token %q", ErrOperand, tokens[0].Text)
	}
}

// parsePointer handles the two bracket forms: "[%r]" and "[%r+$n]", the
// latter lowering to two parsed operands (Pointer, Constant).
func parsePointer(tokens []Token, symbols SymbolTable) ([]ParsedOperand, int, error) {
	if len(tokens) < 4 || tokens[1].Text != "%" {
		return nil, 0, fmt.Errorf("%w: malformed pointer operand", ErrOperand)
	}

	reg, ok := vm.RegByName(tokens[2].Text)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrRegister, tokens[2].Text)
	}

	if tokens[3].Text == "]" {
		return []ParsedOperand{{Kind: PPtr, Reg: reg}}, 4, nil
	}

	if tokens[3].Text == "+" {
		if len(tokens) < 7 || tokens[4].Text != "$" || tokens[6].Text != "]" {
			return nil, 0, fmt.Errorf("%w: malformed pointer-offset operand", ErrOperand)
		}

		val, err := resolveLiteral(tokens[5].Text, symbols)
		if err != nil {
			return nil, 0, err
		}

		return []ParsedOperand{
			{Kind: PPtr, Reg: reg},
			{Kind: PConst, Value: val},
		}, 7, nil
	}

	return nil, 0, fmt.Errorf("%w: malformed pointer operand", ErrOperand)
}

// resolveLiteral parses a numeric literal (0x hex, 0b binary, decimal) or,
// failing that, looks the token up as a label reference.
func resolveLiteral(tok string, symbols SymbolTable) (uint32, error) {
	base, digits := 10, tok

	switch {
	case len(tok) > 2 && (tok[:2] == "0x" || tok[:2] == "0X"):
		base, digits = 16, tok[2:]
	case len(tok) > 2 && (tok[:2] == "0b" || tok[:2] == "0B"):
		base, digits = 2, tok[2:]
	}

	if val, err := strconv.ParseUint(digits, base, 32); err == nil {
		return uint32(val), nil
	}

	if loc, ok := symbols.Get(strings.ToUpper(tok)); ok {
		return uint32(loc), nil
	}

	return 0, fmt.Errorf("%w: %q", ErrLiteral, tok)
}
