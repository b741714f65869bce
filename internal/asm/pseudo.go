package asm

// pseudo.go is the pseudo-instruction dispatch table: a mapping from a
// surface mnemonic to one or more (operand-type pattern, concrete opcode)
// variants, picked by the first pattern whose operand kinds match in count
// and per-position. Grounded on the design note's "precompute a mapping from
// (surface name, operand-type tuple) -> concrete opcode" (spec.md §9).
//
// Every concrete opcode is reachable under its own lowercase name as a
// single-variant fallback (so a bare `*`-prefixed mnemonic, or an
// unambiguous concrete name used directly, always resolves); the table below
// additionally groups the common register/immediate/pointer families under
// short surface mnemonics.

import "github.com/smoynes/sixteen/internal/vm"

type pseudoVariant struct {
	pattern []vm.OperandKind
	concrete vm.Opcode
}

var pseudoTable map[string][]pseudoVariant

func registerPseudo(name string, concrete vm.Opcode) {
	if pseudoTable == nil {
		pseudoTable = make(map[string][]pseudoVariant)
	}

	pattern := concrete.Operands()
	pseudoTable[name] = append(pseudoTable[name], pseudoVariant{pattern: pattern, concrete: concrete})
}

func init() {
	// Fallback: every concrete opcode is its own single-variant pseudo.
	for name, op := range registeredOpcodes() {
		registerPseudo(name, op)
	}

	// Grouped surface aliases: reg/imm/ptr variants under one short name.
	group("add", vm.Add, vm.AddImm)
	group("sub", vm.Sub, vm.SubImm)
	group("subrev", vm.SubRev, vm.SubRevImm)
	group("mul", vm.Mul, vm.MulImm)
	group("div", vm.Div, vm.DivImm)
	group("mod", vm.Mod, vm.ModImm)
	group("and", vm.And, vm.AndImm)
	group("or", vm.Or, vm.OrImm)
	group("xor", vm.Xor, vm.XorImm)
	group("pow", vm.Pow, vm.PowImm)
	group("shl", vm.Shl, vm.ShlImm)
	group("shr", vm.Shr, vm.ShrImm)
	group("rotl", vm.Rotl, vm.RotlImm)
	group("rotr", vm.Rotr, vm.RotrImm)
	group("less", vm.Less, vm.LessImm)
	group("grtr", vm.Grtr, vm.GrtrImm)
	group("eq", vm.Eq, vm.EqImm)

	group("sto", vm.Sto, vm.StoPtr, vm.StoPtrOff)
	group("get", vm.Get, vm.GetPtr, vm.GetPtrOff)

	for _, b := range []struct {
		abs, ptr vm.Opcode
		name     string
	}{
		{vm.Jmp, vm.JmpPtr, "jmp"}, {vm.Jic, vm.JicPtr, "jic"}, {vm.Jnc, vm.JncPtr, "jnc"},
		{vm.Jiz, vm.JizPtr, "jiz"}, {vm.Jnz, vm.JnzPtr, "jnz"},
		{vm.JiErr, vm.JiErrPtr, "jierr"}, {vm.JnErr, vm.JnErrPtr, "jnerr"},
		{vm.JiCry, vm.JiCryPtr, "jicry"}, {vm.JnCry, vm.JnCryPtr, "jncry"},
	} {
		group(b.name, b.abs, b.ptr)
	}
}

// group registers additional variants for a short surface name already
// registered (or not) under its fallback concrete names.
func group(name string, concretes ...vm.Opcode) {
	for _, op := range concretes {
		registerPseudo(name, op)
	}
}

// registeredOpcodes enumerates every opcode with a descriptor, keyed by its
// lower-cased mnemonic, for the self-fallback pass.
func registeredOpcodes() map[string]vm.Opcode {
	out := make(map[string]vm.Opcode)

	for i := 0; i < 256; i++ {
		op := vm.Opcode(i)

		if concrete, ok := vm.OpcodeByName(op.String()); ok && concrete == op {
			out[lower(op.String())] = op
		}
	}

	return out
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

// resolvePseudo picks the first variant of name whose pattern matches
// operands in count and per-position coarse kind.
func resolvePseudo(name string, operands []ParsedOperand) (vm.Opcode, bool) {
	variants, ok := pseudoTable[lower(name)]
	if !ok {
		return 0, false
	}

	for _, v := range variants {
		if matchValid(v.pattern, operands) {
			return v.concrete, true
		}
	}

	return 0, false
}

func matchValid(pattern []vm.OperandKind, operands []ParsedOperand) bool {
	if len(pattern) != len(operands) {
		return false
	}

	for i, want := range pattern {
		if !operands[i].matches(want) {
			return false
		}
	}

	return true
}
