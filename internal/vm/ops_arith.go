package vm

// ops_arith.go: family 4, arithmetic & logic. All operations are unsigned
// 16-bit wrapping; overflow is not detected automatically (OverflowFlag is
// user-managed via SaveFlags/LoadFlags, not arithmetic side effects).

type binOp func(m *Machine, a, b Word) (Word, *Fault)

func wrap(f func(a, b uint32) uint32) binOp {
	return func(m *Machine, a, b Word) (Word, *Fault) {
		return Word(f(uint32(a), uint32(b))), nil
	}
}

func divOp(mod bool) binOp {
	return func(m *Machine, a, b Word) (Word, *Fault) {
		if b == 0 {
			return 0, m.raiseFault(FaultDivideByZero, Div)
		}

		if mod {
			return a % b, nil
		}

		return a / b, nil
	}
}

var binOps = map[Opcode]binOp{
	Add:    wrap(func(a, b uint32) uint32 { return a + b }),
	Sub:    wrap(func(a, b uint32) uint32 { return a - b }),
	SubRev: wrap(func(a, b uint32) uint32 { return b - a }),
	Mul:    wrap(func(a, b uint32) uint32 { return a * b }),
	Div:    divOp(false),
	Mod:    divOp(true),
	And:    wrap(func(a, b uint32) uint32 { return a & b }),
	Or:     wrap(func(a, b uint32) uint32 { return a | b }),
	Xor:    wrap(func(a, b uint32) uint32 { return a ^ b }),
	Pow:    wrap(func(a, b uint32) uint32 { return powWord(uint16(a), uint16(b)) }),
	Shl:    wrap(func(a, b uint32) uint32 { return uint32(uint16(a) << (uint16(b) & 0xf)) }),
	Shr:    wrap(func(a, b uint32) uint32 { return uint32(uint16(a) >> (uint16(b) & 0xf)) }),
	Rotl:   wrap(func(a, b uint32) uint32 { return uint32(rotl16(uint16(a), uint16(b))) }),
	Rotr:   wrap(func(a, b uint32) uint32 { return uint32(rotr16(uint16(a), uint16(b))) }),
}

func powWord(base, exp uint16) uint32 {
	result := uint32(1)
	b := uint32(base)

	for i := uint16(0); i < exp; i++ {
		result *= b
	}

	return result
}

func rotl16(v, n uint16) uint16 {
	n &= 0xf
	return (v << n) | (v >> (16 - n) & 0xffff)
}

func rotr16(v, n uint16) uint16 {
	n &= 0xf
	return (v >> n) | (v << (16 - n) & 0xffff)
}

func init() {
	regForms := map[Opcode]Opcode{
		Add: Add, Sub: Sub, SubRev: SubRev, Mul: Mul, Div: Div, Mod: Mod,
		And: And, Or: Or, Xor: Xor, Pow: Pow, Shl: Shl, Shr: Shr, Rotl: Rotl, Rotr: Rotr,
	}

	for op, key := range regForms {
		op, fn := op, binOps[key]

		register(op, func(m *Machine, operands []uint32) (bool, error) {
			a, b, dst := Reg(operands[0]), Reg(operands[1]), Reg(operands[2])

			result, f := fn(m, m.Reg[a], m.Reg[b])
			if f != nil {
				return true, f
			}

			m.Reg[dst] = result

			return false, nil
		})
	}

	immForms := map[Opcode]Opcode{
		AddImm: Add, SubImm: Sub, SubRevImm: SubRev, MulImm: Mul, DivImm: Div, ModImm: Mod,
		AndImm: And, OrImm: Or, XorImm: Xor, PowImm: Pow, ShlImm: Shl, ShrImm: Shr,
		RotlImm: Rotl, RotrImm: Rotr,
	}

	for op, key := range immForms {
		op, fn := op, binOps[key]

		register(op, func(m *Machine, operands []uint32) (bool, error) {
			dst, a, c := Reg(operands[0]), Reg(operands[1]), Word(operands[2])

			result, f := fn(m, m.Reg[a], c)
			if f != nil {
				return true, f
			}

			m.Reg[dst] = result

			return false, nil
		})
	}

	register(Not, func(m *Machine, operands []uint32) (bool, error) {
		dst, src := Reg(operands[0]), Reg(operands[1])
		m.Reg[dst] = ^m.Reg[src]

		return false, nil
	})
}
