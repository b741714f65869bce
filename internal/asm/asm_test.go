package asm

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/smoynes/sixteen/internal/vm"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		line string
		want []string
	}{
		{"label", "! header main", []string{"!", "header", "main"}},
		{"instruction", "ldi %rda $5", []string{"ldi", "%", "rda", "$", "5"}},
		{"comment stripped", "nop ; a comment", []string{"nop"}},
		{"pointer offset", "sto [%rda+$4] %rdb", []string{
			"sto", "[", "%", "rda", "+", "$", "4", "]", "%", "rdb",
		}},
		{"force split", "ab" + string(ForceSplit) + "cd", []string{"ab", string(ForceSplit), "cd"}},
		{"blank discarded", "add %rda, %rdb, %rdc", []string{
			"add", "%", "rda", "%", "rdb", "%", "rdc",
		}},
	}

	for _, tc := range tcs {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			toks := Tokenize(tc.line)

			got := make([]string, len(toks))
			for i, tok := range toks {
				got[i] = tok.Text
			}

			if len(got) != len(tc.want) {
				t.Fatalf("token count: want: %v, got: %v", tc.want, got)
			}

			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("token %d: want: %q, got: %q", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func tokenizeAll(src string) [][]Token {
	var lines [][]Token
	for _, line := range strings.Split(src, "\n") {
		lines = append(lines, Tokenize(line))
	}

	return lines
}

func TestLabelPass(t *testing.T) {
	t.Parallel()

	src := `! header main
ldi %rda $5
! const answer 42
. ram_size 256
`

	lp := NewLabelPass()
	if err := lp.Run(tokenizeAll(src)); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if loc, ok := lp.Symbols.Get("main"); !ok || loc != 3 {
		t.Errorf("main: want: 3, got: %v, ok: %v", loc, ok)
	}

	if loc, ok := lp.Symbols.Get("answer"); !ok || loc != 42 {
		t.Errorf("answer: want: 42, got: %v, ok: %v", loc, ok)
	}

	if lp.Traits["ram_size"] != "256" {
		t.Errorf("ram_size trait: got: %q", lp.Traits["ram_size"])
	}
}

func TestLabelPass_redefined(t *testing.T) {
	t.Parallel()

	src := "! header main\n! header main\n"

	lp := NewLabelPass()
	err := lp.Run(tokenizeAll(src))

	if !errors.Is(err, ErrRedefined) {
		t.Errorf("want ErrRedefined, got: %v", err)
	}
}

func TestLabelPass_rejectsMacro(t *testing.T) {
	t.Parallel()

	lp := NewLabelPass()
	err := lp.Run(tokenizeAll("! macro foo\n"))

	if !errors.Is(err, ErrMacro) {
		t.Errorf("want ErrMacro, got: %v", err)
	}
}

func TestAssembler_LdiAdd(t *testing.T) {
	t.Parallel()

	src := `! header main
ldi %rda $5
ldi %rdb $74
add %rda %rdb %rdc
`

	a := NewAssembler(nil)
	if err := a.AddSource(io.NopCloser(strings.NewReader(src))); err != nil {
		t.Fatal(err)
	}

	img, err := a.Assemble()
	if err != nil {
		t.Fatal("assemble:", err)
	}

	if len(img.Words) != 3+3*3 {
		t.Fatalf("image length: want: %d, got: %d", 3+3*3, len(img.Words))
	}

	if op := vm.Opcode(img.Words[3] >> 8); op != vm.Ldi {
		t.Errorf("slot 0 opcode: want: Ldi, got: %s", op)
	}

	if op := vm.Opcode(img.Words[9] >> 8); op != vm.Add {
		t.Errorf("slot 2 opcode: want: Add, got: %s", op)
	}
}

func TestAssembler_unknownMnemonic(t *testing.T) {
	t.Parallel()

	a := NewAssembler(nil)
	if err := a.AddSource(io.NopCloser(strings.NewReader("! header main\nbogus %rda\n"))); err != nil {
		t.Fatal(err)
	}

	if _, err := a.Assemble(); !errors.Is(err, ErrOpcode) {
		t.Errorf("want ErrOpcode, got: %v", err)
	}
}

func TestPseudoDispatch_immVsReg(t *testing.T) {
	t.Parallel()

	symbols := make(SymbolTable)

	regOperands, err := parseOperands(Tokenize("%rda %rdb %rdc")[0:], symbols)
	if err != nil {
		t.Fatal(err)
	}

	if op, ok := resolvePseudo("add", regOperands); !ok || op != vm.Add {
		t.Errorf("want Add, got: %s, ok: %v", op, ok)
	}

	immOperands, err := parseOperands(Tokenize("%rda %rdb $4"), symbols)
	if err != nil {
		t.Fatal(err)
	}

	if op, ok := resolvePseudo("add", immOperands); !ok || op != vm.AddImm {
		t.Errorf("want AddImm, got: %s, ok: %v", op, ok)
	}
}

func TestPackSlot_roundTrip(t *testing.T) {
	t.Parallel()

	instr := Instruction{
		Opcode: vm.Ldi,
		Operands: []ParsedOperand{
			{Kind: PReg, Reg: vm.RDA},
			{Kind: PConst, Value: 0x1234},
		},
	}

	slot, err := packSlot(instr)
	if err != nil {
		t.Fatal(err)
	}

	if got := vm.Opcode(slot[0] >> 8); got != vm.Ldi {
		t.Errorf("opcode: want: Ldi, got: %s", got)
	}

	if got := uint8(slot[0]); got != uint8(vm.RDA) {
		t.Errorf("register byte: want: %d, got: %d", vm.RDA, got)
	}

	// Bytes are packed low-byte-first into the operand stream, then that
	// stream is packed into words high-byte-first (word k = byte[2k]<<8 |
	// byte[2k+1]); reversing both steps must recover the original value.
	lowByte := byte(slot[1] >> 8)
	highByte := byte(slot[1])
	recovered := uint16(lowByte) | uint16(highByte)<<8

	if recovered != 0x1234 {
		t.Errorf("const16 round-trip: want: %#04x, got: %#04x", 0x1234, recovered)
	}
}
