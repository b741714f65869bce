package vm_test

// family_test.go assembles small programs through the real assembler and
// runs them end to end, covering opcode families that loader_test.go's
// hand-packed slots don't reach: block memory compare, call/return stack
// balance, and frame-buffer swapping.

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/smoynes/sixteen/internal/asm"
	"github.com/smoynes/sixteen/internal/vm"
)

func assembleAndLoad(t *testing.T, src string, opts ...vm.OptionFn) *vm.Machine {
	t.Helper()

	a := asm.NewAssembler(nil)
	if err := a.AddSource(io.NopCloser(strings.NewReader(src))); err != nil {
		t.Fatal(err)
	}

	img, err := a.Assemble()
	if err != nil {
		t.Fatal(err)
	}

	machine := vm.New(opts...)

	loader := vm.NewLoader(machine)
	if _, err := loader.Load(img); err != nil {
		t.Fatal(err)
	}

	return machine
}

func runToHalt(t *testing.T, machine *vm.Machine) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := machine.Run(ctx); !errors.Is(err, vm.ErrHalted) {
		t.Fatalf("want ErrHalted, got: %v", err)
	}
}

// TestMemCmp_BlockCompare checks that MemCmp sets ConditionFlag when two
// equal-length RAM blocks hold identical words, and clears it otherwise.
// Addresses 20 and 26 sit well past the assembled program's own 9 words, so
// the comparison never reads its own instructions.
func TestMemCmp_BlockCompare(t *testing.T) {
	t.Parallel()

	const src = "! header main\nmemcmp #20 #26 $3\nkill\n"

	t.Run("equal", func(t *testing.T) {
		t.Parallel()

		machine := assembleAndLoad(t, src)

		for i := vm.Word(0); i < 3; i++ {
			machine.RAM[20+i] = vm.Word(0x10 + i)
			machine.RAM[26+i] = vm.Word(0x10 + i)
		}

		runToHalt(t, machine)

		if machine.Reg[vm.ConditionFlag] == 0 {
			t.Error("ConditionFlag not set for equal blocks")
		}
	})

	t.Run("unequal", func(t *testing.T) {
		t.Parallel()

		machine := assembleAndLoad(t, src)

		for i := vm.Word(0); i < 3; i++ {
			machine.RAM[20+i] = vm.Word(0x10 + i)
			machine.RAM[26+i] = vm.Word(0x10 + i)
		}

		machine.RAM[27] = 0xffff

		runToHalt(t, machine)

		if machine.Reg[vm.ConditionFlag] != 0 {
			t.Error("ConditionFlag set for unequal blocks")
		}
	})
}

// TestLdiAdd_RegisterValues runs spec.md §8's mandatory Ldi/Add scenario
// end to end and checks the resulting register values, not just where the
// opcodes land in the image.
func TestLdiAdd_RegisterValues(t *testing.T) {
	t.Parallel()

	src := "! header main\nldi %rda $5\nldi %rdb $74\nadd %rda %rdb %rdc\nkill\n"

	machine := assembleAndLoad(t, src)

	runToHalt(t, machine)

	if got := machine.Reg[vm.RDA]; got != 5 {
		t.Errorf("rda: want: 5, got: %s", got)
	}

	if got := machine.Reg[vm.RDB]; got != 74 {
		t.Errorf("rdb: want: 74, got: %s", got)
	}

	if got := machine.Reg[vm.RDC]; got != 79 {
		t.Errorf("rdc: want: 79, got: %s", got)
	}
}

// TestCallRet_StackNetZero checks that a Call/Ret pair leaves StackTopPtr
// where it started: Call pushes one return address, Ret pops it.
func TestCallRet_StackNetZero(t *testing.T) {
	t.Parallel()

	src := "! header main\ncall #sub\nkill\n! label sub\nret\n"

	machine := assembleAndLoad(t, src)

	before := machine.Reg[vm.StackTopPtr]

	runToHalt(t, machine)

	if after := machine.Reg[vm.StackTopPtr]; after != before {
		t.Errorf("StackTopPtr not restored: before: %s, after: %s", before, after)
	}
}

// TestSwapFrameBuf_Toggle checks that SwapFrameBuf flips which VRAM half
// Present returns.
func TestSwapFrameBuf_Toggle(t *testing.T) {
	t.Parallel()

	machine := assembleAndLoad(t, "! header main\nswapframebuf\nkill\n")

	machine.VRAM[0] = 111
	machine.VRAM[vm.VRAMHalf] = 222

	before := machine.Present()
	if before[0] != 111 {
		t.Fatalf("unexpected initial active half: got: %d", before[0])
	}

	runToHalt(t, machine)

	after := machine.Present()
	if after[0] != 222 {
		t.Errorf("frame buffer did not swap: got: %d", after[0])
	}
}
