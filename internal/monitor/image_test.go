package monitor

import (
	"testing"

	"github.com/smoynes/sixteen/internal/vm"
)

func TestSystemImage_Build(t *testing.T) {
	t.Parallel()

	img := NewSystemImage()

	body, entries, err := img.Build(0)
	if err != nil {
		t.Fatal(err)
	}

	if len(body) == 0 {
		t.Fatal("empty body")
	}

	for _, name := range []string{"fault", "timeout", "interrupt"} {
		if _, ok := entries[name]; !ok {
			t.Errorf("missing entry for routine %q", name)
		}
	}

	if entries["fault"] != 0 {
		t.Errorf("fault entry: want: 0, got: %v", entries["fault"])
	}

	// Each routine here is a single 3-word instruction slot, so routines
	// are laid out back to back with no gaps.
	if entries["timeout"] != 3 {
		t.Errorf("timeout entry: want: 3, got: %v", entries["timeout"])
	}

	if entries["interrupt"] != 6 {
		t.Errorf("interrupt entry: want: 6, got: %v", entries["interrupt"])
	}
}

func TestWithDefaultSystemImage(t *testing.T) {
	t.Parallel()

	machine := vm.New(WithDefaultSystemImage())

	base := vm.Word(DefaultBase)

	if machine.Reg[vm.FaultCallbackAddr] != base {
		t.Errorf("FaultCallbackAddr: want: %v, got: %v", base, machine.Reg[vm.FaultCallbackAddr])
	}

	if machine.Reg[vm.TimeOutCallbackAddr] != base+3 {
		t.Errorf("TimeOutCallbackAddr: want: %v, got: %v", base+3, machine.Reg[vm.TimeOutCallbackAddr])
	}

	if machine.Reg[vm.InterruptCallbackAddr] != base+6 {
		t.Errorf("InterruptCallbackAddr: want: %v, got: %v", base+6, machine.Reg[vm.InterruptCallbackAddr])
	}

	if op := vm.Opcode(machine.RAM[base] >> 8); op != vm.Kill {
		t.Errorf("fault routine opcode: want: Kill, got: %s", op)
	}

	if op := vm.Opcode(machine.RAM[base+6] >> 8); op != vm.RetInt {
		t.Errorf("interrupt routine opcode: want: RetInt, got: %s", op)
	}
}
