package monitor

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

// TestDefaultSystemImage_RamBoundsFault builds a program that reads an
// address past RamSize while unprivileged, and checks that the default
// fault routine runs and halts the machine cleanly.
func TestDefaultSystemImage_RamBoundsFault(t *testing.T) {
	t.Parallel()

	a := asm.NewAssembler(nil)
	if err := a.AddSource(io.NopCloser(strings.NewReader("! header main\nget %rda #1000\n"))); err != nil {
		t.Fatal(err)
	}

	img, err := a.Assemble()
	if err != nil {
		t.Fatal(err)
	}

	machine := vm.New(WithDefaultSystemImage())

	loader := vm.NewLoader(machine)
	if _, err := loader.Load(img); err != nil {
		t.Fatal(err)
	}

	// The assembled image carries no explicit ram_size trait, so the
	// loader sets RamSize to the image's own small word count: address
	// 1000 is well past it, which is the point of this test.
	machine.Reg[vm.Protected] = 0

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = machine.Run(ctx)
	if !errors.Is(err, vm.ErrHalted) {
		t.Fatalf("want ErrHalted, got: %v", err)
	}

	if machine.Reg[vm.FaultFlag] == 0 {
		t.Error("FaultFlag not set")
	}
}

// TestDefaultSystemImage_Timeout builds a program that loops forever while
// unprivileged with a tiny timeout budget, and checks that the default
// timeout routine runs and halts the machine.
func TestDefaultSystemImage_Timeout(t *testing.T) {
	t.Parallel()

	a := asm.NewAssembler(nil)
	src := "! header main\n! label loop\nmov %rda %rda\njmp #loop\n"

	if err := a.AddSource(io.NopCloser(strings.NewReader(src))); err != nil {
		t.Fatal(err)
	}

	img, err := a.Assemble()
	if err != nil {
		t.Fatal(err)
	}

	machine := vm.New(WithDefaultSystemImage(), vm.WithTimeout(4))

	loader := vm.NewLoader(machine)
	if _, err := loader.Load(img); err != nil {
		t.Fatal(err)
	}

	machine.Reg[vm.Protected] = 0

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = machine.Run(ctx)
	if !errors.Is(err, vm.ErrHalted) {
		t.Fatalf("want ErrHalted, got: %v", err)
	}
}
