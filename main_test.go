package main_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/smoynes/sixteen/internal/asm"
	"github.com/smoynes/sixteen/internal/log"
	"github.com/smoynes/sixteen/internal/monitor"
	"github.com/smoynes/sixteen/internal/vm"
)

// timeout is how long to wait for the machine to stop running.
const timeout = 1 * time.Second

// TestMain assembles and runs a tiny program end-to-end, the way the
// command-line tool does: assemble, load, run to a clean halt.
func TestMain(t *testing.T) {
	log.LogLevel.Set(log.Error)

	a := asm.NewAssembler(nil)
	src := "! header main\nmov %rda %rda\nkill\n"

	if err := a.AddSource(io.NopCloser(strings.NewReader(src))); err != nil {
		t.Fatal(err)
	}

	img, err := a.Assemble()
	if err != nil {
		t.Fatal(err)
	}

	machine := vm.New(monitor.WithDefaultSystemImage())

	loader := vm.NewLoader(machine)
	if _, err := loader.Load(img); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	err = machine.Run(ctx)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, vm.ErrHalted):
		t.Logf("test: ok, elapsed: %s", elapsed)
	default:
		t.Errorf("test: error: %s, elapsed: %s", err, elapsed)
	}
}
