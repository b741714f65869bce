// Package monitor implements a system monitor or BIOS for the machine: the
// default fault, timeout and interrupt routines a program runs against when
// it never installs its own.
package monitor

import (
	"fmt"
	"io"
	"strings"

	"github.com/smoynes/sixteen/internal/asm"
	"github.com/smoynes/sixteen/internal/log"
	"github.com/smoynes/sixteen/internal/vm"
)

// Routine is one monitor routine: a name, used both for log messages and to
// look up its entry address after assembly, and free-standing source text
// assembled on its own.
type Routine struct {
	Name   string
	Source string
}

// SystemImage is a set of monitor routines assembled and spliced into one
// flat word sequence, ready to be copied directly into RAM. Unlike a
// program image, a system image carries no OS header of its own: it is
// copied straight into RAM at a chosen base, not loaded through Loader.
type SystemImage struct {
	Routines []Routine

	log *log.Logger
}

// NewSystemImage creates a system image with the default fault, timeout and
// interrupt routines.
func NewSystemImage() *SystemImage {
	return &SystemImage{
		Routines: []Routine{
			{Name: "fault", Source: faultSource},
			{Name: "timeout", Source: timeoutSource},
			{Name: "interrupt", Source: interruptSource},
		},
		log: log.DefaultLogger(),
	}
}

// Build assembles every routine and concatenates their instruction slots
// into one word sequence based at base, returning the sequence and each
// routine's entry address.
func (img *SystemImage) Build(base vm.Word) ([]vm.Word, map[string]vm.Word, error) {
	var (
		body    []vm.Word
		entries = make(map[string]vm.Word, len(img.Routines))
		cursor  = base
	)

	for _, routine := range img.Routines {
		a := asm.NewAssembler(img.log)

		if err := a.AddSource(io.NopCloser(strings.NewReader(routine.Source))); err != nil {
			return nil, nil, fmt.Errorf("monitor: %s: %w", routine.Name, err)
		}

		assembled, err := a.Assemble()
		if err != nil {
			return nil, nil, fmt.Errorf("monitor: %s: %w", routine.Name, err)
		}

		if len(assembled.Words) < 3 {
			return nil, nil, fmt.Errorf("monitor: %s: routine image too short", routine.Name)
		}

		slots := assembled.Words[3:] // drop the routine's own unused OS header.

		entries[routine.Name] = cursor
		body = append(body, slots...)
		cursor += vm.Word(len(slots))
	}

	return body, entries, nil
}

// WithSystemImage installs a system image's routines into RAM starting at
// base and points FaultCallbackAddr, TimeOutCallbackAddr and
// InterruptCallbackAddr at the corresponding routine entries.
func WithSystemImage(img *SystemImage, base vm.Word) vm.OptionFn {
	return func(m *vm.Machine) {
		body, entries, err := img.Build(base)
		if err != nil {
			img.log.Error("failed to build system image", "err", err)
			return
		}

		copy(m.RAM[base:], body)

		if addr, ok := entries["fault"]; ok {
			m.Reg[vm.FaultCallbackAddr] = addr
		}

		if addr, ok := entries["timeout"]; ok {
			m.Reg[vm.TimeOutCallbackAddr] = addr
		}

		if addr, ok := entries["interrupt"]; ok {
			m.Reg[vm.InterruptCallbackAddr] = addr
		}

		img.log.Debug("installed system image", "base", base, "words", len(body), "routines", len(entries))
	}
}

// DefaultBase is where the default system image is installed: high in RAM,
// well away from word 0 where a loaded program's own OS header and first
// instructions live. Privileged code addresses RAM directly (no frame-base
// relocation, no bounds check), so any address is reachable from here.
const DefaultBase = vm.RamWords - 64

// WithDefaultSystemImage installs the default system image at DefaultBase.
// You should probably use this unless a program supplies its own monitor
// routines.
func WithDefaultSystemImage() vm.OptionFn {
	return WithSystemImage(NewSystemImage(), DefaultBase)
}
