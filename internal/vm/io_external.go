package vm

// io_external.go declares the narrow interfaces for the machine's external
// collaborators (display sink, input source) named, but explicitly left
// out of core, by the specification (§1, §6). Default no-op
// implementations let New run headless.

import "context"

// DisplaySink consumes a presented VRAM half once per frame.
type DisplaySink interface {
	Present(active []Word)
}

// InputSource delivers byte-sized input events to the machine's input port
// 0. deliver should be called once per event with the byte value; Run
// returns when ctx is cancelled or the source is exhausted.
type InputSource interface {
	Run(ctx context.Context, deliver func(value Word)) error
}

type noopDisplay struct{}

func (noopDisplay) Present([]Word) {}

type noopInput struct{}

func (noopInput) Run(ctx context.Context, _ func(Word)) error {
	<-ctx.Done()
	return ctx.Err()
}

// Present returns the currently visible VRAM half, protected by the
// reader/writer lock shared with the VM's drawing opcodes.
func (m *Machine) Present() []Word {
	m.vramMu.RLock()
	defer m.vramMu.RUnlock()

	view := make([]Word, VRAMHalf)
	copy(view, m.VRAM[m.activeBuffer:m.activeBuffer+VRAMHalf])

	return view
}

// RunDisplay drives the display sink once per v-blank, under the shared
// VRAM lock, until ctx is cancelled. It is meant to run in its own
// goroutine, independent from the VM's fetch/decode/execute loop.
func (m *Machine) RunDisplay(ctx context.Context, framePeriod func() <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-framePeriod():
			m.display.Present(m.Present())
			m.signalVBlank()
		}
	}
}

// signalVBlank sends a non-blocking pulse on the v-blank channel; a missed
// signal just means the next VBlank opcode query returns false, as the
// specification requires.
func (m *Machine) signalVBlank() {
	select {
	case m.vblank <- struct{}{}:
	default:
	}
}

// RunInput pumps the configured InputSource into port 0 under the shared
// port lock, translating the reserved kill byte into a call to Kill.
func (m *Machine) RunInput(ctx context.Context) error {
	return m.input.Run(ctx, func(value Word) {
		if value == KillByte {
			m.Kill()
			return
		}

		m.portMu.Lock()
		m.In[0] = Port{Value: value, Flag: true}
		m.portMu.Unlock()
	})
}

// KillByte is the reserved input byte value that signals VM shutdown.
const KillByte Word = 0xffff
