// Package tty adapts a Unix terminal into the machine's external
// collaborators: raw keypresses become port-0 input events, and the
// terminal itself is available as a writer for status output.
package tty

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/smoynes/sixteen/internal/vm"
)

// Console is a terminal put into raw mode and wired to an input queue. Raw
// mode disables line buffering and echo so individual keypresses reach the
// machine's input port as they're typed, rather than after a newline.
type Console struct {
	in    *os.File
	out   *term.Terminal
	fd    int
	state *term.State
	queue *vm.QueueInput
}

// ErrNoTTY is returned if standard input is not a terminal.
var ErrNoTTY = errors.New("tty: not a terminal")

// WithConsole puts stdin into raw mode and starts a goroutine pumping
// keypresses into queue until ctx is cancelled or the terminal closes.
// Calling the returned cancel func restores the terminal.
func WithConsole(parent context.Context, queue *vm.QueueInput) (context.Context, *Console, context.CancelFunc) {
	ctx, cause := context.WithCancelCause(parent)

	console, err := NewConsole(os.Stdin, os.Stdout, queue)
	if err != nil {
		cause(err)
		return ctx, console, func() { cause(context.Canceled) }
	}

	go console.readTerminal(ctx, console.Restore)

	return ctx, console, console.Restore
}

// NewConsole puts sin into raw mode and returns a Console that pushes bytes
// read from it onto queue. If sin is not a terminal, ErrNoTTY is returned.
func NewConsole(sin *os.File, sout io.Writer, queue *vm.QueueInput) (*Console, error) {
	fd := int(sin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTTY, err)
	}

	cons := Console{
		fd:    fd,
		in:    sin,
		out:   term.NewTerminal(sin, ""),
		state: saved,
		queue: queue,
	}

	if err := cons.setTerminalParams(1, 0); err != nil {
		return nil, err
	}

	return &cons, nil
}

// Writer returns a writer that emits to the raw terminal.
func (c Console) Writer() io.Writer {
	return c.out
}

// Restore returns the terminal to its initial state, unblocking any
// in-progress read, and closes the input queue.
func (c *Console) Restore() {
	_ = c.in.SetReadDeadline(time.Now())
	_ = term.Restore(c.fd, c.state)
	c.queue.Close()
}

func (c *Console) setTerminalParams(vmin, vtime byte) error {
	_ = syscall.SetNonblock(c.fd, true)

	termIO, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	if err := unix.IoctlSetTermios(c.fd, setTermiosIoctl, termIO); err != nil {
		return err
	}

	_ = c.in.SetReadDeadline(time.Time{})

	return nil
}

// readTerminal reads raw bytes one at a time and pushes each onto the input
// queue as a port-0 value, until ctx is cancelled or the read fails.
func (c Console) readTerminal(ctx context.Context, cancel context.CancelFunc) {
	buf := bufio.NewReader(c.in)

	_ = syscall.SetNonblock(c.fd, false)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			b, err := buf.ReadByte()
			if err != nil {
				cancel()
				return
			}

			c.queue.Push(vm.Word(b))
		}
	}
}
