// Package tty_test tries to test ttys.
//
// The test is skipped when stdin is not a terminal (ErrNoTTY). Notably, this
// includes when run with "go test" because it redirects tests' standard
// input/output streams. You can test it by building a test binary and
// running it directly:
//
//	$ go test -c && ./tty.test
package tty_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smoynes/sixteen/internal/tty"
	"github.com/smoynes/sixteen/internal/vm"
)

const timeout = 100 * time.Millisecond

func TestConsole(t *testing.T) {
	queue := vm.NewQueueInput()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ctx, console, restore := tty.WithConsole(ctx, queue)
	defer restore()

	if err := context.Cause(ctx); errors.Is(err, tty.ErrNoTTY) {
		t.Skipf("error: %s", context.Cause(ctx))
	}

	_ = console

	delivered := make(chan vm.Word, 1)

	go func() {
		_ = queue.Run(ctx, func(value vm.Word) {
			select {
			case delivered <- value:
			default:
			}
		})
	}()

	select {
	case <-ctx.Done():
	case <-delivered:
	}
}
