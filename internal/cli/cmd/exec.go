package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/smoynes/sixteen/internal/cli"
	"github.com/smoynes/sixteen/internal/encoding"
	"github.com/smoynes/sixteen/internal/log"
	"github.com/smoynes/sixteen/internal/monitor"
	"github.com/smoynes/sixteen/internal/tty"
	"github.com/smoynes/sixteen/internal/vm"
)

func Executor() cli.Command {
	exec := &executor{log: log.DefaultLogger()}
	return exec
}

type executor struct {
	logLevel slog.Level
	hex      bool
	tty      bool
	timeout  time.Duration
	log      *log.Logger
}

func (executor) Description() string {
	return "run a program"
}

func (executor) Usage(out io.Writer) error {
	var err error
	_, err = fmt.Fprintln(out, `exec [-hex] [-tty] [-timeout dur] program.img

Runs a program image in the emulator.`)

	return err
}

func (ex *executor) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("exec", flag.ExitOnError)
	fs.Func("loglevel", "set log `level`", func(s string) error {
		return ex.logLevel.UnmarshalText([]byte(s))
	})
	fs.BoolVar(&ex.hex, "hex", false, "read an Intel-Hex-style text image instead of a raw binary")
	fs.BoolVar(&ex.tty, "tty", false, "read keypresses from the controlling terminal into input port 0")
	fs.DurationVar(&ex.timeout, "timeout", 10*time.Second, "wall-clock `duration` before the run is cancelled")

	return fs
}

// Run loads and executes a program image.
func (ex *executor) Run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger,
) int {
	log.LogLevel.Set(ex.logLevel)

	img, err := ex.loadImage(args[0])
	if err != nil {
		logger.Error("Error loading image", "err", err)
		return -1
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(context.Canceled)

	ctx, cancelTimeout := context.WithTimeout(ctx, ex.timeout)
	defer cancelTimeout()

	logger.Debug("Initializing machine")

	display := vm.NewLoggingDisplay(logger)

	opts := []vm.OptionFn{
		vm.WithLogger(logger),
		monitor.WithDefaultSystemImage(),
		vm.WithDisplaySink(display),
	}

	if ex.tty {
		queue := vm.NewQueueInput()

		var restore context.CancelFunc

		ctx, _, restore = tty.WithConsole(ctx, queue)
		defer restore()

		if cause := context.Cause(ctx); errors.Is(cause, tty.ErrNoTTY) {
			logger.Warn("Standard input is not a terminal; input port 0 will stay idle", "err", cause)
		} else {
			opts = append(opts, vm.WithInputSource(queue))
			logger.Debug("Terminal console attached")
		}
	}

	machine := vm.New(opts...)

	loader := vm.NewLoader(machine)

	count, err := loader.Load(img)
	if err != nil {
		logger.Error(err.Error())
		return 1
	}

	logger.Debug("Loaded program", "file", args[0], "loaded", count)

	vblankTicks := make(chan struct{}, 1)

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case vblankTicks <- struct{}{}:
				default:
				}
			}
		}
	}()

	go machine.RunDisplay(ctx, func() <-chan struct{} { return vblankTicks })

	go func() {
		if err := machine.RunInput(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("input stopped", "err", err)
		}
	}()

	go func(cancel context.CancelCauseFunc) {
		logger.Info("Starting machine")

		err := machine.Run(ctx)

		switch {
		case errors.Is(err, context.DeadlineExceeded):
			logger.Warn("Run timeout")
			return
		case errors.Is(err, vm.ErrHalted):
			logger.Info("Machine halted", "cycles", machine.Reg[vm.Cycles])
			cancel(context.Canceled)

			return
		case err != nil:
			logger.Error(err.Error())
			cancel(err)

			return
		default:
			cancel(context.Canceled)
		}
	}(cancel)

	<-ctx.Done()

	if err := ctx.Err(); errors.Is(err, context.DeadlineExceeded) {
		logger.Error("Exec timeout!")
		return 2
	} else if errors.Is(err, context.Canceled) {
		logger.Info("Program completed", "frames", display.Frames())
		return 0
	} else if err != nil {
		logger.Error("Program error", "ERR", err)
		return 2
	} else {
		logger.Info("Terminated")
		return 0
	}
}

func (ex executor) loadImage(fn string) (vm.Image, error) {
	ex.log.Debug("Loading image", "file", fn)

	file, err := os.Open(fn)
	if err != nil {
		return vm.Image{}, err
	}

	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		ex.log.Error(err.Error())
		return vm.Image{}, err
	}

	ex.log.Debug("Loaded file", "bytes", len(raw))

	if ex.hex {
		enc := encoding.HexEncoding{}
		if err := enc.UnmarshalText(raw); err != nil {
			ex.log.Error(err.Error())
			return vm.Image{}, err
		}

		return enc.Code, nil
	}

	var img vm.Image
	if err := img.UnmarshalBinary(raw); err != nil {
		ex.log.Error(err.Error())
		return vm.Image{}, err
	}

	return img, nil
}
