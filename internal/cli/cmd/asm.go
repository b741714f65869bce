package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/smoynes/sixteen/internal/asm"
	"github.com/smoynes/sixteen/internal/cli"
	"github.com/smoynes/sixteen/internal/encoding"
	"github.com/smoynes/sixteen/internal/log"
)

// Assembler is the command that translates source into a program image.
//
//	sixteen asm -o a.img FILE.asm
func Assembler() cli.Command {
	return new(assembler)
}

type assembler struct {
	debug  bool
	hex    bool
	output string
}

func (assembler) Description() string {
	return "assemble source code into a program image"
}

func (assembler) Usage(out io.Writer) error {
	var err error
	_, err = fmt.Fprintln(out, `asm [-o file.img] [-hex] file.asm...

Assemble source into a program image.`)

	return err
}

func (a *assembler) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	fs.BoolVar(&a.debug, "debug", false, "enable debug logging")
	fs.BoolVar(&a.hex, "hex", false, "emit Intel-Hex-style text instead of a raw binary image")
	fs.StringVar(&a.output, "o", "a.img", "output `filename`")

	return fs
}

// Run assembles one or more source files into a single program image.
func (a *assembler) Run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	if a.debug {
		log.LogLevel.Set(log.Debug)
	}

	asmr := asm.NewAssembler(logger)

	for _, fn := range args {
		f, err := os.Open(fn)
		if err != nil {
			logger.Error("open failed", "file", fn, "err", err)
			return 1
		}

		if err := asmr.AddSource(f); err != nil {
			logger.Error("read failed", "file", fn, "err", err)
			return 1
		}
	}

	img, err := asmr.Assemble()
	if err != nil {
		logger.Error("assemble failed", "err", err)
		return 1
	}

	var out []byte

	if a.hex {
		enc := encoding.HexEncoding{Code: img}

		out, err = enc.MarshalText()
	} else {
		out, err = img.MarshalBinary()
	}

	if err != nil {
		logger.Error("encode failed", "err", err)
		return 1
	}

	if err := os.WriteFile(a.output, out, 0o644); err != nil {
		logger.Error("write failed", "out", a.output, "err", err)
		return 1
	}

	logger.Debug("assembled image", "out", a.output, "words", len(img.Words))

	return 0
}
