// Package main is the command-line interface to the toolchain and virtual machine.
package main

import (
	"context"
	"os"

	"github.com/smoynes/sixteen/internal/cli"
	"github.com/smoynes/sixteen/internal/cli/cmd"
)

var (
	commands = []cli.Command{
		cmd.Assembler(),
		cmd.Executor(),
	}
)

// Entry point.
func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
