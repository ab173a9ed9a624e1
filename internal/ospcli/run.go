// Package ospcli implements the Osprey toolchain's subcommands, all
// registered through a single Register call cmd/osprey/main.go invokes.
package ospcli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/oddbirdflies/osprey/compiler"
	"github.com/oddbirdflies/osprey/lexer"
	"github.com/oddbirdflies/osprey/parser"
	"github.com/oddbirdflies/osprey/vm"
)

// runCmd implements `osprey run <file>`: lex, parse, compile, and
// execute a single .osp file, printing the VM's top-of-stack value.
type runCmd struct{}

// NewRunCommand returns the `run` subcommand.
func NewRunCommand() subcommands.Command { return &runCmd{} }

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Run an Osprey script and print its result" }
func (*runCmd) Usage() string {
	return `run <file.osp>:
  Lex, parse, compile, and execute a single Osprey source file, printing
  the VM's top-of-stack value at HALT.
`
}
func (*runCmd) SetFlags(*flag.FlagSet) {}

func (*runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	tokens, err := lexer.New(string(data)).Scan()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	program, err := parser.Parse(tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	instructions, err := compiler.Compile(program)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	machine := vm.New()
	if err := machine.Run(instructions); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	stack := machine.Stack()
	if len(stack) == 0 {
		fmt.Fprintln(os.Stderr, "💥 program halted with an empty stack")
		return subcommands.ExitFailure
	}
	fmt.Println(stack[len(stack)-1])
	return subcommands.ExitSuccess
}
