package ospcli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/oddbirdflies/osprey/testrunner"
)

// emitCmd implements `osprey emit <file>`: compile a source file and
// write its disassembly to a ".dosc" file and, optionally, its raw
// int32 words hex-dumped to a ".osc" file.
type emitCmd struct {
	disassemble  bool
	dumpBytecode bool
}

// NewEmitCommand returns the `emit` subcommand.
func NewEmitCommand() subcommands.Command { return &emitCmd{} }

func (*emitCmd) Name() string     { return "emit" }
func (*emitCmd) Synopsis() string { return "Emit the compiled bytecode for a source file" }
func (*emitCmd) Usage() string {
	return `emit <file.osp>:
  Compile file and write its disassembly to <file>.dosc and its raw
  int32 words (hex) to <file>.osc.
`
}

func (cmd *emitCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.disassemble, "disassemble", true, "write the disassembled bytecode to a .dosc file")
	f.BoolVar(&cmd.dumpBytecode, "dumpBytecode", true, "write the raw bytecode words (hex) to a .osc file")
}

func (cmd *emitCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}
	path := args[0]

	instructions, disassembly, err := testrunner.Disassemble(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	base := strings.TrimSuffix(path, ".osp")

	if cmd.disassemble {
		if err := os.WriteFile(base+".dosc", []byte(disassembly), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "💥 writing disassembly: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	if cmd.dumpBytecode {
		var hex strings.Builder
		for _, word := range instructions {
			hex.WriteString(strconv.FormatInt(int64(word), 16))
			hex.WriteString(" ")
		}
		if err := os.WriteFile(base+".osc", []byte(hex.String()), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "💥 writing bytecode: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}
