package ospcli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/google/subcommands"

	"github.com/oddbirdflies/osprey/testrunner"
)

// testCmd implements `osprey test <dir>`: discover every immediate
// .osp child of dir and run each through the full pipeline, printing a
// colourised (Pass)/(Fail) line per file.
type testCmd struct{}

// NewTestCommand returns the `test` subcommand.
func NewTestCommand() subcommands.Command { return &testCmd{} }

var (
	passColor = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
)

func (*testCmd) Name() string     { return "test" }
func (*testCmd) Synopsis() string { return "Run every .osp file in a directory" }
func (*testCmd) Usage() string {
	return `test <dir>:
  Discover the immediate .osp children of dir (non-recursive) and run
  each through lex/parse/compile/execute, printing (Pass) in green when
  the VM halts with a non-empty stack whose top is 0, (Fail) in red
  otherwise.
`
}
func (*testCmd) SetFlags(*flag.FlagSet) {}

func (*testCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 directory not provided\n")
		return subcommands.ExitUsageError
	}

	results, err := testrunner.RunDir(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	for _, result := range results {
		printResult(result)
	}
	// The harness ran; per-file pass/fail is informational only.
	return subcommands.ExitSuccess
}

func printResult(result testrunner.Result) {
	if result.Err != nil {
		failColor.Printf("(Fail) %s: %v\n", result.Path, result.Err)
		return
	}
	if result.Passed {
		passColor.Printf("(Pass) %s\n", result.Path)
		return
	}
	failColor.Printf("(Fail) %s: top of stack was %d, want 0\n", result.Path, result.Top)
}
