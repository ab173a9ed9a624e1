package ospcli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/oddbirdflies/osprey/ast"
	"github.com/oddbirdflies/osprey/lexer"
	"github.com/oddbirdflies/osprey/parser"
)

// astCmd implements `osprey ast <file>`: print the indented-text AST
// dump for a source file.
type astCmd struct {
	out string
}

// NewASTCommand returns the `ast` subcommand.
func NewASTCommand() subcommands.Command { return &astCmd{} }

func (*astCmd) Name() string     { return "ast" }
func (*astCmd) Synopsis() string { return "Print the parsed AST for a source file" }
func (*astCmd) Usage() string {
	return `ast <file.osp>:
  Lex and parse file, then print its AST dump: one node per line, nested
  children indented four spaces per depth.
`
}

func (cmd *astCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.out, "out", "", "write the dump to this file instead of stdout")
}

func (cmd *astCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	dump := ast.Print(program)
	if cmd.out == "" {
		fmt.Print(dump)
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(cmd.out, []byte(dump), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "💥 writing dump: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
