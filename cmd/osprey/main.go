// Command osprey is the Osprey toolchain's single entry point: it
// dispatches between running a script, testing a directory of scripts,
// emitting bytecode, dumping an AST, and an interactive REPL.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/oddbirdflies/osprey/internal/ospcli"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, "osprey")
	ospcli.Register(commander)
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
