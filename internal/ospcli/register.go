package ospcli

import "github.com/google/subcommands"

// Register adds every Osprey subcommand to commander, plus the
// standard help/flags/commands introspection subcommands
// google/subcommands ships.
func Register(commander *subcommands.Commander) {
	commander.Register(subcommands.HelpCommand(), "")
	commander.Register(subcommands.FlagsCommand(), "")
	commander.Register(subcommands.CommandsCommand(), "")

	commander.Register(NewRunCommand(), "")
	commander.Register(NewTestCommand(), "")
	commander.Register(NewEmitCommand(), "")
	commander.Register(NewASTCommand(), "")
	commander.Register(NewREPLCommand(), "")
}
