package ospcli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"github.com/oddbirdflies/osprey/compiler"
	"github.com/oddbirdflies/osprey/lexer"
	"github.com/oddbirdflies/osprey/parser"
	"github.com/oddbirdflies/osprey/token"
	"github.com/oddbirdflies/osprey/vm"
)

// replCmd implements `osprey repl`: a line-at-a-time loop over
// github.com/chzyer/readline, feeding each accumulated buffer through
// lex -> parse -> compile -> run and printing the resulting
// top-of-stack.
type replCmd struct{}

// NewREPLCommand returns the `repl` subcommand.
func NewREPLCommand() subcommands.Command { return &replCmd{} }

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive Osprey session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive read-compile-run loop. Each complete program
  (braces balanced) is compiled and executed; the VM's top-of-stack is
  printed after each run. Type 'exit' to quit.
`
}
func (*replCmd) SetFlags(*flag.FlagSet) {}

func (*replCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.NewEx(&readline.Config{Prompt: ">>> "})
	if err != nil {
		fmt.Println("💥", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	fmt.Println("Welcome to Osprey!")

	var buffer strings.Builder
	for {
		if buffer.Len() > 0 {
			rl.SetPrompt("... ")
		} else {
			rl.SetPrompt(">>> ")
		}

		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Println("💥", err)
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		tokens, err := lexer.New(source).Scan()
		if err != nil {
			fmt.Println(err)
			buffer.Reset()
			continue
		}

		if !bracesBalanced(tokens) {
			continue
		}

		program, err := parser.Parse(tokens)
		if err != nil {
			fmt.Println(err)
			buffer.Reset()
			continue
		}

		instructions, err := compiler.Compile(program)
		if err != nil {
			fmt.Println(err)
			buffer.Reset()
			continue
		}

		machine := vm.New()
		if err := machine.Run(instructions); err != nil {
			fmt.Println(err)
			buffer.Reset()
			continue
		}

		if stack := machine.Stack(); len(stack) > 0 {
			fmt.Println(stack[len(stack)-1])
		}
		buffer.Reset()
	}
}

// bracesBalanced reports whether the token stream has seen as many '}'
// as '{', the heuristic deciding whether a multi-line program is ready
// to compile or needs more input.
func bracesBalanced(tokens []token.Token) bool {
	balance := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LeftCurly:
			balance++
		case token.RightCurly:
			balance--
		}
	}
	return balance <= 0
}
