// Package testrunner discovers and runs .osp files through the full
// lex -> parse -> compile -> execute pipeline. A program passes iff
// the VM halts without error and its data stack's top value is 0.
package testrunner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/oddbirdflies/osprey/bytecode"
	"github.com/oddbirdflies/osprey/compiler"
	"github.com/oddbirdflies/osprey/lexer"
	"github.com/oddbirdflies/osprey/parser"
	"github.com/oddbirdflies/osprey/vm"
)

// Result is the outcome of running a single .osp file.
type Result struct {
	// Path is the file that was run.
	Path string
	// Passed is true iff the program halted without error and its
	// stack top equals 0.
	Passed bool
	// Top is the VM's top-of-stack value when the program halted
	// without error. Meaningless when Err is set.
	Top int32
	// Err holds whichever phase's error short-circuited the pipeline:
	// a lexer, parser, compiler, or VM error.
	Err error
}

// Discover returns the immediate (non-recursive) ".osp" children of
// dir, sorted by name for deterministic output.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %q: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".osp" {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Run executes the full pipeline over the contents of path and reports
// the result. It never returns a Go error itself: every phase's
// failure is captured in the returned Result so a caller can print it
// and move on to the next file.
func Run(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("reading %q: %w", path, err)}
	}

	tokens, err := lexer.New(string(data)).Scan()
	if err != nil {
		return Result{Path: path, Err: err}
	}

	program, err := parser.Parse(tokens)
	if err != nil {
		return Result{Path: path, Err: err}
	}

	instructions, err := compiler.Compile(program)
	if err != nil {
		return Result{Path: path, Err: err}
	}

	machine := vm.New()
	if err := machine.Run(instructions); err != nil {
		return Result{Path: path, Err: err}
	}

	stack := machine.Stack()
	if len(stack) == 0 {
		return Result{Path: path, Err: fmt.Errorf("program halted with an empty stack")}
	}

	top := stack[len(stack)-1]
	return Result{Path: path, Passed: top == 0, Top: top}
}

// RunDir discovers every .osp child of dir and runs each in turn.
func RunDir(dir string) ([]Result, error) {
	paths, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		results = append(results, Run(path))
	}
	return results, nil
}

// Disassemble compiles path's program and returns its disassembly text,
// for the "emit" subcommand and other diagnostics.
func Disassemble(path string) (bytecode.Instructions, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %q: %w", path, err)
	}
	tokens, err := lexer.New(string(data)).Scan()
	if err != nil {
		return nil, "", err
	}
	program, err := parser.Parse(tokens)
	if err != nil {
		return nil, "", err
	}
	instructions, err := compiler.Compile(program)
	if err != nil {
		return nil, "", err
	}
	return instructions, bytecode.Disassemble(instructions), nil
}
