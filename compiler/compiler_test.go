package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oddbirdflies/osprey/compiler"
	"github.com/oddbirdflies/osprey/lexer"
	"github.com/oddbirdflies/osprey/parser"
	"github.com/oddbirdflies/osprey/vm"
)

// runSource lexes, parses, compiles, and executes source end to end,
// returning the VM's data stack at HALT.
func runSource(t *testing.T, source string) vm.Stack {
	t.Helper()
	tokens, err := lexer.New(source).Scan()
	require.NoError(t, err)
	program, err := parser.Parse(tokens)
	require.NoError(t, err)
	instructions, err := compiler.Compile(program)
	require.NoError(t, err)
	machine := vm.New()
	require.NoError(t, machine.Run(instructions))
	return machine.Stack()
}

// topOfStack mirrors the test harness's pass criterion: the stack must
// be non-empty at HALT.
func topOfStack(t *testing.T, stack vm.Stack) int32 {
	t.Helper()
	require.NotEmpty(t, stack)
	return stack[len(stack)-1]
}

func TestEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int32
	}{
		{
			name:   "return literal zero",
			source: `main: () -> i32 { return 0; }`,
			want:   0,
		},
		{
			name:   "two locals summed plus one",
			source: `main: () -> i32 { x: i32 = 3; y: i32 = 4; return x + y + 1; }`,
			want:   8,
		},
		{
			name: "chained function calls",
			source: `
				add: (a: i32, b: i32) -> i32 { return a + b; }
				main: () -> i32 { x: i32 = add(1, 2); y: i32 = add(x, 3); return y; }
			`,
			want: 6,
		},
		{
			name:   "multiplicative binds tighter than additive",
			source: `main: () -> i32 { x: i32 = 2 * 3 + 4; return x; }`,
			want:   10,
		},
		{
			name:   "assignment overwrites a local in place",
			source: `main: () -> i32 { x: i32 = 5; x = x + 1; return x; }`,
			want:   6,
		},
		{
			name:   "parenthesised expression changes precedence",
			source: `main: () -> i32 { return (1 + 2) * 3; }`,
			want:   9,
		},
		{
			name: "calls nested in argument position",
			source: `
				add: (a: i32, b: i32) -> i32 { return a + b; }
				main: () -> i32 { return add(add(1, 2), add(3, 4)); }
			`,
			want: 10,
		},
		{
			name:   "subtraction is left minus right",
			source: `main: () -> i32 { return 2 - 3; }`,
			want:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack := runSource(t, tt.source)
			require.Equal(t, tt.want, topOfStack(t, stack))
		})
	}
}

func TestCompileMissingMainFails(t *testing.T) {
	tokens, err := lexer.New(`f: () -> i32 { return 1; }`).Scan()
	require.NoError(t, err)
	program, err := parser.Parse(tokens)
	require.NoError(t, err)

	_, err = compiler.Compile(program)
	require.Error(t, err)
	require.IsType(t, compiler.SemanticError{}, err)
}

func TestCompileUndefinedVariableFails(t *testing.T) {
	tokens, err := lexer.New(`main: () -> i32 { return x; }`).Scan()
	require.NoError(t, err)
	program, err := parser.Parse(tokens)
	require.NoError(t, err)

	_, err = compiler.Compile(program)
	require.Error(t, err)
}

func TestCompileRedeclarationInSameBlockFails(t *testing.T) {
	tokens, err := lexer.New(`main: () -> i32 { x: i32 = 1; x: i32 = 2; return x; }`).Scan()
	require.NoError(t, err)
	program, err := parser.Parse(tokens)
	require.NoError(t, err)

	_, err = compiler.Compile(program)
	require.Error(t, err)
}

func TestCompileIfStatementIsUnsupported(t *testing.T) {
	tokens, err := lexer.New(`main: () -> i32 { if (1) { return 1; } return 0; }`).Scan()
	require.NoError(t, err)
	program, err := parser.Parse(tokens)
	require.NoError(t, err)

	_, err = compiler.Compile(program)
	require.Error(t, err)
}

func TestCompileDeterminism(t *testing.T) {
	source := `main: () -> i32 { x: i32 = 2 * 3 + 4; return x; }`
	tokens, err := lexer.New(source).Scan()
	require.NoError(t, err)

	programA, err := parser.Parse(tokens)
	require.NoError(t, err)
	programB, err := parser.Parse(tokens)
	require.NoError(t, err)

	instructionsA, err := compiler.Compile(programA)
	require.NoError(t, err)
	instructionsB, err := compiler.Compile(programB)
	require.NoError(t, err)

	require.Equal(t, instructionsA, instructionsB)
}
