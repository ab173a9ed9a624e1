package parser

import (
	"testing"

	"github.com/oddbirdflies/osprey/ast"
	"github.com/oddbirdflies/osprey/lexer"
)

func parseSource(t *testing.T, source string) ast.Program {
	t.Helper()
	tokens, err := lexer.New(source).Scan()
	if err != nil {
		t.Fatalf("Scan(%q) error: %v", source, err)
	}
	program, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", source, err)
	}
	return program
}

func TestParseMainReturningZero(t *testing.T) {
	program := parseSource(t, `main: () -> i32 { return 0; }`)

	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	decl, ok := program.Statements[0].(ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected FunctionDecl, got %T", program.Statements[0])
	}
	if decl.Identifier != "main" {
		t.Errorf("decl.Identifier = %q, want main", decl.Identifier)
	}
	if len(decl.Function.Body.Statements) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(decl.Function.Body.Statements))
	}
	if _, ok := decl.Function.Body.Statements[0].(ast.Return); !ok {
		t.Errorf("expected Return, got %T", decl.Function.Body.Statements[0])
	}
}

func TestParseVariableDeclAndAdditiveAssociativity(t *testing.T) {
	program := parseSource(t, `main: () -> i32 { x: i32 = 2 * 3 + 4; return x; }`)

	decl := program.Statements[0].(ast.FunctionDecl)
	varDecl := decl.Function.Body.Statements[0].(ast.VariableDecl)
	if varDecl.Identifier != "x" {
		t.Fatalf("varDecl.Identifier = %q, want x", varDecl.Identifier)
	}

	binary, ok := varDecl.Initializer.(ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected top-level BinaryExpr, got %T", varDecl.Initializer)
	}
	if binary.Op != "+" {
		t.Errorf("top level operator = %q, want +", binary.Op)
	}
	left, ok := binary.Left.(ast.BinaryExpr)
	if !ok || left.Op != "*" {
		t.Errorf("left operand should be a '*' BinaryExpr, got %#v", binary.Left)
	}
}

func TestParseFunctionCallChain(t *testing.T) {
	program := parseSource(t, `
		add: (a: i32, b: i32) -> i32 { return a + b; }
		main: () -> i32 { x: i32 = add(1, 2); y: i32 = add(x, 3); return y; }
	`)

	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(program.Statements))
	}

	add := program.Statements[0].(ast.FunctionDecl)
	if len(add.Function.Signature.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(add.Function.Signature.Parameters))
	}

	main := program.Statements[1].(ast.FunctionDecl)
	firstDecl := main.Function.Body.Statements[0].(ast.VariableDecl)
	call, ok := firstDecl.Initializer.(ast.FunctionCall)
	if !ok {
		t.Fatalf("expected FunctionCall, got %T", firstDecl.Initializer)
	}
	if call.Identifier != "add" || len(call.Args) != 2 {
		t.Errorf("call = %+v, want add(_, _)", call)
	}
}

func TestParseAssignmentStatement(t *testing.T) {
	program := parseSource(t, `main: () -> i32 { x: i32 = 5; x = x + 1; return x; }`)

	main := program.Statements[0].(ast.FunctionDecl)
	assign, ok := main.Function.Body.Statements[1].(ast.Assignment)
	if !ok {
		t.Fatalf("expected Assignment, got %T", main.Function.Body.Statements[1])
	}
	if assign.Identifier != "x" {
		t.Errorf("assign.Identifier = %q, want x", assign.Identifier)
	}
}

func TestParseParenthesizedExpression(t *testing.T) {
	program := parseSource(t, `main: () -> i32 { return (1 + 2) * 3; }`)

	main := program.Statements[0].(ast.FunctionDecl)
	ret := main.Function.Body.Statements[0].(ast.Return)
	binary, ok := ret.Value.(ast.BinaryExpr)
	if !ok || binary.Op != "*" {
		t.Fatalf("expected top-level '*' BinaryExpr, got %#v", ret.Value)
	}
	if _, ok := binary.Left.(ast.BinaryExpr); !ok {
		t.Errorf("left operand should be the parenthesised '+' expression, got %#v", binary.Left)
	}
}

func TestParseEmptyParensIsFunctionExpr(t *testing.T) {
	program := parseSource(t, `f: () -> i32 { return 1; }`)
	decl := program.Statements[0].(ast.FunctionDecl)
	if len(decl.Function.Signature.Parameters) != 0 {
		t.Errorf("expected 0 parameters, got %d", len(decl.Function.Signature.Parameters))
	}
}

func TestParseMissingSemicolonFails(t *testing.T) {
	tokens, err := lexer.New(`main: () -> i32 { return 0 }`).Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if _, err := Parse(tokens); err == nil {
		t.Fatalf("expected a parse error for missing ';'")
	}
}
