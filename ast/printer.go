package ast

import (
	"fmt"
	"strings"
)

const indentUnit = "    "

// Printer renders a Program as the indented-text AST dump: one node per
// line, nested children indented by four spaces per depth. It is a
// concrete struct rather than an interface since there is exactly one
// dump format and no alternate renderings to select between.
type Printer struct {
	out strings.Builder
}

// Print returns the dump text for program.
func Print(program Program) string {
	p := &Printer{}
	p.writeLine(0, "program_declaration")
	for _, stmt := range program.Statements {
		p.printStmt(1, stmt)
	}
	return p.out.String()
}

func (p *Printer) writeLine(depth int, text string) {
	p.out.WriteString(strings.Repeat(indentUnit, depth))
	p.out.WriteString(text)
	p.out.WriteString("\n")
}

func (p *Printer) printStmt(depth int, stmt Stmt) {
	switch node := stmt.(type) {
	case Block:
		p.writeLine(depth, "block")
		for _, s := range node.Statements {
			p.printStmt(depth+1, s)
		}
	case VariableDecl:
		p.writeLine(depth, fmt.Sprintf("variable_declaration (%s, %s)", node.Identifier, TypeString(node.Type)))
		p.printExpr(depth+1, node.Initializer)
	case Assignment:
		p.writeLine(depth, "assignment_statement")
		p.writeLine(depth+1, fmt.Sprintf("variable (%s)", node.Identifier))
		p.printExpr(depth+1, node.Value)
	case If:
		p.writeLine(depth, "if_statement")
		p.printExpr(depth+1, node.Predicate)
		p.printStmt(depth+1, node.True)
	case Return:
		p.writeLine(depth, "return_statement")
		p.printExpr(depth+1, node.Value)
	case FunctionDecl:
		p.writeLine(depth, fmt.Sprintf("function_declaration (%q)", node.Identifier))
		p.printStmt(depth+1, node.Function.Body)
	default:
		p.writeLine(depth, fmt.Sprintf("unknown_statement (%T)", node))
	}
}

func (p *Printer) printExpr(depth int, expr Expr) {
	switch node := expr.(type) {
	case Literal:
		p.writeLine(depth, fmt.Sprintf("literal (%s, %d)", TypeString(node.Type), node.Value))
	case Variable:
		p.writeLine(depth, fmt.Sprintf("variable (%s)", node.Identifier))
	case UnaryExpr:
		p.writeLine(depth, "unary_expression")
		p.writeLine(depth+1, string(node.Op))
		p.printExpr(depth+1, node.Operand)
	case BinaryExpr:
		p.writeLine(depth, "binary_expression")
		p.writeLine(depth+1, string(node.Op))
		p.printExpr(depth+1, node.Left)
		p.printExpr(depth+1, node.Right)
	case FunctionCall:
		p.writeLine(depth, fmt.Sprintf("function_call (%s)", node.Identifier))
		for _, arg := range node.Args {
			p.printExpr(depth+1, arg)
		}
	default:
		p.writeLine(depth, fmt.Sprintf("unknown_expression (%T)", node))
	}
}
