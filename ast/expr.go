package ast

import "github.com/oddbirdflies/osprey/token"

// Expr is the tagged sum of every expression node. An expression always
// evaluates to a single value.
type Expr interface {
	exprNode()
}

// Literal is an integer literal (the canonical lexer never produces an
// F32 literal, so Type is I32 in every program the test suite exercises).
type Literal struct {
	Type  Type
	Value int32
}

// Variable reads the value currently bound to Identifier.
type Variable struct {
	Identifier string
}

// UnaryExpr applies a prefix operator (`!` or `-`) to Operand.
type UnaryExpr struct {
	Op      token.TokenType
	Operand Expr
}

// BinaryExpr applies an infix operator to Left and Right.
type BinaryExpr struct {
	Op    token.TokenType
	Left  Expr
	Right Expr
}

// FunctionCall invokes the function bound to Identifier with Args
// evaluated left to right.
type FunctionCall struct {
	Identifier string
	Args       []Expr
}

// FunctionExpr is a function literal: its parameter list, declared
// return type, and body. The parser also accepts one in expression
// position, but the compiler only compiles it as the value side of a
// FunctionDecl and rejects it anywhere else.
type FunctionExpr struct {
	Signature FunctionSignature
	Body      Block
}

func (Literal) exprNode()      {}
func (Variable) exprNode()     {}
func (UnaryExpr) exprNode()    {}
func (BinaryExpr) exprNode()   {}
func (FunctionCall) exprNode() {}
func (FunctionExpr) exprNode() {}
