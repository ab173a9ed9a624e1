// Package ast defines the Osprey abstract syntax tree. Expressions and
// statements are each a tagged sum type: a small interface with an
// unexported marker method, and one concrete struct per node shape,
// dispatched by type switch rather than the visitor pattern.
package ast

// Type classifies the value (or absence of one) produced by an
// expression or bound by a declaration. Bool, I32, and F32 are scalar
// leaves; Function is recursive over its parameter and return types.
type Type interface {
	typeNode()
}

// BoolType is the boolean scalar type. Reserved but unused end-to-end.
type BoolType struct{}

// I32Type is the 32-bit signed integer scalar type.
type I32Type struct{}

// F32Type is the 32-bit float scalar type. Reserved but unused:
// no literal in the canonical lexer ever produces it.
type F32Type struct{}

// FunctionType is the type of a function value: an ordered parameter
// type list and a single return type.
type FunctionType struct {
	Parameters []Type
	Return     Type
}

func (BoolType) typeNode()     {}
func (I32Type) typeNode()      {}
func (F32Type) typeNode()      {}
func (FunctionType) typeNode() {}

// Param names one parameter of a function declaration: an identifier
// paired with its type.
type Param struct {
	Identifier string
	Type       Type
}

// FunctionSignature carries a function declaration's parameter
// identifiers (not just their types) alongside its return type, for use
// at declaration sites where parameter names must be bound.
type FunctionSignature struct {
	Parameters []Param
	ReturnType Type
}

// TypeString renders t the way the AST dump and diagnostics format
// types: "i32", "bool", "f32", or "(p0, p1) -> r" for functions.
func TypeString(t Type) string {
	switch typed := t.(type) {
	case nil:
		return ""
	case BoolType:
		return "bool"
	case I32Type:
		return "i32"
	case F32Type:
		return "f32"
	case FunctionType:
		return functionTypeString(typed)
	default:
		return "?"
	}
}

func functionTypeString(function FunctionType) string {
	out := "("
	for i, param := range function.Parameters {
		if i > 0 {
			out += ", "
		}
		out += TypeString(param)
	}
	out += ") -> " + TypeString(function.Return)
	return out
}
