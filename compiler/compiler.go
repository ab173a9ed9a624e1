// Package compiler lowers a parsed Osprey ast.Program into flat
// bytecode.Instructions. It is an AST visitor that maintains one
// growing instruction buffer and one stack-binding table, shared
// across both compilation passes and every function body.
package compiler

import (
	"fmt"

	"github.com/oddbirdflies/osprey/ast"
	"github.com/oddbirdflies/osprey/bytecode"
	"github.com/oddbirdflies/osprey/token"
)

// pendingFunction is a function declaration whose body compilation was
// deferred to the second pass. operandSlot is the index, within the
// growing instruction buffer, of the PUSH placeholder emitted for it
// in the first pass; once the body's entry point is known it is
// back-patched into that slot.
type pendingFunction struct {
	function    ast.FunctionExpr
	operandSlot int
}

// Compiler lowers a single Program to bytecode.
type Compiler struct {
	instructions bytecode.Instructions
	bindings     *BindingTable
	deferred     []pendingFunction
}

// New returns a Compiler ready to compile a Program.
func New() *Compiler {
	return &Compiler{bindings: NewBindingTable()}
}

// Compile lowers program in two passes. Phase 1 compiles every
// top-level statement; a function declaration emits a PUSH placeholder
// for its entry point and defers its body. After Phase 1, Compile
// emits a synthetic call to `main` followed by HALT. Phase 2 then
// compiles each deferred body in turn, back-patching its entry point
// into the placeholder recorded for it in Phase 1.
func Compile(program ast.Program) (instructions bytecode.Instructions, err error) {
	defer func() {
		if r := recover(); r != nil {
			if compileErr, ok := r.(error); ok {
				err = compileErr
				return
			}
			panic(r)
		}
	}()

	c := New()
	for _, stmt := range program.Statements {
		c.compileTopLevelStmt(stmt)
	}

	mainBinding, ok := c.bindings.Resolve("main")
	if !ok {
		return nil, SemanticError{Message: "program is missing a 'main' function"}
	}
	c.emitCall(mainBinding, nil)
	c.emit(bytecode.HALT)

	// The call accounting above already credits main's return value,
	// but the deferred bodies below execute before that value exists:
	// they are entered at the call site's depth plus the return address
	// and arguments they bind themselves. Drop the phantom slot so
	// main's body resolves top-level bindings at their true offsets.
	c.bindings.Grow(-1)

	for len(c.deferred) > 0 {
		next := c.deferred[0]
		c.deferred = c.deferred[1:]
		entry := int32(len(c.instructions))
		c.instructions[next.operandSlot] = entry
		c.compileFunctionBody(next.function)
	}

	return c.instructions, nil
}

// emit appends op and its operands to the instruction buffer and
// applies the instruction's known stack-depth delta to the binding
// table. It returns the offset the instruction starts at.
func (c *Compiler) emit(op bytecode.Opcode, operands ...int32) int {
	offset := len(c.instructions)
	c.instructions = append(c.instructions, bytecode.Make(op, operands...)...)

	var operand int32
	if len(operands) > 0 {
		operand = operands[0]
	}
	c.bindings.Grow(stackDelta(op, operand))
	return offset
}

// stackDelta is the net number of stack slots op leaves behind: PUSH
// and DUP each add one, POP n subtracts n, the binary arithmetic and
// relational opcodes and JMP subtract one, and the rest (NOT, NEGATE,
// SWAP, HALT) never change depth.
func stackDelta(op bytecode.Opcode, operand int32) int32 {
	switch op {
	case bytecode.PUSH, bytecode.DUP, bytecode.LOAD:
		return 1
	case bytecode.POP:
		return -operand
	case bytecode.ADD, bytecode.MUL, bytecode.LT, bytecode.JMP, bytecode.JZ, bytecode.STORE:
		return -1
	default: // NOT, NEGATE, SWAP, HALT
		return 0
	}
}

// compileTopLevelStmt handles the one form Phase 1 treats specially: a
// function declaration, which binds its name immediately but defers
// its body to Phase 2. Every other statement compiles exactly as it
// would inside a block.
func (c *Compiler) compileTopLevelStmt(stmt ast.Stmt) {
	decl, ok := stmt.(ast.FunctionDecl)
	if !ok {
		c.compileStmt(stmt)
		return
	}

	if c.bindings.DeclaredInCurrentBlock(decl.Identifier) {
		panic(SemanticError{Message: fmt.Sprintf("'%s' is already declared in this scope", decl.Identifier)})
	}

	slot := c.emit(bytecode.PUSH, 0) + 1
	c.bindings.Declare(decl.Identifier)
	c.deferred = append(c.deferred, pendingFunction{function: decl.Function, operandSlot: slot})
}

// compileStmt compiles one statement so that it leaves the predicted
// stack depth unchanged, except VariableDecl, which leaves exactly one
// new value (the binding it declares), and Return, which leaves
// exactly one value (the function's result).
func (c *Compiler) compileStmt(stmt ast.Stmt) {
	switch node := stmt.(type) {
	case ast.VariableDecl:
		if c.bindings.DeclaredInCurrentBlock(node.Identifier) {
			panic(SemanticError{Message: fmt.Sprintf("'%s' is already declared in this block", node.Identifier)})
		}
		c.compileExpr(node.Initializer)
		c.bindings.Declare(node.Identifier)

	case ast.Assignment:
		binding, ok := c.bindings.Resolve(node.Identifier)
		if !ok {
			panic(SemanticError{Message: fmt.Sprintf("undefined variable '%s'", node.Identifier)})
		}
		c.compileExpr(node.Value)
		c.emit(bytecode.SWAP, int32(c.bindings.TopRelativeOffset(binding)))
		c.emit(bytecode.POP, 1)

	case ast.Return:
		c.compileExpr(node.Value)

	case ast.Block:
		c.compileBlock(node)

	case ast.If:
		panic(SemanticError{Message: "'if' statements are not supported by the canonical compiler"})

	case ast.FunctionDecl:
		panic(SemanticError{Message: "nested function declarations are not supported"})

	default:
		panic(DeveloperError{Message: fmt.Sprintf("unhandled statement node %T", stmt)})
	}
}

// compileBlock compiles an ordinary nested block: its own binding
// scope, collapsed with a single POP of its net growth on exit. This
// path is reserved for a future `if` implementation; the canonical
// compiler never reaches it today because If always fails first.
func (c *Compiler) compileBlock(block ast.Block) {
	c.bindings.PushBlock()
	for _, stmt := range block.Statements {
		c.compileStmt(stmt)
	}
	size := c.bindings.PopBlock()
	c.emit(bytecode.POP, int32(size))
}

// compileExpr compiles expr so that it leaves exactly one new value on
// top of the stack.
func (c *Compiler) compileExpr(expr ast.Expr) {
	switch node := expr.(type) {
	case ast.Literal:
		c.emit(bytecode.PUSH, node.Value)

	case ast.Variable:
		binding, ok := c.bindings.Resolve(node.Identifier)
		if !ok {
			panic(SemanticError{Message: fmt.Sprintf("undefined variable '%s'", node.Identifier)})
		}
		c.emit(bytecode.DUP, int32(c.bindings.TopRelativeOffset(binding)))

	case ast.UnaryExpr:
		c.compileExpr(node.Operand)
		switch node.Op {
		case token.Exclamation:
			c.emit(bytecode.NOT)
		case token.Minus:
			c.emit(bytecode.NEGATE)
		default:
			panic(SemanticError{Message: fmt.Sprintf("unsupported unary operator %q", node.Op)})
		}

	case ast.BinaryExpr:
		c.compileBinaryExpr(node)

	case ast.FunctionCall:
		binding, ok := c.bindings.Resolve(node.Identifier)
		if !ok {
			panic(SemanticError{Message: fmt.Sprintf("undefined function '%s'", node.Identifier)})
		}
		c.emitCall(binding, node.Args)

	case ast.FunctionExpr:
		panic(SemanticError{Message: "function expressions are only supported as a declaration's initializer"})

	default:
		panic(DeveloperError{Message: fmt.Sprintf("unhandled expression node %T", expr)})
	}
}

// compileBinaryExpr lowers the three supported binary operators. There
// is no subtract opcode: `a - b` compiles as `a`, `b`, NEGATE, ADD, so
// that the VM's single ADD handler covers both.
func (c *Compiler) compileBinaryExpr(node ast.BinaryExpr) {
	c.compileExpr(node.Left)
	c.compileExpr(node.Right)

	switch node.Op {
	case token.Plus:
		c.emit(bytecode.ADD)
	case token.Minus:
		c.emit(bytecode.NEGATE)
		c.emit(bytecode.ADD)
	case token.Asterisk:
		c.emit(bytecode.MUL)
	case token.Lt:
		c.emit(bytecode.LT)
	default:
		panic(SemanticError{Message: fmt.Sprintf("unsupported operator %q", node.Op)})
	}
}

// emitCall lowers a call to the function bound by binding: PUSH a
// return-address placeholder, evaluate each argument left to right,
// DUP the function's own slot to fetch its entry point, then JMP. By
// the time control reaches the instruction right after this JMP, the
// callee's epilogue will have collapsed the return address, arguments,
// and duplicated entry point down to a single return value; the
// binding table cannot see that collapse happen (it occurs in code
// compiled elsewhere, perhaps earlier, perhaps later), so it is applied
// here as a manual correction once the call sequence itself is emitted.
func (c *Compiler) emitCall(binding Binding, args []ast.Expr) {
	pushOffset := c.emit(bytecode.PUSH, 0)

	for _, arg := range args {
		c.compileExpr(arg)
	}

	entryOffset := int32(c.bindings.TopRelativeOffset(binding))
	c.emit(bytecode.DUP, entryOffset)
	c.emit(bytecode.JMP)

	c.bindings.Grow(-int32(len(args)))

	returnAddr := int32(len(c.instructions))
	c.instructions[pushOffset+1] = returnAddr
}

// compileFunctionBody compiles one deferred function: it binds the
// (unnamed) return address and each parameter at the current predicted
// depth, on the understanding that the caller already pushed them;
// compiles every statement but the last, which must be a Return; and
// emits the calling convention's epilogue unconditionally (SWAP 0 and
// POP 0 are no-ops, so a zero-parameter, zero-local function still
// compiles correctly without special-casing the emission).
func (c *Compiler) compileFunctionBody(function ast.FunctionExpr) {
	params := function.Signature.Parameters

	c.bindings.PushBlock()
	c.bindings.Grow(1) // the return address the caller pushed
	for _, param := range params {
		c.bindings.Grow(1)
		c.bindings.Declare(param.Identifier)
	}

	statements := function.Body.Statements
	if len(statements) == 0 {
		panic(SemanticError{Message: "function body has no statements"})
	}
	for _, stmt := range statements[:len(statements)-1] {
		c.compileStmt(stmt)
	}
	returnStmt, ok := statements[len(statements)-1].(ast.Return)
	if !ok {
		panic(SemanticError{Message: "function body must end with a return statement"})
	}

	frameSize := c.currentFrameSize()
	c.compileExpr(returnStmt.Value)

	c.emit(bytecode.SWAP, int32(frameSize))
	c.emit(bytecode.POP, int32(frameSize))
	c.emit(bytecode.SWAP, 1)
	c.emit(bytecode.JMP)

	c.bindings.PopBlock()
}

// currentFrameSize reports the number of parameter and local slots the
// innermost function frame owns, excluding the return address.
func (c *Compiler) currentFrameSize() int {
	return c.bindings.blocks[len(c.bindings.blocks)-1].size - 1
}
