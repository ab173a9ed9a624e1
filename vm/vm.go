// Package vm implements the Osprey stack machine: a fetch-decode-execute
// loop over a flat bytecode.Instructions stream, a data stack of 32-bit
// integers, and a fixed-size memory array. There is no separate call
// stack; JMP plus stack-resident return addresses implement the entire
// calling convention (compiler/compiler.go's emitCall/compileFunctionBody).
package vm

import (
	"fmt"

	"github.com/oddbirdflies/osprey/bytecode"
)

// memoryWords is the size of the VM's flat memory array. It exists for
// opcode completeness (LOAD/STORE) — the canonical compiler never emits
// either, so no compiled program actually touches it.
const memoryWords = 1024

// VM is a stack machine that executes a single bytecode.Instructions
// program against its own data stack, memory, and instruction pointer.
type VM struct {
	stack  Stack
	memory [memoryWords]int32
	ip     int
}

// New returns a VM with an empty stack and a zeroed memory array,
// ready to Run a program.
func New() *VM {
	return &VM{}
}

// Stack returns the VM's data stack as it stands after Run returns
// (on success, whatever HALT left behind).
func (vm *VM) Stack() Stack {
	return vm.stack
}

// Run executes program from offset 0 until HALT is decoded, or until a
// RuntimeError is hit. Each iteration fetches one opcode word (and its
// operand word, if the opcode's definition calls for one), advances ip
// past both before dispatch, and updates the stack or ip per the
// opcode's behavior.
func (vm *VM) Run(program bytecode.Instructions) error {
	vm.ip = 0
	for {
		if vm.ip < 0 || vm.ip >= len(program) {
			return RuntimeError{Message: fmt.Sprintf("instruction pointer %d out of range", vm.ip)}
		}

		op := bytecode.Opcode(program[vm.ip])
		def, err := bytecode.Get(op)
		if err != nil {
			return RuntimeError{Message: fmt.Sprintf("unknown opcode %d at offset %d", program[vm.ip], vm.ip)}
		}

		var operand int32
		if def.OperandWords > 0 {
			if vm.ip+1 >= len(program) {
				return RuntimeError{Message: fmt.Sprintf("%s at offset %d is missing its operand word", def.Name, vm.ip)}
			}
			operand = program[vm.ip+1]
		}
		vm.ip += 1 + def.OperandWords

		halted, err := vm.execute(op, operand)
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// execute dispatches a single decoded instruction. It returns true once
// HALT has been handled, signalling Run to stop.
func (vm *VM) execute(op bytecode.Opcode, operand int32) (bool, error) {
	switch op {
	case bytecode.PUSH:
		vm.stack.Push(operand)

	case bytecode.POP:
		for i := int32(0); i < operand; i++ {
			if _, ok := vm.stack.Pop(); !ok {
				return false, RuntimeError{Message: "POP: stack underflow"}
			}
		}

	case bytecode.DUP:
		value, ok := vm.stack.At(operand)
		if !ok {
			return false, RuntimeError{Message: fmt.Sprintf("DUP %d: offset out of range", operand)}
		}
		vm.stack.Push(value)

	case bytecode.SWAP:
		if !vm.stack.SwapWith(operand) {
			return false, RuntimeError{Message: fmt.Sprintf("SWAP %d: offset out of range", operand)}
		}

	case bytecode.ADD:
		right, left, ok := vm.pop2()
		if !ok {
			return false, RuntimeError{Message: "ADD: stack underflow"}
		}
		vm.stack.Push(left + right)

	case bytecode.MUL:
		right, left, ok := vm.pop2()
		if !ok {
			return false, RuntimeError{Message: "MUL: stack underflow"}
		}
		vm.stack.Push(left * right)

	case bytecode.LT:
		right, left, ok := vm.pop2()
		if !ok {
			return false, RuntimeError{Message: "LT: stack underflow"}
		}
		if left < right {
			vm.stack.Push(1)
		} else {
			vm.stack.Push(0)
		}

	case bytecode.NOT:
		value, ok := vm.stack.Pop()
		if !ok {
			return false, RuntimeError{Message: "NOT: stack underflow"}
		}
		if value == 0 {
			vm.stack.Push(1)
		} else {
			vm.stack.Push(0)
		}

	case bytecode.NEGATE:
		value, ok := vm.stack.Pop()
		if !ok {
			return false, RuntimeError{Message: "NEGATE: stack underflow"}
		}
		vm.stack.Push(-value)

	case bytecode.JZ:
		value, ok := vm.stack.Pop()
		if !ok {
			return false, RuntimeError{Message: "JZ: stack underflow"}
		}
		if value == 0 {
			vm.ip = int(operand)
		}

	case bytecode.JMP:
		target, ok := vm.stack.Pop()
		if !ok {
			return false, RuntimeError{Message: "JMP: stack underflow"}
		}
		vm.ip = int(target)

	case bytecode.LOAD:
		if operand < 0 || int(operand) >= memoryWords {
			return false, RuntimeError{Message: fmt.Sprintf("LOAD %d: address out of range", operand)}
		}
		vm.stack.Push(vm.memory[operand])

	case bytecode.STORE:
		value, ok := vm.stack.Pop()
		if !ok {
			return false, RuntimeError{Message: "STORE: stack underflow"}
		}
		if operand < 0 || int(operand) >= memoryWords {
			return false, RuntimeError{Message: fmt.Sprintf("STORE %d: address out of range", operand)}
		}
		vm.memory[operand] = value

	case bytecode.HALT:
		return true, nil

	default:
		return false, RuntimeError{Message: fmt.Sprintf("unknown opcode %d", op)}
	}
	return false, nil
}

// pop2 pops the top two values of the stack. The first return is the
// value that was on top (evaluated/pushed second by the compiler), the
// second is the value below it (pushed first) — i.e. (right, left) for
// any binary expression the compiler emitted.
func (vm *VM) pop2() (right int32, left int32, ok bool) {
	right, ok = vm.stack.Pop()
	if !ok {
		return 0, 0, false
	}
	left, ok = vm.stack.Pop()
	if !ok {
		return 0, 0, false
	}
	return right, left, true
}
