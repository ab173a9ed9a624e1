package compiler

// Binding is a compile-time association between an identifier and the
// absolute offset, from the bottom of the predicted runtime stack, of
// the value it refers to. A binding's offset never changes once
// created; callers needing its distance from the current top must
// combine it with the table's current depth.
type Binding struct {
	Identifier           string
	AbsoluteBottomOffset int
}

// block is one frame of the stack-binding table: the net growth of the
// runtime stack its own instructions cause, plus the bindings it owns.
type block struct {
	size     int
	bindings []Binding
}

// BindingTable is the compiler's single, shared stack-binding table: a
// stack of blocks threaded through the entire compile, top-level
// statements and every deferred function body alike. Exiting a block
// drops all of its bindings in one step by discarding the block record.
// The invariant "sum(block.size) == depth" is maintained by Grow, which
// every instruction emission calls.
type BindingTable struct {
	blocks []*block
	depth  int
}

// NewBindingTable returns a table seeded with the implicit top-level block.
func NewBindingTable() *BindingTable {
	return &BindingTable{blocks: []*block{{}}}
}

// PushBlock opens a new binding scope.
func (t *BindingTable) PushBlock() {
	t.blocks = append(t.blocks, &block{})
}

// PopBlock closes the current scope, removing its bindings and
// reverting depth by its net growth. It returns that growth, the
// number of stack slots a POP would need to discard to undo it.
func (t *BindingTable) PopBlock() int {
	top := t.blocks[len(t.blocks)-1]
	t.blocks = t.blocks[:len(t.blocks)-1]
	t.depth -= top.size
	return top.size
}

// Grow applies an instruction's stack delta to both the innermost
// block's size and the table's predicted depth. No-op instructions
// (SWAP, HALT, NOT, NEGATE) call this with 0.
func (t *BindingTable) Grow(delta int32) {
	t.blocks[len(t.blocks)-1].size += int(delta)
	t.depth += int(delta)
}

// Declare binds identifier to the table's current depth, on the
// assumption that the value it refers to was just pushed (so it sits
// at depth-1). It is also used, with a preceding manual Grow, to bind
// function parameters that the caller pushed rather than this pass.
func (t *BindingTable) Declare(identifier string) Binding {
	binding := Binding{Identifier: identifier, AbsoluteBottomOffset: t.depth - 1}
	top := t.blocks[len(t.blocks)-1]
	top.bindings = append(top.bindings, binding)
	return binding
}

// DeclaredInCurrentBlock reports whether identifier already has a
// binding in the innermost block, for redeclaration checks.
func (t *BindingTable) DeclaredInCurrentBlock(identifier string) bool {
	top := t.blocks[len(t.blocks)-1]
	for _, binding := range top.bindings {
		if binding.Identifier == identifier {
			return true
		}
	}
	return false
}

// Resolve searches blocks from innermost to outermost for identifier.
func (t *BindingTable) Resolve(identifier string) (Binding, bool) {
	for i := len(t.blocks) - 1; i >= 0; i-- {
		bindings := t.blocks[i].bindings
		for j := len(bindings) - 1; j >= 0; j-- {
			if bindings[j].Identifier == identifier {
				return bindings[j], true
			}
		}
	}
	return Binding{}, false
}

// Depth returns the current predicted runtime stack depth.
func (t *BindingTable) Depth() int {
	return t.depth
}

// TopRelativeOffset converts binding's absolute offset into the
// distance from the current top of the stack, as DUP/SWAP expect.
func (t *BindingTable) TopRelativeOffset(binding Binding) int {
	return (t.depth - 1) - binding.AbsoluteBottomOffset
}
