package bytecode

import "testing"

func TestOpcodeNumericValues(t *testing.T) {
	tests := []struct {
		op   Opcode
		want int32
	}{
		{PUSH, 0}, {POP, 1}, {ADD, 2}, {NOT, 3}, {NEGATE, 4}, {MUL, 5},
		{LOAD, 6}, {STORE, 7}, {LT, 8}, {JZ, 9}, {JMP, 10}, {HALT, 11},
		{SWAP, 12}, {DUP, 13},
	}
	for _, tt := range tests {
		if int32(tt.op) != tt.want {
			t.Errorf("opcode %v = %d, want %d", tt.op, int32(tt.op), tt.want)
		}
	}
}

func TestMakeWithOperand(t *testing.T) {
	instr := Make(PUSH, 7)
	want := Instructions{int32(PUSH), 7}
	if len(instr) != len(want) || instr[0] != want[0] || instr[1] != want[1] {
		t.Errorf("Make(PUSH, 7) = %v, want %v", instr, want)
	}
}

func TestMakeWithoutOperand(t *testing.T) {
	instr := Make(HALT)
	if len(instr) != 1 || instr[0] != int32(HALT) {
		t.Errorf("Make(HALT) = %v, want [%d]", instr, int32(HALT))
	}
}

func TestDisassemble(t *testing.T) {
	program := Instructions{}
	program = append(program, Make(PUSH, 1)...)
	program = append(program, Make(PUSH, 2)...)
	program = append(program, Make(ADD)...)
	program = append(program, Make(HALT)...)

	out := Disassemble(program)
	want := "0000 PUSH 1\n0002 PUSH 2\n0004 ADD\n0005 HALT\n"
	if out != want {
		t.Errorf("Disassemble() = %q, want %q", out, want)
	}
}

func TestGetUnknownOpcode(t *testing.T) {
	if _, err := Get(Opcode(99)); err == nil {
		t.Fatalf("Get(99) should have failed")
	}
}
