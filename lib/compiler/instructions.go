package compiler

import (
	"fmt"
	"strconv"
)

type Opcode string

const (
	PUSHI  Opcode = "PUSHI"
	PUSHM  Opcode = "PUSHM"
	POPM   Opcode = "POPM"
	JUMP   Opcode = "JUMP"
	JUMPZ  Opcode = "JUMPZ"
	STDOUT Opcode = "STDOUT"

	// Arithmetic and comparison, emitted only with Options.Arithmetic.
	ADD Opcode = "ADD"
	SUB Opcode = "SUB"
	MUL Opcode = "MUL"
	DIV Opcode = "DIV"
	LES Opcode = "LES"
	GRT Opcode = "GRT"
	LEQ Opcode = "LEQ"
	GEQ Opcode = "GEQ"
	NEQ Opcode = "NEQ"
)

// operators maps source operators to the opcode that combines the two values
// on top of the stack.
var operators = map[string]Opcode{
	"+":  ADD,
	"-":  SUB,
	"*":  MUL,
	"/":  DIV,
	"<":  LES,
	">":  GRT,
	"<=": LEQ,
	">=": GEQ,
	"!=": NEQ,
}

// Instruction is one stack machine instruction. Operand is nil when the
// instruction takes none, or when it names an unresolved identifier.
type Instruction struct {
	Index   int    `json:"index"`
	Op      Opcode `json:"op"`
	Operand *int   `json:"operand"`
}

// OperandString renders the operand, empty when absent.
func (i Instruction) OperandString() string {
	if i.Operand == nil {
		return ""
	}
	return strconv.Itoa(*i.Operand)
}

func (i Instruction) String() string {
	if i.Operand == nil {
		return fmt.Sprintf("%d %s", i.Index, i.Op)
	}
	return fmt.Sprintf("%d %s %d", i.Index, i.Op, *i.Operand)
}

// InstructionList is an append-only sequence numbered from 1.
type InstructionList struct {
	code []Instruction
}

// Next returns the index the next emitted instruction will get.
func (l *InstructionList) Next() int {
	return len(l.code) + 1
}

// Emit appends an instruction and returns its index.
func (l *InstructionList) Emit(op Opcode, operand *int) int {
	idx := l.Next()
	l.code = append(l.code, Instruction{Index: idx, Op: op, Operand: operand})
	return idx
}

// Patch sets the operand of the instruction at index.
func (l *InstructionList) Patch(index, operand int) {
	l.code[index-1].Operand = &operand
}

func (l *InstructionList) At(index int) Instruction {
	return l.code[index-1]
}

func (l *InstructionList) Len() int {
	return len(l.code)
}

// Instructions returns a copy of the list in emission order.
func (l *InstructionList) Instructions() []Instruction {
	out := make([]Instruction, len(l.code))
	for i, ins := range l.code {
		if ins.Operand != nil {
			v := *ins.Operand
			ins.Operand = &v
		}
		out[i] = ins
	}
	return out
}

func intp(v int) *int {
	return &v
}
