package compiler

import (
	"bufio"
	"fmt"
	"io"
)

const (
	symbolTableHeader      = "Symbol Table"
	instructionTableHeader = "Instruction Table"
)

// WriteSymbolTable writes one tab separated line per symbol under a header.
func WriteSymbolTable(w io.Writer, symbols []Symbol) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, symbolTableHeader)
	for _, s := range symbols {
		fmt.Fprintf(bw, "%s\t%d\t%s\n", s.Name, s.Address, s.Type)
	}
	return bw.Flush()
}

// WriteInstructionTable writes one tab separated line per instruction under a
// header. Missing operands leave the last field empty.
func WriteInstructionTable(w io.Writer, instructions []Instruction) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, instructionTableHeader)
	for _, ins := range instructions {
		fmt.Fprintf(bw, "%d\t%s\t%s\n", ins.Index, ins.Op, ins.OperandString())
	}
	return bw.Flush()
}

func (p *Program) WriteSymbolTable(w io.Writer) error {
	return WriteSymbolTable(w, p.Symbols)
}

func (p *Program) WriteInstructionTable(w io.Writer) error {
	return WriteInstructionTable(w, p.Instructions)
}
