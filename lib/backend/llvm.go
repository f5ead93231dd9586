// Package backend lowers translated stack machine programs to LLVM IR.
//
// Every symbol becomes an i64 global and the value stack is a global array
// indexed by a global stack pointer. Each instruction gets its own basic block
// so jump targets map directly onto blocks; index len+1 is the exit block.
package backend

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/vyPal/ratc/lib/compiler"
)

// StackDepth is the number of i64 slots reserved for the value stack.
const StackDepth = 1024

// Error reports an instruction that cannot be lowered.
type Error struct {
	Instruction compiler.Instruction
	Msg         string
}

func (e *Error) Error() string {
	return fmt.Sprintf("instruction %s: %s", e.Instruction, e.Msg)
}

var (
	zero = constant.NewInt(types.I64, 0)
	one  = constant.NewInt(types.I64, 1)
)

var predicates = map[compiler.Opcode]enum.IPred{
	compiler.LES: enum.IPredSLT,
	compiler.GRT: enum.IPredSGT,
	compiler.LEQ: enum.IPredSLE,
	compiler.GEQ: enum.IPredSGE,
	compiler.NEQ: enum.IPredNE,
}

type lowering struct {
	module *ir.Module
	stack  *ir.Global
	sp     *ir.Global
	format *ir.Global
	printf *ir.Func
	memory map[int]*ir.Global
	blocks []*ir.Block
	exit   *ir.Block
}

// Lower builds a module whose main function behaves like the program.
func Lower(prog *compiler.Program) (*ir.Module, error) {
	l := &lowering{
		module: ir.NewModule(),
		memory: make(map[int]*ir.Global),
	}
	l.declareRuntime()
	for _, sym := range prog.Symbols {
		l.memory[sym.Address] = l.module.NewGlobalDef("mem."+sym.Name, constant.NewInt(types.I64, 0))
	}

	fn := l.module.NewFunc("main", types.I32)
	entry := fn.NewBlock("entry")
	for i, ins := range prog.Instructions {
		if ins.Index != i+1 {
			return nil, &Error{Instruction: ins, Msg: fmt.Sprintf("expected index %d", i+1)}
		}
		l.blocks = append(l.blocks, fn.NewBlock(fmt.Sprintf("i%d", ins.Index)))
	}
	l.exit = fn.NewBlock("exit")
	l.exit.NewRet(constant.NewInt(types.I32, 0))
	entry.NewBr(l.block(1))

	for i, ins := range prog.Instructions {
		if err := l.lower(ins, l.blocks[i]); err != nil {
			return nil, err
		}
	}
	if err := checkStack(prog.Instructions); err != nil {
		return nil, err
	}
	return l.module, nil
}

// stackEffect returns how many values ins pops and how many it pushes.
func stackEffect(op compiler.Opcode) (pops, pushes int) {
	switch op {
	case compiler.PUSHI, compiler.PUSHM:
		return 0, 1
	case compiler.POPM, compiler.STDOUT, compiler.JUMPZ:
		return 1, 0
	case compiler.JUMP:
		return 0, 0
	default:
		return 2, 1
	}
}

// checkStack follows every path through the instructions and fails if one
// pops an empty stack, pushes past StackDepth, or reaches an instruction with
// a different depth than another path. Instructions must already be lowered,
// so operands and jump targets are known to be valid.
func checkStack(code []compiler.Instruction) error {
	depth := make([]int, len(code)+2)
	for i := range depth {
		depth[i] = -1
	}
	depth[1] = 0
	work := []int{1}

	for len(work) > 0 {
		index := work[len(work)-1]
		work = work[:len(work)-1]
		if index == len(code)+1 {
			continue
		}
		ins := code[index-1]

		pops, pushes := stackEffect(ins.Op)
		if depth[index] < pops {
			return &Error{Instruction: ins, Msg: fmt.Sprintf("stack underflow: pops %d value(s) with %d on the stack", pops, depth[index])}
		}
		after := depth[index] - pops + pushes
		if after > StackDepth {
			return &Error{Instruction: ins, Msg: "stack overflow"}
		}

		var succ []int
		switch ins.Op {
		case compiler.JUMP:
			succ = []int{*ins.Operand}
		case compiler.JUMPZ:
			succ = []int{*ins.Operand, index + 1}
		default:
			succ = []int{index + 1}
		}
		for _, s := range succ {
			switch depth[s] {
			case -1:
				depth[s] = after
				work = append(work, s)
			case after:
			default:
				return &Error{Instruction: ins, Msg: fmt.Sprintf("stack depth %d at instruction %d, %d on another path", after, s, depth[s])}
			}
		}
	}
	return nil
}

func (l *lowering) declareRuntime() {
	l.stack = l.module.NewGlobalDef("rat.stack", constant.NewZeroInitializer(types.NewArray(StackDepth, types.I64)))
	l.sp = l.module.NewGlobalDef("rat.sp", zero)

	l.format = l.module.NewGlobalDef("rat.fmt", constant.NewCharArrayFromString("%d\n\x00"))
	l.format.Immutable = true

	l.printf = l.module.NewFunc("printf", types.I32, ir.NewParam("format", types.NewPointer(types.I8)))
	l.printf.Sig.Variadic = true
}

// block returns the block for an instruction index; one past the last
// instruction is the exit block.
func (l *lowering) block(index int) *ir.Block {
	if index == len(l.blocks)+1 {
		return l.exit
	}
	return l.blocks[index-1]
}

func (l *lowering) lower(ins compiler.Instruction, b *ir.Block) error {
	next := l.block(ins.Index + 1)

	switch ins.Op {
	case compiler.PUSHI:
		if ins.Operand == nil {
			return &Error{Instruction: ins, Msg: "missing operand"}
		}
		l.push(b, constant.NewInt(types.I64, int64(*ins.Operand)))
		b.NewBr(next)
	case compiler.PUSHM:
		g, err := l.global(ins)
		if err != nil {
			return err
		}
		l.push(b, b.NewLoad(types.I64, g))
		b.NewBr(next)
	case compiler.POPM:
		g, err := l.global(ins)
		if err != nil {
			return err
		}
		b.NewStore(l.pop(b), g)
		b.NewBr(next)
	case compiler.STDOUT:
		format := constant.NewGetElementPtr(l.format.ContentType, l.format, zero, zero)
		b.NewCall(l.printf, format, l.pop(b))
		b.NewBr(next)
	case compiler.JUMP:
		target, err := l.target(ins)
		if err != nil {
			return err
		}
		b.NewBr(target)
	case compiler.JUMPZ:
		target, err := l.target(ins)
		if err != nil {
			return err
		}
		cond := b.NewICmp(enum.IPredEQ, l.pop(b), zero)
		b.NewCondBr(cond, target, next)
	case compiler.ADD, compiler.SUB, compiler.MUL, compiler.DIV:
		right := l.pop(b)
		left := l.pop(b)
		var v value.Value
		switch ins.Op {
		case compiler.ADD:
			v = b.NewAdd(left, right)
		case compiler.SUB:
			v = b.NewSub(left, right)
		case compiler.MUL:
			v = b.NewMul(left, right)
		default:
			v = b.NewSDiv(left, right)
		}
		l.push(b, v)
		b.NewBr(next)
	case compiler.LES, compiler.GRT, compiler.LEQ, compiler.GEQ, compiler.NEQ:
		right := l.pop(b)
		left := l.pop(b)
		cmp := b.NewICmp(predicates[ins.Op], left, right)
		l.push(b, b.NewZExt(cmp, types.I64))
		b.NewBr(next)
	default:
		return &Error{Instruction: ins, Msg: "unknown opcode"}
	}
	return nil
}

func (l *lowering) global(ins compiler.Instruction) (*ir.Global, error) {
	if ins.Operand == nil {
		return nil, &Error{Instruction: ins, Msg: "unresolved address"}
	}
	g, ok := l.memory[*ins.Operand]
	if !ok {
		return nil, &Error{Instruction: ins, Msg: fmt.Sprintf("no symbol at address %d", *ins.Operand)}
	}
	return g, nil
}

func (l *lowering) target(ins compiler.Instruction) (*ir.Block, error) {
	if ins.Operand == nil {
		return nil, &Error{Instruction: ins, Msg: "missing jump target"}
	}
	if t := *ins.Operand; t < 1 || t > len(l.blocks)+1 {
		return nil, &Error{Instruction: ins, Msg: fmt.Sprintf("jump target %d out of range", t)}
	}
	return l.block(*ins.Operand), nil
}

func (l *lowering) slot(b *ir.Block, sp value.Value) value.Value {
	return b.NewGetElementPtr(l.stack.ContentType, l.stack, zero, sp)
}

func (l *lowering) push(b *ir.Block, v value.Value) {
	sp := b.NewLoad(types.I64, l.sp)
	b.NewStore(v, l.slot(b, sp))
	b.NewStore(b.NewAdd(sp, one), l.sp)
}

func (l *lowering) pop(b *ir.Block) value.Value {
	sp := b.NewSub(b.NewLoad(types.I64, l.sp), one)
	b.NewStore(sp, l.sp)
	return b.NewLoad(types.I64, l.slot(b, sp))
}
