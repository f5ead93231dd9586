package compiler

import (
	"github.com/alecthomas/participle/v2/lexer"
	ratlex "github.com/vyPal/ratc/lib/lexer"
	"github.com/vyPal/ratc/lib/parser"
)

type Options struct {
	// BaseAddress is the address of the first symbol.
	BaseAddress int
	// Strict rejects unrecognized characters and undeclared identifiers.
	Strict bool
	// Arithmetic emits code for binary operators. Without it binary
	// expressions produce no instructions at all.
	Arithmetic bool
	// OnSkip is told about every character dropped by the lexer.
	OnSkip func(pos lexer.Position, text string)
}

func DefaultOptions() Options {
	return Options{BaseAddress: DefaultBaseAddress}
}

func (o Options) lexerOptions() ratlex.Options {
	return ratlex.Options{Strict: o.Strict, OnSkip: o.OnSkip}
}

// Program is the result of one translation.
type Program struct {
	Symbols      []Symbol      `json:"symbols"`
	Instructions []Instruction `json:"instructions"`
}

// Context holds the state of a single translation. A fresh one is needed for
// every run; nothing is shared between contexts.
type Context struct {
	Symbols *SymbolTable
	Code    *InstructionList
	opts    Options
}

func NewContext(opts Options) *Context {
	return &Context{
		Symbols: NewSymbolTable(opts.BaseAddress),
		Code:    &InstructionList{},
		opts:    opts,
	}
}

// Compile generates code for stmts into the context.
func (ctx *Context) Compile(stmts []parser.Stmt) error {
	for _, s := range stmts {
		if err := ctx.compileStatement(s); err != nil {
			return err
		}
	}
	return nil
}

func (ctx *Context) Program() *Program {
	return &Program{
		Symbols:      ctx.Symbols.Symbols(),
		Instructions: ctx.Code.Instructions(),
	}
}

// Compile generates a program for already parsed statements on a fresh
// context.
func Compile(stmts []parser.Stmt, opts Options) (*Program, error) {
	ctx := NewContext(opts)
	if err := ctx.Compile(stmts); err != nil {
		return nil, err
	}
	return ctx.Program(), nil
}

// Translate runs the tokenizer, parser and code generator over src on a fresh
// context. On failure no program is returned.
func Translate(filename, src string, opts Options) (*Program, error) {
	stmts, err := Parse(filename, src, opts)
	if err != nil {
		return nil, err
	}
	return Compile(stmts, opts)
}

// Parse tokenizes and parses src with the lexer settings implied by opts.
func Parse(filename, src string, opts Options) ([]parser.Stmt, error) {
	return parser.ParseString(filename, src, opts.lexerOptions())
}
