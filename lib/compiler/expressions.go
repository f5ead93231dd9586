package compiler

import (
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/vyPal/ratc/lib/parser"
)

func (ctx *Context) compileExpression(e parser.Expr) error {
	switch e := e.(type) {
	case *parser.Literal:
		ctx.Code.Emit(PUSHI, intp(int(e.Value)))
		return nil
	case *parser.Identifier:
		addr, err := ctx.resolve(e.Name, e.Position())
		if err != nil {
			return err
		}
		ctx.Code.Emit(PUSHM, addr)
		return nil
	case *parser.BinaryOp:
		return ctx.compileBinaryOp(e)
	default:
		return posError(e.Position(), "unknown expression %T", e)
	}
}

// compileBinaryOp emits nothing unless arithmetic is enabled, matching the
// reference translator's output for chained expressions.
func (ctx *Context) compileBinaryOp(b *parser.BinaryOp) error {
	if !ctx.opts.Arithmetic {
		return nil
	}
	op, ok := operators[b.Operator]
	if !ok {
		return posError(b.Position(), "operator %q has no instruction", b.Operator)
	}
	if err := ctx.compileExpression(b.Left); err != nil {
		return err
	}
	if err := ctx.compileExpression(b.Right); err != nil {
		return err
	}
	ctx.Code.Emit(op, nil)
	return nil
}

// resolve returns the address of name. An undeclared name resolves to nil
// unless the context is strict.
func (ctx *Context) resolve(name string, pos lexer.Position) (*int, error) {
	sym, ok := ctx.Symbols.Lookup(name)
	if ok {
		return intp(sym.Address), nil
	}
	if ctx.opts.Strict {
		return nil, &UnresolvedIdentifierError{Name: name, Pos: pos}
	}
	return nil, nil
}
