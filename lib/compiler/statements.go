package compiler

import "github.com/vyPal/ratc/lib/parser"

func (ctx *Context) compileStatement(s parser.Stmt) error {
	switch s := s.(type) {
	case *parser.Declaration:
		ctx.compileDeclaration(s)
		return nil
	case *parser.Assignment:
		return ctx.compileAssignment(s)
	case *parser.Output:
		return ctx.compileOutput(s)
	case *parser.While:
		return ctx.compileWhile(s)
	default:
		return posError(s.Position(), "unknown statement %T", s)
	}
}

func (ctx *Context) compileDeclaration(d *parser.Declaration) {
	for _, name := range d.Identifiers {
		ctx.Symbols.Declare(name, d.DataType)
	}
}

func (ctx *Context) compileAssignment(a *parser.Assignment) error {
	if err := ctx.compileExpression(a.Value); err != nil {
		return err
	}
	addr, err := ctx.resolve(a.Target, a.Position())
	if err != nil {
		return err
	}
	ctx.Code.Emit(POPM, addr)
	return nil
}

func (ctx *Context) compileOutput(o *parser.Output) error {
	if err := ctx.compileExpression(o.Value); err != nil {
		return err
	}
	ctx.Code.Emit(STDOUT, nil)
	return nil
}

// compileWhile lays the loop out as
//
//	start: <condition>
//	       JUMPZ end
//	       <body>
//	       JUMP start
//	end:
func (ctx *Context) compileWhile(w *parser.While) error {
	start := ctx.Code.Next()
	if err := ctx.compileExpression(w.Condition); err != nil {
		return err
	}
	exit := ctx.Code.Emit(JUMPZ, nil)

	for _, stmt := range w.Body {
		if err := ctx.compileStatement(stmt); err != nil {
			return err
		}
	}

	ctx.Code.Emit(JUMP, intp(start))
	ctx.Code.Patch(exit, ctx.Code.Next())
	return nil
}
