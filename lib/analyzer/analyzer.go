// Package analyzer reports constructs the translator accepts silently but
// that rarely mean what the author intended.
package analyzer

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/vyPal/ratc/lib/parser"
)

type Kind int

const (
	// Redeclared: a name declared twice; the second declaration is ignored.
	Redeclared Kind = iota
	// Undeclared: a name used before any declaration; it gets no address.
	Undeclared
	// Untranslated: an operator expression that produces no instructions.
	Untranslated
)

func (k Kind) String() string {
	switch k {
	case Redeclared:
		return "redeclared"
	case Undeclared:
		return "undeclared"
	case Untranslated:
		return "untranslated"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type Warning struct {
	Pos     lexer.Position
	Kind    Kind
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Pos, w.Kind, w.Message)
}

type Options struct {
	// Arithmetic mirrors compiler.Options.Arithmetic.
	Arithmetic bool
}

// Analyze walks stmts in translation order and returns the warnings found.
func Analyze(stmts []parser.Stmt, opts Options) []Warning {
	a := &analysis{ctx: NewContext(), opts: opts}
	a.statements(stmts)
	return a.warnings
}

type analysis struct {
	ctx      *Context
	opts     Options
	warnings []Warning
}

func (a *analysis) warn(pos lexer.Position, kind Kind, format string, args ...interface{}) {
	a.warnings = append(a.warnings, Warning{Pos: pos, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func (a *analysis) statements(stmts []parser.Stmt) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *parser.Declaration:
			for _, name := range s.Identifiers {
				if first, ok := a.ctx.Declare(name, s.Pos); !ok {
					a.warn(s.Pos, Redeclared, "%q was already declared at %s", name, first)
				}
			}
		case *parser.Assignment:
			a.expression(s.Value)
			a.use(s.Target, s.Pos)
		case *parser.Output:
			a.expression(s.Value)
		case *parser.While:
			a.expression(s.Condition)
			a.statements(s.Body)
		}
	}
}

func (a *analysis) expression(e parser.Expr) {
	switch e := e.(type) {
	case *parser.Identifier:
		a.use(e.Name, e.Pos)
	case *parser.BinaryOp:
		if !a.opts.Arithmetic {
			a.warn(e.Pos, Untranslated, "expression with operator %q produces no instructions and leaves the value stack short", e.Operator)
			return
		}
		a.expression(e.Left)
		a.expression(e.Right)
	}
}

func (a *analysis) use(name string, pos lexer.Position) {
	if _, ok := a.ctx.LookupVariable(name); !ok {
		a.warn(pos, Undeclared, "%q is used before it is declared", name)
	}
}
