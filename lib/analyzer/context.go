package analyzer

import "github.com/alecthomas/participle/v2/lexer"

// Context tracks the declarations seen so far. The language has a single
// global scope, so there is no parent chain.
type Context struct {
	Variables map[string]lexer.Position
}

func NewContext() *Context {
	return &Context{
		Variables: make(map[string]lexer.Position),
	}
}

// Declare records name at pos. If it was already declared the first
// position is returned with false.
func (c *Context) Declare(name string, pos lexer.Position) (lexer.Position, bool) {
	if first, ok := c.Variables[name]; ok {
		return first, false
	}
	c.Variables[name] = pos
	return pos, true
}

func (c *Context) LookupVariable(name string) (lexer.Position, bool) {
	pos, ok := c.Variables[name]
	return pos, ok
}
