package compiler

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

func posError(pos lexer.Position, message string, args ...interface{}) error {
	return participle.Errorf(pos, message, args...)
}

// UnresolvedIdentifierError is returned in strict mode when code refers to a
// name that was never declared.
type UnresolvedIdentifierError struct {
	Name string
	Pos  lexer.Position
}

var _ participle.Error = (*UnresolvedIdentifierError)(nil)

func (e *UnresolvedIdentifierError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message())
}

func (e *UnresolvedIdentifierError) Message() string {
	return fmt.Sprintf("identifier %q is not declared", e.Name)
}

func (e *UnresolvedIdentifierError) Position() lexer.Position { return e.Pos }
