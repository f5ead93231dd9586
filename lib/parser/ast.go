package parser

import (
	"encoding/json"

	"github.com/alecthomas/participle/v2/lexer"
)

// Node is implemented by every AST node.
type Node interface {
	Position() lexer.Position
}

// Stmt is a statement node. The set of implementations is closed.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node. The set of implementations is closed.
type Expr interface {
	Node
	exprNode()
}

type Declaration struct {
	Pos         lexer.Position `json:"-"`
	DataType    string         `json:"data_type"`
	Identifiers []string       `json:"identifiers"`
}

type Assignment struct {
	Pos    lexer.Position `json:"-"`
	Target string         `json:"left"`
	Value  Expr           `json:"right"`
}

type Output struct {
	Pos   lexer.Position `json:"-"`
	Value Expr           `json:"value"`
}

type While struct {
	Pos       lexer.Position `json:"-"`
	Condition Expr           `json:"condition"`
	Body      []Stmt         `json:"body"`
}

type Literal struct {
	Pos   lexer.Position `json:"-"`
	Value int64          `json:"value"`
}

type Identifier struct {
	Pos  lexer.Position `json:"-"`
	Name string         `json:"name"`
}

// BinaryOp is right-nested: in `a - b - c` Right holds `b - c`.
type BinaryOp struct {
	Pos      lexer.Position `json:"-"`
	Operator string         `json:"operator"`
	Left     Expr           `json:"left"`
	Right    Expr           `json:"right"`
}

func (n *Declaration) Position() lexer.Position { return n.Pos }
func (n *Assignment) Position() lexer.Position  { return n.Pos }
func (n *Output) Position() lexer.Position      { return n.Pos }
func (n *While) Position() lexer.Position       { return n.Pos }
func (n *Literal) Position() lexer.Position     { return n.Pos }
func (n *Identifier) Position() lexer.Position  { return n.Pos }
func (n *BinaryOp) Position() lexer.Position    { return n.Pos }

func (*Declaration) stmtNode() {}
func (*Assignment) stmtNode()  {}
func (*Output) stmtNode()      {}
func (*While) stmtNode()       {}

func (*Literal) exprNode()    {}
func (*Identifier) exprNode() {}
func (*BinaryOp) exprNode()   {}

// The JSON form tags every node with its kind so AST dumps can be read back
// by tools that do not know the Go types.

func (n *Declaration) MarshalJSON() ([]byte, error) {
	type plain Declaration
	return tagged("declaration", (*plain)(n))
}

func (n *Assignment) MarshalJSON() ([]byte, error) {
	type plain Assignment
	return tagged("assignment", (*plain)(n))
}

func (n *Output) MarshalJSON() ([]byte, error) {
	type plain Output
	return tagged("output", (*plain)(n))
}

func (n *While) MarshalJSON() ([]byte, error) {
	type plain While
	return tagged("while", (*plain)(n))
}

func (n *Literal) MarshalJSON() ([]byte, error) {
	type plain Literal
	return tagged("literal", (*plain)(n))
}

func (n *Identifier) MarshalJSON() ([]byte, error) {
	type plain Identifier
	return tagged("identifier", (*plain)(n))
}

func (n *BinaryOp) MarshalJSON() ([]byte, error) {
	type plain BinaryOp
	return tagged("binary_op", (*plain)(n))
}

func tagged(kind string, node interface{}) ([]byte, error) {
	body, err := json.Marshal(node)
	if err != nil {
		return nil, err
	}
	head, err := json.Marshal(map[string]string{"type": kind})
	if err != nil {
		return nil, err
	}
	if string(body) == "{}" {
		return head, nil
	}
	// splice {"type":...} in front of the node's own fields
	return append(append(head[:len(head)-1], ','), body[1:]...), nil
}
