package parser

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	ratlex "github.com/vyPal/ratc/lib/lexer"
)

// SyntaxError aborts a parse. Found is nil when the input ended early.
type SyntaxError struct {
	Expected string
	Found    *ratlex.Token
	Pos      lexer.Position
}

var _ participle.Error = (*SyntaxError)(nil)

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message())
}

func (e *SyntaxError) Message() string {
	found := "end of input"
	if e.Found != nil {
		found = fmt.Sprintf("%q", e.Found.Lexeme)
	}
	return fmt.Sprintf("expected %s but found %s", e.Expected, found)
}

func (e *SyntaxError) Position() lexer.Position { return e.Pos }

// Parser is a recursive-descent parser with one token of lookahead.
type Parser struct {
	tokens []ratlex.Token
	pos    int
}

func New(tokens []ratlex.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a whole program. On error no statements are returned.
func Parse(tokens []ratlex.Token) ([]Stmt, error) {
	return New(tokens).Parse()
}

// ParseString tokenizes src and parses it.
func ParseString(filename, src string, opts ratlex.Options) ([]Stmt, error) {
	tokens, err := ratlex.Tokenize(filename, src, opts)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

func (p *Parser) Parse() ([]Stmt, error) {
	var program []Stmt
	for p.current() != nil {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program = append(program, stmt)
	}
	return program, nil
}

func (p *Parser) current() *ratlex.Token {
	if p.pos < len(p.tokens) {
		return &p.tokens[p.pos]
	}
	return nil
}

func (p *Parser) advance() {
	p.pos++
}

// fail builds a SyntaxError against the current token.
func (p *Parser) fail(expected string) error {
	tok := p.current()
	if tok == nil {
		return &SyntaxError{Expected: expected, Pos: p.endPos()}
	}
	found := *tok
	return &SyntaxError{Expected: expected, Found: &found, Pos: tok.Pos}
}

func (p *Parser) endPos() lexer.Position {
	if len(p.tokens) == 0 {
		return lexer.Position{Line: 1, Column: 1}
	}
	return p.tokens[len(p.tokens)-1].End()
}

// match consumes the current token if it has the given kind and, when
// lexeme is non-empty, that exact lexeme.
func (p *Parser) match(kind ratlex.Kind, lexeme string) (ratlex.Token, error) {
	tok := p.current()
	if tok == nil || !tok.Is(kind, lexeme) {
		expected := kind.String()
		if lexeme != "" {
			expected = fmt.Sprintf("%s %q", kind, lexeme)
		}
		return ratlex.Token{}, p.fail(expected)
	}
	p.advance()
	return *tok, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.current()
	switch {
	case tok == nil:
		return nil, p.fail("statement")
	case tok.Is(ratlex.Keyword, "integer"):
		return p.parseDeclaration()
	case tok.Kind == ratlex.Identifier:
		return p.parseAssignment()
	case tok.Is(ratlex.Keyword, "while"):
		return p.parseWhile()
	case tok.Is(ratlex.Keyword, "put"):
		return p.parseOutput()
	default:
		return nil, p.fail("statement")
	}
}

func (p *Parser) parseDeclaration() (*Declaration, error) {
	kw, err := p.match(ratlex.Keyword, "integer")
	if err != nil {
		return nil, err
	}
	decl := &Declaration{Pos: kw.Pos, DataType: kw.Lexeme}

	for {
		id, err := p.match(ratlex.Identifier, "")
		if err != nil {
			return nil, err
		}
		decl.Identifiers = append(decl.Identifiers, id.Lexeme)

		if tok := p.current(); tok == nil || !tok.Is(ratlex.Delimiter, ",") {
			break
		}
		p.advance()
	}

	if _, err := p.match(ratlex.Delimiter, ";"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseAssignment() (*Assignment, error) {
	target, err := p.match(ratlex.Identifier, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.match(ratlex.Assign, "="); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.match(ratlex.Delimiter, ";"); err != nil {
		return nil, err
	}
	return &Assignment{Pos: target.Pos, Target: target.Lexeme, Value: value}, nil
}

func (p *Parser) parseWhile() (*While, error) {
	kw, err := p.match(ratlex.Keyword, "while")
	if err != nil {
		return nil, err
	}
	if _, err := p.match(ratlex.Delimiter, "("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.match(ratlex.Delimiter, ")"); err != nil {
		return nil, err
	}
	if _, err := p.match(ratlex.Delimiter, "{"); err != nil {
		return nil, err
	}

	loop := &While{Pos: kw.Pos, Condition: cond}
	for {
		tok := p.current()
		if tok == nil {
			return nil, p.fail(`DELIMITER "}"`)
		}
		if tok.Is(ratlex.Delimiter, "}") {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		loop.Body = append(loop.Body, stmt)
	}
	p.advance() // "}"
	return loop, nil
}

func (p *Parser) parseOutput() (*Output, error) {
	kw, err := p.match(ratlex.Keyword, "put")
	if err != nil {
		return nil, err
	}
	if _, err := p.match(ratlex.Delimiter, "("); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.match(ratlex.Delimiter, ")"); err != nil {
		return nil, err
	}
	if _, err := p.match(ratlex.Delimiter, ";"); err != nil {
		return nil, err
	}
	return &Output{Pos: kw.Pos, Value: value}, nil
}

var literalRange = fmt.Sprintf("integer literal within %d bits", strconv.IntSize)

// parseExpression parses an operand and, if an operator follows, the whole
// remainder as the right operand. There is no precedence.
func (p *Parser) parseExpression() (Expr, error) {
	tok := p.current()
	if tok == nil {
		return nil, p.fail("expression")
	}

	var left Expr
	switch tok.Kind {
	case ratlex.Integer:
		// Operands are ints, so the literal must fit the platform int.
		v, err := strconv.ParseInt(tok.Lexeme, 10, strconv.IntSize)
		if err != nil {
			return nil, p.fail(literalRange)
		}
		left = &Literal{Pos: tok.Pos, Value: v}
	case ratlex.Identifier:
		left = &Identifier{Pos: tok.Pos, Name: tok.Lexeme}
	default:
		return nil, p.fail("expression")
	}
	p.advance()

	op := p.current()
	if op == nil || op.Kind != ratlex.Operator {
		return left, nil
	}
	p.advance()

	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &BinaryOp{Pos: op.Pos, Operator: op.Lexeme, Left: left, Right: right}, nil
}
