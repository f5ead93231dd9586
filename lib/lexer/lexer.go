package ratlex

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Kind classifies a token.
type Kind int

const (
	Keyword Kind = iota
	Identifier
	Integer
	Assign
	Operator
	Delimiter
)

var kindNames = [...]string{
	Keyword:    "KEYWORD",
	Identifier: "IDENTIFIER",
	Integer:    "INTEGER",
	Assign:     "ASSIGN",
	Operator:   "OPERATOR",
	Delimiter:  "DELIMITER",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Keywords are reserved and never lexed as identifiers.
var Keywords = []string{"if", "else", "while", "get", "put", "integer", "boolean", "real", "true", "false"}

// Definition is the participle lexer definition for the language. Rules are
// tried in order, so Keyword wins over Identifier.
var Definition = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `\[\*(?s:.*?)\*\]`},
	{Name: "Keyword", Pattern: `(?:` + strings.Join(Keywords, "|") + `)\b`},
	{Name: "Identifier", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Integer", Pattern: `\d+\b`},
	{Name: "Assign", Pattern: `=`},
	{Name: "Operator", Pattern: `[+\-*/<>]=?|!=`},
	{Name: "Delimiter", Pattern: `[;{},()]`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Invalid", Pattern: `(?s:.)`},
})

// Elided lists the rule names that never reach the parser.
var Elided = []string{"Comment", "Whitespace", "Invalid"}

var (
	kinds       = map[lexer.TokenType]Kind{}
	discarded   = map[lexer.TokenType]bool{}
	invalidType lexer.TokenType
)

func init() {
	symbols := Definition.Symbols()
	for name, kind := range map[string]Kind{
		"Keyword":    Keyword,
		"Identifier": Identifier,
		"Integer":    Integer,
		"Assign":     Assign,
		"Operator":   Operator,
		"Delimiter":  Delimiter,
	} {
		kinds[symbols[name]] = kind
	}
	discarded[symbols["Comment"]] = true
	discarded[symbols["Whitespace"]] = true
	invalidType = symbols["Invalid"]
}

type Token struct {
	Kind   Kind           `json:"kind"`
	Lexeme string         `json:"lexeme"`
	Pos    lexer.Position `json:"-"`
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q", t.Kind, t.Lexeme)
}

// Is reports whether t has the given kind and, when lexeme is not empty, that lexeme.
func (t Token) Is(kind Kind, lexeme string) bool {
	return t.Kind == kind && (lexeme == "" || t.Lexeme == lexeme)
}

// End returns the position just past the token.
func (t Token) End() lexer.Position {
	pos := t.Pos
	pos.Offset += len(t.Lexeme)
	pos.Column += len(t.Lexeme)
	return pos
}

type Options struct {
	// Strict makes characters outside every token class an error instead of
	// dropping them.
	Strict bool
	// OnSkip, if set, is called for every dropped character in non-strict mode.
	OnSkip func(pos lexer.Position, text string)
}

// Error is returned in strict mode for a character no token class accepts.
type Error struct {
	Pos  lexer.Position
	Text string
}

var _ participle.Error = (*Error)(nil)

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message())
}

func (e *Error) Message() string {
	return fmt.Sprintf("unrecognized character %q", e.Text)
}

func (e *Error) Position() lexer.Position { return e.Pos }

// Tokenize lexes the whole of src before returning.
func Tokenize(filename, src string, opts Options) ([]Token, error) {
	lex, err := Definition.Lex(filename, strings.NewReader(src))
	if err != nil {
		return nil, err
	}

	var tokens []Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			return tokens, nil
		}
		if discarded[tok.Type] {
			continue
		}
		if tok.Type == invalidType {
			if opts.Strict {
				return nil, &Error{Pos: tok.Pos, Text: tok.Value}
			}
			if opts.OnSkip != nil {
				opts.OnSkip(tok.Pos, tok.Value)
			}
			continue
		}
		kind := kinds[tok.Type]
		// A keyword glued to dropped word characters is not on a word
		// boundary, so it reads as an identifier.
		if kind == Keyword && tok.Pos.Offset > 0 && isWordByte(src[tok.Pos.Offset-1]) {
			kind = Identifier
		}
		tokens = append(tokens, Token{Kind: kind, Lexeme: tok.Value, Pos: tok.Pos})
	}
}

func isWordByte(b byte) bool {
	return b == '_' || '0' <= b && b <= '9' || 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}
