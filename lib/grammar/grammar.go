// Package grammar holds a declarative description of the language built with
// participle. It is not used for translation; it documents the grammar as EBNF
// and acts as an independent acceptor for the hand-written parser.
package grammar

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	ratlex "github.com/vyPal/ratc/lib/lexer"
)

type Operand struct {
	Literal    *int    `parser:"  @Integer"`
	Identifier *string `parser:"| @Identifier"`
}

type Expression struct {
	Left     *Operand    `parser:"@@"`
	Operator string      `parser:"( @Operator"`
	Right    *Expression `parser:"  @@ )?"`
}

type Declaration struct {
	Identifiers []string `parser:"'integer' @Identifier ( ',' @Identifier )* ';'"`
}

type Assignment struct {
	Target string      `parser:"@Identifier '='"`
	Value  *Expression `parser:"@@ ';'"`
}

type While struct {
	Condition *Expression  `parser:"'while' '(' @@ ')'"`
	Body      []*Statement `parser:"'{' @@* '}'"`
}

type Output struct {
	Value *Expression `parser:"'put' '(' @@ ')' ';'"`
}

type Statement struct {
	Declaration *Declaration `parser:"  @@"`
	While       *While       `parser:"| @@"`
	Output      *Output      `parser:"| @@"`
	Assignment  *Assignment  `parser:"| @@"`
}

type Program struct {
	Statements []*Statement `parser:"@@*"`
}

var programParser = participle.MustBuild[Program](
	participle.Lexer(ratlex.Definition),
	participle.Elide(ratlex.Elided...),
)

func Parser() *participle.Parser[Program] {
	return programParser
}

// String returns the grammar in EBNF.
func String() string {
	return programParser.String()
}

// ParseString parses src with the declarative grammar. Characters outside every
// token class are dropped, as the translator does by default.
func ParseString(filename, src string) (*Program, error) {
	return programParser.ParseString(filename, src)
}

// Check reports whether src is a valid program.
func Check(filename, src string) error {
	_, err := ParseString(filename, src)
	return err
}

// Keywords lists the reserved words in the form the EBNF shows them.
func Keywords() string {
	quoted := make([]string, len(ratlex.Keywords))
	for i, kw := range ratlex.Keywords {
		quoted[i] = "'" + kw + "'"
	}
	return strings.Join(quoted, " | ")
}
