package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/vyPal/ratc/lib/analyzer"
	"github.com/vyPal/ratc/lib/grammar"
	ratlex "github.com/vyPal/ratc/lib/lexer"
	"github.com/vyPal/ratc/lib/parser"
)

func inputStrFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "input-str",
		Aliases: []string{"i"},
		Usage:   "Read the program from a string instead of a file",
	}
}

func strictFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "strict",
		Aliases: []string{"s"},
		Usage:   "Reject characters that do not start a token",
	}
}

func init() {
	commands = append(commands, &cli.Command{
		Name:      "tokens",
		Usage:     "Print the tokens of a source file",
		Category:  "inspect",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{inputStrFlag(), strictFlag()},
		Action:    tokens,
	})
	commands = append(commands, &cli.Command{
		Name:      "parse",
		Usage:     "Parse a source file and print the AST as JSON",
		Category:  "inspect",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			inputStrFlag(),
			strictFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the AST to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:    "arithmetic",
				Aliases: []string{"a"},
				Usage:   "Analyze as if operator expressions were translated",
			},
		},
		Action: parse,
	})
	commands = append(commands, &cli.Command{
		Name:      "grammar",
		Usage:     "Print the EBNF grammar, or check a file against it",
		Category:  "inspect",
		ArgsUsage: "[file]",
		Action:    printGrammar,
	})
}

func readSource(c *cli.Context) (string, string, error) {
	if c.IsSet("input-str") {
		return "<input>", c.String("input-str"), nil
	}
	filename := c.Args().First()
	if filename == "" {
		return "", "", errors.New("no file specified")
	}
	src, err := os.ReadFile(filename)
	if err != nil {
		return "", "", errors.Wrapf(err, "reading %s", filename)
	}
	return filename, string(src), nil
}

func lexerOptions(c *cli.Context) ratlex.Options {
	return ratlex.Options{
		Strict: c.Bool("strict"),
		OnSkip: func(pos lexer.Position, text string) {
			vlog.Printf("%s: skipped %q", pos, text)
		},
	}
}

var kindColors = map[ratlex.Kind]*color.Color{
	ratlex.Keyword:    color.New(color.FgMagenta, color.Bold),
	ratlex.Identifier: color.New(color.FgCyan),
	ratlex.Integer:    color.New(color.FgYellow),
	ratlex.Assign:     color.New(color.FgGreen),
	ratlex.Operator:   color.New(color.FgGreen),
	ratlex.Delimiter:  color.New(color.FgWhite),
}

func tokens(c *cli.Context) error {
	filename, src, err := readSource(c)
	if err != nil {
		return cli.Exit(color.RedString("Error: %s", err), 1)
	}

	toks, err := ratlex.Tokenize(filename, src, lexerOptions(c))
	if err != nil {
		return cli.Exit(color.RedString("Error tokenizing: %s", err), 1)
	}

	for _, tok := range toks {
		kind := tok.Kind.String()
		if col, ok := kindColors[tok.Kind]; ok {
			kind = col.Sprint(kind)
		}
		fmt.Fprintf(c.App.Writer, "%d:%d\t%s\t%s\n", tok.Pos.Line, tok.Pos.Column, kind, tok.Lexeme)
	}
	return nil
}

func parse(c *cli.Context) error {
	filename, src, err := readSource(c)
	if err != nil {
		return cli.Exit(color.RedString("Error: %s", err), 1)
	}

	stmts, err := parser.ParseString(filename, src, lexerOptions(c))
	if err != nil {
		return cli.Exit(color.RedString("Error parsing: %s", err), 1)
	}
	for _, w := range analyzer.Analyze(stmts, analyzer.Options{Arithmetic: c.Bool("arithmetic")}) {
		fmt.Fprintln(c.App.ErrWriter, color.YellowString("warning: %s", w))
	}

	var out io.Writer = c.App.Writer
	if path := c.String("output"); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return cli.Exit(color.RedString("Error creating AST dump file: %s", err), 1)
		}
		defer file.Close()
		out = file
	}

	if stmts == nil {
		stmts = []parser.Stmt{}
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(stmts); err != nil {
		return cli.Exit(color.RedString("Error encoding AST: %s", err), 1)
	}
	return nil
}

func printGrammar(c *cli.Context) error {
	filename := c.Args().First()
	if filename == "" {
		fmt.Fprintln(c.App.Writer, grammar.String())
		fmt.Fprintln(c.App.Writer)
		fmt.Fprintln(c.App.Writer, "Keywords:", grammar.Keywords())
		return nil
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		return cli.Exit(color.RedString("Error reading %s: %s", filename, err), 1)
	}
	if err := grammar.Check(filename, string(src)); err != nil {
		return cli.Exit(color.RedString("%s", err), 1)
	}
	fmt.Fprintf(c.App.Writer, "%s: ok\n", filename)
	return nil
}
