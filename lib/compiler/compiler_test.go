package compiler

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/vyPal/ratc/lib/parser"
)

func translate(t *testing.T, src string, opts Options) *Program {
	t.Helper()
	prog, err := Translate("test.rat", src, opts)
	if err != nil {
		t.Fatalf("Translate(%q) error: %v", src, err)
	}
	return prog
}

// listing renders instructions the way tests spell them out.
func listing(prog *Program) []string {
	out := make([]string, len(prog.Instructions))
	for i, ins := range prog.Instructions {
		out[i] = ins.String()
	}
	return out
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     Options
		symbols  []Symbol
		expected []string
	}{
		{
			name:    "ScenarioA",
			input:   "integer x; x = 5; put(x);",
			opts:    DefaultOptions(),
			symbols: []Symbol{{"x", 9000, "integer"}},
			expected: []string{
				"1 PUSHI 5",
				"2 POPM 9000",
				"3 PUSHM 9000",
				"4 STDOUT",
			},
		},
		{
			name:    "ScenarioB",
			input:   "integer x; x = 0; while (x) { x = 1; }",
			opts:    DefaultOptions(),
			symbols: []Symbol{{"x", 9000, "integer"}},
			expected: []string{
				"1 PUSHI 0",
				"2 POPM 9000",
				"3 PUSHM 9000",
				"4 JUMPZ 8",
				"5 PUSHI 1",
				"6 POPM 9000",
				"7 JUMP 3",
			},
		},
		{
			name:    "NestedWhile",
			input:   "integer a, b; while (a) { while (b) { } }",
			opts:    DefaultOptions(),
			symbols: []Symbol{{"a", 9000, "integer"}, {"b", 9001, "integer"}},
			expected: []string{
				"1 PUSHM 9000",
				"2 JUMPZ 7",
				"3 PUSHM 9001",
				"4 JUMPZ 6",
				"5 JUMP 3",
				"6 JUMP 1",
			},
		},
		{
			name:     "DeclarationDedup",
			input:    "integer a, a, b; integer b, c;",
			opts:     DefaultOptions(),
			symbols:  []Symbol{{"a", 9000, "integer"}, {"b", 9001, "integer"}, {"c", 9002, "integer"}},
			expected: []string{},
		},
		{
			name:    "DeclarationInsideLoop",
			input:   "integer i; while (i) { integer j; j = i; }",
			opts:    DefaultOptions(),
			symbols: []Symbol{{"i", 9000, "integer"}, {"j", 9001, "integer"}},
			expected: []string{
				"1 PUSHM 9000",
				"2 JUMPZ 6",
				"3 PUSHM 9000",
				"4 POPM 9001",
				"5 JUMP 1",
			},
		},
		{
			name:    "CustomBase",
			input:   "integer p, q; q = p;",
			opts:    Options{BaseAddress: 100},
			symbols: []Symbol{{"p", 100, "integer"}, {"q", 101, "integer"}},
			expected: []string{
				"1 PUSHM 100",
				"2 POPM 101",
			},
		},
		{
			name:    "BinaryOpEmitsNothingByDefault",
			input:   "integer x; x = 1 + 2; put(x - 1);",
			opts:    DefaultOptions(),
			symbols: []Symbol{{"x", 9000, "integer"}},
			expected: []string{
				"1 POPM 9000",
				"2 STDOUT",
			},
		},
		{
			name:    "Arithmetic",
			input:   "integer x, a, b; x = a - b * 2;",
			opts:    Options{BaseAddress: DefaultBaseAddress, Arithmetic: true},
			symbols: []Symbol{{"x", 9000, "integer"}, {"a", 9001, "integer"}, {"b", 9002, "integer"}},
			expected: []string{
				"1 PUSHM 9001",
				"2 PUSHM 9002",
				"3 PUSHI 2",
				"4 MUL",
				"5 SUB",
				"6 POPM 9000",
			},
		},
		{
			name:    "ArithmeticLoopCondition",
			input:   "integer i; while (i < 3) { i = i + 1; }",
			opts:    Options{BaseAddress: DefaultBaseAddress, Arithmetic: true},
			symbols: []Symbol{{"i", 9000, "integer"}},
			expected: []string{
				"1 PUSHM 9000",
				"2 PUSHI 3",
				"3 LES",
				"4 JUMPZ 10",
				"5 PUSHM 9000",
				"6 PUSHI 1",
				"7 ADD",
				"8 POPM 9000",
				"9 JUMP 1",
			},
		},
		{
			name:    "ScenarioDUnknownCharacterDropped",
			input:   "integer x; x = @5; put(x);",
			opts:    DefaultOptions(),
			symbols: []Symbol{{"x", 9000, "integer"}},
			expected: []string{
				"1 PUSHI 5",
				"2 POPM 9000",
				"3 PUSHM 9000",
				"4 STDOUT",
			},
		},
		{
			name:    "UndeclaredResolvesToNothing",
			input:   "y = 1; put(y);",
			opts:    DefaultOptions(),
			symbols: []Symbol{},
			expected: []string{
				"1 PUSHI 1",
				"2 POPM",
				"3 PUSHM",
				"4 STDOUT",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := translate(t, tt.input, tt.opts)
			if got := listing(prog); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("instructions:\n got %q\nwant %q", got, tt.expected)
			}
			if !reflect.DeepEqual(prog.Symbols, tt.symbols) {
				t.Errorf("symbols:\n got %v\nwant %v", prog.Symbols, tt.symbols)
			}
		})
	}
}

func TestInstructionIndicesContiguous(t *testing.T) {
	src := `integer a, b, c;
a = 1; b = 2;
while (a) {
  put(a);
  while (b) { b = 0; put(c); }
  a = 0;
}
put(b);`
	prog := translate(t, src, DefaultOptions())
	if len(prog.Instructions) == 0 {
		t.Fatal("no instructions")
	}
	for i, ins := range prog.Instructions {
		if ins.Index != i+1 {
			t.Fatalf("instruction %d has index %d", i, ins.Index)
		}
	}
}

// TestBackpatch checks every JUMPZ against the JUMP that closes its loop,
// found by walking back from the JUMPZ target.
func TestBackpatch(t *testing.T) {
	src := "integer a, b; while (a) { while (b) { b = 0; } a = 0; } while (b) { }"
	prog := translate(t, src, DefaultOptions())

	checked := 0
	for _, ins := range prog.Instructions {
		if ins.Op != JUMPZ {
			continue
		}
		if ins.Operand == nil {
			t.Fatalf("JUMPZ at %d was never patched", ins.Index)
		}
		target := *ins.Operand
		closing := prog.Instructions[target-2]
		if closing.Op != JUMP {
			t.Errorf("JUMPZ at %d targets %d which does not follow a JUMP", ins.Index, target)
		}
		if *closing.Operand >= ins.Index {
			t.Errorf("JUMP at %d loops to %d, after its JUMPZ at %d", closing.Index, *closing.Operand, ins.Index)
		}
		checked++
	}
	if checked != 3 {
		t.Errorf("checked %d loops, want 3", checked)
	}
}

func TestTranslateDeterministic(t *testing.T) {
	src := "integer x, y; x = 3; while (x) { y = x; put(y); x = 0; }"
	render := func() string {
		prog := translate(t, src, DefaultOptions())
		var buf bytes.Buffer
		if err := prog.WriteSymbolTable(&buf); err != nil {
			t.Fatal(err)
		}
		if err := prog.WriteInstructionTable(&buf); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}
	if first, second := render(), render(); first != second {
		t.Errorf("runs differ:\n%s\n---\n%s", first, second)
	}
}

func TestTranslateErrors(t *testing.T) {
	t.Run("ScenarioCSyntaxError", func(t *testing.T) {
		prog, err := Translate("c.rat", "integer ;", DefaultOptions())
		if prog != nil {
			t.Errorf("expected no program, got %+v", prog)
		}
		var synErr *parser.SyntaxError
		if !errors.As(err, &synErr) {
			t.Fatalf("expected *parser.SyntaxError, got %v", err)
		}
	})

	t.Run("StrictUndeclared", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Strict = true
		prog, err := Translate("u.rat", "integer x;\nx = y;", opts)
		if prog != nil {
			t.Errorf("expected no program")
		}
		var unresolved *UnresolvedIdentifierError
		if !errors.As(err, &unresolved) {
			t.Fatalf("expected *UnresolvedIdentifierError, got %v", err)
		}
		if unresolved.Name != "y" || unresolved.Pos.Line != 2 {
			t.Errorf("unexpected error %+v", unresolved)
		}
	})

	t.Run("StrictUndeclaredTarget", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Strict = true
		_, err := Translate("u.rat", "z = 1;", opts)
		var unresolved *UnresolvedIdentifierError
		if !errors.As(err, &unresolved) || unresolved.Name != "z" {
			t.Fatalf("expected unresolved z, got %v", err)
		}
	})

	t.Run("ArithmeticUnsupportedOperator", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Arithmetic = true
		if _, err := Translate("a.rat", "integer x; x = x += 1;", opts); err == nil {
			t.Fatal("expected error for compound operator")
		}
	})
}

func TestSkipHook(t *testing.T) {
	var positions []lexer.Position
	opts := DefaultOptions()
	opts.OnSkip = func(pos lexer.Position, text string) {
		positions = append(positions, pos)
	}
	translate(t, "integer x; x = #1;", opts)
	if len(positions) != 1 || positions[0].Column != 16 {
		t.Errorf("skip positions = %v", positions)
	}
}

func TestContextsAreIsolated(t *testing.T) {
	first := NewContext(DefaultOptions())
	second := NewContext(DefaultOptions())
	stmts, err := parser.ParseString("", "integer a; a = 1;", first.opts.lexerOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Compile(stmts); err != nil {
		t.Fatal(err)
	}
	if second.Symbols.Len() != 0 || second.Code.Len() != 0 {
		t.Errorf("second context saw state from the first: %d symbols, %d instructions",
			second.Symbols.Len(), second.Code.Len())
	}
	if first.Symbols.Len() != 1 || first.Code.Len() != 2 {
		t.Errorf("first context: %d symbols, %d instructions", first.Symbols.Len(), first.Code.Len())
	}
}
