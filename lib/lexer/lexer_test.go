package ratlex

import (
	"errors"
	"reflect"
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
)

type kv struct {
	Kind   Kind
	Lexeme string
}

func strip(tokens []Token) []kv {
	out := make([]kv, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, kv{t.Kind, t.Lexeme})
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []kv
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []kv{},
		},
		{
			name:  "Declaration",
			input: "integer a, b;",
			expected: []kv{
				{Keyword, "integer"},
				{Identifier, "a"},
				{Delimiter, ","},
				{Identifier, "b"},
				{Delimiter, ";"},
			},
		},
		{
			name:  "KeywordPrefixIsIdentifier",
			input: "integers whilex put_ real",
			expected: []kv{
				{Identifier, "integers"},
				{Identifier, "whilex"},
				{Identifier, "put_"},
				{Keyword, "real"},
			},
		},
		{
			name:  "Operators",
			input: "+ - * / < > <= >= != += =",
			expected: []kv{
				{Operator, "+"},
				{Operator, "-"},
				{Operator, "*"},
				{Operator, "/"},
				{Operator, "<"},
				{Operator, ">"},
				{Operator, "<="},
				{Operator, ">="},
				{Operator, "!="},
				{Operator, "+="},
				{Assign, "="},
			},
		},
		{
			name:  "DoubleEqualsIsTwoAssigns",
			input: "a==b",
			expected: []kv{
				{Identifier, "a"},
				{Assign, "="},
				{Assign, "="},
				{Identifier, "b"},
			},
		},
		{
			name:  "Delimiters",
			input: "; { } , ( )",
			expected: []kv{
				{Delimiter, ";"},
				{Delimiter, "{"},
				{Delimiter, "}"},
				{Delimiter, ","},
				{Delimiter, "("},
				{Delimiter, ")"},
			},
		},
		{
			name:  "Comments",
			input: "[* leading *] x = 1; [* spans\nlines *] put(x);",
			expected: []kv{
				{Identifier, "x"},
				{Assign, "="},
				{Integer, "1"},
				{Delimiter, ";"},
				{Keyword, "put"},
				{Delimiter, "("},
				{Identifier, "x"},
				{Delimiter, ")"},
				{Delimiter, ";"},
			},
		},
		{
			name:  "UnknownCharactersDropped",
			input: "x @= 5 # ;",
			expected: []kv{
				{Identifier, "x"},
				{Assign, "="},
				{Integer, "5"},
				{Delimiter, ";"},
			},
		},
		{
			name:  "DigitsGluedToLetters",
			input: "12 34abc",
			expected: []kv{
				{Integer, "12"},
				{Identifier, "abc"},
			},
		},
		{
			name:  "KeywordGluedToDigitsIsIdentifier",
			input: "x = 1while (x) 2put",
			expected: []kv{
				{Identifier, "x"},
				{Assign, "="},
				{Identifier, "while"},
				{Delimiter, "("},
				{Identifier, "x"},
				{Delimiter, ")"},
				{Identifier, "put"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize("test.rat", tt.input, Options{})
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			if got := strip(tokens); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tokenize() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens, err := Tokenize("pos.rat", "integer x;\n  x = 10;", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 7 {
		t.Fatalf("expected 7 tokens, got %d", len(tokens))
	}
	x := tokens[3]
	if x.Lexeme != "x" || x.Pos.Line != 2 || x.Pos.Column != 3 {
		t.Errorf("second x at %d:%d, want 2:3", x.Pos.Line, x.Pos.Column)
	}
	if x.Pos.Filename != "pos.rat" {
		t.Errorf("filename = %q", x.Pos.Filename)
	}
	if end := tokens[5].End(); end.Column != tokens[5].Pos.Column+2 {
		t.Errorf("End() column = %d", end.Column)
	}
}

func TestTokenizeSkipHook(t *testing.T) {
	var skipped []string
	_, err := Tokenize("", "a @ b $", Options{OnSkip: func(_ lexer.Position, text string) {
		skipped = append(skipped, text)
	}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(skipped, []string{"@", "$"}) {
		t.Errorf("skipped = %v", skipped)
	}
}

func TestTokenizeStrict(t *testing.T) {
	_, err := Tokenize("strict.rat", "integer x;\nx = @5;", Options{Strict: true})
	var lexErr *Error
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if lexErr.Text != "@" || lexErr.Pos.Line != 2 || lexErr.Pos.Column != 5 {
		t.Errorf("unexpected error %+v", lexErr)
	}

	if _, err := Tokenize("strict.rat", "integer x; [* fine *]", Options{Strict: true}); err != nil {
		t.Errorf("valid source rejected in strict mode: %v", err)
	}
}

func TestKindString(t *testing.T) {
	if Operator.String() != "OPERATOR" {
		t.Errorf("Operator.String() = %q", Operator.String())
	}
	if Kind(42).String() != "Kind(42)" {
		t.Errorf("Kind(42).String() = %q", Kind(42).String())
	}
}
