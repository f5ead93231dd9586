package util

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks questions on Out and reads the answers from In.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) answer() string {
	response, err := p.in.ReadString('\n')
	if err != nil && response == "" {
		return ""
	}
	return strings.TrimSpace(response)
}

// String asks for a value, returning def on an empty answer.
func (p *Prompter) String(prompt string, def string) string {
	fmt.Fprintf(p.out, "%s (%s): ", prompt, def)

	if response := p.answer(); response != "" {
		return response
	}
	return def
}

// YN asks a yes/no question, returning def on an empty answer.
func (p *Prompter) YN(prompt string, def bool) bool {
	if def {
		fmt.Fprintf(p.out, "%s (Y/n): ", prompt)
	} else {
		fmt.Fprintf(p.out, "%s (y/N): ", prompt)
	}

	response := p.answer()
	if response == "" {
		return def
	}
	return strings.EqualFold(response, "y") || strings.EqualFold(response, "yes")
}
