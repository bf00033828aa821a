package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// prompter reads operator input. Numeric reads report (value, ok) so a
// typo never turns into a sentinel value downstream.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in *bufio.Reader, out io.Writer) *prompter {
	return &prompter{in: in, out: out}
}

// line prompts for and returns one trimmed line of input.
func (p *prompter) line(label string) string {
	fmt.Fprint(p.out, label)
	text, err := p.in.ReadString('\n')
	if err != nil && text == "" {
		return ""
	}
	return strings.TrimRight(text, "\r\n")
}

// intValue prompts for a number. Non-numeric input is reported to the
// operator and returns ok=false.
func (p *prompter) intValue(label string) (int, bool) {
	raw := strings.TrimSpace(p.line(label))
	n, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Fprintln(p.out, errorStyle.Render(">>> Invalid input. Please enter a number."))
		return 0, false
	}
	return n, true
}

// key prompts for a numeric key or password without echoing when stdin
// is a terminal. Piped input falls back to a plain line read.
func (p *prompter) key(label string) (int, bool) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return p.intValue(label)
	}

	fmt.Fprint(p.out, label)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		fmt.Fprintln(p.out, errorStyle.Render(">>> Failed to read input."))
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		fmt.Fprintln(p.out, errorStyle.Render(">>> Invalid input. Please enter a number."))
		return 0, false
	}
	return n, true
}

// confirm prompts for a y/n answer; anything but y or Y is no.
func (p *prompter) confirm(label string) bool {
	answer := strings.TrimSpace(p.line(label))
	return strings.EqualFold(answer, "y")
}
