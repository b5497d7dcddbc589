// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/term"
)

// prompter reads answers from the command's input. Passwords are read
// without echo when the input is a terminal.
type prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, reader: bufio.NewReader(in), out: out}
}

// Line prints prompt and reads one line without its line ending.
func (p *prompter) Line(prompt string) (string, error) {
	p.say(prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", oops.Code("INPUT_CLOSED").Errorf("no input: expected an answer to %q", strings.TrimSpace(prompt))
		}
		return "", oops.Code("INPUT_READ_FAILED").Wrap(err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Password prints prompt and reads a secret.
func (p *prompter) Password(prompt string) (string, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
		p.say(prompt)
		secret, err := term.ReadPassword(int(f.Fd())) //nolint:gosec // fd fits in int
		p.say("\n")
		if err != nil {
			return "", oops.Code("INPUT_READ_FAILED").With("operation", "read password").Wrap(err)
		}
		return string(secret), nil
	}
	return p.Line(prompt)
}

func (p *prompter) say(s string) {
	if s != "" {
		_, _ = io.WriteString(p.out, s)
	}
}
