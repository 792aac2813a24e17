// Package cli implements the terminal side of the dialogue: a styled
// interactive console and a plain line console for pipes and scripts.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Terminal is an interactive console using survey prompts and lipgloss
// styles. Ctrl-C at a prompt reads as end of input.
type Terminal struct {
	out io.Writer
}

// NewTerminal creates a terminal console writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

// Say prints text in the assistant style.
func (t *Terminal) Say(text string) {
	fmt.Fprintln(t.out, styleFor(text).Render(text))
}

// Ask shows prompt above a survey input and returns the typed line.
func (t *Terminal) Ask(prompt string) (string, error) {
	var answer string
	message := strings.TrimSpace(prompt)
	if message == "" {
		message = ">"
	}
	q := &survey.Input{Message: message}
	if err := survey.AskOne(q, &answer); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", io.EOF
		}
		return "", err
	}
	return answer, nil
}

// Plain is a line-oriented console over any reader and writer. Prompts are
// printed on their own line and answers are read up to the newline.
type Plain struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPlain creates a plain console.
func NewPlain(in io.Reader, out io.Writer) *Plain {
	return &Plain{in: bufio.NewReader(in), out: out}
}

// Say prints text followed by a newline.
func (p *Plain) Say(text string) {
	fmt.Fprintln(p.out, text)
}

// Ask prints prompt, if any, and reads one line. A final line without a
// trailing newline is returned; after that io.EOF.
func (p *Plain) Ask(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprintln(p.out, prompt)
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
