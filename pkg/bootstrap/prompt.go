package bootstrap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter supplies a single line of operator input. Injecting it keeps the
// billing selector and sequencer testable with canned responses.
type Prompter interface {
	Prompt(label string) (string, error)
}

// StdinPrompter reads responses line-by-line from an input stream,
// defaulting to stdin/stdout.
type StdinPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

func NewStdinPrompter() *StdinPrompter {
	return &StdinPrompter{
		reader: bufio.NewReader(os.Stdin),
		writer: os.Stdout,
	}
}

func NewPrompter(r io.Reader, w io.Writer) *StdinPrompter {
	return &StdinPrompter{reader: bufio.NewReader(r), writer: w}
}

func (p *StdinPrompter) Prompt(label string) (string, error) {
	fmt.Fprint(p.writer, label)
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ScriptedPrompter replays a fixed sequence of responses; once exhausted it
// returns blank answers. Tests use it to run the interactive paths headless.
type ScriptedPrompter struct {
	Responses []string
	Labels    []string
	next      int
}

func (p *ScriptedPrompter) Prompt(label string) (string, error) {
	p.Labels = append(p.Labels, label)
	if p.next >= len(p.Responses) {
		return "", nil
	}
	response := p.Responses[p.next]
	p.next++
	return response, nil
}
