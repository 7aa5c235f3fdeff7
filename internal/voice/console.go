package voice

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// ConsoleProvider reads utterances from stdin and "speaks" to stdout.
// It is the default provider: the memory subsystem is the point of this
// program, and a terminal is the cheapest microphone.
type ConsoleProvider struct {
	in  *bufio.Reader
	out io.Writer

	start sync.Once
	lines chan consoleLine
}

type consoleLine struct {
	text string
	err  error
}

func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{
		in:    bufio.NewReader(os.Stdin),
		out:   os.Stdout,
		lines: make(chan consoleLine),
	}
}

// Listen returns the next input line or the context's error, whichever
// comes first. The underlying stdin read cannot be interrupted; after a
// cancellation the pending line is delivered to the next call instead.
func (p *ConsoleProvider) Listen(ctx context.Context) (string, error) {
	p.start.Do(func() { go p.readLines() })

	fmt.Fprint(p.out, "you> ")
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line := <-p.lines:
		if line.err != nil {
			return "", line.err
		}
		return line.text, nil
	}
}

func (p *ConsoleProvider) readLines() {
	for {
		line, err := p.in.ReadString('\n')
		if err != nil {
			// Keep reporting the terminal error to later calls.
			for {
				p.lines <- consoleLine{err: err}
			}
		}
		p.lines <- consoleLine{text: strings.TrimSpace(line)}
	}
}

func (p *ConsoleProvider) Speak(_ context.Context, text string) error {
	_, err := fmt.Fprintf(p.out, "elysia> %s\n", text)
	return err
}
