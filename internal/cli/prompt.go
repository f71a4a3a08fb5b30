package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads answers for 'config init'. Secrets are read without echo when
// the input is a terminal.
type prompter struct {
	reader *bufio.Reader
	out    io.Writer
	fd     int // terminal file descriptor, -1 when input is not a terminal
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{reader: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
	}
	return p
}

// ask prints label and returns the trimmed answer, or def when the answer is empty.
func (p *prompter) ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if answer := strings.TrimSpace(line); answer != "" {
		return answer, nil
	}
	return def, nil
}

// askRequired repeats the question until a non-empty answer is given.
func (p *prompter) askRequired(label, def string) (string, error) {
	for {
		answer, err := p.ask(label, def)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		fmt.Fprintf(p.out, "  Error: %s is required\n", strings.ToLower(label))
		if _, err := p.reader.Peek(1); err == io.EOF {
			return "", fmt.Errorf("%s is required", strings.ToLower(label))
		}
	}
}

// askSecret reads a value without echoing it. An empty answer keeps def.
func (p *prompter) askSecret(label, def string) (string, error) {
	if p.fd < 0 {
		return p.ask(label, def)
	}

	if def != "" {
		fmt.Fprintf(p.out, "%s [keep current]: ", label)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	if answer := strings.TrimSpace(string(b)); answer != "" {
		return answer, nil
	}
	return def, nil
}

// mask hides a secret, keeping only its length.
func mask(secret string) string {
	if secret == "" {
		return "<not set>"
	}
	return fmt.Sprintf("<set (%d chars)>", len(secret))
}
