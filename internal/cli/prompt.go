package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// NotifyKind classifies a notification.
type NotifyKind string

const (
	NotifyInfo    NotifyKind = "info"
	NotifySuccess NotifyKind = "success"
	NotifyWarning NotifyKind = "warning"
	NotifyError   NotifyKind = "error"
)

// Prompter asks the operator for confirmation and reports outcomes.
type Prompter interface {
	Confirm(title, message string) bool
	Notify(title, message string, kind NotifyKind)
}

// linePrompter prompts on a terminal-like stream.
type linePrompter struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

// NewPrompter returns a Prompter reading answers from in. With assumeYes
// every confirmation succeeds without reading.
func NewPrompter(in io.Reader, out io.Writer, assumeYes bool) Prompter {
	return &linePrompter{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

func (p *linePrompter) Confirm(title, message string) bool {
	if p.assumeYes {
		return true
	}
	fmt.Fprintf(p.out, "%s\n%s [y/N] ", title, message)
	answer, err := p.in.ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "s", "sim":
		return true
	default:
		return false
	}
}

func (p *linePrompter) Notify(title, message string, kind NotifyKind) {
	var mark string
	switch kind {
	case NotifySuccess:
		mark = "✓"
	case NotifyWarning:
		mark = "!"
	case NotifyError:
		mark = "✗"
	default:
		mark = "·"
	}
	if message == "" {
		fmt.Fprintf(p.out, "%s %s\n", mark, title)
		return
	}
	fmt.Fprintf(p.out, "%s %s: %s\n", mark, title, message)
}
