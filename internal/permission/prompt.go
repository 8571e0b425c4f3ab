package permission

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yanmxa/wtf/internal/render"
)

// Prompter asks the user to confirm commands on a line-oriented terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	// Width is the panel width in columns.
	Width int
}

// NewPrompter creates a prompter reading answers from in and writing the
// confirmation panel to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, Width: 80}
}

// PromptForPermission shows cmd and asks whether to run it. The "always"
// choice is offered only when pattern is non-empty. An empty answer means
// yes; end of input means no. The prompter never touches the allowlist.
func (p *Prompter) PromptForPermission(cmd, explanation, pattern string) (Answer, error) {
	panel := render.CommandPanel(cmd, explanation, IsCommandDangerous(cmd), p.Width)
	if _, err := fmt.Fprintln(p.out, panel); err != nil {
		return No, err
	}

	question := "Run this command? [Y]es / [n]o: "
	if pattern != "" {
		question = fmt.Sprintf("Run this command? [Y]es / [a]lways allow %q / [n]o: ", pattern)
	}

	for {
		if _, err := fmt.Fprint(p.out, question); err != nil {
			return No, err
		}
		line, err := p.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return No, err
		}
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(p.out)
			return No, nil
		}

		if answer, ok := parseAnswer(line, pattern != ""); ok {
			return answer, nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return No, nil
		}
		fmt.Fprintln(p.out, render.MetaStyle.Render("Please answer y or n"+alwaysHint(pattern)+"."))
	}
}

func alwaysHint(pattern string) string {
	if pattern == "" {
		return ""
	}
	return " (or a)"
}

func parseAnswer(line string, allowAlways bool) (Answer, bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return Yes, true
	case "n", "no":
		return No, true
	case "a", "always":
		if allowAlways {
			return YesAlways, true
		}
	}
	return No, false
}
