// Package confirm asks the admin to affirm destructive actions.
package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Gate resolves a yes/no question. It never fails: anything other than an
// explicit yes counts as no.
type Gate interface {
	Confirm(ctx context.Context, title, body string) bool
}

// Static always answers the same way.
type Static bool

func (s Static) Confirm(context.Context, string, string) bool { return bool(s) }

// Func adapts a plain function.
type Func func(ctx context.Context, title, body string) bool

func (f Func) Confirm(ctx context.Context, title, body string) bool {
	if f == nil {
		return false
	}
	return f(ctx, title, body)
}

// Answer reads the value posted by a confirmation page ("confirm=1").
func Answer(formValue string) Gate {
	return Static(isYes(formValue))
}

// Terminal asks on out and waits for a y/N line on in. End of input or a
// cancelled context counts as no. It asks one question at a time.
func Terminal(in io.Reader, out io.Writer) Gate {
	lines := bufio.NewScanner(in)
	return Func(func(ctx context.Context, title, body string) bool {
		fmt.Fprintf(out, "%s\n%s [y/N]: ", title, body)

		answer := make(chan string, 1)
		go func() {
			if lines.Scan() {
				answer <- lines.Text()
				return
			}
			answer <- ""
		}()

		select {
		case a := <-answer:
			return isYes(a)
		case <-ctx.Done():
			fmt.Fprintln(out)
			return false
		}
	})
}

func isYes(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "y", "yes", "true", "on":
		return true
	default:
		return false
	}
}
