package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// lineConfirmer asks yes/no questions on a terminal.
type lineConfirmer struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func newLineConfirmer(in io.Reader, out io.Writer, assumeYes bool) *lineConfirmer {
	return &lineConfirmer{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

func (c *lineConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if c.assumeYes {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// ReadLine prints prompt and returns the trimmed answer.
func (c *lineConfirmer) ReadLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

type writerNotifier struct {
	out    io.Writer
	errOut io.Writer
}

func (n writerNotifier) Success(msg string) { fmt.Fprintln(n.out, "ok:", msg) }

func (n writerNotifier) Failure(msg string) { fmt.Fprintln(n.errOut, "error:", msg) }
