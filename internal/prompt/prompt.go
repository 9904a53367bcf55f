// Package prompt asks the operator for a notebook identifier on a terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oshokin/setup-package/internal/domain/setup"
)

// DefaultQuestion is printed before reading the identifier.
const DefaultQuestion = "Enter notebook identifier: "

type lineResult struct {
	line string
	err  error
}

// Identifier prints question to out and reads one line from in.
// End of input and context cancellation both return setup.ErrAborted.
// The reading goroutine is left blocked on in after a cancellation.
func Identifier(ctx context.Context, in io.Reader, out io.Writer, question string) (string, error) {
	if _, err := fmt.Fprint(out, question); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}

	lines := make(chan lineResult, 1)

	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		lines <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", setup.ErrAborted, ctx.Err())
	case result := <-lines:
		return parseLine(result)
	}
}

func parseLine(result lineResult) (string, error) {
	identifier := strings.TrimSpace(result.line)

	switch {
	case result.err == nil:
		return identifier, nil
	case errors.Is(result.err, io.EOF) && identifier != "":
		return identifier, nil
	case errors.Is(result.err, io.EOF):
		return "", setup.ErrAborted
	default:
		return "", fmt.Errorf("read identifier: %w", result.err)
	}
}
