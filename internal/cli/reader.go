package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCanceled is returned when a read is abandoned because the context
// ended.
var ErrInputCanceled = errors.New("input canceled")

type readResult struct {
	err  error
	text string
}

// LineReader reads lines from a terminal or file with context-aware
// cancellation. Input that arrives after a canceled read is not lost; the
// next ReadLine call returns it.
type LineReader struct {
	reader *bufio.Reader
	lines  chan readResult
	once   sync.Once
}

// NewLineReader wraps an input stream. Panics on a nil reader.
func NewLineReader(r io.Reader) *LineReader {
	if r == nil {
		panic("reader cannot be nil")
	}
	return &LineReader{
		reader: bufio.NewReader(r),
		lines:  make(chan readResult, 1),
	}
}

// ReadLine returns the next line with surrounding whitespace trimmed. It
// returns ErrInputCanceled when ctx ends first and io.EOF when the input is
// exhausted.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrInputCanceled
	}

	r.once.Do(r.start)

	select {
	case <-ctx.Done():
		return "", ErrInputCanceled
	case res, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.text), nil
	}
}

// start launches the pump goroutine on first use. It runs until the
// underlying stream fails, delivering a final unterminated line before the
// error that ended it.
func (r *LineReader) start() {
	go func() {
		defer close(r.lines)
		for {
			line, err := r.reader.ReadString('\n')
			if err != nil {
				if line != "" {
					r.lines <- readResult{text: line}
				}
				r.lines <- readResult{err: err}
				return
			}
			r.lines <- readResult{text: line}
		}
	}()
}
