package report

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/thisisjab/myn/entity"
)

// TextSink writes one human readable line per result followed by its diagnostics.
type TextSink struct {
	w  io.Writer
	mu sync.Mutex
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

func (s *TextSink) Store(ctx context.Context, results ...entity.CheckResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, res := range results {
		if err := s.write(res); err != nil {
			return fmt.Errorf("cannot write result: %w", err)
		}
	}

	return nil
}

func (s *TextSink) write(res entity.CheckResult) error {
	status := "ok"
	if !res.Valid {
		status = "FAIL"
	}

	statements := 0
	for _, n := range res.Statements {
		statements += n
	}

	if _, err := fmt.Fprintf(s.w, "%-4s %s (%d tokens, %d statements)\n", status, res.Source, res.Tokens, statements); err != nil {
		return err
	}

	for _, d := range res.Diagnostics {
		if _, err := fmt.Fprintf(s.w, "     %s:%d:%d: %s: %s [%s]\n", res.Source, d.Line, d.Column, d.Severity, d.Message, d.Rule); err != nil {
			return err
		}
	}

	return nil
}
