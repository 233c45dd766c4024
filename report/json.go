package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/thisisjab/myn/entity"
)

// JSONSink writes every result as one JSON document per line.
type JSONSink struct {
	enc *json.Encoder
	mu  sync.Mutex
}

func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

func (s *JSONSink) Store(ctx context.Context, results ...entity.CheckResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, res := range results {
		if err := s.enc.Encode(res); err != nil {
			return fmt.Errorf("cannot encode result: %w", err)
		}
	}

	return nil
}
