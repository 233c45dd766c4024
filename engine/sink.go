package engine

import (
	"context"

	"github.com/thisisjab/myn/entity"
)

// Sink receives check results. Implementations must be safe for concurrent use.
type Sink interface {
	Store(ctx context.Context, results ...entity.CheckResult) error
}
