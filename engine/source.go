package engine

import (
	"context"

	"github.com/thisisjab/myn/entity"
)

// Source is an interface that defines the contract for source unit providers.
type Source interface {
	Name() string
	Provide(ctx context.Context, units chan<- entity.SourceUnit) error
}
