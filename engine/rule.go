package engine

import (
	"github.com/thisisjab/myn/entity"
	"github.com/thisisjab/myn/lang/token"
)

// Rule is a lint rule run over the tokens of every unit that tokenized cleanly.
// Rules are shared between workers and must be safe for concurrent use.
type Rule interface {
	Name() string
	Check(tokens []token.Token) ([]entity.Diagnostic, error)
}
