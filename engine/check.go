package engine

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/thisisjab/myn/entity"
	"github.com/thisisjab/myn/fault"
	"github.com/thisisjab/myn/lang/lexer"
	"github.com/thisisjab/myn/lang/parser"
	"github.com/thisisjab/myn/lang/token"
)

// Check runs the whole pipeline over one unit with a private copy of the configured keyword table.
func (e *Engine) Check(unit entity.SourceUnit) entity.CheckResult {
	return e.CheckWithTable(unit, e.cfg.Table.Clone())
}

// CheckWithTable is Check with an explicit keyword table. The table must not be rebuilt while
// the check runs.
func (e *Engine) CheckWithTable(unit entity.SourceUnit, table *token.Table) entity.CheckResult {
	start := time.Now()

	res := entity.CheckResult{
		ID:        uuid.New(),
		Source:    unit.Name,
		CheckedAt: start,
	}

	tokens, err := lexer.Tokenize(unit.Content, table)
	res.Tokens = len(tokens)

	if err == nil {
		res.Diagnostics = append(res.Diagnostics, e.runRules(unit, tokens)...)

		var summary parser.Summary
		summary, err = parser.Recognize(tokens, e.parserOptions()...)

		res.MaxDepth = summary.MaxDepth
		res.Statements = make(map[string]int, len(summary.Statements))
		for c, n := range summary.Statements {
			res.Statements[string(c)] = n
		}
	}

	res.Valid = true
	if err != nil {
		res.Valid = false
		res.Code = string(fault.CodeOf(err))
		res.Error = err.Error()
		res.Diagnostics = append([]entity.Diagnostic{faultDiagnostic(err)}, res.Diagnostics...)
	}

	for _, d := range res.Diagnostics {
		if d.Severity == entity.SeverityError {
			res.Valid = false
		}
	}

	res.Duration = time.Since(start)

	e.logger.Debug("checked source unit", "source", unit.Name, "id", res.ID, "tokens", res.Tokens, "valid", res.Valid, "duration", res.Duration)

	return res
}

func (e *Engine) parserOptions() []parser.Option {
	if e.cfg.Strict {
		return []parser.Option{parser.WithStrictHeaders()}
	}
	return nil
}

func (e *Engine) runRules(unit entity.SourceUnit, tokens []token.Token) []entity.Diagnostic {
	var res []entity.Diagnostic

	for _, r := range e.cfg.Rules {
		ds, err := r.Check(tokens)
		if err != nil {
			e.logger.Warn("lint rule failed", "rule", r.Name(), "source", unit.Name, "error", err)
			continue
		}

		for _, d := range ds {
			if d.Rule == "" {
				d.Rule = r.Name()
			}
			res = append(res, d)
		}
	}

	return res
}

func faultDiagnostic(err error) entity.Diagnostic {
	d := entity.Diagnostic{
		Rule:     string(fault.CodeOf(err)),
		Severity: entity.SeverityError,
		Message:  err.Error(),
	}

	var f fault.Fault
	if errors.As(err, &f) {
		if pos, ok := f.Diagnostic(); ok {
			d.Line = pos.Line
			d.Column = pos.Column
		}
	}

	return d
}
