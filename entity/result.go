package entity

import (
	"time"

	"github.com/google/uuid"
)

type Severity uint8

const (
	SeverityUnknown Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	return [...]string{"unknown", "info", "warning", "error"}[s]
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	*s = ParseSeverity(string(text))
	return nil
}

// ParseSeverity maps a severity name to its value. Unrecognized names are warnings.
func ParseSeverity(s string) Severity {
	switch s {
	case "info":
		return SeverityInfo
	case "error":
		return SeverityError
	default:
		return SeverityWarning
	}
}

// SourceUnit is one source buffer handed to the checker.
type SourceUnit struct {
	Name    string `json:"name"`
	Content string `json:"-"`
}

// Diagnostic is a finding about a source unit, either the fault that stopped the check or
// something reported by a lint rule.
type Diagnostic struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
}

// CheckResult is the outcome of checking one source unit.
type CheckResult struct {
	ID          uuid.UUID      `json:"id"`
	Source      string         `json:"source"`
	CheckedAt   time.Time      `json:"checked_at"`
	Duration    time.Duration  `json:"duration"`
	Tokens      int            `json:"tokens"`
	Statements  map[string]int `json:"statements,omitempty"`
	MaxDepth    int            `json:"max_depth"`
	Valid       bool           `json:"valid"`
	Code        string         `json:"code,omitempty"`
	Error       string         `json:"error,omitempty"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
}
