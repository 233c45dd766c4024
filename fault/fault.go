package fault

import (
	"errors"
	"fmt"
)

type Code string

const (
	UnknownCode       Code = "unknown"
	NotFoundCode      Code = "not_found"
	BadInputCode      Code = "bad_input"
	LexicalCode       Code = "lexical"
	SyntaxCode        Code = "syntax"
	ConfigurationCode Code = "configuration"
)

type FieldErrorsMetadata map[string][]string

// Diagnostic locates a lexical or syntax fault in a source unit.
type Diagnostic struct {
	Construct string `json:"construct,omitempty"`
	Expected  string `json:"expected,omitempty"`
	Found     string `json:"found,omitempty"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Offset    int    `json:"offset"`
}

type Fault struct {
	code     Code
	message  string
	metadata any
	original error
}

func New(code Code, message string) Fault {
	return Fault{
		code:    code,
		message: message,
	}
}

func (f Fault) WithMetadata(metadata any) Fault {
	e := f
	e.metadata = metadata
	return e
}

func (f Fault) WithOriginal(original error) Fault {
	e := f
	e.original = original
	return e
}

func (f Fault) Code() Code {
	return f.code
}

func (f Fault) Message() string {
	return f.message
}

func (f Fault) Metadata() any {
	return f.metadata
}

func (f Fault) Original() error {
	return f.original
}

// Diagnostic returns the fault's position metadata, if it carries any.
func (f Fault) Diagnostic() (Diagnostic, bool) {
	d, ok := f.metadata.(Diagnostic)
	return d, ok
}

func (f Fault) Error() string {
	if f.original != nil {
		return fmt.Sprintf("%s: %v", f.message, f.original)
	}
	return f.message
}

func (f Fault) Unwrap() error {
	return f.original
}

// CodeOf returns the code of the first Fault in err's chain, or UnknownCode.
func CodeOf(err error) Code {
	var f Fault
	if errors.As(err, &f) {
		return f.code
	}
	return UnknownCode
}

// Is reports whether err carries a Fault with the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
