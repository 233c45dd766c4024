package token

import "fmt"

type Kind uint8

const (
	Unknown Kind = iota

	// Identifiers + literals
	Identifier
	IntegerLiteral
	FloatLiteral
	StringLiteral

	// Operators
	AssignmentOperator
	ArithmeticOperator
	LogicalOperator

	Keyword

	// Delimiters
	OpenParen
	CloseParen
	OpenBrace
	CloseBrace
	OpenBracket
	CloseBracket
	Semicolon
	Comma
)

var kindNames = [...]string{
	Unknown:            "unknown",
	Identifier:         "identifier",
	IntegerLiteral:     "integer",
	FloatLiteral:       "float",
	StringLiteral:      "string",
	AssignmentOperator: "assignment operator",
	ArithmeticOperator: "arithmetic operator",
	LogicalOperator:    "logical operator",
	Keyword:            "keyword",
	OpenParen:          "'('",
	CloseParen:         "')'",
	OpenBrace:          "'{'",
	CloseBrace:         "'}'",
	OpenBracket:        "'['",
	CloseBracket:       "']'",
	Semicolon:          "';'",
	Comma:              "','",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Pos is a location in the source buffer. Line and Column are 1-based and count runes.
type Pos struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a classified lexeme. Keyword is NoKeyword unless Kind is Keyword.
type Token struct {
	Lexeme  string
	Kind    Kind
	Keyword KeywordID
	Pos     Pos
}

func (t Token) String() string {
	if t.Kind == Keyword {
		return fmt.Sprintf("%s(%s) %q", t.Kind, t.Keyword, t.Lexeme)
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Lexeme)
}

// Is reports whether the token is the given keyword identity, whatever its spelling.
func (t Token) Is(kw KeywordID) bool {
	return t.Kind == Keyword && t.Keyword == kw
}

var symbols = map[rune]Kind{
	'=': AssignmentOperator,
	'+': ArithmeticOperator,
	'-': ArithmeticOperator,
	'*': ArithmeticOperator,
	'/': ArithmeticOperator,
	'(': OpenParen,
	')': CloseParen,
	'{': OpenBrace,
	'}': CloseBrace,
	'[': OpenBracket,
	']': CloseBracket,
	';': Semicolon,
	',': Comma,
}

// LookupSymbol returns the kind of a single-character symbol.
func LookupSymbol(r rune) (Kind, bool) {
	k, ok := symbols[r]
	return k, ok
}

var logicalWords = map[string]struct{}{
	"and": {},
	"or":  {},
	"not": {},
}

// IsLogicalWord reports whether s is one of the fixed logical operator words.
// These are not part of the keyword table and cannot be renamed.
func IsLogicalWord(s string) bool {
	_, ok := logicalWords[s]
	return ok
}
