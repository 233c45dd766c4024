package lexer

import (
	"unicode/utf8"

	"github.com/thisisjab/myn/lang/token"
)

// Classify decides the kind of a single lexeme. It never fails: anything that does not fit a
// known shape is token.Unknown. The keyword identity is token.NoKeyword unless the kind is
// token.Keyword. A nil table reserves nothing.
func Classify(table *token.Table, lexeme string) (token.Kind, token.KeywordID) {
	if table != nil {
		if kw, ok := table.Lookup(lexeme); ok {
			return token.Keyword, kw
		}
	}

	if token.IsLogicalWord(lexeme) {
		return token.LogicalOperator, token.NoKeyword
	}

	if token.IsIdentifier(lexeme) {
		return token.Identifier, token.NoKeyword
	}

	if kind, ok := classifyNumber(lexeme); ok {
		return kind, token.NoKeyword
	}

	if r, size := utf8.DecodeRuneInString(lexeme); size > 0 {
		if kind, ok := token.LookupSymbol(r); ok {
			return kind, token.NoKeyword
		}
	}

	return token.Unknown, token.NoKeyword
}

// classifyNumber accepts decimal digits with at most one '.' and at least one digit.
func classifyNumber(lexeme string) (token.Kind, bool) {
	digits, dots := 0, 0

	for i := 0; i < len(lexeme); i++ {
		switch c := lexeme[i]; {
		case isDigit(rune(c)):
			digits++
		case c == '.':
			dots++
		default:
			return token.Unknown, false
		}
	}

	switch {
	case digits == 0 || dots > 1:
		return token.Unknown, false
	case dots == 1:
		return token.FloatLiteral, true
	default:
		return token.IntegerLiteral, true
	}
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
