package parser

import (
	"fmt"
	"unicode/utf8"

	"github.com/thisisjab/myn/fault"
	"github.com/thisisjab/myn/lang/token"
)

// fail reports that construct needed expected at the cursor. Meeting an unknown lexeme is a
// lexical fault; anything else is a syntax fault.
func (p *Parser) fail(construct Construct, expected string) error {
	code := fault.SyntaxCode
	found := "end of input"
	pos := p.endPos()

	if tok, ok := p.current(); ok {
		found = describe(tok)
		pos = tok.Pos
		if tok.Kind == token.Unknown {
			code = fault.LexicalCode
		}
	}

	msg := fmt.Sprintf("%s: expected %s, found %s at %s", construct, expected, found, pos)

	return fault.New(code, msg).WithMetadata(fault.Diagnostic{
		Construct: string(construct),
		Expected:  expected,
		Found:     found,
		Line:      pos.Line,
		Column:    pos.Column,
		Offset:    pos.Offset,
	})
}

// endPos is the position just after the last token.
func (p *Parser) endPos() token.Pos {
	if len(p.tokens) == 0 {
		return token.Pos{Line: 1, Column: 1}
	}

	last := p.tokens[len(p.tokens)-1]
	pos := last.Pos
	pos.Offset += utf8.RuneCountInString(last.Lexeme)

	for _, r := range last.Lexeme {
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}

	return pos
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.OpenParen, token.CloseParen, token.OpenBrace, token.CloseBrace,
		token.OpenBracket, token.CloseBracket, token.Semicolon, token.Comma:
		return tok.Kind.String()
	case token.Unknown:
		return fmt.Sprintf("invalid lexeme %q", tok.Lexeme)
	default:
		return fmt.Sprintf("%s %q", tok.Kind, tok.Lexeme)
	}
}
