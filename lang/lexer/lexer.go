package lexer

import (
	"fmt"
	"unicode/utf8"

	"github.com/thisisjab/myn/fault"
	"github.com/thisisjab/myn/lang/token"
)

// Lexer turns a source buffer into tokens in a single left-to-right pass. Lexemes are slices
// of the input, so invalid UTF-8 is kept byte for byte. Offsets in token positions count runes.
type Lexer struct {
	input string
	table *token.Table

	pos    int  // byte index of the current character
	width  int  // byte width of the current character
	offset int  // rune index of the current character
	line   int  // line of the current character
	col    int  // column of the current character
	char   rune // current character being processed

	pendingStart int       // byte index where the unclassified run started, -1 when there is none
	pendingPos   token.Pos // where the pending run started

	tokens []token.Token
}

// New creates a lexer reading keywords from table. The table is only read; it must not be
// rebuilt until Tokenize returns.
func New(input string, table *token.Table) *Lexer {
	return &Lexer{input: input, table: table}
}

// Tokenize scans the whole input into tokens. On a lexical fault it returns the tokens produced
// so far (including a best-effort token for an unterminated string) together with the error.
func Tokenize(input string, table *token.Table) ([]token.Token, error) {
	return New(input, table).Tokenize()
}

func (l *Lexer) Tokenize() ([]token.Token, error) {
	l.reset()

	for !l.atEnd() {
		switch c := l.char; {
		case c == '"' || c == '\'':
			l.flush()
			if err := l.readQuotedString(c); err != nil {
				return l.tokens, err
			}
			continue

		case c == '#':
			l.flush()
			l.skipLineComment()
			continue

		case c == '/' && l.peekChar() == '*':
			l.flush()
			if err := l.skipBlockComment(); err != nil {
				return l.tokens, err
			}
			continue

		case isWhitespace(c):
			l.flush()

		default:
			if kind, ok := token.LookupSymbol(c); ok {
				l.flush()
				l.emit(token.Token{Lexeme: l.input[l.pos : l.pos+l.width], Kind: kind, Pos: l.position()})
			} else if l.pendingStart < 0 {
				l.pendingStart = l.pos
				l.pendingPos = l.position()
			}
		}

		l.readChar()
	}

	l.flush()

	return l.tokens, nil
}

func (l *Lexer) reset() {
	l.pos, l.offset, l.line, l.col = 0, 0, 1, 1
	l.decode()
	l.pendingStart = -1
	l.tokens = make([]token.Token, 0, len(l.input)/4)
}

// decode loads the character at pos. An invalid byte is a one byte utf8.RuneError.
func (l *Lexer) decode() {
	if l.atEnd() {
		l.char, l.width = 0, 0
		return
	}
	l.char, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) readChar() {
	if l.atEnd() {
		return
	}

	if l.char == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	l.pos += l.width
	l.offset++
	l.decode()
}

func (l *Lexer) peekChar() rune {
	next := l.pos + l.width
	if next >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[next:])
	return r
}

func (l *Lexer) position() token.Pos {
	return token.Pos{Offset: l.offset, Line: l.line, Column: l.col}
}

func (l *Lexer) emit(tok token.Token) {
	l.tokens = append(l.tokens, tok)
}

// flush classifies the pending run, if any, and emits it.
func (l *Lexer) flush() {
	if l.pendingStart < 0 {
		return
	}

	lexeme := l.input[l.pendingStart:l.pos]
	kind, kw := Classify(l.table, lexeme)
	l.emit(token.Token{Lexeme: lexeme, Kind: kind, Keyword: kw, Pos: l.pendingPos})

	l.pendingStart = -1
}

// readQuotedString consumes a string literal including both delimiters. Quoted content is never
// classified. Other quote characters inside the literal are plain content.
func (l *Lexer) readQuotedString(delim rune) error {
	start := l.position()
	from := l.pos

	l.readChar()
	for !l.atEnd() {
		if l.char == delim {
			l.readChar()
			l.emit(token.Token{Lexeme: l.input[from:l.pos], Kind: token.StringLiteral, Pos: start})
			return nil
		}
		l.readChar()
	}

	l.emit(token.Token{Lexeme: l.input[from:], Kind: token.StringLiteral, Pos: start})

	return fault.New(fault.LexicalCode, fmt.Sprintf("unterminated string literal starting at %s", start)).
		WithMetadata(fault.Diagnostic{
			Construct: "string literal",
			Expected:  fmt.Sprintf("closing %c", delim),
			Found:     "end of input",
			Line:      start.Line,
			Column:    start.Column,
			Offset:    start.Offset,
		})
}

// skipLineComment consumes everything up to and including the next newline.
func (l *Lexer) skipLineComment() {
	for !l.atEnd() && l.char != '\n' {
		l.readChar()
	}
	l.readChar()
}

// skipBlockComment consumes a /* ... */ comment. An unterminated comment runs to end of input.
func (l *Lexer) skipBlockComment() error {
	start := l.position()

	// Skip "/*"
	l.readChar()
	l.readChar()

	for !l.atEnd() {
		if l.char == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return nil
		}
		l.readChar()
	}

	return fault.New(fault.LexicalCode, fmt.Sprintf("unterminated block comment starting at %s", start)).
		WithMetadata(fault.Diagnostic{
			Construct: "block comment",
			Expected:  "*/",
			Found:     "end of input",
			Line:      start.Line,
			Column:    start.Column,
			Offset:    start.Offset,
		})
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}
