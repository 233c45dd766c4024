package parser

import (
	"fmt"

	"github.com/thisisjab/myn/lang/token"
)

// Construct names a statement shape the parser recognizes.
type Construct string

const (
	Statement           Construct = "statement"
	FunctionDefinition  Construct = "function definition"
	WhileLoop           Construct = "while loop"
	ForLoop             Construct = "for loop"
	OutputStatement     Construct = "output statement"
	VariableDeclaration Construct = "variable declaration"
	FunctionCall        Construct = "function call"
)

// Summary counts what was recognized. It is not a syntax tree.
type Summary struct {
	Statements map[Construct]int `json:"statements"`
	MaxDepth   int               `json:"max_depth"`
}

// Total returns the number of recognized statements, nested ones included.
func (s Summary) Total() int {
	n := 0
	for _, c := range s.Statements {
		n += c
	}
	return n
}

type Option func(*Parser)

// WithStrictHeaders validates function parameter lists and call arguments instead of only
// skipping over them.
func WithStrictHeaders() Option {
	return func(p *Parser) {
		p.strict = true
	}
}

// Parser validates that a token sequence is made of known statement shapes. It walks the
// tokens with a cursor that only moves forward and stops at the first error.
type Parser struct {
	tokens []token.Token
	cursor int
	depth  int
	strict bool

	summary Summary
}

func New(tokens []token.Token, opts ...Option) *Parser {
	p := &Parser{tokens: tokens}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Recognize runs a fresh parser over tokens.
func Recognize(tokens []token.Token, opts ...Option) (Summary, error) {
	return New(tokens, opts...).Recognize()
}

// Recognize validates the whole token sequence. The summary covers every statement recognized
// before an error, if any.
func (p *Parser) Recognize() (Summary, error) {
	p.cursor = 0
	p.depth = 0
	p.summary = Summary{Statements: make(map[Construct]int)}

	for !p.atEnd() {
		if err := p.parseStatement(); err != nil {
			return p.summary, err
		}
	}

	return p.summary, nil
}

func (p *Parser) atEnd() bool {
	return p.cursor >= len(p.tokens)
}

func (p *Parser) current() (token.Token, bool) {
	if p.atEnd() {
		return token.Token{}, false
	}
	return p.tokens[p.cursor], true
}

func (p *Parser) currentIs(kind token.Kind) bool {
	tok, ok := p.current()
	return ok && tok.Kind == kind
}

func (p *Parser) nextToken() {
	if !p.atEnd() {
		p.cursor++
	}
}

// expect consumes the current token if it has the given kind.
func (p *Parser) expect(construct Construct, kind token.Kind, expected string) (token.Token, error) {
	tok, ok := p.current()
	if !ok || tok.Kind != kind {
		return tok, p.fail(construct, expected)
	}

	p.nextToken()

	return tok, nil
}

func (p *Parser) parseStatement() error {
	tok, _ := p.current()

	var construct Construct
	var err error

	switch tok.Kind {
	case token.Keyword:
		switch tok.Keyword {
		case token.Fun:
			construct, err = FunctionDefinition, p.parseFunctionDefinition()
		case token.While:
			construct, err = WhileLoop, p.parseLoop(WhileLoop)
		case token.For:
			construct, err = ForLoop, p.parseLoop(ForLoop)
		case token.Output:
			construct, err = OutputStatement, p.parseOutputStatement()
		case token.IntType, token.FloatType, token.BoolType, token.StringType:
			construct, err = VariableDeclaration, p.parseVariableDeclaration()
		case token.Myn, token.Class, token.Switch, token.Break, token.Case, token.True, token.False,
			token.Public, token.Private, token.Protected, token.Enum, token.Void, token.This,
			token.Throw, token.Try, token.Catch, token.Import, token.Continue, token.Pass,
			token.Null, token.If, token.Elif, token.Else, token.Static, token.Return, token.Input:
			// Reserved words that do not start a recognized statement.
			return p.fail(Statement, "a statement")
		default:
			panic(fmt.Sprintf("parser: keyword %s has no statement rule", tok.Keyword))
		}
	case token.Identifier:
		construct, err = FunctionCall, p.parseFunctionCall()
	default:
		return p.fail(Statement, "a statement")
	}

	if err != nil {
		return err
	}

	p.summary.Statements[construct]++

	return nil
}

func (p *Parser) parseFunctionDefinition() error {
	p.nextToken() // Skip the function keyword

	if _, err := p.expect(FunctionDefinition, token.Identifier, "function name"); err != nil {
		return err
	}

	if !p.currentIs(token.OpenParen) {
		return p.fail(FunctionDefinition, "'(' after function name")
	}

	var err error
	if p.strict {
		err = p.parseParameterList()
	} else {
		err = p.skipBalanced(FunctionDefinition)
	}
	if err != nil {
		return err
	}

	return p.parseBlock(FunctionDefinition)
}

func (p *Parser) parseLoop(construct Construct) error {
	p.nextToken() // Skip `while` or `for`

	if !p.currentIs(token.OpenParen) {
		return p.fail(construct, "'(' to open the loop header")
	}

	if err := p.skipBalanced(construct); err != nil {
		return err
	}

	return p.parseBlock(construct)
}

func (p *Parser) parseOutputStatement() error {
	p.nextToken() // Skip `output`

	if _, err := p.expect(OutputStatement, token.OpenParen, "'('"); err != nil {
		return err
	}

	if _, err := p.expect(OutputStatement, token.StringLiteral, "a string"); err != nil {
		return err
	}

	if _, err := p.expect(OutputStatement, token.CloseParen, "')' after string"); err != nil {
		return err
	}

	if _, err := p.expect(OutputStatement, token.Semicolon, "';'"); err != nil {
		return err
	}

	return nil
}

// parseVariableDeclaration accepts `type name`, `type name;` and `type name = ...;`.
// The initializer is not checked against the declared type.
func (p *Parser) parseVariableDeclaration() error {
	p.nextToken() // Skip the type keyword

	if _, err := p.expect(VariableDeclaration, token.Identifier, "variable name"); err != nil {
		return err
	}

	switch {
	case p.currentIs(token.AssignmentOperator):
		p.nextToken()
		return p.skipPast(VariableDeclaration, token.Semicolon, "';' after initializer")
	case p.currentIs(token.Semicolon):
		p.nextToken()
	}

	return nil
}

func (p *Parser) parseFunctionCall() error {
	p.nextToken() // Skip function name

	if !p.currentIs(token.OpenParen) {
		return p.fail(FunctionCall, "'(' for function call")
	}

	if p.strict {
		if err := p.skipBalanced(FunctionCall); err != nil {
			return err
		}
		_, err := p.expect(FunctionCall, token.Semicolon, "';'")
		return err
	}

	return p.skipPast(FunctionCall, token.Semicolon, "';'")
}

// parseBlock consumes `{ statement* }`.
func (p *Parser) parseBlock(construct Construct) error {
	if _, err := p.expect(construct, token.OpenBrace, "'{'"); err != nil {
		return err
	}

	p.depth++
	if p.depth > p.summary.MaxDepth {
		p.summary.MaxDepth = p.depth
	}

	for !p.currentIs(token.CloseBrace) {
		if p.atEnd() {
			return p.fail(construct, "'}'")
		}
		if err := p.parseStatement(); err != nil {
			return err
		}
	}

	p.nextToken() // Skip `}`
	p.depth--

	return nil
}

// skipBalanced advances from an opening parenthesis past its matching closer without looking
// at anything in between.
func (p *Parser) skipBalanced(construct Construct) error {
	depth := 0

	for !p.atEnd() {
		switch p.tokens[p.cursor].Kind {
		case token.OpenParen:
			depth++
		case token.CloseParen:
			depth--
		}

		p.nextToken()

		if depth == 0 {
			return nil
		}
	}

	return p.fail(construct, "')'")
}

// skipPast advances past the next token of the given kind.
func (p *Parser) skipPast(construct Construct, kind token.Kind, expected string) error {
	for !p.atEnd() {
		found := p.tokens[p.cursor].Kind == kind
		p.nextToken()
		if found {
			return nil
		}
	}

	return p.fail(construct, expected)
}

// parseParameterList consumes `( [type] name {, [type] name} )`.
func (p *Parser) parseParameterList() error {
	p.nextToken() // Skip `(`

	if p.currentIs(token.CloseParen) {
		p.nextToken()
		return nil
	}

	for {
		if tok, ok := p.current(); ok && tok.Kind == token.Keyword && tok.Keyword.IsPrimitiveType() {
			p.nextToken()
		}

		if _, err := p.expect(FunctionDefinition, token.Identifier, "parameter name"); err != nil {
			return err
		}

		switch {
		case p.currentIs(token.Comma):
			p.nextToken()
		case p.currentIs(token.CloseParen):
			p.nextToken()
			return nil
		default:
			return p.fail(FunctionDefinition, "',' or ')' in parameter list")
		}
	}
}
