package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/thisisjab/myn/fault"
	"github.com/thisisjab/myn/lang/lexer"
	"github.com/thisisjab/myn/lang/token"
)

func tokenize(t *testing.T, table *token.Table, input string) []token.Token {
	t.Helper()

	tokens, err := lexer.Tokenize(input, table)
	if err != nil {
		t.Fatalf("Tokenize(%q): unexpected error: %v", input, err)
	}

	return tokens
}

func TestRecognizeAccepts(t *testing.T) {
	tests := map[string]map[Construct]int{
		`output("hi");`: {
			OutputStatement: 1,
		},
		`fun f(g(1,2), h()) { }`: {
			FunctionDefinition: 1,
		},
		`fun main() {
			int x = 5;
			while (x) {
				output("loop");
				x();
			}
		}`: {
			FunctionDefinition:  1,
			VariableDeclaration: 1,
			WhileLoop:           1,
			OutputStatement:     1,
			FunctionCall:        1,
		},
		`for (i = 0; i < 10; i = i + 1) { }`: {
			ForLoop: 1,
		},
		`string name; bool flag float ratio = 1.5;`: {
			VariableDeclaration: 3,
		},
		`print("a", 1 + 2);`: {
			FunctionCall: 1,
		},
		`# nothing but a comment`: {},
	}

	for input, expected := range tests {
		summary, err := Recognize(tokenize(t, token.NewTable(), input))
		if err != nil {
			t.Fatalf("Recognize(%q): unexpected error: %v", input, err)
		}

		if diff := cmp.Diff(expected, summary.Statements); diff != "" {
			t.Fatalf("Recognize(%q) statements mismatch (-want +got):\n%s", input, diff)
		}
	}
}

func TestRecognizeOutputStatement(t *testing.T) {
	tokens := tokenize(t, token.NewTable(), `output("hi");`)

	if len(tokens) != 5 {
		t.Fatalf("expected 5 tokens, got %d", len(tokens))
	}

	summary, err := Recognize(tokens)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Total() != 1 || summary.MaxDepth != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestRecognizeMissingSemicolon(t *testing.T) {
	tokens := tokenize(t, token.NewTable(), `output("hi")`)

	_, err := Recognize(tokens)
	if !fault.Is(err, fault.SyntaxCode) {
		t.Fatalf("expected syntax fault, got %v", err)
	}

	f, _ := err.(fault.Fault)
	d, _ := f.Diagnostic()

	want := fault.Diagnostic{
		Construct: string(OutputStatement),
		Expected:  "';'",
		Found:     "end of input",
		Line:      1,
		Column:    13,
		Offset:    12,
	}

	if diff := cmp.Diff(want, d); diff != "" {
		t.Fatalf("diagnostic mismatch (-want +got):\n%s", diff)
	}
}

func TestRecognizeRejects(t *testing.T) {
	tests := []struct {
		input     string
		code      fault.Code
		construct Construct
		expected  string
		found     string
	}{
		{`output(42);`, fault.SyntaxCode, OutputStatement, "a string", `integer "42"`},
		{`output "hi";`, fault.SyntaxCode, OutputStatement, "'('", `string "\"hi\""`},
		{`output("hi";`, fault.SyntaxCode, OutputStatement, "')' after string", "';'"},
		{`fun (x) { }`, fault.SyntaxCode, FunctionDefinition, "function name", "'('"},
		{`fun f { }`, fault.SyntaxCode, FunctionDefinition, "'(' after function name", "'{'"},
		{`fun f() output("x");`, fault.SyntaxCode, FunctionDefinition, "'{'", `keyword "output"`},
		{`fun f() { output("x");`, fault.SyntaxCode, FunctionDefinition, "'}'", "end of input"},
		{`while x { }`, fault.SyntaxCode, WhileLoop, "'(' to open the loop header", `identifier "x"`},
		{`while (x { }`, fault.SyntaxCode, WhileLoop, "')'", "end of input"},
		{`for (;;) output("x");`, fault.SyntaxCode, ForLoop, "'{'", `keyword "output"`},
		{`int 5;`, fault.SyntaxCode, VariableDeclaration, "variable name", `integer "5"`},
		{`int x = 5`, fault.SyntaxCode, VariableDeclaration, "';' after initializer", "end of input"},
		{`print(1, 2)`, fault.SyntaxCode, FunctionCall, "';'", "end of input"},
		{`foo;`, fault.SyntaxCode, FunctionCall, "'(' for function call", "';'"},
		{`}`, fault.SyntaxCode, Statement, "a statement", "'}'"},
		{`return x;`, fault.SyntaxCode, Statement, "a statement", `keyword "return"`},
		{`42;`, fault.SyntaxCode, Statement, "a statement", `integer "42"`},
		{`@x`, fault.LexicalCode, Statement, "a statement", `invalid lexeme "@x"`},
		{`int 1x;`, fault.LexicalCode, VariableDeclaration, "variable name", `invalid lexeme "1x"`},
		{`while (x) { output("a"); } }`, fault.SyntaxCode, Statement, "a statement", "'}'"},
	}

	for i, tt := range tests {
		_, err := Recognize(tokenize(t, token.NewTable(), tt.input))
		if err == nil {
			t.Fatalf("#%d - Recognize(%q): expected an error", i, tt.input)
		}

		f, ok := err.(fault.Fault)
		if !ok {
			t.Fatalf("#%d - Recognize(%q): expected a fault, got %T", i, tt.input, err)
		}

		if f.Code() != tt.code {
			t.Fatalf("#%d - Recognize(%q): expected code `%s`, got `%s` (%v)", i, tt.input, tt.code, f.Code(), err)
		}

		d, _ := f.Diagnostic()
		if d.Construct != string(tt.construct) || d.Expected != tt.expected || d.Found != tt.found {
			t.Fatalf("#%d - Recognize(%q): unexpected diagnostic %+v", i, tt.input, d)
		}
	}
}

func TestRecognizeErrorPosition(t *testing.T) {
	input := "fun f() {\n  output(\"a\");\n  int 5;\n}"

	_, err := Recognize(tokenize(t, token.NewTable(), input))

	f, _ := err.(fault.Fault)
	d, ok := f.Diagnostic()
	if !ok {
		t.Fatalf("expected diagnostic, got %v", err)
	}

	if d.Line != 3 || d.Column != 7 {
		t.Fatalf("expected error at 3:7, got %d:%d", d.Line, d.Column)
	}
}

func TestRecognizeStopsAtFirstError(t *testing.T) {
	input := `output("a"); output("b") output("c");`

	summary, err := Recognize(tokenize(t, token.NewTable(), input))
	if err == nil {
		t.Fatal("expected an error")
	}

	if summary.Statements[OutputStatement] != 1 {
		t.Fatalf("expected one recognized statement before the error, got %+v", summary.Statements)
	}
}

func TestRecognizeDepth(t *testing.T) {
	input := `fun a() { while (1) { for (x) { output("deep"); } } } fun b() { }`

	summary, err := Recognize(tokenize(t, token.NewTable(), input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.MaxDepth != 3 {
		t.Fatalf("expected max depth 3, got %d", summary.MaxDepth)
	}

	if summary.Total() != 5 {
		t.Fatalf("expected 5 statements, got %d", summary.Total())
	}
}

func TestRecognizeStrictHeaders(t *testing.T) {
	accepted := []string{
		`fun f() { }`,
		`fun f(a) { }`,
		`fun f(int a, string b, c) { }`,
		`print(a, g(1, 2));`,
	}

	for _, input := range accepted {
		if _, err := Recognize(tokenize(t, token.NewTable(), input), WithStrictHeaders()); err != nil {
			t.Fatalf("Recognize(%q): unexpected error: %v", input, err)
		}
	}

	rejected := map[string]string{
		`fun f(g(1,2), h()) { }`: "',' or ')' in parameter list",
		`fun f(a,) { }`:          "parameter name",
		`fun f(int) { }`:         "parameter name",
		`print(a) b;`:            "';'",
		`print(a;`:               "')'",
	}

	for input, expected := range rejected {
		_, err := Recognize(tokenize(t, token.NewTable(), input), WithStrictHeaders())

		f, ok := err.(fault.Fault)
		if !ok {
			t.Fatalf("Recognize(%q): expected a fault, got %v", input, err)
		}

		d, _ := f.Diagnostic()
		if d.Expected != expected {
			t.Fatalf("Recognize(%q): expected %q, got %+v", input, expected, d)
		}
	}
}

func TestRecognizeRenamedKeywords(t *testing.T) {
	table := token.NewTable()
	if err := table.Rebuild(map[string]string{"fun": "def", "while": "loop", "output": "say"}); err != nil {
		t.Fatalf("unexpected rebuild error: %v", err)
	}

	input := `def main() { loop (1) { say("hi"); } }`

	summary, err := Recognize(tokenize(t, table, input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Statements[WhileLoop] != 1 || summary.Statements[OutputStatement] != 1 {
		t.Fatalf("unexpected summary %+v", summary.Statements)
	}

	// The old spelling is now an ordinary identifier, so this is a call missing its semicolon.
	_, err = Recognize(tokenize(t, table, `while (1) { }`))
	if !fault.Is(err, fault.SyntaxCode) {
		t.Fatalf("expected syntax fault, got %v", err)
	}
}

func TestRecognizeEmpty(t *testing.T) {
	summary, err := Recognize(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Total() != 0 {
		t.Fatalf("expected no statements, got %+v", summary)
	}
}

func TestEveryKeywordHasAStatementRule(t *testing.T) {
	for _, kw := range token.Keywords() {
		tokens := []token.Token{{Lexeme: kw.String(), Kind: token.Keyword, Keyword: kw, Pos: token.Pos{Line: 1, Column: 1}}}

		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("keyword %s is not handled by the recognizer: %v", kw, r)
				}
			}()

			Recognize(tokens) //nolint:errcheck
		}()
	}
}
