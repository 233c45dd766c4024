package lexer

import (
	"testing"

	"github.com/thisisjab/myn/lang/token"
)

func TestClassify(t *testing.T) {
	table := token.NewTable()

	tests := []struct {
		lexeme          string
		expectedKind    token.Kind
		expectedKeyword token.KeywordID
	}{
		{"3.14", token.FloatLiteral, token.NoKeyword},
		{"3.1.4", token.Unknown, token.NoKeyword},
		{"42", token.IntegerLiteral, token.NoKeyword},
		{"0", token.IntegerLiteral, token.NoKeyword},
		{".5", token.FloatLiteral, token.NoKeyword},
		{".", token.Unknown, token.NoKeyword},
		{"_x1", token.Identifier, token.NoKeyword},
		{"counter", token.Identifier, token.NoKeyword},
		{"CamelCase_2", token.Identifier, token.NoKeyword},
		{"1x", token.Unknown, token.NoKeyword},
		{"a.b", token.Unknown, token.NoKeyword},
		{"ab!", token.Unknown, token.NoKeyword},
		{"héllo", token.Unknown, token.NoKeyword},
		{"", token.Unknown, token.NoKeyword},
		{"fun", token.Keyword, token.Fun},
		{"while", token.Keyword, token.While},
		{"output", token.Keyword, token.Output},
		{"string", token.Keyword, token.StringType},
		{"and", token.LogicalOperator, token.NoKeyword},
		{"or", token.LogicalOperator, token.NoKeyword},
		{"not", token.LogicalOperator, token.NoKeyword},
		{"=", token.AssignmentOperator, token.NoKeyword},
		{"+", token.ArithmeticOperator, token.NoKeyword},
		{"-", token.ArithmeticOperator, token.NoKeyword},
		{"*", token.ArithmeticOperator, token.NoKeyword},
		{"/", token.ArithmeticOperator, token.NoKeyword},
		{"(", token.OpenParen, token.NoKeyword},
		{")", token.CloseParen, token.NoKeyword},
		{"{", token.OpenBrace, token.NoKeyword},
		{"}", token.CloseBrace, token.NoKeyword},
		{"[", token.OpenBracket, token.NoKeyword},
		{"]", token.CloseBracket, token.NoKeyword},
		{";", token.Semicolon, token.NoKeyword},
		{",", token.Comma, token.NoKeyword},
		{"%", token.Unknown, token.NoKeyword},
	}

	for i, tt := range tests {
		kind, kw := Classify(table, tt.lexeme)

		if kind != tt.expectedKind {
			t.Fatalf("#%d - Classify(%q): expected kind `%s`, got `%s`", i, tt.lexeme, tt.expectedKind, kind)
		}

		if kw != tt.expectedKeyword {
			t.Fatalf("#%d - Classify(%q): expected keyword `%s`, got `%s`", i, tt.lexeme, tt.expectedKeyword, kw)
		}
	}
}

func TestClassifyDefaultKeywords(t *testing.T) {
	table := token.NewTable()

	for _, kw := range token.Keywords() {
		kind, got := Classify(table, kw.String())
		if kind != token.Keyword || got != kw {
			t.Fatalf("Classify(%q) = %s/%s, want keyword/%s", kw.String(), kind, got, kw)
		}
	}
}

func TestClassifyWithoutTable(t *testing.T) {
	kind, _ := Classify(nil, "while")
	if kind != token.Identifier {
		t.Fatalf("expected identifier without a keyword table, got %s", kind)
	}
}

func TestClassifyAfterRebuild(t *testing.T) {
	table := token.NewTable()
	if err := table.Rebuild(map[string]string{"while": "loop"}); err != nil {
		t.Fatalf("unexpected rebuild error: %v", err)
	}

	kind, kw := Classify(table, "loop")
	if kind != token.Keyword || kw != token.While {
		t.Fatalf("expected loop to be the while keyword, got %s/%s", kind, kw)
	}

	kind, _ = Classify(table, "while")
	if kind != token.Identifier {
		t.Fatalf("expected the old spelling to be an identifier, got %s", kind)
	}

	kind, kw = Classify(table, "for")
	if kind != token.Keyword || kw != token.For {
		t.Fatalf("expected keywords missing from the config to keep their spelling, got %s/%s", kind, kw)
	}
}
