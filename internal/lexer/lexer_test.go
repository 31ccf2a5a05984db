package lexer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuslang/langc/internal/lexer"
	"github.com/tuslang/langc/internal/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func texts(tokens []token.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestTokenizeKeywordsVsIdentifiers(t *testing.T) {
	tokens := lexer.Tokenize("fn ifx if2 if")
	assert.Equal(t, []string{"fn", "ifx", "if", "2", "if"}, texts(tokens))
	assert.Equal(t, []token.Kind{
		token.Keyword, token.Identifier, token.Keyword, token.Integer, token.Keyword,
	}, kinds(tokens))
}

func TestTokenizeOperatorsMaximalMunch(t *testing.T) {
	tokens := lexer.Tokenize("== != -> <= >= && || = ! < > + - * /")
	want := []string{"==", "!=", "->", "<=", ">=", "&&", "||", "=", "!", "<", ">", "+", "-", "*", "/"}
	assert.Equal(t, want, texts(tokens))
	for _, tok := range tokens {
		assert.Equal(t, token.Operator, tok.Kind)
	}
}

func TestTokenizeBareAmpersandHalts(t *testing.T) {
	tokens := lexer.Tokenize("a & b")
	assert.Equal(t, []string{"a"}, texts(tokens))
}

func TestTokenizeDelimiters(t *testing.T) {
	tokens := lexer.Tokenize("(){}[],;:")
	assert.Equal(t, []string{"(", ")", "{", "}", "[", "]", ",", ";", ":"}, texts(tokens))
	for _, tok := range tokens {
		assert.Equal(t, token.Delimiter, tok.Kind)
	}
}

func TestTokenizeLineComment(t *testing.T) {
	tokens := lexer.Tokenize("1 // trailing\n2")
	require.Len(t, tokens, 3)
	assert.Equal(t, token.Comment, tokens[1].Kind)
	assert.Equal(t, "// trailing\n", tokens[1].Text)
	assert.Equal(t, 2, tokens[2].Loc.Start.Line)
}

func TestTokenizeLineCommentAtEOF(t *testing.T) {
	tokens := lexer.Tokenize("1 // trailing")
	require.Len(t, tokens, 2)
	assert.Equal(t, "// trailing", tokens[1].Text)
}

func TestTokenizeBlockComment(t *testing.T) {
	tokens := lexer.Tokenize("1 /* a\nb */ 2")
	require.Len(t, tokens, 3)
	assert.Equal(t, "/* a\nb */", tokens[1].Text)
}

func TestTokenizeUnterminatedBlockCommentExtendsToEOF(t *testing.T) {
	tokens := lexer.Tokenize("1 /* unterminated")
	require.Len(t, tokens, 2)
	assert.Equal(t, token.Comment, tokens[1].Kind)
	assert.Equal(t, "/* unterminated", tokens[1].Text)
}

func TestTokenizeIntegerAndIdentifier(t *testing.T) {
	tokens := lexer.Tokenize("x1 42 _y")
	assert.Equal(t, []token.Kind{token.Identifier, token.Integer, token.Identifier}, kinds(tokens))
	assert.Equal(t, []string{"x1", "42", "_y"}, texts(tokens))
}

func TestTokenizePositionsTrackLinesAndColumns(t *testing.T) {
	tokens := lexer.Tokenize("a\nbb")
	require.Len(t, tokens, 2)
	if diff := cmp.Diff(token.Position{Offset: 0, Line: 1, Column: 1}, tokens[0].Loc.Start); diff != "" {
		t.Fatalf("first token start mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(token.Position{Offset: 2, Line: 2, Column: 1}, tokens[1].Loc.Start); diff != "" {
		t.Fatalf("second token start mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeUnrecognizedScalarHaltsSilently(t *testing.T) {
	tokens := lexer.Tokenize("a @ b")
	assert.Equal(t, []string{"a"}, texts(tokens))
}

func TestReconstructRoundTrips(t *testing.T) {
	sources := []string{
		"fn main() -> i32 { print_int(1); 0 }",
		"let x: i32 = 1 + 2 * 3;\n// comment\nx",
		"/* block */ if a == b { 1 } else { 2 }",
	}
	for _, src := range sources {
		tokens := lexer.Tokenize(src)
		assert.Equal(t, src, lexer.Reconstruct(src, tokens))
	}
}
