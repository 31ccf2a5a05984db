package diagnostic_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuslang/langc/internal/diagnostic"
	"github.com/tuslang/langc/internal/token"
)

func TestParseErrorRendersSnippet(t *testing.T) {
	input := "fn main() -> i32 {\n  1 +\n}"
	tok := token.Token{
		Kind: token.Delimiter,
		Text: "}",
		Loc: token.Location{
			Start: token.Position{Offset: len("fn main() -> i32 {\n  1 +\n"), Line: 3, Column: 1},
			End:   token.Position{Offset: len("fn main() -> i32 {\n  1 +\n"), Line: 3, Column: 2},
		},
	}
	err := diagnostic.NewUnexpectedToken(input, "expression", tok)

	msg := err.Error()
	assert.Contains(t, msg, "unexpected token")
	assert.Contains(t, msg, "3:1")
	assert.True(t, strings.Contains(msg, "^"))
}

func TestTrailingTokensError(t *testing.T) {
	tok := token.Token{Kind: token.Delimiter, Text: ")", Loc: token.Location{
		Start: token.Position{Offset: 0, Line: 1, Column: 1},
		End:   token.Position{Offset: 1, Line: 1, Column: 2},
	}}
	err := diagnostic.NewTrailingTokens(")", tok)
	assert.Contains(t, err.Error(), "trailing input")
}

func TestEmitErrorKinds(t *testing.T) {
	assert.Contains(t, diagnostic.NewTemplateInvariant("Main module missing").Error(), "template invariant")
	assert.Contains(t, diagnostic.NewEncodingError("type mismatch").Error(), "encoding error")
}
