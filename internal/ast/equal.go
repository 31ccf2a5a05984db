package ast

import (
	"github.com/google/go-cmp/cmp"

	"github.com/tuslang/langc/internal/token"
)

// ignoreLocation makes every token.Location compare equal regardless of
// its fields, so Equal implements the "structurally equal up to location"
// comparison spec §8 property 4 (parser idempotence on whitespace/
// comments) and property 6 (unary-minus desugaring) both call for.
var ignoreLocation = cmp.Comparer(func(_, _ token.Location) bool { return true })

// Equal reports whether two AST values are structurally equal, ignoring
// every token.Location they (or their descendants) carry. It compares
// Program, Block, Statement, Expression, or any nested value built from
// them.
func Equal(a, b any) bool {
	return cmp.Equal(a, b, ignoreLocation)
}

// Diff renders a human-readable difference between two AST values under
// the same location-ignoring comparison as Equal, for test failure
// messages.
func Diff(a, b any) string {
	return cmp.Diff(a, b, ignoreLocation)
}
