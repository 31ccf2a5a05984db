package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuslang/langc/internal/ast"
	"github.com/tuslang/langc/internal/token"
)

func loc(offset int) token.Location {
	p := token.Position{Offset: offset, Line: 1, Column: offset + 1}
	return token.Location{Start: p, End: token.Position{Offset: offset + 1, Line: 1, Column: offset + 2}}
}

func TestEqualIgnoresLocation(t *testing.T) {
	a := &ast.BinaryExpression{
		Left:  &ast.Identifier{Name: "x", Loc: loc(0)},
		Op:    ast.Add,
		Right: &ast.IntegerLiteral{Value: "1", Loc: loc(4)},
		Loc:   loc(0),
	}
	b := &ast.BinaryExpression{
		Left:  &ast.Identifier{Name: "x", Loc: loc(10)},
		Op:    ast.Add,
		Right: &ast.IntegerLiteral{Value: "1", Loc: loc(40)},
		Loc:   loc(99),
	}
	assert.True(t, ast.Equal(a, b), "expected structural equality ignoring location, diff:\n%s", ast.Diff(a, b))
}

func TestEqualCatchesStructuralDifference(t *testing.T) {
	a := &ast.IntegerLiteral{Value: "1", Loc: loc(0)}
	b := &ast.IntegerLiteral{Value: "2", Loc: loc(0)}
	assert.False(t, ast.Equal(a, b))
}

func TestUnaryMinusDesugarMatchesExplicitSubtraction(t *testing.T) {
	// spec §8 property 6: the tree the parser builds for `-x` (a zero-width
	// synthesized zero literal) equals the tree for `0 - x` up to locations.
	// Both trees are built by hand here; nothing is parsed.
	desugared := &ast.BinaryExpression{
		Left:  &ast.IntegerLiteral{Value: "0", Loc: token.Zero(token.Position{Offset: 5, Line: 1, Column: 6})},
		Op:    ast.Subtract,
		Right: &ast.Identifier{Name: "x", Loc: loc(6)},
		Loc:   loc(5),
	}
	explicit := &ast.BinaryExpression{
		Left:  &ast.IntegerLiteral{Value: "0", Loc: loc(100)},
		Op:    ast.Subtract,
		Right: &ast.Identifier{Name: "x", Loc: loc(200)},
		Loc:   loc(300),
	}
	assert.True(t, ast.Equal(desugared, explicit))
}
