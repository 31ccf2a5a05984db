package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuslang/langc/internal/ast"
	"github.com/tuslang/langc/internal/diagnostic"
	"github.com/tuslang/langc/internal/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	require.NotNil(t, prog)
	return prog
}

func TestParseMinimalProgram(t *testing.T) {
	prog := mustParse(t, "fn main() -> i32 { 0 }")
	require.Len(t, prog.Functions, 1)
	fn := prog.Functions[0]
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, ast.I32, fn.ReturnType.Kind)
	require.NotNil(t, fn.Body.Trailing)
	lit, ok := fn.Body.Trailing.(*ast.IntegerLiteral)
	require.True(t, ok)
	assert.Equal(t, "0", lit.Value)
}

func TestParseMultiplicativeBindsTighterThanAdditive(t *testing.T) {
	prog := mustParse(t, "fn main() -> i32 { a + b * c }")
	bin, ok := prog.Functions[0].Body.Trailing.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, ast.Add, bin.Op)
	left, ok := bin.Left.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "a", left.Name)
	right, ok := bin.Right.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, ast.Multiply, right.Op)
}

func TestParseSubtractionLeftAssociative(t *testing.T) {
	prog := mustParse(t, "fn main() -> i32 { a - b - c }")
	outer, ok := prog.Functions[0].Body.Trailing.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, ast.Subtract, outer.Op)
	_, rightIsIdent := outer.Right.(*ast.Identifier)
	assert.True(t, rightIsIdent, "right operand of outer subtraction should be the bare identifier c")
	inner, ok := outer.Left.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, ast.Subtract, inner.Op)
}

func TestParseLogicalBindsLooserThanComparison(t *testing.T) {
	prog := mustParse(t, "fn main() -> i32 { a < b && c > d }")
	outer, ok := prog.Functions[0].Body.Trailing.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, ast.LogicalAnd, outer.Op)
	_, leftIsComparison := outer.Left.(*ast.BinaryExpression)
	assert.True(t, leftIsComparison)
}

func TestUnaryMinusDesugarsToZeroMinusOperand(t *testing.T) {
	prog := mustParse(t, "fn main() -> i32 { -x }")
	bin, ok := prog.Functions[0].Body.Trailing.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, ast.Subtract, bin.Op)
	zero, ok := bin.Left.(*ast.IntegerLiteral)
	require.True(t, ok)
	assert.Equal(t, "0", zero.Value)
	assert.Equal(t, zero.Loc.Start, zero.Loc.End, "synthesized zero literal must have a zero-width location")
}

func TestAssignmentVsFunctionCallDisambiguation(t *testing.T) {
	prog := mustParse(t, "fn main() -> i32 { a = 1; b(1, 2); 0 }")
	body := prog.Functions[0].Body
	require.Len(t, body.Statements, 2)

	exprStmt1 := body.Statements[0].(*ast.ExpressionStatement)
	assign, ok := exprStmt1.Expr.(*ast.AssignmentExpression)
	require.True(t, ok)
	assert.Equal(t, "a", assign.Target)

	exprStmt2 := body.Statements[1].(*ast.ExpressionStatement)
	call, ok := exprStmt2.Expr.(*ast.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "b", call.Callee)
	assert.Len(t, call.Args, 2)
}

func TestIfStatementVsIfElseExpressionDisambiguation(t *testing.T) {
	// S6 from spec.md: nested if/else-if chains as plain statements, no
	// "as" type anywhere, so everything here must parse as IfStatement.
	src := `fn main() -> i32 {
		if 1 {
			if 0 { print_int(1); } else { if 0 { print_int(2); } else if 1 { print_int(3); } else { print_int(4); } }
		} else { print_int(5); }
		0
	}`
	prog := mustParse(t, src)
	body := prog.Functions[0].Body
	require.Len(t, body.Statements, 1)
	ifStmt, ok := body.Statements[0].(*ast.IfStatement)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)
}

func TestIfElseExpressionRequiresAsType(t *testing.T) {
	src := `fn main() -> i32 { let x: i32 = if 1 { 2 } else { 3 } as i32; x }`
	prog := mustParse(t, src)
	varDef := prog.Functions[0].Body.Statements[0].(*ast.VariableDefinition)
	ifElse, ok := varDef.Init.(*ast.IfElseExpression)
	require.True(t, ok)
	assert.Equal(t, ast.I32, ifElse.ReturnType.Kind)
}

func TestIfElseExpressionChainPropagatesReturnType(t *testing.T) {
	src := `fn main() -> i32 {
		let x: i32 = if 1 { 1 } else if 2 { 2 } else if 3 { 3 } else { 4 } as i64;
		0
	}`
	prog := mustParse(t, src)
	varDef := prog.Functions[0].Body.Statements[0].(*ast.VariableDefinition)
	outer := varDef.Init.(*ast.IfElseExpression)
	assert.Equal(t, ast.I64, outer.ReturnType.Kind)

	link1 := outer.Else.Trailing.(*ast.IfElseExpression)
	assert.Equal(t, ast.I64, link1.ReturnType.Kind)

	link2 := link1.Else.Trailing.(*ast.IfElseExpression)
	assert.Equal(t, ast.I64, link2.ReturnType.Kind)

	// the final else is a plain block_with_expr, not another IfElseExpression
	_, finalIsChain := link2.Else.Trailing.(*ast.IfElseExpression)
	assert.False(t, finalIsChain)
}

func TestLetRequiresInitializer(t *testing.T) {
	_, err := parser.Parse("fn main() -> i32 { let x: i32; 0 }")
	require.Error(t, err)
}

func TestVarMayOmitInitializer(t *testing.T) {
	prog := mustParse(t, "fn main() -> i32 { var x: i32; x = 1; x }")
	varDef := prog.Functions[0].Body.Statements[0].(*ast.VariableDefinition)
	assert.Nil(t, varDef.Init)
	assert.True(t, varDef.Mutable)
}

func TestTrailingTokensIsAStructuredError(t *testing.T) {
	_, err := parser.Parse("fn main() -> i32 { 0 } garbage")
	require.Error(t, err)
	perr, ok := err.(diagnostic.ParseError)
	require.True(t, ok)
	assert.Equal(t, diagnostic.ErrTrailingTokens, perr.Kind)
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	prog := mustParse(t, "fn main() -> i32 { (1 + 2) * 3 }")
	bin := prog.Functions[0].Body.Trailing.(*ast.BinaryExpression)
	assert.Equal(t, ast.Multiply, bin.Op)
	_, leftIsAdd := bin.Left.(*ast.BinaryExpression)
	assert.True(t, leftIsAdd)
}

func TestParserIdempotentUnderWhitespaceAndComments(t *testing.T) {
	a := mustParse(t, "fn main()->i32{1+2;0}")
	b := mustParse(t, `
		// a comment
		fn main() -> i32 {
			1 + 2; /* inline */
			0
		}
	`)
	assert.True(t, ast.Equal(a, b), "diff:\n%s", ast.Diff(a, b))
}

func TestMultiFunctionProgramWithCalls(t *testing.T) {
	src := `
		fn add(a: i32, b: i32) -> i32 { a + b }
		fn main() -> i32 { add(1, 2) }
	`
	prog := mustParse(t, src)
	require.Len(t, prog.Functions, 2)
	assert.Equal(t, "add", prog.Functions[0].Name)
	assert.Equal(t, "main", prog.Functions[1].Name)
}
