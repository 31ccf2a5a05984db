// Package ast defines the abstract syntax tree the parser produces and the
// emitter consumes: tagged unions over a Go interface plus one struct per
// variant, dispatched with type switches rather than a virtual hierarchy.
package ast

import "github.com/tuslang/langc/internal/token"

// Node is implemented by every AST type; it exposes the source span the
// node covers so tooling (diagnostics, the idempotence check in
// internal/parser) never has to special-case a node kind just to find its
// location.
type Node interface {
	Location() token.Location
}

// Program owns the function definitions that make up a compiled source
// file, in declaration order.
type Program struct {
	Functions []*FunctionDefinition
	Loc       token.Location
}

func (p *Program) Location() token.Location { return p.Loc }

// FunctionDefinition is one "fn name(params) -> type { body }" declaration.
type FunctionDefinition struct {
	Name       string
	Params     []*Parameter
	ReturnType Type
	Body       *Block
	Loc        token.Location
}

func (f *FunctionDefinition) Location() token.Location { return f.Loc }

// Parameter is a single "name: type" entry in a function's parameter list.
type Parameter struct {
	Name string
	Type Type
	Loc  token.Location
}

func (p *Parameter) Location() token.Location { return p.Loc }

// TypeKind names the machine types the source language exposes. Both map
// to signed integers; there is no unsigned or floating variant.
type TypeKind int

const (
	I32 TypeKind = iota
	I64
)

func (k TypeKind) String() string {
	switch k {
	case I32:
		return "i32"
	case I64:
		return "i64"
	default:
		return "unknown"
	}
}

// Type is a type annotation, lexed as an identifier but interpreted here as
// a fixed kind.
type Type struct {
	Kind TypeKind
	Loc  token.Location
}

func (t Type) Location() token.Location { return t.Loc }

// Block is a brace-enclosed statement sequence optionally ending in a bare
// expression that becomes the block's value. Trailing is nil for a
// statement-only block.
type Block struct {
	Statements []Statement
	Trailing   Expression
	Loc        token.Location
}

func (b *Block) Location() token.Location { return b.Loc }

// Statement is the tagged union of statement forms (spec §3): expression
// statements, variable definitions, and if-statements. A bare trailing
// expression is not itself a Statement — it lives in Block.Trailing.
type Statement interface {
	Node
	statementNode()
}

// ExpressionStatement is an expression followed by ";", its value discarded.
type ExpressionStatement struct {
	Expr Expression
	Loc  token.Location
}

func (s *ExpressionStatement) Location() token.Location { return s.Loc }
func (*ExpressionStatement) statementNode()              {}

// VariableDefinition binds a name to a type, and optionally an initial
// value. Mutable is true for "var", false for "let"; "let" always carries
// an initializer, "var" may omit one (Init is nil in that case).
type VariableDefinition struct {
	Name    string
	Mutable bool
	Type    Type
	Init    Expression // nil if omitted
	Loc     token.Location
}

func (s *VariableDefinition) Location() token.Location { return s.Loc }
func (*VariableDefinition) statementNode()              {}

// IfStatement is the statement form of "if": both branches are
// statement-only blocks, and it is never itself an expression. Else is nil
// when there is no else clause; for a bare "else if", Else is a
// single-statement Block wrapping the nested IfStatement (the grammar's
// bare if_statement alternative has no braces of its own, so the wrapping
// block's location is exactly the nested if-statement's location).
type IfStatement struct {
	Condition Expression
	Then      *Block
	Else      *Block // nil, or statement-only, or a single IfStatement wrapped
	Loc       token.Location
}

func (s *IfStatement) Location() token.Location { return s.Loc }
func (*IfStatement) statementNode()              {}

// Expression is the tagged union of expression forms (spec §3).
type Expression interface {
	Node
	expressionNode()
}

// BinaryOp tags the operator of a BinaryExpression.
type BinaryOp int

const (
	Add BinaryOp = iota
	Subtract
	Multiply
	Divide
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	Equal
	NotEqual
	LogicalAnd
	LogicalOr
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case LogicalAnd:
		return "&&"
	case LogicalOr:
		return "||"
	default:
		return "?"
	}
}

// UnaryOp tags the operator of a UnaryExpression. Unary minus is not a
// member: it desugars to a BinaryExpression at parse time (spec §3/§4.2),
// so LogicalNot is the only surviving unary operator.
type UnaryOp int

const (
	LogicalNot UnaryOp = iota
)

func (op UnaryOp) String() string {
	switch op {
	case LogicalNot:
		return "!"
	default:
		return "?"
	}
}

// BinaryExpression is `left op right`.
type BinaryExpression struct {
	Left  Expression
	Op    BinaryOp
	Right Expression
	Loc   token.Location
}

func (e *BinaryExpression) Location() token.Location { return e.Loc }
func (*BinaryExpression) expressionNode()             {}

// UnaryExpression is `op operand`.
type UnaryExpression struct {
	Op      UnaryOp
	Operand Expression
	Loc     token.Location
}

func (e *UnaryExpression) Location() token.Location { return e.Loc }
func (*UnaryExpression) expressionNode()             {}

// AssignmentExpression is `target = value`; its value is the assigned
// value, so it may itself appear as an operand.
type AssignmentExpression struct {
	Target string
	Value  Expression
	Loc    token.Location
}

func (e *AssignmentExpression) Location() token.Location { return e.Loc }
func (*AssignmentExpression) expressionNode()             {}

// IfElseExpression is the expression form of "if": both branches are
// statement-plus-expression blocks (Trailing is always non-nil on each),
// and an explicit `as Type` supplies the result type since there is no
// type inference. For a chained `else if`, ReturnType is copied into every
// nested IfElseExpression (spec §9's resolved open question).
type IfElseExpression struct {
	Condition  Expression
	Then       *Block
	Else       *Block
	ReturnType Type
	Loc        token.Location
}

func (e *IfElseExpression) Location() token.Location { return e.Loc }
func (*IfElseExpression) expressionNode()             {}

// FunctionCall is `callee(args...)`.
type FunctionCall struct {
	Callee string
	Args   []Expression
	Loc    token.Location
}

func (e *FunctionCall) Location() token.Location { return e.Loc }
func (*FunctionCall) expressionNode()             {}

// Identifier is a bare name reference.
type Identifier struct {
	Name string
	Loc  token.Location
}

func (e *Identifier) Location() token.Location { return e.Loc }
func (*Identifier) expressionNode()             {}

// IntegerLiteral holds the raw decimal digits as they appeared in source;
// the emitter is responsible for parsing them to a signed 32-bit value.
type IntegerLiteral struct {
	Value string
	Loc   token.Location
}

func (e *IntegerLiteral) Location() token.Location { return e.Loc }
func (*IntegerLiteral) expressionNode()             {}
