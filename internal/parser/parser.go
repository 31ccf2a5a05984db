// Package parser implements the backtracking recursive-descent grammar of
// spec §4.2: a vector of tokens in, a *ast.Program out. Comments are
// dropped up front; every other non-terminal either returns a node or
// returns a diagnostic, without restoring the cursor. The one speculative
// alternative, tryIfElseExpression, saves the cursor and restores it on
// failure so the caller can fall back to an if-statement.
package parser

import (
	"log/slog"

	"github.com/tuslang/langc/internal/ast"
	"github.com/tuslang/langc/internal/diagnostic"
	"github.com/tuslang/langc/internal/lexer"
	"github.com/tuslang/langc/internal/token"
)

// Parser holds the token stream and a mutable cursor. Backtracking is the
// teacher's idiom: save p.pos before trying an alternative, restore it on
// failure, exactly as pkgs/parser.Parser does with plain int positions.
type Parser struct {
	input  string
	tokens []token.Token
	pos    int
	logger *slog.Logger
}

// Parse tokenizes and parses a complete source string. Debug logging is
// silent unless LANGC_DEBUG is set in the environment.
func Parse(input string) (*ast.Program, error) {
	all := lexer.Tokenize(input)
	tokens := make([]token.Token, 0, len(all))
	for _, t := range all {
		if t.Kind != token.Comment {
			tokens = append(tokens, t)
		}
	}
	p := &Parser{input: input, tokens: tokens, logger: diagnostic.DebugLogger("parser")}
	return p.parseProgram()
}

// --- cursor primitives ---

func (p *Parser) atEnd() bool { return p.pos >= len(p.tokens) }

func (p *Parser) current() (token.Token, bool) {
	if p.atEnd() {
		return token.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) previous() token.Token { return p.tokens[p.pos-1] }

func (p *Parser) advance() token.Token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

// errorToken returns something sensible to anchor a diagnostic to: the
// current token, or a zero-width token at the end of the last one if the
// stream is exhausted.
func (p *Parser) errorToken() token.Token {
	if t, ok := p.current(); ok {
		return t
	}
	if len(p.tokens) > 0 {
		last := p.tokens[len(p.tokens)-1]
		return token.Token{Loc: token.Zero(last.Loc.End)}
	}
	return token.Token{}
}

func (p *Parser) checkKind(k token.Kind) bool {
	t, ok := p.current()
	return ok && t.Kind == k
}

func (p *Parser) checkKeyword(word string) bool {
	t, ok := p.current()
	return ok && t.Kind == token.Keyword && t.Text == word
}

func (p *Parser) checkOp(sym string) bool {
	t, ok := p.current()
	return ok && t.Kind == token.Operator && t.Text == sym
}

func (p *Parser) checkDelim(sym string) bool {
	t, ok := p.current()
	return ok && t.Kind == token.Delimiter && t.Text == sym
}

func (p *Parser) matchKeyword(word string) bool {
	if p.checkKeyword(word) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchOp(sym string) bool {
	if p.checkOp(sym) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchDelim(sym string) bool {
	if p.checkDelim(sym) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consumeKeyword(word string) (token.Token, error) {
	if p.matchKeyword(word) {
		return p.previous(), nil
	}
	return token.Token{}, diagnostic.NewUnexpectedToken(p.input, "'"+word+"'", p.errorToken())
}

func (p *Parser) consumeDelim(sym, desc string) (token.Token, error) {
	if p.matchDelim(sym) {
		return p.previous(), nil
	}
	return token.Token{}, diagnostic.NewUnexpectedToken(p.input, desc, p.errorToken())
}

func (p *Parser) consumeIdentifier() (token.Token, error) {
	if p.checkKind(token.Identifier) {
		return p.advance(), nil
	}
	return token.Token{}, diagnostic.NewUnexpectedToken(p.input, "identifier", p.errorToken())
}

func span(start, end token.Position) token.Location { return token.Span(start, end) }

// --- program / function_definition ---

func (p *Parser) parseProgram() (*ast.Program, error) {
	p.logger.Debug("parsing program", "tokens", len(p.tokens))
	var functions []*ast.FunctionDefinition
	startPos := token.Position{Line: 1, Column: 1}
	if len(p.tokens) > 0 {
		startPos = p.tokens[0].Loc.Start
	}

	for p.checkKeyword("fn") {
		fn, err := p.parseFunctionDefinition()
		if err != nil {
			return nil, err
		}
		p.logger.Debug("parsed function definition", "name", fn.Name)
		functions = append(functions, fn)
	}

	if !p.atEnd() {
		first, _ := p.current()
		return nil, diagnostic.NewTrailingTokens(p.input, first)
	}

	endPos := startPos
	if n := len(functions); n > 0 {
		endPos = functions[n-1].Loc.End
	}
	return &ast.Program{Functions: functions, Loc: span(startPos, endPos)}, nil
}

func (p *Parser) parseFunctionDefinition() (*ast.FunctionDefinition, error) {
	fnTok, err := p.consumeKeyword("fn")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.consumeIdentifier()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParameters()
	if err != nil {
		return nil, err
	}
	if _, err := p.consumeOperator("->"); err != nil {
		return nil, err
	}
	returnType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock(blockOptionalTrailing)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDefinition{
		Name:       nameTok.Text,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		Loc:        span(fnTok.Loc.Start, body.Loc.End),
	}, nil
}

func (p *Parser) consumeOperator(sym string) (token.Token, error) {
	if p.matchOp(sym) {
		return p.previous(), nil
	}
	return token.Token{}, diagnostic.NewUnexpectedToken(p.input, "'"+sym+"'", p.errorToken())
}

func (p *Parser) parseParameters() ([]*ast.Parameter, error) {
	if _, err := p.consumeDelim("(", "'('"); err != nil {
		return nil, err
	}
	var params []*ast.Parameter
	if !p.checkDelim(")") {
		for {
			param, err := p.parseParameter()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if p.matchDelim(",") {
				continue
			}
			break
		}
	}
	if _, err := p.consumeDelim(")", "')'"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseParameter() (*ast.Parameter, error) {
	nameTok, err := p.consumeIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.consumeDelim(":", "':'"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &ast.Parameter{Name: nameTok.Text, Type: typ, Loc: span(nameTok.Loc.Start, typ.Loc.End)}, nil
}

func (p *Parser) parseType() (ast.Type, error) {
	if !p.checkKind(token.Identifier) {
		return ast.Type{}, diagnostic.NewUnexpectedToken(p.input, "type", p.errorToken())
	}
	tok := p.advance()
	switch tok.Text {
	case "i32":
		return ast.Type{Kind: ast.I32, Loc: tok.Loc}, nil
	case "i64":
		return ast.Type{Kind: ast.I64, Loc: tok.Loc}, nil
	default:
		p.pos--
		return ast.Type{}, diagnostic.NewUnexpectedToken(p.input, "type ('i32' or 'i64')", tok)
	}
}

// --- blocks and statements ---

type blockMode int

const (
	blockOptionalTrailing blockMode = iota // block: "{" statement* expression? "}"
	blockNoTrailing                        // block_stmt_only: "{" statement* "}"
	blockRequiredTrailing                  // block_with_expr: "{" statement* expression "}"
)

func (p *Parser) parseBlock(mode blockMode) (*ast.Block, error) {
	openTok, err := p.consumeDelim("{", "'{'")
	if err != nil {
		return nil, err
	}

	var statements []ast.Statement
	var trailing ast.Expression

	for {
		if p.checkDelim("}") {
			break
		}
		if p.atEnd() {
			return nil, diagnostic.NewMissingToken(p.input, "'}'", p.errorToken())
		}

		if p.checkKeyword("if") {
			checkpoint := p.pos
			if expr, ok := p.tryIfElseExpression(); ok {
				if p.matchDelim(";") {
					statements = append(statements, &ast.ExpressionStatement{
						Expr: expr,
						Loc:  span(expr.Location().Start, p.previous().Loc.End),
					})
					continue
				}
				if mode != blockNoTrailing && p.checkDelim("}") {
					trailing = expr
					break
				}
				p.pos = checkpoint
			}
			stmt, err := p.parseIfStatement()
			if err != nil {
				return nil, err
			}
			statements = append(statements, stmt)
			continue
		}

		if p.checkKeyword("let") || p.checkKeyword("var") {
			stmt, err := p.parseVariableDefinition()
			if err != nil {
				return nil, err
			}
			statements = append(statements, stmt)
			continue
		}

		exprStart, _ := p.current()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.matchDelim(";") {
			statements = append(statements, &ast.ExpressionStatement{
				Expr: expr,
				Loc:  span(exprStart.Loc.Start, p.previous().Loc.End),
			})
			continue
		}
		if mode != blockNoTrailing && p.checkDelim("}") {
			trailing = expr
			break
		}
		return nil, diagnostic.NewMissingToken(p.input, "';'", p.errorToken())
	}

	closeTok, err := p.consumeDelim("}", "'}'")
	if err != nil {
		return nil, err
	}
	if mode == blockRequiredTrailing && trailing == nil {
		return nil, diagnostic.NewMissingToken(p.input, "expression", closeTok)
	}
	return &ast.Block{Statements: statements, Trailing: trailing, Loc: span(openTok.Loc.Start, closeTok.Loc.End)}, nil
}

func (p *Parser) parseVariableDefinition() (*ast.VariableDefinition, error) {
	kwTok := p.advance() // "let" or "var"
	mutable := kwTok.Text == "var"

	nameTok, err := p.consumeIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.consumeDelim(":", "':'"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}

	var init ast.Expression
	if p.matchOp("=") {
		init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	} else if !mutable {
		return nil, diagnostic.NewMissingToken(p.input, "'=' (let requires an initializer)", p.errorToken())
	}

	semiTok, err := p.consumeDelim(";", "';'")
	if err != nil {
		return nil, err
	}
	return &ast.VariableDefinition{
		Name:    nameTok.Text,
		Mutable: mutable,
		Type:    typ,
		Init:    init,
		Loc:     span(kwTok.Loc.Start, semiTok.Loc.End),
	}, nil
}

func (p *Parser) parseIfStatement() (*ast.IfStatement, error) {
	ifTok, err := p.consumeKeyword("if")
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock(blockNoTrailing)
	if err != nil {
		return nil, err
	}

	var elseBlock *ast.Block
	if p.matchKeyword("else") {
		if p.checkKeyword("if") {
			nested, err := p.parseIfStatement()
			if err != nil {
				return nil, err
			}
			elseBlock = &ast.Block{Statements: []ast.Statement{nested}, Loc: nested.Loc}
		} else {
			elseBlock, err = p.parseBlock(blockNoTrailing)
			if err != nil {
				return nil, err
			}
		}
	}

	end := then.Loc.End
	if elseBlock != nil {
		end = elseBlock.Loc.End
	}
	return &ast.IfStatement{Condition: cond, Then: then, Else: elseBlock, Loc: span(ifTok.Loc.Start, end)}, nil
}

// --- if_else_expression ---

// tryIfElseExpression attempts the full if_else_expression grammar,
// restoring the cursor and reporting ok=false if the trailing "as type"
// never materializes — the signal spec §4.2's disambiguation rule uses to
// decide between this and a plain if_statement.
func (p *Parser) tryIfElseExpression() (*ast.IfElseExpression, bool) {
	checkpoint := p.pos
	expr, err := p.parseIfElseExpression()
	if err != nil {
		p.pos = checkpoint
		return nil, false
	}
	return expr, true
}

func (p *Parser) parseIfElseExpression() (*ast.IfElseExpression, error) {
	ifTok, err := p.consumeKeyword("if")
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock(blockRequiredTrailing)
	if err != nil {
		return nil, err
	}
	if _, err := p.consumeKeyword("else"); err != nil {
		return nil, err
	}
	elseBlock, err := p.parseElseTail()
	if err != nil {
		return nil, err
	}
	if _, err := p.consumeKeyword("as"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}

	outer := &ast.IfElseExpression{Condition: cond, Then: thenBlock, Else: elseBlock, Loc: span(ifTok.Loc.Start, typ.Loc.End)}
	propagateReturnType(outer, typ)
	return outer, nil
}

// parseElseTail parses else_tail = "if" expr block_with_expr "else"
// else_tail | block_with_expr. A chained "else if" is represented as a
// statement-free Block whose Trailing is the nested IfElseExpression
// (IfStatement.Else instead holds a bare "else if" as the Block's single
// statement) — its ReturnType is filled in later by propagateReturnType,
// not here, since "as type" hasn't been parsed yet at this depth.
func (p *Parser) parseElseTail() (*ast.Block, error) {
	if p.checkKeyword("if") {
		ifTok := p.advance()
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		thenBlock, err := p.parseBlock(blockRequiredTrailing)
		if err != nil {
			return nil, err
		}
		if _, err := p.consumeKeyword("else"); err != nil {
			return nil, err
		}
		nestedElse, err := p.parseElseTail()
		if err != nil {
			return nil, err
		}
		nested := &ast.IfElseExpression{
			Condition: cond,
			Then:      thenBlock,
			Else:      nestedElse,
			Loc:       span(ifTok.Loc.Start, nestedElse.Loc.End),
		}
		return &ast.Block{Trailing: nested, Loc: nested.Loc}, nil
	}
	return p.parseBlock(blockRequiredTrailing)
}

// propagateReturnType copies typ into e and every IfElseExpression nested
// through an "else if" chain, per spec §9's resolved open question.
func propagateReturnType(e *ast.IfElseExpression, typ ast.Type) {
	e.ReturnType = typ
	if e.Else == nil || e.Else.Trailing == nil {
		return
	}
	if nested, ok := e.Else.Trailing.(*ast.IfElseExpression); ok {
		propagateReturnType(nested, typ)
	}
}

// --- expressions: precedence chain ---

func (p *Parser) parseExpression() (ast.Expression, error) { return p.parseLogical() }

func (p *Parser) parseLogical() (ast.Expression, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch {
		case p.checkOp("&&"):
			op = ast.LogicalAnd
		case p.checkOp("||"):
			op = ast.LogicalOr
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Left: left, Op: op, Right: right, Loc: span(left.Location().Start, right.Location().End)}
	}
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch {
		case p.checkOp("<="):
			op = ast.LessThanOrEqual
		case p.checkOp(">="):
			op = ast.GreaterThanOrEqual
		case p.checkOp("=="):
			op = ast.Equal
		case p.checkOp("!="):
			op = ast.NotEqual
		case p.checkOp("<"):
			op = ast.LessThan
		case p.checkOp(">"):
			op = ast.GreaterThan
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Left: left, Op: op, Right: right, Loc: span(left.Location().Start, right.Location().End)}
	}
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch {
		case p.checkOp("+"):
			op = ast.Add
		case p.checkOp("-"):
			op = ast.Subtract
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Left: left, Op: op, Right: right, Loc: span(left.Location().Start, right.Location().End)}
	}
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOp
		switch {
		case p.checkOp("*"):
			op = ast.Multiply
		case p.checkOp("/"):
			op = ast.Divide
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Left: left, Op: op, Right: right, Loc: span(left.Location().Start, right.Location().End)}
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if p.checkOp("-") {
		minusTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		zero := &ast.IntegerLiteral{Value: "0", Loc: token.Zero(minusTok.Loc.Start)}
		return &ast.BinaryExpression{Left: zero, Op: ast.Subtract, Right: operand, Loc: span(minusTok.Loc.Start, operand.Location().End)}, nil
	}
	if p.checkOp("!") {
		notTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Op: ast.LogicalNot, Operand: operand, Loc: span(notTok.Loc.Start, operand.Location().End)}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	if p.checkKind(token.Integer) {
		tok := p.advance()
		return &ast.IntegerLiteral{Value: tok.Text, Loc: tok.Loc}, nil
	}

	if p.checkKeyword("if") {
		if expr, ok := p.tryIfElseExpression(); ok {
			return expr, nil
		}
		return nil, diagnostic.NewUnexpectedToken(p.input, "if/else expression with trailing 'as' type", p.errorToken())
	}

	// Assignment and function-call both begin with an identifier; the
	// grammar commits based on the single token that follows it (spec
	// §4.2's disambiguation rule), not on a full speculative parse —
	// once committed, a later syntax error is a real error, not a
	// signal to fall back to a bare identifier.
	if p.checkKind(token.Identifier) {
		nameTok := p.advance()
		if p.matchOp("=") {
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			return &ast.AssignmentExpression{Target: nameTok.Text, Value: value, Loc: span(nameTok.Loc.Start, value.Location().End)}, nil
		}
		if p.matchDelim("(") {
			var args []ast.Expression
			if !p.checkDelim(")") {
				for {
					arg, err := p.parseExpression()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if p.matchDelim(",") {
						continue
					}
					break
				}
			}
			closeTok, err := p.consumeDelim(")", "')'")
			if err != nil {
				return nil, err
			}
			return &ast.FunctionCall{Callee: nameTok.Text, Args: args, Loc: span(nameTok.Loc.Start, closeTok.Loc.End)}, nil
		}
		return &ast.Identifier{Name: nameTok.Text, Loc: nameTok.Loc}, nil
	}

	if p.checkDelim("(") {
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consumeDelim(")", "')'"); err != nil {
			return nil, err
		}
		return expr, nil
	}

	return nil, diagnostic.NewUnexpectedToken(p.input, "expression", p.errorToken())
}

