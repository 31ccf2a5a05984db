// Package compiler exposes the three pure driver entry points an external
// CLI or service wires up to a source string: Tokenize, Parse, and Compile.
// None of them touch the filesystem — that belongs to the caller (spec.md
// §6's "Compiler driver interface"). The only environment variable read is
// LANGC_DEBUG, which turns on debug logging and never changes a result.
package compiler

import (
	"fmt"

	"github.com/tuslang/langc/internal/ast"
	"github.com/tuslang/langc/internal/codegen"
	"github.com/tuslang/langc/internal/component"
	"github.com/tuslang/langc/internal/diagnostic"
	"github.com/tuslang/langc/internal/lexer"
	"github.com/tuslang/langc/internal/parser"
	"github.com/tuslang/langc/internal/token"
)

// Tokenize returns the token sequence of source, in source order, comments
// included (filtering them out is the parser's job, not the lexer's).
func Tokenize(source string) []token.Token {
	return lexer.Tokenize(source)
}

// Parse returns the Program AST for source, or a structured error (a
// diagnostic.ParseError) naming the first token the grammar could not
// account for.
func Parse(source string) (*ast.Program, error) {
	return parser.Parse(source)
}

// Compile parses source and lowers it all the way to a WebAssembly
// component binary. The returned error is always one of
// diagnostic.ParseError or diagnostic.EmitError.
func Compile(source string) ([]byte, error) {
	prog, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	main, err := codegen.Lower(prog)
	if err != nil {
		return nil, diagnostic.NewEncodingError(fmt.Sprintf("lowering to Main module: %v", err))
	}
	bin, err := component.Wrap(main)
	if err != nil {
		return nil, diagnostic.NewEncodingError(fmt.Sprintf("wrapping component: %v", err))
	}
	return bin, nil
}
