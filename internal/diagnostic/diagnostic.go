// Package diagnostic implements the three structured error kinds spec §7
// names (LexError, ParseError, EmitError), each carrying enough context to
// render a rustc/clang-style source snippet.
package diagnostic

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/tuslang/langc/internal/token"
)

// DebugLogger returns a stderr-writing structured logger gated by the
// LANGC_DEBUG environment variable, the same opt-in debug-logging idiom
// runtime/lexer/lexer.go uses for DEVCMD_DEBUG_LEXER: silent (level Warn)
// unless the variable is set, at which point Debug-level records from
// every stage appear with timestamp and level stripped for clean output.
// stage tags each record ("lexer", "parser", "codegen") so interleaved
// output from a single compile stays attributable.
func DebugLogger(stage string) *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("LANGC_DEBUG") != "" {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return slog.New(handler).With("stage", stage)
}

// snippet renders a " --> line:col" / source line / caret block for a
// single position, the same three-line shape as the teacher's
// createCodeSnippet, generalized to take a bare token.Position instead of
// a parser-private token type so all three error kinds below can share it.
func snippet(input string, pos token.Position) string {
	if input == "" || pos.Line == 0 {
		return ""
	}
	lines := strings.Split(input, "\n")
	if pos.Line > len(lines) {
		return ""
	}
	lineContent := lines[pos.Line-1]

	var b strings.Builder
	fmt.Fprintf(&b, "  --> %d:%d\n", pos.Line, pos.Column)
	b.WriteString("   |\n")
	fmt.Fprintf(&b, "%2d | %s\n", pos.Line, lineContent)
	b.WriteString("   | ")
	if pos.Column > 0 && pos.Column <= len(lineContent)+1 {
		b.WriteString(strings.Repeat(" ", pos.Column-1) + "^")
	}
	return b.String()
}

// LexError reports an unrecognized scalar the lexer's rules all declined
// to consume (spec §7: in the ASCII-only minimal grammar this can only
// happen with a stray symbol or non-ASCII input).
type LexError struct {
	Message string
	At      token.Position
	Input   string
}

func (e LexError) Error() string {
	return fmt.Sprintf("lex error: %s\n%s", e.Message, snippet(e.Input, e.At))
}

// ParseErrorKind classifies a ParseError the way the teacher's ErrorType
// classifies a ParseError, trimmed to the kinds this grammar can actually
// produce (there is no type-checking pass here, so no ErrorType_ analog).
type ParseErrorKind int

const (
	ErrUnexpectedToken ParseErrorKind = iota
	ErrMissingToken
	ErrTrailingTokens
)

func (k ParseErrorKind) String() string {
	switch k {
	case ErrUnexpectedToken:
		return "unexpected token"
	case ErrMissingToken:
		return "missing token"
	case ErrTrailingTokens:
		return "trailing input"
	default:
		return "parse error"
	}
}

// ParseError reports a non-terminal that could not match at the current
// cursor, or (ErrTrailingTokens) input remaining after program parsed to
// completion (spec §7 / §9's resolved open question on surplus tokens).
type ParseError struct {
	Kind    ParseErrorKind
	Message string
	At      token.Token
	Input   string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s: %s\n%s", e.Kind, e.Message, snippet(e.Input, e.At.Loc.Start))
}

// NewUnexpectedToken reports that got was found where expected was wanted.
func NewUnexpectedToken(input, expected string, got token.Token) error {
	return ParseError{
		Kind:    ErrUnexpectedToken,
		Message: fmt.Sprintf("expected %s, got %s %q", expected, got.Kind, got.Text),
		At:      got,
		Input:   input,
	}
}

// NewMissingToken reports that expected was required but absent. at anchors
// the diagnostic: the token found in its place, or, at end-of-input, a
// zero-width token just past the last one consumed.
func NewMissingToken(input, expected string, at token.Token) error {
	return ParseError{
		Kind:    ErrMissingToken,
		Message: fmt.Sprintf("expected %s", expected),
		At:      at,
		Input:   input,
	}
}

// NewTrailingTokens reports that parsing stopped matching function
// definitions while tokens remained, naming the first unconsumed token.
func NewTrailingTokens(input string, first token.Token) error {
	return ParseError{
		Kind:    ErrTrailingTokens,
		Message: fmt.Sprintf("unexpected %s %q after program", first.Kind, first.Text),
		At:      first,
		Input:   input,
	}
}

// EmitErrorKind classifies an EmitError.
type EmitErrorKind int

const (
	// ErrTemplateInvariant means the fixed component template failed a
	// build-time invariant (missing or non-inline "Main" core module).
	// This is a programmer bug, never user-caused (spec §7).
	ErrTemplateInvariant EmitErrorKind = iota
	// ErrEncoding means the assembled module was rejected while encoding
	// to binary, e.g. a type mismatch in the user's program.
	ErrEncoding
)

func (k EmitErrorKind) String() string {
	switch k {
	case ErrTemplateInvariant:
		return "template invariant violated"
	case ErrEncoding:
		return "encoding error"
	default:
		return "emit error"
	}
}

// EmitError reports a failure while lowering the AST to a WebAssembly
// component, per spec §7.
type EmitError struct {
	Kind    EmitErrorKind
	Message string
}

func (e EmitError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewTemplateInvariant wraps a template-shape violation.
func NewTemplateInvariant(message string) error {
	return EmitError{Kind: ErrTemplateInvariant, Message: message}
}

// NewEncodingError wraps an encoder-level rejection, attaching the
// underlying message as spec §7 requires.
func NewEncodingError(message string) error {
	return EmitError{Kind: ErrEncoding, Message: message}
}
