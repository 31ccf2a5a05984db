// Package lexer turns source text into an ordered sequence of positioned
// tokens (spec §4.1). Scanning is total: an unrecognized scalar simply
// causes every rule to decline, and the scanner stops early rather than
// erroring — the parser is the layer that turns "fewer tokens than
// expected" into a diagnostic (see internal/diagnostic).
package lexer

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tuslang/langc/internal/diagnostic"
	"github.com/tuslang/langc/internal/token"
)

// source wraps the input as runes plus a running byte/line/column position,
// the way the original tokenizer's Source type pairs a char vector with a
// Position, except counters here track byte offsets per spec §3 rather
// than rune indices.
type source struct {
	runes []rune
	sizes []int // UTF-8 byte length of each rune, parallel to runes
	idx   int   // index into runes/sizes of the current position
	pos   token.Position
}

func newSource(input string) *source {
	runes := make([]rune, 0, len(input))
	sizes := make([]int, 0, len(input))
	for _, r := range input {
		runes = append(runes, r)
		sizes = append(sizes, utf8.RuneLen(r))
	}
	return &source{runes: runes, sizes: sizes, pos: token.Position{Offset: 0, Line: 1, Column: 1}}
}

func (s *source) current() (rune, bool) {
	return s.peek(0)
}

func (s *source) peek(offset int) (rune, bool) {
	i := s.idx + offset
	if i < 0 || i >= len(s.runes) {
		return 0, false
	}
	return s.runes[i], true
}

func (s *source) advance() {
	r, ok := s.current()
	if !ok {
		return
	}
	size := s.sizes[s.idx]
	s.pos = s.pos.Advance(r, size)
	s.idx++
}

// Lexer scans a complete source string into tokens.
type Lexer struct {
	src    *source
	logger *slog.Logger
}

// New creates a Lexer over the given source text. Debug logging is silent
// unless LANGC_DEBUG is set in the environment.
func New(input string) *Lexer {
	return &Lexer{src: newSource(input), logger: diagnostic.DebugLogger("lexer")}
}

// Tokenize runs the scanner to completion and returns every token
// produced, in source order, including comments (the parser discards
// those). Tokenize is total: it never returns an error. A malformed
// source simply yields fewer tokens than there are bytes to cover; the
// parser surfaces that as a diagnostic once it cannot make progress.
func Tokenize(input string) []token.Token {
	return New(input).Tokenize()
}

// Tokenize runs l to completion.
func (l *Lexer) Tokenize() []token.Token {
	var tokens []token.Token
	for {
		tok, ok := l.next()
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func (l *Lexer) skipWhitespace() {
	for {
		r, ok := l.src.current()
		if !ok || !unicode.IsSpace(r) {
			return
		}
		l.src.advance()
	}
}

// next scans a single token, trying each rule in the fixed order spec §4.1
// gives: keyword, comment, delimiter, operator, integer, identifier. The
// first rule to match consumes; ok is false once the rules are exhausted
// at end-of-input or an unrecognized scalar is hit.
func (l *Lexer) next() (token.Token, bool) {
	l.skipWhitespace()
	r, ok := l.src.current()
	if !ok {
		return token.Token{}, false
	}
	l.logger.Debug("token dispatch", "ch", string(r), "line", l.src.pos.Line, "column", l.src.pos.Column)

	if tok, ok := l.tryKeyword(); ok {
		return tok, true
	}
	if tok, ok := l.tryComment(); ok {
		return tok, true
	}
	if tok, ok := l.tryDelimiter(); ok {
		return tok, true
	}
	if tok, ok := l.tryOperator(); ok {
		return tok, true
	}
	if tok, ok := l.tryInteger(); ok {
		return tok, true
	}
	if tok, ok := l.tryIdentifier(); ok {
		return tok, true
	}
	return token.Token{}, false
}

// createToken advances n runes from the current position and wraps the
// consumed span as a token of the given kind.
func (l *Lexer) createToken(kind token.Kind, n int) token.Token {
	start := l.src.pos
	startIdx := l.src.idx
	for i := 0; i < n; i++ {
		l.src.advance()
	}
	end := l.src.pos
	return token.Token{
		Kind: kind,
		Text: string(l.src.runes[startIdx:l.src.idx]),
		Loc:  token.Span(start, end),
	}
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentPart(r rune) bool {
	return isLetter(r) || isDigit(r)
}

// tryKeyword matches the longest prefix of ASCII letters-or-underscore at
// the cursor against the reserved lexemes. Note this prefix excludes
// digits, so "if2" lexes as Keyword("if") followed by Integer("2") — the
// prefix scan stops at the digit, same as the original tokenizer.
func (l *Lexer) tryKeyword() (token.Token, bool) {
	r, ok := l.src.current()
	if !ok || !isLetter(r) {
		return token.Token{}, false
	}
	length := 0
	for {
		c, ok := l.src.peek(length)
		if !ok || !isLetter(c) {
			break
		}
		length++
	}
	word := make([]rune, length)
	for i := 0; i < length; i++ {
		c, _ := l.src.peek(i)
		word[i] = c
	}
	if _, reserved := token.Keywords[string(word)]; !reserved {
		return token.Token{}, false
	}
	return l.createToken(token.Keyword, length), true
}

// tryComment matches `//` to end of line (inclusive of the newline, or
// end-of-input) and `/* ... */` balanced only at depth 1. An unterminated
// block comment silently extends to end-of-input.
func (l *Lexer) tryComment() (token.Token, bool) {
	c0, ok := l.src.current()
	if !ok || c0 != '/' {
		return token.Token{}, false
	}
	c1, ok := l.src.peek(1)
	if !ok {
		return token.Token{}, false
	}
	switch c1 {
	case '/':
		length := 2
		for {
			c, ok := l.src.peek(length)
			if !ok {
				break
			}
			length++
			if c == '\n' {
				break
			}
		}
		return l.createToken(token.Comment, length), true
	case '*':
		length := 2
		for {
			c, ok := l.src.peek(length)
			if !ok {
				break
			}
			if c == '*' {
				if next, ok := l.src.peek(length + 1); ok && next == '/' {
					length += 2
					break
				}
			}
			length++
		}
		return l.createToken(token.Comment, length), true
	default:
		return token.Token{}, false
	}
}

func (l *Lexer) tryDelimiter() (token.Token, bool) {
	r, ok := l.src.current()
	if !ok || r > unicode.MaxASCII {
		return token.Token{}, false
	}
	if _, isDelim := token.Delimiters[byte(r)]; !isDelim {
		return token.Token{}, false
	}
	return l.createToken(token.Delimiter, 1), true
}

// tryOperator implements maximal munch over the fixed operator set. A bare
// '&' or '|' declines (they are invalid in isolation), letting the scanner
// fall through to integer/identifier, neither of which will match either —
// the scan then halts, per the total-but-silent failure model of §4.1.
func (l *Lexer) tryOperator() (token.Token, bool) {
	c0, ok := l.src.current()
	if !ok {
		return token.Token{}, false
	}
	c1, hasNext := l.src.peek(1)

	two := func(second rune) bool { return hasNext && c1 == second }

	switch c0 {
	case '=':
		if two('=') {
			return l.createToken(token.Operator, 2), true
		}
		return l.createToken(token.Operator, 1), true
	case '!':
		if two('=') {
			return l.createToken(token.Operator, 2), true
		}
		return l.createToken(token.Operator, 1), true
	case '+', '*', '/':
		return l.createToken(token.Operator, 1), true
	case '-':
		if two('>') {
			return l.createToken(token.Operator, 2), true
		}
		return l.createToken(token.Operator, 1), true
	case '>', '<':
		if two('=') {
			return l.createToken(token.Operator, 2), true
		}
		return l.createToken(token.Operator, 1), true
	case '&':
		if two('&') {
			return l.createToken(token.Operator, 2), true
		}
		return token.Token{}, false
	case '|':
		if two('|') {
			return l.createToken(token.Operator, 2), true
		}
		return token.Token{}, false
	default:
		return token.Token{}, false
	}
}

func (l *Lexer) tryInteger() (token.Token, bool) {
	r, ok := l.src.current()
	if !ok || !isDigit(r) {
		return token.Token{}, false
	}
	length := 0
	for {
		c, ok := l.src.peek(length)
		if !ok || !isDigit(c) {
			break
		}
		length++
	}
	return l.createToken(token.Integer, length), true
}

func (l *Lexer) tryIdentifier() (token.Token, bool) {
	r, ok := l.src.current()
	if !ok || !isLetter(r) {
		return token.Token{}, false
	}
	length := 1
	for {
		c, ok := l.src.peek(length)
		if !ok || !isIdentPart(c) {
			break
		}
		length++
	}
	return l.createToken(token.Identifier, length), true
}

// Reconstruct concatenates token substrings with the original whitespace
// runs between them, reproducing the exact input — the coverage property
// spec §8 asks an implementation to be able to verify. It is exposed here
// (rather than only exercised from a test) because it is the cheapest way
// for a caller embedding this lexer to sanity-check a custom source
// reader.
func Reconstruct(input string, tokens []token.Token) string {
	var b strings.Builder
	prevEnd := 0
	for _, t := range tokens {
		b.WriteString(input[prevEnd:t.Loc.Start.Offset])
		b.WriteString(t.Text)
		prevEnd = t.Loc.End.Offset
	}
	b.WriteString(input[prevEnd:])
	return b.String()
}
