// Package surflex implements an indentation-aware lexer for the surface
// scripting language, in the style of the teacher's internal/lexer
// package: a hand-written scanner over runes, functional-option
// construction, and Position tracking in rune (not byte) columns.
package surflex

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/cwbudde/cpst/internal/cpserr"
	"github.com/cwbudde/cpst/internal/surftoken"
)

// Lexer tokenizes surface-language source into a flat token stream,
// synthesizing INDENT/DEDENT/NEWLINE tokens the way Python's tokenizer
// does.
type Lexer struct {
	file   string
	input  string
	pos    int // byte offset of ch
	rdPos  int // byte offset of next rune
	ch     rune
	line   int
	column int

	indents         []int // indentation-width stack, starting with 0
	parenDepth      int   // suppresses NEWLINE while > 0
	pendingDedents  int   // extra DEDENTs still owed from the last scanIndentation

	atLineStart bool
	errors      []*cpserr.Diagnostic
}

// Option configures a Lexer at construction time.
type Option func(*Lexer)

// WithFile attaches a file name to diagnostics produced by the lexer.
func WithFile(name string) Option {
	return func(l *Lexer) { l.file = name }
}

// New creates a Lexer over src.
func New(src string, opts ...Option) *Lexer {
	l := &Lexer{
		input:       src,
		line:        1,
		column:      0,
		indents:     []int{0},
		atLineStart: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.readRune()
	return l
}

// Errors returns the diagnostics accumulated while tokenizing.
func (l *Lexer) Errors() []*cpserr.Diagnostic {
	return l.errors
}

func (l *Lexer) readRune() {
	if l.rdPos >= len(l.input) {
		l.ch = 0
		l.pos = l.rdPos
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.rdPos:])
	l.pos = l.rdPos
	l.rdPos += w
	l.ch = r
	l.column++
}

func (l *Lexer) peekRune() rune {
	if l.rdPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.rdPos:])
	return r
}

func (l *Lexer) newline() {
	l.line++
	l.column = 1
}

// Tokenize scans the entire input and returns the token slice. The
// final token is always EOF, preceded by enough DEDENTs to close every
// open indentation level.
func (l *Lexer) Tokenize() []surftoken.Token {
	var toks []surftoken.Token
	for {
		if l.atLineStart && l.parenDepth == 0 {
			tok, blank := l.scanIndentation()
			if blank {
				continue
			}
			toks = append(toks, tok)
			continue
		}

		tok := l.next()
		if tok.Kind == surftoken.NEWLINE {
			l.atLineStart = true
		}
		toks = append(toks, tok)
		if tok.Kind == surftoken.EOF {
			break
		}
	}
	return toks
}

// scanIndentation measures leading whitespace at the start of a logical
// line and emits INDENT/DEDENT tokens as needed, one token per call.
// blank is true for empty or comment-only lines and for the line's
// indentation being fully accounted for (no token produced); the caller
// keeps calling scanIndentation while l.atLineStart is set, which lets a
// dedent to an outer level emit several DEDENT tokens in a row.
func (l *Lexer) scanIndentation() (surftoken.Token, bool) {
	if l.pendingDedents > 0 {
		l.pendingDedents--
		if l.pendingDedents == 0 {
			l.atLineStart = false
		}
		return surftoken.Token{Kind: surftoken.DEDENT, Pos: surftoken.Position{Line: l.line, Column: 1}}, false
	}

	width := 0
	for l.ch == ' ' || l.ch == '\t' {
		if l.ch == '\t' {
			width += 8 - (width % 8)
		} else {
			width++
		}
		l.readRune()
	}
	if l.ch == '#' {
		for l.ch != '\n' && l.ch != 0 {
			l.readRune()
		}
	}
	if l.ch == '\n' {
		l.readRune()
		l.newline()
		return surftoken.Token{}, true
	}
	if l.ch == 0 {
		l.atLineStart = false
		return surftoken.Token{}, true
	}

	top := l.indents[len(l.indents)-1]
	pos := surftoken.Position{Line: l.line, Column: 1}
	switch {
	case width > top:
		l.indents = append(l.indents, width)
		l.atLineStart = false
		return surftoken.Token{Kind: surftoken.INDENT, Pos: pos}, false
	case width < top:
		count := 0
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
			l.indents = l.indents[:len(l.indents)-1]
			count++
		}
		l.pendingDedents = count - 1
		if l.pendingDedents == 0 {
			l.atLineStart = false
		}
		return surftoken.Token{Kind: surftoken.DEDENT, Pos: pos}, false
	default:
		l.atLineStart = false
		return surftoken.Token{}, true
	}
}

func (l *Lexer) pos_() surftoken.Position {
	return surftoken.Position{Line: l.line, Column: l.column}
}

func (l *Lexer) skipInlineSpace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readRune()
	}
	if l.ch == '#' {
		for l.ch != '\n' && l.ch != 0 {
			l.readRune()
		}
	}
}

func (l *Lexer) next() surftoken.Token {
	l.skipInlineSpace()
	pos := l.pos_()

	switch {
	case l.ch == 0:
		// close every remaining indentation level before EOF.
		if len(l.indents) > 1 {
			l.indents = l.indents[:len(l.indents)-1]
			return surftoken.Token{Kind: surftoken.DEDENT, Pos: pos}
		}
		return surftoken.Token{Kind: surftoken.EOF, Pos: pos}
	case l.ch == '\n':
		l.readRune()
		l.newline()
		if l.parenDepth > 0 {
			return l.next()
		}
		return surftoken.Token{Kind: surftoken.NEWLINE, Literal: "\n", Pos: pos}
	case l.ch == '\\' && l.peekRune() == '\n':
		l.readRune()
		l.readRune()
		l.newline()
		return l.next()
	case unicode.IsDigit(l.ch):
		return l.scanNumber(pos)
	case isIdentStart(l.ch):
		return l.scanIdent(pos)
	case l.ch == '"' || l.ch == '\'':
		return l.scanString(pos)
	default:
		return l.scanOperator(pos)
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc)
}

func (l *Lexer) scanNumber(pos surftoken.Position) surftoken.Token {
	start := l.pos
	for unicode.IsDigit(l.ch) {
		l.readRune()
	}
	if l.ch == '.' && unicode.IsDigit(l.peekRune()) {
		l.readRune()
		for unicode.IsDigit(l.ch) {
			l.readRune()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		save, savePos, saveCol := l.ch, l.pos, l.column
		l.readRune()
		if l.ch == '+' || l.ch == '-' {
			l.readRune()
		}
		if unicode.IsDigit(l.ch) {
			for unicode.IsDigit(l.ch) {
				l.readRune()
			}
		} else {
			// not an exponent after all; rewind to the 'e' so it is left
			// out of the number.
			l.ch, l.pos, l.column = save, savePos, saveCol
			l.rdPos = savePos + utf8.RuneLen(save)
		}
	}
	return surftoken.Token{Kind: surftoken.NUMBER, Literal: l.input[start:l.pos], Pos: pos}
}

func (l *Lexer) scanIdent(pos surftoken.Position) surftoken.Token {
	start := l.pos
	for isIdentPart(l.ch) {
		l.readRune()
	}
	lit := norm.NFC.String(l.input[start:l.pos])
	return surftoken.Token{Kind: surftoken.Lookup(lit), Literal: lit, Pos: pos}
}

func (l *Lexer) scanString(pos surftoken.Position) surftoken.Token {
	quote := l.ch
	var sb strings.Builder
	l.readRune()
	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' {
			sb.WriteRune(l.ch)
			l.readRune()
		}
		sb.WriteRune(l.ch)
		l.readRune()
	}
	if l.ch == quote {
		l.readRune()
	} else {
		l.errors = append(l.errors, cpserr.NewParse(l.file, l.input, "unterminated string literal", pos))
	}
	return surftoken.Token{Kind: surftoken.STRING, Literal: sb.String(), Pos: pos}
}

func (l *Lexer) scanOperator(pos surftoken.Position) surftoken.Token {
	ch := l.ch
	two := string(ch) + string(l.peekRune())
	match := func(lit string, kind surftoken.Kind, width int) (surftoken.Token, bool) {
		if l.input[l.pos:minInt(l.pos+width, len(l.input))] == lit {
			for i := 0; i < width; i++ {
				l.readRune()
			}
			return surftoken.Token{Kind: kind, Literal: lit, Pos: pos}, true
		}
		return surftoken.Token{}, false
	}

	for _, c := range []struct {
		lit  string
		kind surftoken.Kind
	}{
		{"**", surftoken.DSTAR}, {"//", surftoken.DSLASH}, {"<<", surftoken.LSHIFT},
		{">>", surftoken.RSHIFT}, {"==", surftoken.EQ}, {"!=", surftoken.NOTEQ},
		{"<=", surftoken.LTE}, {">=", surftoken.GTE},
	} {
		if two == c.lit {
			if tok, ok := match(c.lit, c.kind, 2); ok {
				return tok
			}
		}
	}

	single := map[rune]surftoken.Kind{
		'+': surftoken.PLUS, '-': surftoken.MINUS, '*': surftoken.STAR, '/': surftoken.SLASH,
		'%': surftoken.PERCENT, '|': surftoken.PIPE, '^': surftoken.CARET, '&': surftoken.AMP,
		'<': surftoken.LT, '>': surftoken.GT, '=': surftoken.ASSIGN, ':': surftoken.COLON,
		',': surftoken.COMMA, '.': surftoken.DOT, '@': surftoken.AT,
	}
	opening := map[rune]surftoken.Kind{'(': surftoken.LPAREN, '[': surftoken.LBRACKET, '{': surftoken.LBRACE}
	closing := map[rune]surftoken.Kind{')': surftoken.RPAREN, ']': surftoken.RBRACKET, '}': surftoken.RBRACE}

	if kind, ok := opening[ch]; ok {
		l.parenDepth++
		l.readRune()
		return surftoken.Token{Kind: kind, Literal: string(ch), Pos: pos}
	}
	if kind, ok := closing[ch]; ok {
		if l.parenDepth > 0 {
			l.parenDepth--
		}
		l.readRune()
		return surftoken.Token{Kind: kind, Literal: string(ch), Pos: pos}
	}
	if kind, ok := single[ch]; ok {
		l.readRune()
		return surftoken.Token{Kind: kind, Literal: string(ch), Pos: pos}
	}

	l.errors = append(l.errors, cpserr.NewParse(l.file, l.input, fmt.Sprintf("unexpected character %q", ch), pos))
	l.readRune()
	return surftoken.Token{Kind: surftoken.ILLEGAL, Literal: string(ch), Pos: pos}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
