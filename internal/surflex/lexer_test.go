package surflex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/cpst/internal/surftoken"
)

func kinds(toks []surftoken.Token) []surftoken.Kind {
	out := make([]surftoken.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeSimpleFunction(t *testing.T) {
	src := "def cps_add(x, y):\n    return x + y\n"
	toks := New(src).Tokenize()

	require.Empty(t, New(src).Errors())
	assert.Equal(t, []surftoken.Kind{
		surftoken.DEF, surftoken.NAME, surftoken.LPAREN, surftoken.NAME, surftoken.COMMA,
		surftoken.NAME, surftoken.RPAREN, surftoken.COLON, surftoken.NEWLINE,
		surftoken.INDENT,
		surftoken.RETURN, surftoken.NAME, surftoken.PLUS, surftoken.NAME, surftoken.NEWLINE,
		surftoken.DEDENT, surftoken.EOF,
	}, kinds(toks))
}

func TestTokenizeMultiLevelDedent(t *testing.T) {
	src := "if a:\n    if b:\n        c\nd\n"
	toks := New(src).Tokenize()

	assert.Equal(t, []surftoken.Kind{
		surftoken.IF, surftoken.NAME, surftoken.COLON, surftoken.NEWLINE,
		surftoken.INDENT,
		surftoken.IF, surftoken.NAME, surftoken.COLON, surftoken.NEWLINE,
		surftoken.INDENT,
		surftoken.NAME, surftoken.NEWLINE,
		surftoken.DEDENT, surftoken.DEDENT,
		surftoken.NAME, surftoken.NEWLINE,
		surftoken.EOF,
	}, kinds(toks))
}

func TestTokenizeParenSuppressesNewline(t *testing.T) {
	src := "cps_f(a,\n      b)\n"
	toks := New(src).Tokenize()

	assert.Equal(t, []surftoken.Kind{
		surftoken.NAME, surftoken.LPAREN, surftoken.NAME, surftoken.COMMA,
		surftoken.NAME, surftoken.RPAREN, surftoken.NEWLINE, surftoken.EOF,
	}, kinds(toks))
}

func TestTokenizeBlankAndCommentLinesIgnored(t *testing.T) {
	src := "x = 1\n\n# a comment\ny = 2\n"
	toks := New(src).Tokenize()

	assert.Equal(t, []surftoken.Kind{
		surftoken.NAME, surftoken.ASSIGN, surftoken.NUMBER, surftoken.NEWLINE,
		surftoken.NAME, surftoken.ASSIGN, surftoken.NUMBER, surftoken.NEWLINE,
		surftoken.EOF,
	}, kinds(toks))
}

func TestTokenizeKeywordsAndOperators(t *testing.T) {
	src := "a and b or not c\na == b != c <= d >= e\n"
	toks := New(src).Tokenize()

	assert.Equal(t, []surftoken.Kind{
		surftoken.NAME, surftoken.AND, surftoken.NAME, surftoken.OR, surftoken.NOT, surftoken.NAME, surftoken.NEWLINE,
		surftoken.NAME, surftoken.EQ, surftoken.NAME, surftoken.NOTEQ, surftoken.NAME,
		surftoken.LTE, surftoken.NAME, surftoken.GTE, surftoken.NAME, surftoken.NEWLINE,
		surftoken.EOF,
	}, kinds(toks))
}

func TestIdentifierNFCNormalization(t *testing.T) {
	// "é" (precomposed, NFC) vs "e\u0301" (decomposed, NFD) must
	// tokenize to the same NAME literal once normalized.
	nfc := "café"
	nfd := "cafe\u0301"
	require.NotEqual(t, nfc, nfd)

	toksNFC := New(nfc + "\n").Tokenize()
	toksNFD := New(nfd + "\n").Tokenize()
	assert.Equal(t, toksNFC[0].Literal, toksNFD[0].Literal)
}

func TestIllegalCharacterRecorded(t *testing.T) {
	l := New("a $ b\n")
	l.Tokenize()
	require.Len(t, l.Errors(), 1)
	assert.Equal(t, `unexpected character '$'`, l.Errors()[0].Message)
}

func TestUnterminatedStringRecorded(t *testing.T) {
	l := New(`x = "unterminated` + "\n")
	l.Tokenize()
	require.Len(t, l.Errors(), 1)
}
