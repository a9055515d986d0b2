package lexer

import (
	"testing"

	"github.com/alanpp/alanppc/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestScanEmptyBlock(t *testing.T) {
	tokens, log := Scan("{}$")
	require.False(t, log.HasErrors())
	assert.Equal(t, []token.Kind{token.LBRACE, token.RBRACE, token.EOP, token.EOF}, kinds(tokens))
}

func TestScanWhitespaceOnlyBetweenDelimiters(t *testing.T) {
	tokens, log := Scan("   \n\t  $")
	require.False(t, log.HasErrors())
	assert.Equal(t, []token.Kind{token.EOP, token.EOF}, kinds(tokens))
}

func TestScanKeywordMidIdentifierRun(t *testing.T) {
	// "aifb" lexes as identifier 'a', keyword 'if', identifier 'b'.
	tokens, log := Scan("aifb$")
	require.False(t, log.HasErrors())
	assert.Equal(t, []token.Kind{token.IDENTIFIER, token.IF, token.IDENTIFIER, token.EOP, token.EOF}, kinds(tokens))
	assert.Equal(t, "a", tokens[0].Lexeme)
	assert.Equal(t, "if", tokens[1].Lexeme)
	assert.Equal(t, "b", tokens[2].Lexeme)
}

func TestScanStringLiteral(t *testing.T) {
	tokens, log := Scan(`"hi"$`)
	require.False(t, log.HasErrors())
	assert.Equal(t, []token.Kind{token.QUOTE, token.CHAR, token.CHAR, token.QUOTE, token.EOP, token.EOF}, kinds(tokens))
}

func TestScanUnterminatedStringIsExactlyOneError(t *testing.T) {
	_, log := Scan(`"hi$`)
	assert.Equal(t, 1, log.ErrorCount())
}

func TestScanNestedBlockComment(t *testing.T) {
	tokens, log := Scan("/* /* */ */$")
	require.False(t, log.HasErrors())
	assert.Equal(t, []token.Kind{token.EOP, token.EOF}, kinds(tokens))
}

func TestScanMissingEOPInsertsSyntheticOneWithWarning(t *testing.T) {
	tokens, log := Scan("{}")
	found := false
	for _, e := range log.Entries() {
		if e.Level.String() == "WARNING" {
			found = true
		}
	}
	assert.True(t, found)
	assert.Equal(t, []token.Kind{token.LBRACE, token.RBRACE, token.EOP, token.EOF}, kinds(tokens))
}

func TestScanAssignVsEquals(t *testing.T) {
	tokens, _ := Scan("a = b == c$")
	assert.Equal(t, []token.Kind{
		token.IDENTIFIER, token.ASSIGN, token.IDENTIFIER,
		token.EQUALS, token.IDENTIFIER, token.EOP, token.EOF,
	}, kinds(tokens))
}

func TestScanDigitRunProducesOneTokenPerDigit(t *testing.T) {
	tokens, _ := Scan("12$")
	assert.Equal(t, []token.Kind{token.DIGIT, token.DIGIT, token.EOP, token.EOF}, kinds(tokens))
}

func TestScanMultilineStringIsAnError(t *testing.T) {
	_, log := Scan("\"a\nb\"$")
	assert.True(t, log.HasErrors())
}

func TestScanResetsErrorCountPerSubProgram(t *testing.T) {
	_, log := Scan("!$!$")
	infos := 0
	for _, e := range log.Entries() {
		if e.Message == "Lex completed with 1 error(s)" {
			infos++
		}
	}
	assert.Equal(t, 2, infos)
}
