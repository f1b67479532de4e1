package lox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scan(t *testing.T, src string) ([]Token, *Diagnostics) {
	t.Helper()
	diags := NewDiagnostics(&bytes.Buffer{})
	toks := NewLexer([]byte(src), diags).Scan()
	return toks, diags
}

func TestLexerBasicTokens(t *testing.T) {
	toks, diags := scan(t, "(){},.-+;*/")
	require.False(t, diags.HadError())

	want := []TokenType{
		LEFT_PAREN, RIGHT_PAREN, LEFT_BRACE, RIGHT_BRACE, COMMA, DOT,
		MINUS, PLUS, SEMICOLON, STAR, SLASH, EOF,
	}
	require.Len(t, toks, len(want))
	for i, typ := range want {
		assert.Equal(t, typ, toks[i].Type, "token %d", i)
	}
}

func TestLexerTwoCharOperators(t *testing.T) {
	toks, diags := scan(t, "== != <= >= = ! < >")
	require.False(t, diags.HadError())
	want := []TokenType{EQUAL_EQUAL, BANG_EQUAL, LESS_EQUAL, GREATER_EQUAL, EQUAL, BANG, LESS, GREATER, EOF}
	require.Len(t, toks, len(want))
	for i, typ := range want {
		assert.Equal(t, typ, toks[i].Type)
	}
}

func TestLexerStringLiteral(t *testing.T) {
	toks, diags := scan(t, `"hello world"`)
	require.False(t, diags.HadError())
	require.Len(t, toks, 2)
	assert.Equal(t, STRING, toks[0].Type)
	assert.Equal(t, String("hello world"), toks[0].Literal)
}

func TestLexerUnterminatedString(t *testing.T) {
	_, diags := scan(t, `"oops`)
	assert.True(t, diags.HadError())
}

func TestLexerNumberLiteral(t *testing.T) {
	toks, diags := scan(t, "123 45.67")
	require.False(t, diags.HadError())
	require.Len(t, toks, 3)
	assert.Equal(t, Number(123), toks[0].Literal)
	assert.Equal(t, Number(45.67), toks[1].Literal)
}

func TestLexerIdentifiersAndKeywords(t *testing.T) {
	toks, diags := scan(t, "orchid or x class classify")
	require.False(t, diags.HadError())
	want := []TokenType{IDENTIFIER, OR, IDENTIFIER, CLASS, IDENTIFIER, EOF}
	require.Len(t, toks, len(want))
	for i, typ := range want {
		assert.Equal(t, typ, toks[i].Type, "token %d (%s)", i, toks[i].Lexeme)
	}
}

func TestLexerCommentsAndWhitespaceSkipped(t *testing.T) {
	toks, diags := scan(t, "// a whole comment\nvar")
	require.False(t, diags.HadError())
	require.Len(t, toks, 2)
	assert.Equal(t, VAR, toks[0].Type)
	assert.Equal(t, 2, toks[0].Line)
}

func TestLexerUnexpectedCharacterReportsButContinues(t *testing.T) {
	toks, diags := scan(t, "@ var")
	assert.True(t, diags.HadError())
	require.Len(t, toks, 2)
	assert.Equal(t, VAR, toks[0].Type)
}
