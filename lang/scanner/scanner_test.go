package scanner

import (
	"testing"

	"github.com/cave-lang/cave/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(src string) []Tok {
	s := New([]byte(src))
	var toks []Tok
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Type == token.EOF || tok.Type == token.ILLEGAL {
			break
		}
	}
	return toks
}

func types(toks []Tok) []token.Token {
	out := make([]token.Token, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll("+ += - -= ! != = == < <= > >= ( ) { } [ ] , . : ; ?")
	require.Equal(t, []token.Token{
		token.PLUS, token.PLUS_EQ, token.MINUS, token.MINUS_EQ,
		token.BANG, token.BANG_EQ, token.EQ, token.EQ_EQ,
		token.LT, token.LE, token.GT, token.GE,
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACK, token.RBRACK, token.COMMA, token.DOT,
		token.COLON, token.SEMI, token.QUESTION, token.EOF,
	}, types(toks))
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll("while fun del delta")
	require.Equal(t, []token.Token{token.WHILE, token.FUN, token.DEL, token.IDENT, token.EOF}, types(toks))
	require.Equal(t, "delta", string(toks[3].Lexeme))
}

func TestDIdentifierDoesNotFallThroughToKeywords(t *testing.T) {
	// Regression: the original C scanner's identifierType() had a missing
	// `break` after the 'd' case, so a bare "d..." identifier that failed
	// to match "del"/"do" fell into the 'e' case and could spuriously
	// match "elif"/"else". Go's switch has no implicit fallthrough, so
	// this can't happen here; assert it directly.
	toks := scanAll("delse")
	require.Equal(t, token.IDENT, toks[0].Type)
}

func TestScanNumber(t *testing.T) {
	toks := scanAll("123 4.5")
	require.Equal(t, []token.Token{token.NUMBER, token.NUMBER, token.EOF}, types(toks))
	require.Equal(t, "123", string(toks[0].Lexeme))
	require.Equal(t, "4.5", string(toks[1].Lexeme))
}

func TestScanSimpleString(t *testing.T) {
	toks := scanAll(`"hello"`)
	require.Equal(t, token.STRING, toks[0].Type)
	require.Equal(t, `"hello"`, string(toks[0].Lexeme))
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(`"hello`)
	require.Equal(t, token.ILLEGAL, toks[0].Type)
	require.Equal(t, "Unterminated string", toks[0].Message)
}

func TestScanInterpolatedString(t *testing.T) {
	// "there are ${n + 1} items"
	toks := scanAll(`"there are ${n + 1} items"`)
	require.Equal(t, []token.Token{
		token.STRING, token.DOLLAR_BRACE, token.IDENT, token.PLUS, token.NUMBER,
		token.RBRACE, token.STRING, token.EOF,
	}, types(toks))
	require.Equal(t, `"there are $`, string(toks[0].Lexeme))
	require.Equal(t, `} items"`, string(toks[6].Lexeme))
}

func TestScanNestedInterpolation(t *testing.T) {
	toks := scanAll(`"a${"b${c}d"}e"`)
	require.Equal(t, []token.Token{
		token.STRING, token.DOLLAR_BRACE,
		token.STRING, token.DOLLAR_BRACE, token.IDENT, token.RBRACE, token.STRING,
		token.RBRACE, token.STRING, token.EOF,
	}, types(toks))
}

func TestSkipCommentsAndWhitespace(t *testing.T) {
	toks := scanAll("// line comment\n/* block\ncomment */ 1")
	require.Equal(t, []token.Token{token.NUMBER, token.EOF}, types(toks))
	require.Equal(t, 3, toks[0].Line)
}

func TestUnexpectedCharacter(t *testing.T) {
	toks := scanAll("@")
	require.Equal(t, token.ILLEGAL, toks[0].Type)
	require.Equal(t, "Unexpected character", toks[0].Message)
}

func TestDollarBraceOutsideStringIsIllegal(t *testing.T) {
	toks := scanAll("$")
	require.Equal(t, token.ILLEGAL, toks[0].Type)
}
