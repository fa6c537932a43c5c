package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String(), "token %d is missing a name", tok)
	}
}

func TestGoStringQuotesPunctuation(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "identifier", IDENT.GoString())
	require.Equal(t, "and", AND.GoString())
}

func TestLookup(t *testing.T) {
	require.Equal(t, WHILE, Lookup("while"))
	require.Equal(t, FUN, Lookup("fun"))
	require.Equal(t, IDENT, Lookup("whilex"))
	require.Equal(t, IDENT, Lookup("d"))
	require.Equal(t, IDENT, Lookup("del_counter"))
	require.Equal(t, DEL, Lookup("del"))
}

func TestIsKeyword(t *testing.T) {
	require.True(t, AND.IsKeyword())
	require.True(t, WHILE.IsKeyword())
	require.False(t, IDENT.IsKeyword())
	require.False(t, PLUS.IsKeyword())
}
