package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFalsey(t *testing.T) {
	cases := []struct {
		v      Value
		falsey bool
	}{
		{Nil, true},
		{Bool(false), true},
		{Bool(true), false},
		{Number(0), true},
		{Number(1), false},
		{Number(-1), false},
		{FromObject(NewObjString([]byte(""))), true},
		{FromObject(NewObjString([]byte("x"))), false},
	}
	for _, c := range cases {
		require.Equal(t, c.falsey, c.v.IsFalsey(), "value %v", c.v)
	}
}

func TestEqual(t *testing.T) {
	require.True(t, Equal(Nil, Nil))
	require.True(t, Equal(Number(1), Number(1)))
	require.False(t, Equal(Number(1), Number(2)))
	require.False(t, Equal(Number(0), Bool(false)))
	require.True(t, Equal(FromObject(NewObjString([]byte("ab"))), FromObject(NewObjString([]byte("ab")))))
	require.False(t, Equal(FromObject(NewObjString([]byte("ab"))), FromObject(NewObjString([]byte("ac")))))
}

func TestStringRender(t *testing.T) {
	require.Equal(t, "nil", Nil.String())
	require.Equal(t, "true", Bool(true).String())
	require.Equal(t, "12.5", Number(12.5).String())
	require.Equal(t, "3", Number(3).String())
}

func TestIntern(t *testing.T) {
	strs := NewStrings(8)
	var linked []*ObjString
	a := strs.Intern([]byte("hello"), func(s *ObjString) { linked = append(linked, s) })
	b := strs.Intern([]byte("hello"), func(s *ObjString) { linked = append(linked, s) })
	require.Same(t, a, b)
	require.Len(t, linked, 1)

	c := strs.Intern([]byte("world"), func(s *ObjString) { linked = append(linked, s) })
	require.NotSame(t, a, c)
	require.Len(t, linked, 2)
	require.Equal(t, 2, strs.Len())
}

func TestFNV1a(t *testing.T) {
	// Known FNV-1a 32-bit test vector for the empty string.
	require.Equal(t, uint32(2166136261), FNV1a(nil))
}
