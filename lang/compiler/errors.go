package compiler

import (
	"fmt"
	"strings"
)

// Error is a single compile-time diagnostic: "[line N] Error at 'tok': msg",
// with " at end" in place of the quoted token at EOF, or no location
// clause at all when the offending token is itself an ILLEGAL (lexical)
// token, whose message is self-explanatory.
type Error struct {
	Line    int
	Where   string // "", " at end", or " at 'tok'"
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, e.Where, e.Message)
}

// ErrorList accumulates every diagnostic produced while compiling one
// source unit. The compiler keeps going after an error (outside panic
// mode) so a single compile reports more than one mistake.
type ErrorList []Error

func (el *ErrorList) add(e Error) { *el = append(*el, e) }

// Err returns nil if the list is empty, or an error describing every
// diagnostic it holds, one per line.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

func (el ErrorList) Error() string {
	var sb strings.Builder
	for i, e := range el {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}
