package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/cave-lang/cave/lang/scanner"
	"github.com/cave-lang/cave/lang/token"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(ctx, stdio, args...)
}

// TokenizeFiles scans each file and prints one line per token: its source
// line, kind, and (for tokens that carry one) its lexeme.
func TokenizeFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	var firstErr error
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			firstErr = printError(stdio, err)
			continue
		}
		sc := scanner.New(src)
		for {
			tok := sc.Scan()
			fmt.Fprintf(stdio.Stdout, "%s:%d: %s", file, tok.Line, tok.Type)
			switch tok.Type {
			case token.ILLEGAL:
				fmt.Fprintf(stdio.Stdout, " %s", tok.Message)
			case token.EOF:
			default:
				if len(tok.Lexeme) > 0 {
					fmt.Fprintf(stdio.Stdout, " %q", tok.Lexeme)
				}
			}
			fmt.Fprintln(stdio.Stdout)
			if tok.Type == token.EOF {
				break
			}
			if tok.Type == token.ILLEGAL {
				firstErr = printError(stdio, fmt.Errorf("%s:%d: %s", file, tok.Line, tok.Message))
				break
			}
		}
	}
	return firstErr
}
