package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/cave-lang/cave/lang/compiler"
	"github.com/cave-lang/cave/lang/disasm"
	"github.com/cave-lang/cave/lang/value"
)

func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return DisasmFiles(ctx, stdio, args...)
}

// DisasmFiles compiles each file and prints its top-level chunk's
// disassembly, named after the file.
func DisasmFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	strs := value.NewStrings(64)
	var firstErr error
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			firstErr = printError(stdio, err)
			continue
		}
		fn, err := compiler.Compile(src, strs, nil)
		if err != nil {
			firstErr = printError(stdio, err)
			continue
		}
		fmt.Fprint(stdio.Stdout, disasm.Disassemble(fn.Chunk, file))
	}
	return firstErr
}
