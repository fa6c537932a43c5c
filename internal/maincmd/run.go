package maincmd

import (
	"context"
	"os"

	"github.com/mna/mainer"

	"github.com/cave-lang/cave/lang/natives"
	"github.com/cave-lang/cave/lang/vm"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return RunFiles(ctx, stdio, args...)
}

// RunFiles compiles and interprets each file in turn with a fresh VM,
// stopping at the first one that fails to compile or run.
func RunFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return printError(stdio, err)
		}

		m := vm.New()
		natives.Register(m)
		if err := m.Interpret(src); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}
