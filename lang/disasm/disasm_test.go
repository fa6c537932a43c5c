package disasm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cave-lang/cave/lang/disasm"
	"github.com/cave-lang/cave/lang/value"
)

func TestDisassembleLiteralsAndReturn(t *testing.T) {
	chunk := value.NewChunk()
	idx := chunk.AddConstant(value.Number(1))
	chunk.WriteOp(value.OpConstant, 1)
	chunk.Write(byte(idx), 1)
	chunk.WriteOp(value.OpReturn, 1)

	out := disasm.Disassemble(chunk, "test")

	require.True(t, strings.HasPrefix(out, "== test ==\n"))
	require.Contains(t, out, "0000")
	require.Contains(t, out, "CONSTANT")
	require.Contains(t, out, "'1'")
	require.Contains(t, out, "RETURN")
}

func TestDisassembleRepeatedLineIsElided(t *testing.T) {
	chunk := value.NewChunk()
	chunk.WriteOp(value.OpNil, 3)
	chunk.WriteOp(value.OpReturn, 3)

	out := disasm.Disassemble(chunk, "test")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3) // header + 2 instructions
	require.Contains(t, lines[1], "3")
	require.Contains(t, lines[2], "|")
}

func TestDisassembleLongConstantForm(t *testing.T) {
	chunk := value.NewChunk()
	var idx int
	for i := 0; i < 300; i++ {
		idx = chunk.AddConstant(value.Number(float64(i)))
	}
	chunk.WriteOp(value.OpConstantLong, 1)
	chunk.Write(byte(idx>>16), 1)
	chunk.Write(byte(idx>>8), 1)
	chunk.Write(byte(idx), 1)

	out := disasm.Disassemble(chunk, "test")
	require.Contains(t, out, "CONSTANT_LONG")
	require.Contains(t, out, "'299'")
}

func TestDisassembleJumpShowsTarget(t *testing.T) {
	chunk := value.NewChunk()
	chunk.WriteOp(value.OpJump, 1)
	chunk.Write(0, 1)
	chunk.Write(5, 1)
	chunk.WriteOp(value.OpNil, 1)

	out := disasm.Disassemble(chunk, "test")
	require.Contains(t, out, "JUMP")
	require.Contains(t, out, "-> 8")
}

func TestDisassembleLocalShowsSlotNotConstant(t *testing.T) {
	chunk := value.NewChunk()
	chunk.AddConstant(value.Number(0))
	chunk.AddConstant(value.Number(99)) // constant pool index 1
	chunk.WriteOp(value.OpGetLocal, 1)
	chunk.Write(1, 1) // stack slot 1, same index as the unrelated constant above

	out := disasm.Disassemble(chunk, "test")

	require.Contains(t, out, "GET_LOCAL")
	require.NotContains(t, out, "99")
}

func TestDisassembleCallShowsArgCount(t *testing.T) {
	chunk := value.NewChunk()
	chunk.WriteOp(value.OpCall, 1)
	chunk.Write(3, 1)

	out := disasm.Disassemble(chunk, "test")
	require.Contains(t, out, "CALL")
}
