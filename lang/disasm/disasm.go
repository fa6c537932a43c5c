// Package disasm renders a compiled chunk as human-readable text for
// debugging and golden-file tests.
package disasm

import (
	"fmt"
	"strings"

	"github.com/cave-lang/cave/lang/value"
)

// Disassemble returns one line per instruction in chunk, in the format
// "NNNN LLLL OP_NAME[ operand][ 'constant']", where NNNN is the bytecode
// offset and LLLL is either the source line or "   |" when it repeats the
// previous instruction's line.
func Disassemble(chunk *value.Chunk, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	offset := 0
	prevLine := -1
	for offset < len(chunk.Code) {
		var line int
		offset, line = instruction(&sb, chunk, offset, prevLine)
		prevLine = line
	}
	return sb.String()
}

func instruction(sb *strings.Builder, chunk *value.Chunk, offset, prevLine int) (int, int) {
	line := chunk.GetLine(offset)
	fmt.Fprintf(sb, "%04d ", offset)
	if offset > 0 && line == prevLine {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(sb, "%4d ", line)
	}

	op := value.Opcode(chunk.Code[offset])
	switch op {
	case value.OpConstant, value.OpDefineGlobal, value.OpGetGlobal, value.OpSetGlobal:
		idx := int(chunk.Code[offset+1])
		return constantInstruction(sb, chunk, op, idx, offset, 2)

	case value.OpConstantLong, value.OpDefineGlobalLong, value.OpGetGlobalLong, value.OpSetGlobalLong:
		idx := readLong(chunk.Code, offset+1)
		return constantInstruction(sb, chunk, op, idx, offset, 4)

	case value.OpGetLocal, value.OpSetLocal:
		slot := int(chunk.Code[offset+1])
		fmt.Fprintf(sb, "%-24s %4d\n", op, slot)
		return offset + 2, line

	case value.OpGetLocalLong, value.OpSetLocalLong:
		slot := readLong(chunk.Code, offset+1)
		fmt.Fprintf(sb, "%-24s %4d\n", op, slot)
		return offset + 4, line

	case value.OpJump, value.OpJumpIfFalse, value.OpJumpIfTrue, value.OpLoop, value.OpLoopIfTrue:
		dist := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
		sign := 1
		if op == value.OpLoop || op == value.OpLoopIfTrue {
			sign = -1
		}
		fmt.Fprintf(sb, "%-24s %4d -> %d\n", op, offset, offset+3+sign*dist)
		return offset + 3, line

	case value.OpJumpNPop:
		n := readLong(chunk.Code, offset+1)
		dist := int(chunk.Code[offset+4])<<8 | int(chunk.Code[offset+5])
		fmt.Fprintf(sb, "%-24s pop %d -> %d\n", op, n, offset+6+dist)
		return offset + 6, line

	case value.OpCall:
		argc := int(chunk.Code[offset+1])
		fmt.Fprintf(sb, "%-24s %4d\n", op, argc)
		return offset + 2, line

	case value.OpPopN:
		n := readLong(chunk.Code, offset+1)
		fmt.Fprintf(sb, "%-24s %4d\n", op, n)
		return offset + 4, line

	default:
		fmt.Fprintf(sb, "%s\n", op)
		return offset + 1, line
	}
}

func constantInstruction(sb *strings.Builder, chunk *value.Chunk, op value.Opcode, idx, offset, size int) (int, int) {
	line := chunk.GetLine(offset)
	v := "?"
	if idx < len(chunk.Constants) {
		v = chunk.Constants[idx].String()
	}
	fmt.Fprintf(sb, "%-24s %4d '%s'\n", op, idx, v)
	return offset + size, line
}

func readLong(code []byte, at int) int {
	return int(code[at])<<16 | int(code[at+1])<<8 | int(code[at+2])
}
