package value

import "fmt"

// MaxConstants is the largest constant-pool index the long (24-bit) opcode
// forms can address.
const MaxConstants = 1<<24 - 1

// Chunk holds one function's compiled bytecode: a dense byte array of
// opcodes and inline operands, a constant pool, and a parallel line table.
type Chunk struct {
	Code      []byte
	Constants []Value
	Lines     LineTable
}

// NewChunk returns an empty chunk ready to be written into.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends a single byte to the chunk, attributing it to line.
func (c *Chunk) Write(b byte, line int) int {
	c.Code = append(c.Code, b)
	c.Lines.AddLine(line)
	return len(c.Code) - 1
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op Opcode, line int) int {
	return c.Write(byte(op), line)
}

// AddConstant appends v to the constant pool and returns its index. Callers
// must check the result against MaxConstants themselves; AddConstant panics
// only if that invariant has already been violated by the caller.
func (c *Chunk) AddConstant(v Value) int {
	if len(c.Constants) > MaxConstants {
		panic("value: constant pool overflow")
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// GetLine returns the source line that produced the byte at offset.
func (c *Chunk) GetLine(offset int) int {
	return c.Lines.GetLine(offset)
}

// LineTable is a run-length encoded mapping from bytecode offset to source
// line: consecutive bytes produced while compiling the same source line are
// folded into a single (count, line) pair.
type LineTable struct {
	runs []lineRun
}

type lineRun struct {
	count int
	line  int
}

// AddLine records that the next byte written to the chunk came from line.
func (lt *LineTable) AddLine(line int) {
	if n := len(lt.runs); n > 0 && lt.runs[n-1].line == line {
		lt.runs[n-1].count++
		return
	}
	lt.runs = append(lt.runs, lineRun{count: 1, line: line})
}

// GetLine walks the run list, subtracting counts until offset falls inside
// a run, and returns that run's line number.
func (lt *LineTable) GetLine(offset int) int {
	remaining := offset
	for _, r := range lt.runs {
		if remaining < r.count {
			return r.line
		}
		remaining -= r.count
	}
	panic(fmt.Sprintf("value: offset %d out of range of line table", offset))
}

// Len returns the number of (count, line) pairs currently stored.
func (lt *LineTable) Len() int { return len(lt.runs) }
