package compiler

import (
	"testing"

	"github.com/cave-lang/cave/lang/value"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *value.ObjFunction {
	t.Helper()
	strs := value.NewStrings(16)
	fn, err := Compile([]byte(src), strs, nil)
	require.NoError(t, err)
	return fn
}

func compileErr(t *testing.T, src string) error {
	t.Helper()
	strs := value.NewStrings(16)
	_, err := Compile([]byte(src), strs, nil)
	return err
}

func TestCompileArithmeticEmitsExpectedOps(t *testing.T) {
	fn := compile(t, "print 1 + 2 * 3;")
	code := fn.Chunk.Code
	require.Contains(t, code, byte(value.OpAdd))
	require.Contains(t, code, byte(value.OpMultiply))
	require.Contains(t, code, byte(value.OpPrint))
	// multiply should precede add: '*' binds tighter than '+'.
	mulIdx, addIdx := -1, -1
	for i, b := range code {
		switch value.Opcode(b) {
		case value.OpMultiply:
			mulIdx = i
		case value.OpAdd:
			addIdx = i
		}
	}
	require.NotEqual(t, -1, mulIdx)
	require.NotEqual(t, -1, addIdx)
	require.Less(t, mulIdx, addIdx)
}

func TestCompileGlobalDefineAndGet(t *testing.T) {
	fn := compile(t, "var x = 1; print x;")
	code := fn.Chunk.Code
	require.Contains(t, code, byte(value.OpDefineGlobal))
	require.Contains(t, code, byte(value.OpGetGlobal))
}

func TestCompileManyConstantsUsesLongForm(t *testing.T) {
	src := "var x = 0;\n"
	for i := 0; i < 300; i++ {
		src += "print x;\n"
	}
	fn := compile(t, src)
	found := false
	for _, b := range fn.Chunk.Code {
		if value.Opcode(b) == value.OpGetGlobalLong {
			found = true
		}
	}
	require.True(t, found, "expected at least one GET_GLOBAL_LONG once the constant pool exceeds 256 names")
}

func TestCompileLocalScoping(t *testing.T) {
	fn := compile(t, "{ var a = 1; var b = 2; print a + b; }")
	code := fn.Chunk.Code
	require.Contains(t, code, byte(value.OpGetLocal))
	// two locals declared and popped when the block scope closes.
	require.Contains(t, code, byte(value.OpPopN))
}

func TestCompileIfElseJumpsAreWellFormed(t *testing.T) {
	fn := compile(t, `
		var x = 1;
		if (x) {
			print 1;
		} elif (x) {
			print 2;
		} else {
			print 3;
		}
	`)
	code := fn.Chunk.Code
	require.Contains(t, code, byte(value.OpJumpIfFalse))
	require.Contains(t, code, byte(value.OpJump))
}

func TestCompileWhileLoopBackwardJump(t *testing.T) {
	fn := compile(t, "var i = 0; while (i) { i = i - 1; }")
	require.Contains(t, fn.Chunk.Code, byte(value.OpLoop))
}

func TestCompileDoWhileUsesLoopIfTrue(t *testing.T) {
	fn := compile(t, "var i = 0; do { i = i - 1; } while (i);")
	require.Contains(t, fn.Chunk.Code, byte(value.OpLoopIfTrue))
}

func TestCompileForLoopDesugarsToWhileShape(t *testing.T) {
	fn := compile(t, "for (var i = 0; i; i = i - 1) { print i; }")
	code := fn.Chunk.Code
	require.Contains(t, code, byte(value.OpLoop))
	require.Contains(t, code, byte(value.OpJumpIfFalse))
}

func TestBreakOutsideLoopIsError(t *testing.T) {
	err := compileErr(t, "break;")
	require.Error(t, err)
}

func TestContinueOutsideLoopIsError(t *testing.T) {
	err := compileErr(t, "continue;")
	require.Error(t, err)
}

func TestBreakInsideLoopWithLocalsEmitsJumpNPop(t *testing.T) {
	fn := compile(t, "while (true) { var a = 1; break; }")
	require.Contains(t, fn.Chunk.Code, byte(value.OpJumpNPop))
}

func TestFunctionDeclarationAndCall(t *testing.T) {
	fn := compile(t, "fun add(a, b) { return a + b; } print add(1, 2);")
	code := fn.Chunk.Code
	require.Contains(t, code, byte(value.OpConstant)) // the nested function object
	require.Contains(t, code, byte(value.OpCall))
	found := false
	for _, c := range fn.Chunk.Constants {
		if c.IsFunction() {
			found = true
		}
	}
	require.True(t, found, "expected the compiled add function to land in the constant pool")
}

func TestReturnAtTopLevelIsError(t *testing.T) {
	err := compileErr(t, "return 1;")
	require.Error(t, err)
}

func TestTooManyArgumentsIsError(t *testing.T) {
	src := "fun f() {}\nf("
	for i := 0; i < 256; i++ {
		if i > 0 {
			src += ","
		}
		src += "1"
	}
	src += ");"
	err := compileErr(t, src)
	require.Error(t, err)
}

func TestCompoundAssignmentDesugarsToGetOpSet(t *testing.T) {
	fn := compile(t, "var x = 1; x += 2;")
	code := fn.Chunk.Code
	require.Contains(t, code, byte(value.OpGetGlobal))
	require.Contains(t, code, byte(value.OpAdd))
	require.Contains(t, code, byte(value.OpSetGlobal))
}

func TestInvalidAssignmentTargetIsError(t *testing.T) {
	err := compileErr(t, "1 + 2 = 3;")
	require.Error(t, err)
}

func TestStringInterpolationEmitsInterpolateStr(t *testing.T) {
	fn := compile(t, `var n = 4; print "there are ${n + 1} items";`)
	code := fn.Chunk.Code
	count := 0
	for _, b := range code {
		if value.Opcode(b) == value.OpInterpolateStr {
			count++
		}
	}
	require.Equal(t, 2, count)
}

func TestIndexAndSliceOpcodes(t *testing.T) {
	fn := compile(t, `var s = "abc"; print s[0]; print s[1:2]; print s[1:2:3];`)
	code := fn.Chunk.Code
	require.Contains(t, code, byte(value.OpIndex))
	require.Contains(t, code, byte(value.OpIndexRange))
	require.Contains(t, code, byte(value.OpIndexRangeInterval))
}

func TestTernaryConditionalExpression(t *testing.T) {
	fn := compile(t, "print true ? 1 : 2;")
	code := fn.Chunk.Code
	require.Contains(t, code, byte(value.OpJumpIfFalse))
	require.Contains(t, code, byte(value.OpJump))
}

func TestReservedKeywordsRejected(t *testing.T) {
	for _, src := range []string{
		"class Foo {}",
		"switch (1) {}",
		"del x;",
		"this;",
		"super;",
	} {
		require.Error(t, compileErr(t, src), "expected %q to be rejected", src)
	}
}

func TestDIdentifierKeywordIsNotConfused(t *testing.T) {
	// "delse" must parse as a plain identifier, never as a keyword.
	fn := compile(t, "var delse = 1; print delse;")
	require.Contains(t, fn.Chunk.Code, byte(value.OpGetGlobal))
}

func TestLineTableTracksEachStatement(t *testing.T) {
	fn := compile(t, "var x = 1;\nvar y = 2;\nprint x + y;\n")
	require.GreaterOrEqual(t, fn.Chunk.Lines.Len(), 1)
	require.Equal(t, 1, fn.Chunk.GetLine(0))
}

func TestJumpPatchDistanceIsCorrect(t *testing.T) {
	fn := compile(t, "if (true) { print 1; }")
	code := fn.Chunk.Code
	for i := 0; i < len(code); i++ {
		if value.Opcode(code[i]) == value.OpJumpIfFalse {
			dist := int(code[i+1])<<8 | int(code[i+2])
			target := i + 3 + dist
			require.LessOrEqual(t, target, len(code))
			return
		}
	}
	t.Fatal("expected a JUMP_IF_FALSE instruction")
}

func TestRuntimeCompileExpressionEndsInExtract(t *testing.T) {
	strs := value.NewStrings(8)
	fn, err := CompileExpression([]byte("frame + index"), strs, nil)
	require.NoError(t, err)
	require.Equal(t, 2, fn.Arity)
	code := fn.Chunk.Code
	require.Equal(t, byte(value.OpExtract), code[len(code)-1])
}

func TestUnterminatedStringIsCompileError(t *testing.T) {
	err := compileErr(t, `print "hello;`)
	require.Error(t, err)
}

func TestAndOrShortCircuit(t *testing.T) {
	fn := compile(t, "print true and false or true;")
	code := fn.Chunk.Code
	require.Contains(t, code, byte(value.OpJumpIfFalse))
	require.Contains(t, code, byte(value.OpJump))
}
