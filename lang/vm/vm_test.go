package vm_test

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/cave-lang/cave/lang/value"
	"github.com/cave-lang/cave/lang/vm"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	require.NoError(t, w.Close())
	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func run(t *testing.T, src string) string {
	t.Helper()
	m := vm.New()
	out := captureStdout(t, func() {
		err := m.Interpret([]byte(src))
		require.NoError(t, err)
	})
	return strings.TrimRight(out, "\n")
}

func TestArithmeticPrecedence(t *testing.T) {
	require.Equal(t, "5", run(t, `print 1 + 2 * 3 - 4 / 2;`))
}

func TestLocalsConditionalsCompoundAssignment(t *testing.T) {
	src := `
var x = 10;
if (x > 5) { x += 2; } else { x -= 2; }
print x;
`
	require.Equal(t, "12", run(t, src))
}

func TestWhileBreakContinue(t *testing.T) {
	src := `
var i = 0; var s = 0;
while (i < 10) {
  i += 1;
  if (i == 5) continue;
  if (i == 8) break;
  s += i;
}
print s;
`
	require.Equal(t, "23", run(t, src))
}

func TestStringInterpolation(t *testing.T) {
	src := `
var n = 3;
print "there are ${n + 1} items";
`
	require.Equal(t, "there are 4 items", run(t, src))
}

func TestRecursiveFactorial(t *testing.T) {
	src := `
fun fact(n) { if (n <= 1) return 1; return n * fact(n - 1); }
print fact(5);
`
	require.Equal(t, "120", run(t, src))
}

func TestSubstringSlicing(t *testing.T) {
	src := `
var s = "abcdef";
print s[1:5];
print s[::-1];
`
	require.Equal(t, "bcde\nfedcba", run(t, src))
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	m := vm.New()
	err := m.Interpret([]byte(`print missing;`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "Undefined variable")
}

func TestDivisionByZeroYieldsInfinity(t *testing.T) {
	require.Equal(t, "+Inf", run(t, `print 1 / 0;`))
}

func TestArityMismatchIsRuntimeError(t *testing.T) {
	m := vm.New()
	err := m.Interpret([]byte(`fun f(a, b) { return a + b; } f(1);`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "Expected 2 arguments")
}

func TestOutOfBoundsIndexIsRuntimeError(t *testing.T) {
	m := vm.New()
	err := m.Interpret([]byte(`var s = "ab"; print s[5];`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of bounds")
}

func TestZeroStepSliceIsRuntimeError(t *testing.T) {
	m := vm.New()
	err := m.Interpret([]byte(`var s = "abc"; print s[0:2:0];`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be zero")
}

func TestBoolArithmeticRoundTripsToBool(t *testing.T) {
	src := `
print true + true;
print true - true;
print true / false;
print true % false;
`
	require.Equal(t, "true\nfalse\ntrue\nfalse", run(t, src))
}

func TestStringRepeatLaws(t *testing.T) {
	src := `
var s = "ab";
print s * 3;
print s * 0;
`
	require.Equal(t, "ababab", run(t, src))
}

func TestStringConcatLength(t *testing.T) {
	src := `
var a = "foo";
var b = "barbaz";
print len(a + b);
`
	m := vm.New()
	registerLen(m)
	out := captureStdout(t, func() {
		require.NoError(t, m.Interpret([]byte(src)))
	})
	require.Equal(t, "9", strings.TrimRight(out, "\n"))
}

func registerLen(m *vm.VM) {
	m.DefineNative("len", func(args []value.Value) value.NativeReturn {
		if len(args) != 1 || !args[0].IsString() {
			return value.Fail()
		}
		return value.Ok(value.Number(float64(args[0].AsString().Len())))
	}, 1)
}

func TestStringInterning(t *testing.T) {
	m := vm.New()
	a := m.Intern([]byte("hello"))
	b := m.Intern([]byte("hello"))
	require.Same(t, a, b)
}

func TestNativeCallRoundTrip(t *testing.T) {
	m := vm.New()
	m.DefineNative("double", func(args []value.Value) value.NativeReturn {
		return value.Ok(value.Number(args[0].AsNumber() * 2))
	}, 1)
	out := captureStdout(t, func() {
		require.NoError(t, m.Interpret([]byte(`print double(21);`)))
	})
	require.Equal(t, "42", strings.TrimRight(out, "\n"))
}

func TestRuntimeCallStepsOverFrameAndIndex(t *testing.T) {
	m := vm.New()
	rc, err := m.RuntimeCompile([]byte(`frame + index`))
	require.NoError(t, err)

	rc.SetLocal(1, value.Number(10))
	rc.SetLocal(2, value.Number(1))
	v, err := rc.Step()
	require.NoError(t, err)
	require.Equal(t, float64(11), v.AsNumber())

	rc.SetLocal(2, value.Number(2))
	v, err = rc.Step()
	require.NoError(t, err)
	require.Equal(t, float64(12), v.AsNumber())

	rc.Close()
}
