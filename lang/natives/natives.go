// Package natives is a small standard library of host functions bound into
// a VM's globals via DefineNative, demonstrating the embedding surface a
// wavetable host uses to expose math helpers to Cave scripts.
package natives

import (
	"math"

	"github.com/cave-lang/cave/lang/value"
)

// Host is the subset of vm.VM natives need: register callables, and intern
// a fresh string (for str, which must hand back a heap object the VM's
// object list and interning table both know about).
type Host interface {
	DefineNative(name string, fn value.NativeFn, arity int)
	Intern(chars []byte) *value.ObjString
}

// Register binds every native in this package into host's globals.
func Register(host Host) {
	host.DefineNative("sin", sinFn, 1)
	host.DefineNative("cos", cosFn, 1)
	host.DefineNative("sqrt", sqrtFn, 1)
	host.DefineNative("abs", absFn, 1)
	host.DefineNative("floor", floorFn, 1)
	host.DefineNative("clamp", clampFn, 3)
	host.DefineNative("len", lenFn, 1)
	host.DefineNative("str", strFn(host), 1)
}

func numberArg(args []value.Value, i int) (float64, bool) {
	if i >= len(args) || !args[i].IsNumber() {
		return 0, false
	}
	return args[i].AsNumber(), true
}

func sinFn(args []value.Value) value.NativeReturn {
	n, ok := numberArg(args, 0)
	if !ok {
		return value.Fail()
	}
	return value.Ok(value.Number(math.Sin(n)))
}

func cosFn(args []value.Value) value.NativeReturn {
	n, ok := numberArg(args, 0)
	if !ok {
		return value.Fail()
	}
	return value.Ok(value.Number(math.Cos(n)))
}

func sqrtFn(args []value.Value) value.NativeReturn {
	n, ok := numberArg(args, 0)
	if !ok || n < 0 {
		return value.Fail()
	}
	return value.Ok(value.Number(math.Sqrt(n)))
}

func absFn(args []value.Value) value.NativeReturn {
	n, ok := numberArg(args, 0)
	if !ok {
		return value.Fail()
	}
	return value.Ok(value.Number(math.Abs(n)))
}

func floorFn(args []value.Value) value.NativeReturn {
	n, ok := numberArg(args, 0)
	if !ok {
		return value.Fail()
	}
	return value.Ok(value.Number(math.Floor(n)))
}

// clampFn bounds args[0] to the [args[1], args[2]] range.
func clampFn(args []value.Value) value.NativeReturn {
	n, ok := numberArg(args, 0)
	lo, ok2 := numberArg(args, 1)
	hi, ok3 := numberArg(args, 2)
	if !ok || !ok2 || !ok3 || lo > hi {
		return value.Fail()
	}
	if n < lo {
		n = lo
	}
	if n > hi {
		n = hi
	}
	return value.Ok(value.Number(n))
}

// lenFn returns the byte length of a string argument.
func lenFn(args []value.Value) value.NativeReturn {
	if len(args) < 1 || !args[0].IsString() {
		return value.Fail()
	}
	return value.Ok(value.Number(float64(args[0].AsString().Len())))
}

// strFn renders any value the way PRINT would, as an interned string.
func strFn(host Host) value.NativeFn {
	return func(args []value.Value) value.NativeReturn {
		if len(args) < 1 {
			return value.Fail()
		}
		s := host.Intern([]byte(args[0].String()))
		return value.Ok(value.FromObject(s))
	}
}
