package vm

import (
	"math"

	"github.com/cave-lang/cave/lang/value"
)

// arithTag classifies a Value into one of four buckets for arithmetic
// dispatch: nil-or-non-string-object (functions and natives included),
// bool, number, string. Packing two operands' tags as tagA<<2|tagB gives a
// 0..15 selector naming the exact operand pairing, the same FOUR_TYPE_ID
// scheme the original VM's binary-op handlers switch on.
func arithTag(v value.Value) int {
	switch {
	case v.IsString():
		return 3
	case v.IsNumber():
		return 2
	case v.IsBool():
		return 1
	default:
		return 0
	}
}

// numOf reads a bool-or-number Value as a float64, treating true/false as
// 1/0. Only valid when arithTag(v) is 1 or 2.
func numOf(v value.Value) float64 {
	if v.IsBool() {
		if v.AsBool() {
			return 1
		}
		return 0
	}
	return v.AsNumber()
}

func boolInt(v value.Value) int {
	if v.AsBool() {
		return 1
	}
	return 0
}

// arith handles +, -, *, /, % for the two operands on top of the stack,
// replacing them with the result. Each operator switches on the 16-way
// operand type pairing, matching bool/bool results rounding back to bool,
// string concatenation and repetition, and the per-operator error message
// for every other invalid pairing.
func (vm *VM) arith(op value.Opcode) *RuntimeError {
	b := vm.peek(0)
	a := vm.peek(1)
	code := arithTag(a)<<2 | arithTag(b)

	switch op {
	case value.OpAdd:
		return vm.add(a, b, code)
	case value.OpSubtract:
		return vm.subtract(a, b, code)
	case value.OpMultiply:
		return vm.multiply(a, b, code)
	case value.OpDivide:
		return vm.divide(a, b, code)
	case value.OpMod:
		return vm.mod(a, b, code)
	default:
		return vm.runtimeError("Unknown arithmetic operator.")
	}
}

func (vm *VM) add(a, b value.Value, code int) *RuntimeError {
	switch code {
	case 5:
		vm.pop()
		vm.pop()
		vm.push(value.Bool(boolInt(a)+boolInt(b) != 0))
	case 6:
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() + numOf(b)))
	case 9:
		vm.pop()
		vm.pop()
		vm.push(value.Number(numOf(a) + b.AsNumber()))
	case 10:
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() + b.AsNumber()))
	case 15:
		vm.pop()
		vm.pop()
		buf := append(append([]byte{}, a.AsString().Bytes()...), b.AsString().Bytes()...)
		vm.push(value.FromObject(vm.intern(buf)))
	case 7, 11, 13, 14:
		return vm.runtimeError("Can only concat two strings")
	default:
		return vm.runtimeError("Cannot add nil or functions")
	}
	return nil
}

func (vm *VM) subtract(a, b value.Value, code int) *RuntimeError {
	switch code {
	case 5:
		vm.pop()
		vm.pop()
		vm.push(value.Bool(boolInt(a)-boolInt(b) != 0))
	case 6:
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() - numOf(b)))
	case 9:
		vm.pop()
		vm.pop()
		vm.push(value.Number(numOf(a) - b.AsNumber()))
	case 10:
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() - b.AsNumber()))
	case 7, 11, 13, 14, 15:
		return vm.runtimeError("Cannot subtract strings")
	default:
		return vm.runtimeError("Cannot subtract nil or functions")
	}
	return nil
}

func (vm *VM) multiply(a, b value.Value, code int) *RuntimeError {
	switch code {
	case 5:
		vm.pop()
		vm.pop()
		vm.push(value.Bool(boolInt(a)*boolInt(b) != 0))
	case 6:
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() * numOf(b)))
	case 9:
		vm.pop()
		vm.pop()
		vm.push(value.Number(numOf(a) * b.AsNumber()))
	case 10:
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() * b.AsNumber()))
	case 7:
		vm.pop()
		vm.pop()
		v, rerr := vm.repeatString(a.AsString(), float64(boolInt(b)))
		if rerr != nil {
			return rerr
		}
		vm.push(v)
	case 11:
		vm.pop()
		vm.pop()
		v, rerr := vm.repeatString(a.AsString(), b.AsNumber())
		if rerr != nil {
			return rerr
		}
		vm.push(v)
	case 13:
		vm.pop()
		vm.pop()
		v, rerr := vm.repeatString(b.AsString(), float64(boolInt(a)))
		if rerr != nil {
			return rerr
		}
		vm.push(v)
	case 14:
		vm.pop()
		vm.pop()
		v, rerr := vm.repeatString(b.AsString(), a.AsNumber())
		if rerr != nil {
			return rerr
		}
		vm.push(v)
	case 15:
		return vm.runtimeError("Can only multiply string by a number or bool")
	default:
		return vm.runtimeError("Cannot multiply by nil or functions")
	}
	return nil
}

func (vm *VM) divide(a, b value.Value, code int) *RuntimeError {
	switch code {
	case 5:
		vm.pop()
		vm.pop()
		vm.push(value.Bool(boolInt(a) != 0))
	case 6:
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() / numOf(b)))
	case 9:
		vm.pop()
		vm.pop()
		vm.push(value.Number(numOf(a) / b.AsNumber()))
	case 10:
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() / b.AsNumber()))
	case 7, 11, 13, 14, 15:
		return vm.runtimeError("Cannot divide strings")
	default:
		return vm.runtimeError("Cannot divide by nil or functions")
	}
	return nil
}

func (vm *VM) mod(a, b value.Value, code int) *RuntimeError {
	switch code {
	case 5:
		vm.pop()
		vm.pop()
		vm.push(value.Bool(false))
	case 6:
		vm.pop()
		vm.pop()
		vm.push(value.Number(math.Mod(a.AsNumber(), numOf(b))))
	case 9:
		vm.pop()
		vm.pop()
		vm.push(value.Number(math.Mod(numOf(a), b.AsNumber())))
	case 10:
		vm.pop()
		vm.pop()
		vm.push(value.Number(math.Mod(a.AsNumber(), b.AsNumber())))
	case 7, 11, 13, 14, 15:
		return vm.runtimeError("Cannot mod strings")
	default:
		return vm.runtimeError("Cannot mod by or functions")
	}
	return nil
}

// repeatString builds a string of s repeated n times, n taken from either a
// number or bool operand (bools behave as 0/1 repeat counts).
func (vm *VM) repeatString(s *value.ObjString, n float64) (value.Value, *RuntimeError) {
	if n < 0 {
		return value.Nil, vm.runtimeError("String repeat count must not be negative.")
	}
	count := int(n)
	buf := make([]byte, 0, s.Len()*count)
	for i := 0; i < count; i++ {
		buf = append(buf, s.Bytes()...)
	}
	return value.FromObject(vm.intern(buf)), nil
}

// compare handles <, <=, >, >= for the two operands on top of the stack.
// Only numbers and bools participate; strings and nil/function operands
// are rejected, matching the original VM's BINARY_OP guard.
func (vm *VM) compare(op value.Opcode) *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	ta, tb := arithTag(a), arithTag(b)
	if (ta != 1 && ta != 2) || (tb != 1 && tb != 2) {
		return vm.runtimeError("Operands must be numbers or bools")
	}
	an, bn := numOf(a), numOf(b)
	var r bool
	switch op {
	case value.OpGreater:
		r = an > bn
	case value.OpGreaterEqual:
		r = an >= bn
	case value.OpLess:
		r = an < bn
	case value.OpLessEqual:
		r = an <= bn
	}
	vm.push(value.Bool(r))
	return nil
}
