package vm

import "github.com/cave-lang/cave/lang/value"

// index implements INDEX: (string, i) -> length-1 string. Negative i wraps
// by length; an index still out of range after wrapping is a runtime error.
func (vm *VM) index() *RuntimeError {
	iv := vm.pop()
	sv := vm.pop()
	if !sv.IsString() {
		return vm.runtimeError("Can only index a string.")
	}
	if !iv.IsNumber() {
		return vm.runtimeError("String index must be a number.")
	}
	s := sv.AsString()
	i := int(iv.AsNumber())
	if i < 0 {
		i += s.Len()
	}
	if i < 0 || i >= s.Len() {
		return vm.runtimeError("String index out of bounds.")
	}
	vm.push(value.FromObject(vm.intern(s.Bytes()[i : i+1])))
	return nil
}

func wrapIndex(i, length int) int {
	if i < 0 {
		i += length
	}
	return i
}

func clamp(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

func optionalInt(v value.Value, def int) (int, bool) {
	if v.IsNil() {
		return def, true
	}
	if !v.IsNumber() {
		return 0, false
	}
	return int(v.AsNumber()), true
}

// indexRange implements INDEX_RANGE: (string, a, b) -> s[a:b], half-open,
// with nil defaulting a to 0 and b to len(s). Negative bounds wrap; an
// out-of-range pair (after clamping) yields the empty string rather than
// an error.
func (vm *VM) indexRange() *RuntimeError {
	bv := vm.pop()
	av := vm.pop()
	sv := vm.pop()
	if !sv.IsString() {
		return vm.runtimeError("Can only index a string.")
	}
	s := sv.AsString()
	length := s.Len()

	a, ok := optionalInt(av, 0)
	if !ok {
		return vm.runtimeError("String slice bound must be a number.")
	}
	b, ok := optionalInt(bv, length)
	if !ok {
		return vm.runtimeError("String slice bound must be a number.")
	}
	a = clamp(wrapIndex(a, length), 0, length)
	b = clamp(wrapIndex(b, length), 0, length)
	if a >= b {
		vm.push(value.FromObject(vm.intern(nil)))
		return nil
	}
	vm.push(value.FromObject(vm.intern(append([]byte{}, s.Bytes()[a:b]...))))
	return nil
}

// indexRangeInterval implements INDEX_RANGE_INTERVAL: (string, a, b, c) ->
// bytes s[a], s[a+c], ... while the running index is still < b (c > 0) or
// > b (c < 0). A zero step is a runtime error. Defaults mirror the sign of
// the step: ascending defaults to 0/len, descending to len-1/-1.
func (vm *VM) indexRangeInterval() *RuntimeError {
	cv := vm.pop()
	bv := vm.pop()
	av := vm.pop()
	sv := vm.pop()
	if !sv.IsString() {
		return vm.runtimeError("Can only index a string.")
	}
	if !cv.IsNumber() {
		return vm.runtimeError("String slice step must be a number.")
	}
	s := sv.AsString()
	length := s.Len()
	step := int(cv.AsNumber())
	if step == 0 {
		return vm.runtimeError("String slice step must not be zero.")
	}

	defA, defB := 0, length
	if step < 0 {
		defA, defB = length-1, -1
	}
	a, ok := optionalInt(av, defA)
	if !ok {
		return vm.runtimeError("String slice bound must be a number.")
	}
	b, ok := optionalInt(bv, defB)
	if !ok {
		return vm.runtimeError("String slice bound must be a number.")
	}
	a = wrapIndex(a, length)
	if !bv.IsNil() {
		b = wrapIndex(b, length)
	}

	buf := make([]byte, 0, length)
	bytes := s.Bytes()
	if step > 0 {
		for i := a; i < b; i += step {
			if i < 0 || i >= length {
				break
			}
			buf = append(buf, bytes[i])
		}
	} else {
		for i := a; i > b; i += step {
			if i < 0 || i >= length {
				break
			}
			buf = append(buf, bytes[i])
		}
	}
	vm.push(value.FromObject(vm.intern(buf)))
	return nil
}

// interpolate implements INTERPOLATE_STR: a binary op, pop the two pieces
// on top of the stack (the string built so far, then the next literal
// segment or interpolated expression's value) and push their concatenation
// as one fresh interned string. The expression operand need not already be
// a string; it is rendered with the same rule PRINT uses.
func (vm *VM) interpolate() *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	buf := append([]byte{}, []byte(a.String())...)
	buf = append(buf, []byte(b.String())...)
	vm.push(value.FromObject(vm.intern(buf)))
	return nil
}
