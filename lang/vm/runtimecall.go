package vm

import (
	"github.com/cave-lang/cave/lang/compiler"
	"github.com/cave-lang/cave/lang/value"
)

// RuntimeCall wraps a single compiled expression — slot 1 bound to frame,
// slot 2 bound to index — for the host to drive once per (frame, index)
// pair without recompiling or tearing down the call frame between steps.
type RuntimeCall struct {
	vm   *VM
	fn   *value.ObjFunction
	base int
}

// RuntimeCompile compiles source as a bare expression terminated by
// EXTRACT, with locals pre-bound at slot 1 (frame) and slot 2 (index), and
// returns a handle the host can Step repeatedly.
func (vm *VM) RuntimeCompile(source []byte) (*RuntimeCall, error) {
	fn, err := compiler.CompileExpression(source, vm.strings, vm.track)
	if err != nil {
		return nil, err
	}
	vm.track(fn)

	if vm.frameCount >= framesMax {
		return nil, vm.runtimeError("Stack overflow.")
	}
	base := vm.sp
	vm.push(value.FromObject(fn))
	vm.push(value.Nil) // frame
	vm.push(value.Nil) // index
	vm.frames[vm.frameCount] = CallFrame{function: fn, base: base}
	vm.frameCount++
	vm.frame = &vm.frames[vm.frameCount-1]

	return &RuntimeCall{vm: vm, fn: fn, base: base}, nil
}

// SetLocal overwrites the value in local slot (1-indexed past the callee)
// without disturbing the rest of the stack, for the host to seed frame and
// index before each Step.
func (rc *RuntimeCall) SetLocal(slot int, v value.Value) {
	rc.vm.stack[rc.base+slot] = v
}

// Step reseats the call frame's instruction pointer to the start of its
// chunk and runs until the next EXTRACT, returning the extracted value.
// The frame is left intact for the next Step; the host is responsible for
// the final teardown once no more samples remain.
func (rc *RuntimeCall) Step() (value.Value, error) {
	rc.vm.frame = &rc.vm.frames[rc.vm.frameCount-1]
	rc.vm.frame.ip = 0
	rc.vm.sp = rc.base + 3

	v, rerr := rc.vm.run()
	if rerr != nil {
		return value.Nil, rerr
	}
	return v, nil
}

// Close tears down the persistent call frame and discards the stack space
// it occupied. The host calls this once it is done evaluating the
// expression, mirroring the embedding API's explicit teardown contract.
func (rc *RuntimeCall) Close() {
	if rc.vm.frameCount > 0 && rc.vm.frame == &rc.vm.frames[rc.vm.frameCount-1] {
		rc.vm.frameCount--
		if rc.vm.frameCount > 0 {
			rc.vm.frame = &rc.vm.frames[rc.vm.frameCount-1]
		} else {
			rc.vm.frame = nil
		}
	}
	rc.vm.sp = rc.base
}
