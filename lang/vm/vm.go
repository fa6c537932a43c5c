// Package vm implements Cave's bytecode interpreter: a fixed-size stack
// machine with a single active call frame, string interning, and a host
// embedding surface for native functions and runtime-compiled expressions.
package vm

import (
	"fmt"

	"github.com/cave-lang/cave/lang/compiler"
	"github.com/cave-lang/cave/lang/value"
	"github.com/dolthub/swiss"
)

const (
	stackMax  = 16384
	framesMax = 256
)

// CallFrame is one active function invocation: the function being run, the
// instruction offset within its chunk, and the stack index its locals
// (including the callee itself, at slot 0) start at.
type CallFrame struct {
	function *value.ObjFunction
	ip       int
	base     int
}

// VM is Cave's single-threaded interpreter. It owns its value stack, call
// frames, interning table, globals, and the intrusive list of every heap
// object it has allocated.
type VM struct {
	stack [stackMax]value.Value
	sp    int

	frames     [framesMax]CallFrame
	frameCount int
	frame      *CallFrame

	globals *swiss.Map[*value.ObjString, value.Value]
	strings *value.Strings
	objects value.Object

	output value.Value
}

// New returns an initialized, empty VM ready for Interpret or DefineNative
// calls.
func New() *VM {
	return &VM{
		globals: swiss.NewMap[*value.ObjString, value.Value](64),
		strings: value.NewStrings(64),
	}
}

// Close severs the VM's references to every object it allocated. Go's
// garbage collector reclaims the memory; this just makes the VM's own
// lifetime boundary explicit, mirroring the embedding API's free_vm.
func (vm *VM) Close() {
	vm.objects = nil
	vm.globals = nil
}

func (vm *VM) track(o value.Object) { value.Link(&vm.objects, o) }

func (vm *VM) intern(s []byte) *value.ObjString {
	return vm.strings.Intern(s, func(o *value.ObjString) { vm.track(o) })
}

// Intern returns the canonical string object for s, creating and tracking
// one if this content hasn't been seen before. Exposed for hosts (the
// natives package's str) that need to hand the VM a fresh string value.
func (vm *VM) Intern(s []byte) *value.ObjString { return vm.intern(s) }

// Push makes v available to the executing program, for host code that
// seeds arguments onto the stack before a Call.
func (vm *VM) Push(v value.Value) { vm.push(v) }

// Pop removes and returns the top of the stack, for host code reading a
// result after Run.
func (vm *VM) Pop() value.Value { return vm.pop() }

func (vm *VM) push(v value.Value) bool {
	if vm.sp >= stackMax {
		return false
	}
	vm.stack[vm.sp] = v
	vm.sp++
	return true
}

func (vm *VM) pop() value.Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.sp-1-distance]
}

// DefineNative registers fn as a global callable named name, with the given
// fixed arity.
func (vm *VM) DefineNative(name string, fn value.NativeFn, arity int) {
	nameObj := vm.intern([]byte(name))
	native := value.NewObjNative(nameObj, arity, fn)
	vm.track(native)
	vm.globals.Put(nameObj, value.FromObject(native))
}

func (vm *VM) defineGlobal(name *value.ObjString, v value.Value) {
	vm.globals.Put(name, v)
}

func (vm *VM) setGlobal(name *value.ObjString, v value.Value) bool {
	if _, ok := vm.globals.Get(name); !ok {
		return false
	}
	vm.globals.Put(name, v)
	return true
}

func (vm *VM) getGlobal(name *value.ObjString) (value.Value, bool) {
	return vm.globals.Get(name)
}

// Interpret compiles source and runs it to completion. A compile error is
// returned as-is (a compiler.ErrorList); a failure during execution is
// returned as a *RuntimeError.
func (vm *VM) Interpret(source []byte) error {
	fn, err := compiler.Compile(source, vm.strings, vm.track)
	if err != nil {
		return err
	}
	vm.track(fn)
	vm.push(value.FromObject(fn))
	if rerr := vm.call(value.FromObject(fn), 0); rerr != nil {
		return rerr
	}
	_, rerr := vm.run()
	if rerr != nil {
		return rerr
	}
	return nil
}

// Call invokes callee (a function or native value) with argc arguments
// already pushed on top of the stack, followed by callee itself beneath
// them — matching the bytecode CALL instruction's stack shape. It reports
// whether the call frame was successfully entered (for a native, whether
// the call itself succeeded); the caller must then drive Run to completion
// for a Cave function.
func (vm *VM) Call(argc int) bool {
	callee := vm.peek(argc)
	return vm.call(callee, argc) == nil
}

// Run drives the instruction-dispatch loop until the outermost frame
// returns or an EXTRACT is reached, returning the produced value (only
// meaningful for EXTRACT) and any runtime error.
func (vm *VM) Run() (value.Value, error) {
	v, rerr := vm.run()
	if rerr != nil {
		return value.Nil, rerr
	}
	return v, nil
}

func (vm *VM) call(callee value.Value, argc int) *RuntimeError {
	switch {
	case callee.IsFunction():
		fn := callee.AsFunction()
		if argc != fn.Arity {
			return vm.runtimeError("Expected %d arguments but got %d.", fn.Arity, argc)
		}
		if vm.frameCount >= framesMax {
			return vm.runtimeError("Stack overflow.")
		}
		vm.frames[vm.frameCount] = CallFrame{function: fn, base: vm.sp - argc - 1}
		vm.frameCount++
		vm.frame = &vm.frames[vm.frameCount-1]
		return nil

	case callee.IsNative():
		n := callee.AsNative()
		if argc != n.Arity {
			return vm.runtimeError("Expected %d arguments but got %d.", n.Arity, argc)
		}
		args := vm.stack[vm.sp-argc : vm.sp]
		ret := n.Fn(args)
		if ret.Failed {
			return vm.runtimeError("call to native '%s' failed.", n.Name)
		}
		vm.sp -= argc + 1
		if !vm.push(ret.Value) {
			return vm.runtimeError("Stack overflow.")
		}
		return nil

	default:
		return vm.runtimeError("Can only call functions and classes.")
	}
}

func (vm *VM) readByte() byte {
	b := vm.frame.function.Chunk.Code[vm.frame.ip]
	vm.frame.ip++
	return b
}

func (vm *VM) readShort() int {
	hi, lo := vm.readByte(), vm.readByte()
	return int(hi)<<8 | int(lo)
}

func (vm *VM) readLong() int {
	hi, mid, lo := vm.readByte(), vm.readByte(), vm.readByte()
	return int(hi)<<16 | int(mid)<<8 | int(lo)
}

func (vm *VM) readConstant(idx int) value.Value {
	return vm.frame.function.Chunk.Constants[idx]
}

func (vm *VM) readString(idx int) *value.ObjString {
	return vm.readConstant(idx).AsString()
}

func (vm *VM) run() (value.Value, *RuntimeError) {
	for {
		op := value.Opcode(vm.readByte())
		switch op {
		case value.OpConstant:
			vm.push(vm.readConstant(int(vm.readByte())))
		case value.OpConstantLong:
			vm.push(vm.readConstant(vm.readLong()))

		case value.OpNil:
			vm.push(value.Nil)
		case value.OpTrue:
			vm.push(value.Bool(true))
		case value.OpFalse:
			vm.push(value.Bool(false))

		case value.OpPop:
			vm.pop()
		case value.OpPopN:
			vm.sp -= vm.readLong()

		case value.OpAdd, value.OpSubtract, value.OpMultiply, value.OpDivide, value.OpMod:
			if rerr := vm.arith(op); rerr != nil {
				return value.Nil, rerr
			}
		case value.OpNegate:
			v := vm.pop()
			if !v.IsNumber() {
				return value.Nil, vm.runtimeError("Operand of '-' must be a number.")
			}
			vm.push(value.Number(-v.AsNumber()))
		case value.OpNot:
			vm.push(value.Bool(vm.pop().IsFalsey()))

		case value.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case value.OpNotEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(!value.Equal(a, b)))
		case value.OpGreater, value.OpGreaterEqual, value.OpLess, value.OpLessEqual:
			if rerr := vm.compare(op); rerr != nil {
				return value.Nil, rerr
			}

		case value.OpDefineGlobal:
			vm.defineGlobal(vm.readString(int(vm.readByte())), vm.pop())
		case value.OpDefineGlobalLong:
			vm.defineGlobal(vm.readString(vm.readLong()), vm.pop())
		case value.OpGetGlobal:
			if rerr := vm.getGlobalOp(int(vm.readByte())); rerr != nil {
				return value.Nil, rerr
			}
		case value.OpGetGlobalLong:
			if rerr := vm.getGlobalOp(vm.readLong()); rerr != nil {
				return value.Nil, rerr
			}
		case value.OpSetGlobal:
			if rerr := vm.setGlobalOp(int(vm.readByte())); rerr != nil {
				return value.Nil, rerr
			}
		case value.OpSetGlobalLong:
			if rerr := vm.setGlobalOp(vm.readLong()); rerr != nil {
				return value.Nil, rerr
			}

		case value.OpDefineGlobalStack:
			key := vm.pop()
			val := vm.pop()
			if !key.IsString() {
				return value.Nil, vm.runtimeError("Global key must be a string.")
			}
			vm.defineGlobal(key.AsString(), val)
		case value.OpSetGlobalStack:
			key := vm.pop()
			if !key.IsString() {
				return value.Nil, vm.runtimeError("Global key must be a string.")
			}
			if !vm.setGlobal(key.AsString(), vm.peek(0)) {
				return value.Nil, vm.runtimeError("Undefined variable '%s'.", key)
			}
		case value.OpGetGlobalStack:
			key := vm.pop()
			if !key.IsString() {
				return value.Nil, vm.runtimeError("Global key must be a string.")
			}
			v, ok := vm.getGlobal(key.AsString())
			if !ok {
				v = value.Nil
			}
			vm.push(v)
		case value.OpGetGlobalStackPopless:
			key := vm.peek(0)
			if !key.IsString() {
				return value.Nil, vm.runtimeError("Global key must be a string.")
			}
			v, ok := vm.getGlobal(key.AsString())
			if !ok {
				v = value.Nil
			}
			vm.push(v)

		case value.OpGetLocal:
			vm.push(vm.stack[vm.frame.base+int(vm.readByte())])
		case value.OpGetLocalLong:
			vm.push(vm.stack[vm.frame.base+vm.readLong()])
		case value.OpSetLocal:
			vm.stack[vm.frame.base+int(vm.readByte())] = vm.peek(0)
		case value.OpSetLocalLong:
			vm.stack[vm.frame.base+vm.readLong()] = vm.peek(0)

		case value.OpJump:
			offset := vm.readShort()
			vm.frame.ip += offset
		case value.OpJumpIfFalse:
			offset := vm.readShort()
			if vm.peek(0).IsFalsey() {
				vm.frame.ip += offset
			}
		case value.OpJumpIfTrue:
			offset := vm.readShort()
			if !vm.peek(0).IsFalsey() {
				vm.frame.ip += offset
			}
		case value.OpJumpNPop:
			n := vm.readLong()
			offset := vm.readShort()
			vm.sp -= n
			vm.frame.ip += offset
		case value.OpLoop:
			offset := vm.readShort()
			vm.frame.ip -= offset
		case value.OpLoopIfTrue:
			offset := vm.readShort()
			if !vm.pop().IsFalsey() {
				vm.frame.ip -= offset
			}

		case value.OpCall:
			argc := int(vm.readByte())
			if rerr := vm.call(vm.peek(argc), argc); rerr != nil {
				return value.Nil, rerr
			}

		case value.OpIndex:
			if rerr := vm.index(); rerr != nil {
				return value.Nil, rerr
			}
		case value.OpIndexRange:
			if rerr := vm.indexRange(); rerr != nil {
				return value.Nil, rerr
			}
		case value.OpIndexRangeInterval:
			if rerr := vm.indexRangeInterval(); rerr != nil {
				return value.Nil, rerr
			}

		case value.OpInterpolateStr:
			if rerr := vm.interpolate(); rerr != nil {
				return value.Nil, rerr
			}

		case value.OpPrint:
			fmt.Println(vm.pop().String())

		case value.OpReturn:
			result := vm.pop()
			base := vm.frame.base
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return value.Nil, nil
			}
			vm.sp = base
			if !vm.push(result) {
				return value.Nil, vm.runtimeError("Stack overflow.")
			}
			vm.frame = &vm.frames[vm.frameCount-1]

		case value.OpExtract:
			vm.output = vm.pop()
			return vm.output, nil

		default:
			return value.Nil, vm.runtimeError("Unknown opcode %d.", op)
		}
	}
}

func (vm *VM) getGlobalOp(idx int) *RuntimeError {
	name := vm.readString(idx)
	v, ok := vm.getGlobal(name)
	if !ok {
		return vm.runtimeError("Undefined variable '%s'.", name)
	}
	vm.push(v)
	return nil
}

func (vm *VM) setGlobalOp(idx int) *RuntimeError {
	name := vm.readString(idx)
	if !vm.setGlobal(name, vm.peek(0)) {
		return vm.runtimeError("Undefined variable '%s'.", name)
	}
	return nil
}
