// Package value defines Cave's runtime value model: a small tagged union of
// nil, bool, number and heap object, plus the heap object variants
// (strings, functions, natives) that the VM and compiler share.
package value

import (
	"fmt"
	"strconv"
)

// Kind identifies which field of a Value is meaningful.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is Cave's tagged-union runtime value. It is deliberately a small
// struct rather than an interface: the VM's arithmetic dispatch switches on
// Kind directly, so there is no dynamic dispatch on the hot path.
type Value struct {
	kind Kind
	num  float64 // also holds 0/1 for KindBool
	obj  Object
}

// Nil is the singleton nil value.
var Nil = Value{kind: KindNil}

// Bool returns a Value wrapping b.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, num: 1}
	}
	return Value{kind: KindBool, num: 0}
}

// Number returns a Value wrapping n.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// FromObject returns a Value wrapping the given heap object.
func FromObject(o Object) Value { return Value{kind: KindObj, obj: o} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether v is the nil value.
func (v Value) IsNil() bool { return v.kind == KindNil }

// IsBool reports whether v holds a bool.
func (v Value) IsBool() bool { return v.kind == KindBool }

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsObj reports whether v holds a heap object.
func (v Value) IsObj() bool { return v.kind == KindObj }

// AsBool returns v's bool value. Only valid if IsBool.
func (v Value) AsBool() bool { return v.num != 0 }

// AsNumber returns v's number value. Only valid if IsNumber.
func (v Value) AsNumber() float64 { return v.num }

// AsObject returns v's heap object. Only valid if IsObj.
func (v Value) AsObject() Object { return v.obj }

// IsString reports whether v holds a string object.
func (v Value) IsString() bool {
	return v.kind == KindObj && v.obj.ObjType() == ObjTypeString
}

// AsString returns v's string object. Only valid if IsString.
func (v Value) AsString() *ObjString { return v.obj.(*ObjString) }

// IsFunction reports whether v holds a function object.
func (v Value) IsFunction() bool {
	return v.kind == KindObj && v.obj.ObjType() == ObjTypeFunction
}

// AsFunction returns v's function object. Only valid if IsFunction.
func (v Value) AsFunction() *ObjFunction { return v.obj.(*ObjFunction) }

// IsNative reports whether v holds a native function object.
func (v Value) IsNative() bool {
	return v.kind == KindObj && v.obj.ObjType() == ObjTypeNative
}

// AsNative returns v's native object. Only valid if IsNative.
func (v Value) AsNative() *ObjNative { return v.obj.(*ObjNative) }

// IsFalsey reports whether v is falsey: nil, false, 0, or "".
func (v Value) IsFalsey() bool {
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.num == 0
	case KindNumber:
		return v.num == 0
	case KindObj:
		if s, ok := v.obj.(*ObjString); ok {
			return s.Len() == 0
		}
		return false
	}
	return false
}

// Equal reports whether a and b are equal by Cave's value-equality rules:
// numbers and bools compare by value, strings by content (which, thanks to
// interning, is also pointer identity), everything else by identity.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool, KindNumber:
		return a.num == b.num
	case KindObj:
		if as, ok := a.obj.(*ObjString); ok {
			if bs, ok := b.obj.(*ObjString); ok {
				return as == bs || as.String() == bs.String()
			}
			return false
		}
		return a.obj == b.obj
	}
	return false
}

// String renders v the way PRINT and error messages do.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.num != 0 {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindObj:
		return v.obj.String()
	}
	return fmt.Sprintf("<invalid value kind %d>", v.kind)
}

// TypeName returns Cave's runtime type name for v, used in error messages.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindObj:
		switch v.obj.ObjType() {
		case ObjTypeString:
			return "string"
		case ObjTypeFunction:
			return "function"
		case ObjTypeNative:
			return "native"
		}
	}
	return "unknown"
}
