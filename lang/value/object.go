package value

import "fmt"

// ObjType identifies the concrete variant behind an Object.
type ObjType uint8

const (
	ObjTypeString ObjType = iota
	ObjTypeFunction
	ObjTypeNative
)

// Object is a heap cell. Every concrete object type embeds objHeader, which
// is how the VM links all live objects into its single intrusive free-list
// (see vm.VM.objects) without a garbage collector.
type Object interface {
	ObjType() ObjType
	String() string

	next() Object
	setNext(Object)
}

type objHeader struct {
	nextObj Object
}

func (h *objHeader) next() Object     { return h.nextObj }
func (h *objHeader) setNext(o Object) { h.nextObj = o }

// Link prepends o onto the intrusive list headed by *head. next()/setNext()
// are unexported so only this package can walk or build the list directly;
// callers elsewhere (the VM's object tracker) go through Link instead of
// needing access to the header fields themselves.
func Link(head *Object, o Object) {
	o.setNext(*head)
	*head = o
}

// ObjString is an interned, immutable byte string.
type ObjString struct {
	objHeader
	chars []byte
	hash  uint32
}

// NewObjString wraps chars (not copied) as a string object with its FNV-1a
// hash precomputed. Callers that intern strings should go through
// Strings.Intern instead of constructing one directly.
func NewObjString(chars []byte) *ObjString {
	return &ObjString{chars: chars, hash: FNV1a(chars)}
}

func (s *ObjString) ObjType() ObjType { return ObjTypeString }
func (s *ObjString) String() string   { return string(s.chars) }
func (s *ObjString) Bytes() []byte    { return s.chars }
func (s *ObjString) Len() int         { return len(s.chars) }
func (s *ObjString) Hash() uint32     { return s.hash }

// ObjFunction is a compiled Cave function: its arity, its chunk of bytecode,
// and an optional name (nil for the implicit top-level script function).
type ObjFunction struct {
	objHeader
	Arity int
	Chunk *Chunk
	Name  *ObjString
}

// NewObjFunction returns a function object with an empty chunk, ready for
// the compiler to emit into.
func NewObjFunction() *ObjFunction {
	return &ObjFunction{Chunk: NewChunk()}
}

func (f *ObjFunction) ObjType() ObjType { return ObjTypeFunction }
func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fun %s>", f.Name)
}

// NativeReturn is the result a NativeFn reports back to the VM: the value it
// produced, or Failed set to indicate a runtime error. It carries no
// message; on failure the VM raises a generic runtime error naming the
// native.
type NativeReturn struct {
	Failed bool
	Value  Value
}

// Ok wraps v as a successful native result.
func Ok(v Value) NativeReturn { return NativeReturn{Value: v} }

// Fail reports a failed native call. The native has no way to attach its
// own message; the VM reports the failure under the native's name.
func Fail() NativeReturn { return NativeReturn{Failed: true, Value: Nil} }

// NativeFn is a host callback bound into globals by name. args holds
// exactly the arguments the caller passed (already arity-checked by the
// VM against the registered arity).
type NativeFn func(args []Value) NativeReturn

// ObjNative wraps a host callback so it can live in a Value like any other
// callable.
type ObjNative struct {
	objHeader
	Arity int
	Fn    NativeFn
	Name  *ObjString
}

// NewObjNative registers fn as a callable native object.
func NewObjNative(name *ObjString, arity int, fn NativeFn) *ObjNative {
	return &ObjNative{Arity: arity, Fn: fn, Name: name}
}

func (n *ObjNative) ObjType() ObjType { return ObjTypeNative }
func (n *ObjNative) String() string   { return fmt.Sprintf("<native %s>", n.Name) }
