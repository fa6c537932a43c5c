package value

import "github.com/dolthub/swiss"

// FNV1a computes the 32-bit FNV-1a hash of data, Cave's string hash.
func FNV1a(data []byte) uint32 {
	const (
		offsetBasis uint32 = 2166136261
		prime       uint32 = 16777619
	)
	h := offsetBasis
	for _, b := range data {
		h ^= uint32(b)
		h *= prime
	}
	return h
}

type internKey struct {
	hash uint32
	s    string
}

// Strings is the VM's open-addressed interning table, keyed by
// (hash, length, bytes) as spec'd: two live strings with equal content are
// always the same *ObjString.
type Strings struct {
	m *swiss.Map[internKey, *ObjString]
}

// NewStrings returns an empty interning table sized for an initial
// population of at least size strings.
func NewStrings(size int) *Strings {
	if size < 1 {
		size = 1
	}
	return &Strings{m: swiss.NewMap[internKey, *ObjString](uint32(size))}
}

// Intern returns the canonical *ObjString for the given bytes, creating and
// registering one if this is the first time this content has been seen.
// The onNew callback, if non-nil, is invoked with the freshly created
// object so the caller can link it into the VM's object list; it is not
// called on a cache hit.
func (s *Strings) Intern(chars []byte, onNew func(*ObjString)) *ObjString {
	h := FNV1a(chars)
	key := internKey{hash: h, s: string(chars)}
	if obj, ok := s.m.Get(key); ok {
		return obj
	}
	obj := &ObjString{chars: []byte(key.s), hash: h}
	s.m.Put(key, obj)
	if onNew != nil {
		onNew(obj)
	}
	return obj
}

// Len reports how many distinct strings are currently interned.
func (s *Strings) Len() int { return int(s.m.Count()) }
