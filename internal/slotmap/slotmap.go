// Package slotmap is a generational-index arena. Values live in fixed-size
// pages so pointers returned by Get stay valid across inserts; a removed slot
// bumps its generation so every outstanding Key for it stops resolving.
package slotmap

const pageSize = 256

// Key addresses a slot. The zero Key never resolves.
type Key struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether k is the nil key.
func (k Key) IsZero() bool {
	return k.Gen == 0
}

// Uint64 packs k for transport across a primitive-width boundary.
func (k Key) Uint64() uint64 {
	return uint64(k.Gen)<<32 | uint64(k.Index)
}

// KeyFromUint64 is the inverse of Key.Uint64.
func KeyFromUint64(v uint64) Key {
	return Key{Index: uint32(v), Gen: uint32(v >> 32)}
}

type slot[V any] struct {
	gen      uint32
	occupied bool
	nextFree uint32
	value    V
}

// Map is not safe for concurrent use.
type Map[V any] struct {
	pages    [][]slot[V]
	length   uint32
	freeHead uint32 // index+1, 0 means empty
	count    int
}

func New[V any]() *Map[V] {
	return &Map[V]{}
}

func (m *Map[V]) at(index uint32) *slot[V] {
	return &m.pages[index/pageSize][index%pageSize]
}

// Insert stores v and returns its key.
func (m *Map[V]) Insert(v V) Key {
	var index uint32
	if m.freeHead != 0 {
		index = m.freeHead - 1
		s := m.at(index)
		m.freeHead = s.nextFree
	} else {
		index = m.length
		if index%pageSize == 0 {
			m.pages = append(m.pages, make([]slot[V], pageSize))
		}
		m.length++
	}

	s := m.at(index)
	s.gen++
	if s.gen == 0 {
		// generation 0 is reserved for the zero Key
		s.gen = 1
	}
	s.occupied = true
	s.nextFree = 0
	s.value = v
	m.count++
	return Key{Index: index, Gen: s.gen}
}

// Get returns a pointer to the value for k, or false when k is stale.
func (m *Map[V]) Get(k Key) (*V, bool) {
	if k.Gen == 0 || k.Index >= m.length {
		return nil, false
	}
	s := m.at(k.Index)
	if !s.occupied || s.gen != k.Gen {
		return nil, false
	}
	return &s.value, true
}

// Contains reports whether k still resolves.
func (m *Map[V]) Contains(k Key) bool {
	_, ok := m.Get(k)
	return ok
}

// Remove tombstones k. It reports false when k was already stale.
func (m *Map[V]) Remove(k Key) (V, bool) {
	var zero V
	if k.Gen == 0 || k.Index >= m.length {
		return zero, false
	}
	s := m.at(k.Index)
	if !s.occupied || s.gen != k.Gen {
		return zero, false
	}
	v := s.value
	s.value = zero
	s.occupied = false
	s.nextFree = m.freeHead
	m.freeHead = k.Index + 1
	m.count--
	return v, true
}

// Len is the number of live slots.
func (m *Map[V]) Len() int {
	return m.count
}

// Each visits live slots in index order. fn must not insert or remove.
func (m *Map[V]) Each(fn func(k Key, v *V) bool) {
	for i := uint32(0); i < m.length; i++ {
		s := m.at(i)
		if !s.occupied {
			continue
		}
		if !fn(Key{Index: i, Gen: s.gen}, &s.value) {
			return
		}
	}
}
