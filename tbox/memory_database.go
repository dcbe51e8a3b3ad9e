package tbox

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// MemoryDatabase keeps the whole tree in maps. It can be serialized to a
// single msgpack blob.
type MemoryDatabase struct {
	database
	root *memoryStore
}

type memoryStore struct {
	Label    string                  `msgpack:"n"`
	Values   map[string]*record      `msgpack:"v"`
	Children map[string]*memoryStore `msgpack:"c"`
}

func newMemoryStore(name string) *memoryStore {
	return &memoryStore{
		Label:    name,
		Values:   make(map[string]*record),
		Children: make(map[string]*memoryStore),
	}
}

// NewMemoryDatabase returns an empty in-memory database
func NewMemoryDatabase(name string) *MemoryDatabase {
	root := newMemoryStore(name)
	return &MemoryDatabase{database: database{s: root}, root: root}
}

// MarshalBinary encodes the tree with msgpack, map keys sorted
func (m *MemoryDatabase) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	err := enc.Encode(m.root)
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode database %q using MsgPack: %w", m.root.Label, err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces the tree with a decoded one
func (m *MemoryDatabase) UnmarshalBinary(data []byte) error {
	root := newMemoryStore("")
	if err := msgpack.Unmarshal(data, root); err != nil {
		return fmt.Errorf("failed to decode msgpack database: %w", err)
	}
	root.fill()
	m.root = root
	m.database = database{s: root}
	return nil
}

// fill replaces nil maps left by decoding empty trees
func (s *memoryStore) fill() {
	if s.Values == nil {
		s.Values = make(map[string]*record)
	}
	if s.Children == nil {
		s.Children = make(map[string]*memoryStore)
	}
	for _, c := range s.Children {
		c.fill()
	}
}

func (s *memoryStore) name() string { return s.Label }

func (s *memoryStore) keys() []string {
	keys := make([]string, 0, len(s.Values)+len(s.Children))
	for k := range s.Values {
		keys = append(keys, k)
	}
	for k := range s.Children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *memoryStore) exists(key string) bool {
	_, v := s.Values[key]
	_, c := s.Children[key]
	return v || c
}

func (s *memoryStore) isSub(key string) bool {
	_, ok := s.Children[key]
	return ok
}

func (s *memoryStore) load(key string) (*record, error) {
	r, ok := s.Values[key]
	if !ok {
		if s.isSub(key) {
			return nil, fmt.Errorf("%w: %q is a database", ErrTypeMismatch, key)
		}
		return nil, ErrKeyNotFound
	}
	return r, nil
}

func (s *memoryStore) save(key string, r *record) error {
	delete(s.Children, key)
	s.Values[key] = r
	return nil
}

func (s *memoryStore) sub(key string) (store, error) {
	c, ok := s.Children[key]
	if !ok {
		if _, isValue := s.Values[key]; isValue {
			return nil, ErrNotDatabase
		}
		return nil, ErrKeyNotFound
	}
	return c, nil
}

func (s *memoryStore) createSub(key string) (store, error) {
	delete(s.Values, key)
	c := newMemoryStore(key)
	s.Children[key] = c
	return c, nil
}
