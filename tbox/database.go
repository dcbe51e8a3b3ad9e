// Package tbox provides the hierarchical key/value databases patches are
// checkpointed to and restarted from.
package tbox

import (
	"errors"
	"fmt"
)

var (
	ErrKeyNotFound  = errors.New("key not found")
	ErrTypeMismatch = errors.New("value has a different type")
	ErrNotDatabase  = errors.New("key is not a database")
)

// Database is a tree of named databases whose leaves are typed arrays.
// Putting a key replaces any previous value or database under that key.
type Database interface {
	Name() string
	Keys() []string
	KeyExists(key string) bool
	IsDatabase(key string) bool

	PutDatabase(key string) (Database, error)
	GetDatabase(key string) (Database, error)

	PutInteger(key string, v int) error
	GetInteger(key string) (int, error)
	PutIntegerArray(key string, v []int) error
	GetIntegerArray(key string) ([]int, error)

	PutDouble(key string, v float64) error
	GetDouble(key string) (float64, error)
	PutDoubleArray(key string, v []float64) error
	GetDoubleArray(key string) ([]float64, error)

	PutBool(key string, v bool) error
	GetBool(key string) (bool, error)

	PutString(key string, v string) error
	GetString(key string) (string, error)
	PutStringArray(key string, v []string) error
	GetStringArray(key string) ([]string, error)
}

// ValueType tags the array kind held by a record
type ValueType uint8

const (
	IntegerType ValueType = iota + 1
	DoubleType
	BoolType
	StringType
)

func (t ValueType) String() string {
	switch t {
	case IntegerType:
		return "integer"
	case DoubleType:
		return "double"
	case BoolType:
		return "bool"
	case StringType:
		return "string"
	default:
		return fmt.Sprintf("ValueType(%d)", uint8(t))
	}
}

// record is a leaf value; exactly one array matches Type
type record struct {
	Type    ValueType `msgpack:"t"`
	Ints    []int     `msgpack:"i,omitempty"`
	Doubles []float64 `msgpack:"d,omitempty"`
	Bools   []bool    `msgpack:"b,omitempty"`
	Strings []string  `msgpack:"s,omitempty"`
}

// store is the backend a database reads and writes through
type store interface {
	name() string
	keys() []string
	exists(key string) bool
	isSub(key string) bool
	load(key string) (*record, error)
	save(key string, r *record) error
	sub(key string) (store, error)
	createSub(key string) (store, error)
}

// database implements Database over any store
type database struct {
	s store
}

func (db *database) Name() string              { return db.s.name() }
func (db *database) Keys() []string            { return db.s.keys() }
func (db *database) KeyExists(key string) bool { return db.s.exists(key) }
func (db *database) IsDatabase(key string) bool {
	return db.s.isSub(key)
}

func (db *database) PutDatabase(key string) (Database, error) {
	s, err := db.s.createSub(key)
	if err != nil {
		return nil, fmt.Errorf("put database %q in %q: %w", key, db.s.name(), err)
	}
	return &database{s: s}, nil
}

func (db *database) GetDatabase(key string) (Database, error) {
	s, err := db.s.sub(key)
	if err != nil {
		return nil, fmt.Errorf("get database %q in %q: %w", key, db.s.name(), err)
	}
	return &database{s: s}, nil
}

// get loads key and checks its type
func (db *database) get(key string, want ValueType) (*record, error) {
	r, err := db.s.load(key)
	if err != nil {
		return nil, fmt.Errorf("get %q in %q: %w", key, db.s.name(), err)
	}
	if r.Type != want {
		return nil, fmt.Errorf("get %q in %q: %w: have %s, want %s", key, db.s.name(), ErrTypeMismatch, r.Type, want)
	}
	return r, nil
}

func (db *database) put(key string, r *record) error {
	if err := db.s.save(key, r); err != nil {
		return fmt.Errorf("put %q in %q: %w", key, db.s.name(), err)
	}
	return nil
}

// scalar checks a record holds exactly one element
func scalar(key string, n int) error {
	if n != 1 {
		return fmt.Errorf("get %q: %w: array of %d where scalar expected", key, ErrTypeMismatch, n)
	}
	return nil
}

func (db *database) PutInteger(key string, v int) error {
	return db.put(key, &record{Type: IntegerType, Ints: []int{v}})
}

func (db *database) GetInteger(key string) (int, error) {
	r, err := db.get(key, IntegerType)
	if err != nil {
		return 0, err
	}
	if err := scalar(key, len(r.Ints)); err != nil {
		return 0, err
	}
	return r.Ints[0], nil
}

func (db *database) PutIntegerArray(key string, v []int) error {
	return db.put(key, &record{Type: IntegerType, Ints: append([]int(nil), v...)})
}

func (db *database) GetIntegerArray(key string) ([]int, error) {
	r, err := db.get(key, IntegerType)
	if err != nil {
		return nil, err
	}
	return append([]int(nil), r.Ints...), nil
}

func (db *database) PutDouble(key string, v float64) error {
	return db.put(key, &record{Type: DoubleType, Doubles: []float64{v}})
}

func (db *database) GetDouble(key string) (float64, error) {
	r, err := db.get(key, DoubleType)
	if err != nil {
		return 0, err
	}
	if err := scalar(key, len(r.Doubles)); err != nil {
		return 0, err
	}
	return r.Doubles[0], nil
}

func (db *database) PutDoubleArray(key string, v []float64) error {
	return db.put(key, &record{Type: DoubleType, Doubles: append([]float64(nil), v...)})
}

func (db *database) GetDoubleArray(key string) ([]float64, error) {
	r, err := db.get(key, DoubleType)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), r.Doubles...), nil
}

func (db *database) PutBool(key string, v bool) error {
	return db.put(key, &record{Type: BoolType, Bools: []bool{v}})
}

func (db *database) GetBool(key string) (bool, error) {
	r, err := db.get(key, BoolType)
	if err != nil {
		return false, err
	}
	if err := scalar(key, len(r.Bools)); err != nil {
		return false, err
	}
	return r.Bools[0], nil
}

func (db *database) PutString(key string, v string) error {
	return db.put(key, &record{Type: StringType, Strings: []string{v}})
}

func (db *database) GetString(key string) (string, error) {
	r, err := db.get(key, StringType)
	if err != nil {
		return "", err
	}
	if err := scalar(key, len(r.Strings)); err != nil {
		return "", err
	}
	return r.Strings[0], nil
}

func (db *database) PutStringArray(key string, v []string) error {
	return db.put(key, &record{Type: StringType, Strings: append([]string(nil), v...)})
}

func (db *database) GetStringArray(key string) ([]string, error) {
	r, err := db.get(key, StringType)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), r.Strings...), nil
}
