package tbox

import (
	"bytes"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

const rootBucket = "root"

// BoltFile stores a database tree in a bbolt file. Databases map to nested
// buckets and leaf values to msgpack-encoded records.
type BoltFile struct {
	bdb *bbolt.DB
}

// BoltOptions tunes how the file is opened
type BoltOptions struct {
	Timeout   time.Duration
	IsTesting bool // Skip fsync
}

// OpenBoltFile opens or creates the file at path
func OpenBoltFile(path string, opt BoltOptions) (*BoltFile, error) {
	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = opt.Timeout
	if bopt.Timeout == 0 {
		bopt.Timeout = 10 * time.Second
	}
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
	}
	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &BoltFile{bdb: bdb}, nil
}

func (f *BoltFile) Close() error {
	return f.bdb.Close()
}

// Path returns the file path
func (f *BoltFile) Path() string {
	return f.bdb.Path()
}

// Update runs fn in a writable transaction on the root database. Changes are
// committed when fn returns nil.
func (f *BoltFile) Update(fn func(root Database) error) error {
	return f.bdb.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(rootBucket))
		if err != nil {
			return err
		}
		return fn(&database{s: &boltStore{label: rootBucket, b: b}})
	})
}

// View runs fn in a read-only transaction on the root database
func (f *BoltFile) View(fn func(root Database) error) error {
	return f.bdb.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(rootBucket))
		if b == nil {
			return fmt.Errorf("%s: %w: no root database", f.bdb.Path(), ErrKeyNotFound)
		}
		return fn(&database{s: &boltStore{label: rootBucket, b: b}})
	})
}

type boltStore struct {
	label string
	b     *bbolt.Bucket
}

func (s *boltStore) name() string { return s.label }

func (s *boltStore) keys() []string {
	var keys []string
	// ForEach visits keys in byte order
	_ = s.b.ForEach(func(k, _ []byte) error {
		keys = append(keys, string(k))
		return nil
	})
	return keys
}

func (s *boltStore) exists(key string) bool {
	return s.b.Get([]byte(key)) != nil || s.isSub(key)
}

func (s *boltStore) isSub(key string) bool {
	return s.b.Bucket([]byte(key)) != nil
}

func (s *boltStore) load(key string) (*record, error) {
	raw := s.b.Get([]byte(key))
	if raw == nil {
		if s.isSub(key) {
			return nil, fmt.Errorf("%w: %q is a database", ErrTypeMismatch, key)
		}
		return nil, ErrKeyNotFound
	}
	var r record
	dec := msgpack.GetDecoder()
	dec.Reset(bytes.NewReader(raw))
	err := dec.Decode(&r)
	msgpack.PutDecoder(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode msgpack value %q: %w", key, err)
	}
	return &r, nil
}

func (s *boltStore) save(key string, r *record) error {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	err := enc.Encode(r)
	msgpack.PutEncoder(enc)
	if err != nil {
		return fmt.Errorf("failed to encode value %q using MsgPack: %w", key, err)
	}
	if s.isSub(key) {
		if err := s.b.DeleteBucket([]byte(key)); err != nil {
			return err
		}
	}
	return s.b.Put([]byte(key), buf.Bytes())
}

func (s *boltStore) sub(key string) (store, error) {
	b := s.b.Bucket([]byte(key))
	if b == nil {
		if s.b.Get([]byte(key)) != nil {
			return nil, ErrNotDatabase
		}
		return nil, ErrKeyNotFound
	}
	return &boltStore{label: key, b: b}, nil
}

func (s *boltStore) createSub(key string) (store, error) {
	k := []byte(key)
	if s.isSub(key) {
		if err := s.b.DeleteBucket(k); err != nil {
			return nil, err
		}
	} else if s.b.Get(k) != nil {
		if err := s.b.Delete(k); err != nil {
			return nil, err
		}
	}
	b, err := s.b.CreateBucket(k)
	if err != nil {
		return nil, err
	}
	return &boltStore{label: key, b: b}, nil
}
