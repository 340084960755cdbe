package lsh

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/go-sod/clamp/internal/database"
	bolt "go.etcd.io/bbolt"
)

const tablePrefix = "table:"

// store persists the bucket -> positions tables of an index. Every table is a
// bbolt bucket keyed by the big-endian bucket number; the value is the list
// of positions as big-endian uint32.
type store struct {
	db *database.DB
}

func tableName(t int) []byte {
	return []byte(fmt.Sprintf("%s%03d", tablePrefix, t))
}

func bucketKey(b uint32) []byte {
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], b)
	return key[:]
}

// write replaces every stored table with tables.
func (s *store) write(ctx context.Context, tables []map[uint32][]uint32) error {
	return s.db.DB.Update(func(tx *bolt.Tx) error {
		var stale [][]byte
		if err := tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			if bytes.HasPrefix(name, []byte(tablePrefix)) {
				stale = append(stale, append([]byte(nil), name...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, name := range stale {
			if err := tx.DeleteBucket(name); err != nil {
				return fmt.Errorf("drop %s: %w", name, err)
			}
		}

		for t := range tables {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := tx.CreateBucket(tableName(t))
			if err != nil {
				return fmt.Errorf("create table %d: %w", t, err)
			}
			for bucket, positions := range tables[t] {
				value := make([]byte, 4*len(positions))
				for i, pos := range positions {
					binary.BigEndian.PutUint32(value[4*i:], pos)
				}
				if err := b.Put(bucketKey(bucket), value); err != nil {
					return fmt.Errorf("put bucket %d of table %d: %w", bucket, t, err)
				}
			}
		}
		return nil
	})
}

// read calls fn with the positions of one bucket per table.
func (s *store) read(buckets []uint32, fn func(pos int)) error {
	return s.db.DB.View(func(tx *bolt.Tx) error {
		for t, bucket := range buckets {
			b := tx.Bucket(tableName(t))
			if b == nil {
				return fmt.Errorf("table %d is missing", t)
			}
			value := b.Get(bucketKey(bucket))
			for i := 0; i+4 <= len(value); i += 4 {
				fn(int(binary.BigEndian.Uint32(value[i:])))
			}
		}
		return nil
	})
}

func (s *store) close(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close(ctx)
	s.db = nil
	return err
}
