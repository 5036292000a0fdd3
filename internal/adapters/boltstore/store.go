// Package boltstore implements a record store on a bbolt file.
package boltstore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.trai.ch/normcache/internal/adapters/codec"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	recordsBucket   = []byte("records")
	referrersBucket = []byte("referrers")
)

// separator splits the target and source keys of a referrers entry.
const separator = 0x00

// Store keeps records in a bbolt file. Bucket records maps a cache key to
// its encoded record; bucket referrers holds one empty entry per reference,
// keyed "<to>\x00<from>", so the referrers of a key are a prefix scan.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt file at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", path)
	}
	db, err := bbolt.Open(path, domain.FilePerm, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{recordsBucket, referrersBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", path)
	}
	return &Store{db: db}, nil
}

// Load implements ports.RecordStore.
func (s *Store) Load(_ context.Context, keys []domain.CacheKey, _ domain.CacheHeaders) (map[domain.CacheKey]*domain.Record, error) {
	out := make(map[domain.CacheKey]*domain.Record, len(keys))
	err := s.db.View(func(tx *bbolt.Tx) error {
		for _, key := range keys {
			rec, err := getRecord(tx, key)
			if err != nil {
				return err
			}
			if rec != nil {
				out[key] = rec
			}
		}
		return nil
	})
	if err != nil {
		return nil, backendFailure(err, "load")
	}
	return out, nil
}

// Merge implements ports.RecordStore. All records are merged in one transaction.
func (s *Store) Merge(
	_ context.Context,
	records []*domain.Record,
	headers domain.CacheHeaders,
	merger ports.RecordMerger,
) (domain.MergeResult, error) {
	result := domain.NewMergeResult()
	if headers.Flag(domain.HeaderDoNotStore) || len(records) == 0 {
		return result, nil
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, incoming := range records {
			existing, err := getRecord(tx, incoming.Key)
			if err != nil {
				return err
			}
			merged, changed, conflicts := merger.Merge(existing, incoming)
			result.Add(domain.MergeResult{Changed: changed, Conflicts: conflicts})
			if err := putRecord(tx, existing, merged); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.NewMergeResult(), backendFailure(err, "write")
	}
	return result, nil
}

// Remove implements ports.RecordStore.
func (s *Store) Remove(_ context.Context, key domain.CacheKey, cascade bool) (bool, error) {
	var removed int
	err := s.db.Update(func(tx *bbolt.Tx) error {
		var err error
		removed, err = remove(tx, key, cascade)
		return err
	})
	if err != nil {
		return false, backendFailure(err, "remove")
	}
	return removed > 0, nil
}

// RemoveAll implements ports.RecordStore.
func (s *Store) RemoveAll(_ context.Context, keys []domain.CacheKey, cascade bool) (int, error) {
	var total int
	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, key := range keys {
			n, err := remove(tx, key, cascade)
			if err != nil {
				return err
			}
			if n > 0 {
				total++
			}
		}
		return nil
	})
	if err != nil {
		return 0, backendFailure(err, "remove")
	}
	return total, nil
}

// Clear implements ports.RecordStore.
func (s *Store) Clear(context.Context) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{recordsBucket, referrersBucket} {
			if err := tx.DeleteBucket(b); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return backendFailure(err, "clear")
	}
	return nil
}

// Dump implements ports.RecordStore.
func (s *Store) Dump(context.Context) (map[domain.CacheKey]*domain.Record, error) {
	out := make(map[domain.CacheKey]*domain.Record)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(recordsBucket).ForEach(func(k, v []byte) error {
			rec, err := codec.Decode(v)
			if err != nil {
				return zerr.With(err, "key", string(k))
			}
			out[domain.CacheKey(k)] = rec
			return nil
		})
	})
	if err != nil {
		return nil, backendFailure(err, "dump")
	}
	return out, nil
}

// Close implements ports.RecordStore.
func (s *Store) Close() error {
	return s.db.Close()
}

func getRecord(tx *bbolt.Tx, key domain.CacheKey) (*domain.Record, error) {
	data := tx.Bucket(recordsBucket).Get([]byte(key))
	if data == nil {
		return nil, nil
	}
	rec, err := codec.Decode(data)
	if err != nil {
		return nil, zerr.With(err, "key", string(key))
	}
	return rec, nil
}

func putRecord(tx *bbolt.Tx, previous, current *domain.Record) error {
	data, err := codec.Encode(current)
	if err != nil {
		return err
	}
	if err := tx.Bucket(recordsBucket).Put([]byte(current.Key), data); err != nil {
		return err
	}
	return updateReferrers(tx, current.Key, previous, current)
}

func updateReferrers(tx *bbolt.Tx, from domain.CacheKey, previous, current *domain.Record) error {
	b := tx.Bucket(referrersBucket)
	for _, ref := range previous.References() {
		if err := b.Delete(referrerKey(ref, from)); err != nil {
			return err
		}
	}
	for _, ref := range current.References() {
		if err := b.Put(referrerKey(ref, from), []byte{}); err != nil {
			return err
		}
	}
	return nil
}

func remove(tx *bbolt.Tx, key domain.CacheKey, cascade bool) (int, error) {
	plan := []domain.CacheKey{key}
	if cascade {
		var err error
		plan, err = domain.PlanCascade(key, txGraph{tx: tx})
		if err != nil {
			return 0, err
		}
	}

	removed := 0
	records := tx.Bucket(recordsBucket)
	for _, k := range plan {
		rec, err := getRecord(tx, k)
		if err != nil {
			return 0, err
		}
		if rec == nil {
			continue
		}
		if err := records.Delete([]byte(k)); err != nil {
			return 0, err
		}
		if err := updateReferrers(tx, k, rec, nil); err != nil {
			return 0, err
		}
		removed++
	}
	return removed, nil
}

func referrerKey(to, from domain.CacheKey) []byte {
	k := make([]byte, 0, len(to)+len(from)+1)
	k = append(k, to...)
	k = append(k, separator)
	return append(k, from...)
}

type txGraph struct {
	tx *bbolt.Tx
}

func (g txGraph) Record(key domain.CacheKey) (*domain.Record, error) {
	return getRecord(g.tx, key)
}

func (g txGraph) Referrers(key domain.CacheKey) ([]domain.CacheKey, error) {
	prefix := append([]byte(key), separator)
	var out []domain.CacheKey
	c := g.tx.Bucket(referrersBucket).Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		out = append(out, domain.CacheKey(k[len(prefix):]))
	}
	return out, nil
}

func backendFailure(err error, op string) error {
	return errors.Join(domain.ErrBackendFailure, zerr.With(zerr.Wrap(err, "bolt "+op+" failed"), "backend", "bolt"))
}

var _ ports.RecordStore = (*Store)(nil)
