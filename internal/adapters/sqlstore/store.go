// Package sqlstore implements a record store on SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/normcache/internal/adapters/codec"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
	"go.trai.ch/zerr"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// batchSize bounds the number of keys in one IN (...) clause.
const batchSize = 500

const refsSchema = `
CREATE TABLE IF NOT EXISTS refs (
	from_key TEXT NOT NULL,
	to_key   TEXT NOT NULL,
	PRIMARY KEY (from_key, to_key)
);
CREATE INDEX IF NOT EXISTS refs_to_key ON refs (to_key);`

const recordsSchema = `
CREATE TABLE IF NOT EXISTS records (
	key    TEXT PRIMARY KEY,
	record BLOB NOT NULL
);`

const recordsWithDatesSchema = `
CREATE TABLE IF NOT EXISTS records (
	key         TEXT PRIMARY KEY,
	record      BLOB NOT NULL,
	received_at INTEGER,
	expires_at  INTEGER
);
CREATE INDEX IF NOT EXISTS records_expires_at ON records (expires_at);`

// Store keeps records in a SQLite database: one row per record in table
// records, and the reverse reference index in table refs.
type Store struct {
	db        *sql.DB
	withDates bool
}

// Open opens or creates the database at path. An empty path opens a private
// in-memory database. With withDates, record dates are also kept in their own
// columns so expired records can be removed in bulk.
func Open(ctx context.Context, path string, withDates bool) (*Store, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", path)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", path)
	}
	// SQLite serializes writers; one connection keeps an in-memory database alive
	// and merges linearizable.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	schema := recordsSchema
	if withDates {
		schema = recordsWithDatesSchema
	}
	if _, err := db.ExecContext(ctx, schema+refsSchema); err != nil {
		_ = db.Close()
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", path)
	}
	return &Store{db: db, withDates: withDates}, nil
}

// Load implements ports.RecordStore.
func (s *Store) Load(ctx context.Context, keys []domain.CacheKey, _ domain.CacheHeaders) (map[domain.CacheKey]*domain.Record, error) {
	out := make(map[domain.CacheKey]*domain.Record, len(keys))
	for start := 0; start < len(keys); start += batchSize {
		end := min(start+batchSize, len(keys))
		if err := s.loadBatch(ctx, s.db, keys[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) loadBatch(ctx context.Context, q querier, keys []domain.CacheKey, out map[domain.CacheKey]*domain.Record) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = string(k)
	}
	query := fmt.Sprintf("SELECT key, record FROM records WHERE key IN (%s)", placeholders(len(keys)))

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return backendFailure(err, "load")
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			key  string
			data []byte
		)
		if err := rows.Scan(&key, &data); err != nil {
			return backendFailure(err, "load")
		}
		rec, err := codec.Decode(data)
		if err != nil {
			return errors.Join(domain.ErrBackendFailure, zerr.With(err, "key", key))
		}
		out[domain.CacheKey(key)] = rec
	}
	if err := rows.Err(); err != nil {
		return backendFailure(err, "load")
	}
	return nil
}

// Merge implements ports.RecordStore. All records are merged in a single transaction.
func (s *Store) Merge(
	ctx context.Context,
	records []*domain.Record,
	headers domain.CacheHeaders,
	merger ports.RecordMerger,
) (domain.MergeResult, error) {
	result := domain.NewMergeResult()
	if headers.Flag(domain.HeaderDoNotStore) || len(records) == 0 {
		return result, nil
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, incoming := range records {
			existing, err := s.record(ctx, tx, incoming.Key)
			if err != nil {
				return err
			}
			merged, changed, conflicts := merger.Merge(existing, incoming)
			result.Add(domain.MergeResult{Changed: changed, Conflicts: conflicts})
			if err := s.put(ctx, tx, merged); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.NewMergeResult(), err
	}
	return result, nil
}

func (s *Store) put(ctx context.Context, tx *sql.Tx, r *domain.Record) error {
	data, err := codec.Encode(r)
	if err != nil {
		return errors.Join(domain.ErrBackendFailure, err)
	}

	if s.withDates {
		_, err = tx.ExecContext(ctx, `
INSERT INTO records (key, record, received_at, expires_at) VALUES (?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE SET
	record = excluded.record,
	received_at = excluded.received_at,
	expires_at = excluded.expires_at`,
			string(r.Key), data, nullableUnix(r.ReceivedAt()), nullableUnix(r.ExpiresAt()))
	} else {
		_, err = tx.ExecContext(ctx, `
INSERT INTO records (key, record) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET record = excluded.record`,
			string(r.Key), data)
	}
	if err != nil {
		return backendFailure(err, "write")
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM refs WHERE from_key = ?", string(r.Key)); err != nil {
		return backendFailure(err, "write")
	}
	for _, ref := range r.References() {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO refs (from_key, to_key) VALUES (?, ?)", string(r.Key), string(ref),
		); err != nil {
			return backendFailure(err, "write")
		}
	}
	return nil
}

func (s *Store) record(ctx context.Context, q querier, key domain.CacheKey) (*domain.Record, error) {
	out := make(map[domain.CacheKey]*domain.Record, 1)
	if err := s.loadBatch(ctx, q, []domain.CacheKey{key}, out); err != nil {
		return nil, err
	}
	return out[key], nil
}

// Remove implements ports.RecordStore.
func (s *Store) Remove(ctx context.Context, key domain.CacheKey, cascade bool) (bool, error) {
	var removed int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		removed, err = s.remove(ctx, tx, key, cascade)
		return err
	})
	return removed > 0, err
}

// RemoveAll implements ports.RecordStore.
func (s *Store) RemoveAll(ctx context.Context, keys []domain.CacheKey, cascade bool) (int, error) {
	var total int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, key := range keys {
			n, err := s.remove(ctx, tx, key, cascade)
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
		return 0, err
	}
	return total, nil
}

func (s *Store) remove(ctx context.Context, tx *sql.Tx, key domain.CacheKey, cascade bool) (int, error) {
	plan := []domain.CacheKey{key}
	if cascade {
		var err error
		plan, err = domain.PlanCascade(key, txGraph{ctx: ctx, s: s, tx: tx})
		if err != nil {
			return 0, err
		}
	}

	removed := 0
	for _, k := range plan {
		res, err := tx.ExecContext(ctx, "DELETE FROM records WHERE key = ?", string(k))
		if err != nil {
			return 0, backendFailure(err, "remove")
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM refs WHERE from_key = ?", string(k)); err != nil {
			return 0, backendFailure(err, "remove")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, backendFailure(err, "remove")
		}
		removed += int(n)
	}
	return removed, nil
}

// RemoveExpired deletes the records whose earliest field expiration is before
// t and returns how many were deleted. A store opened without dates returns
// domain.ErrExpirationNotTracked.
func (s *Store) RemoveExpired(ctx context.Context, t time.Time) (int, error) {
	if !s.withDates {
		return 0, domain.ErrExpirationNotTracked
	}
	var removed int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			"SELECT key FROM records WHERE expires_at IS NOT NULL AND expires_at < ?", t.Unix())
		if err != nil {
			return backendFailure(err, "remove expired")
		}
		var keys []domain.CacheKey
		for rows.Next() {
			var k string
			if err := rows.Scan(&k); err != nil {
				_ = rows.Close()
				return backendFailure(err, "remove expired")
			}
			keys = append(keys, domain.CacheKey(k))
		}
		if err := rows.Close(); err != nil {
			return backendFailure(err, "remove expired")
		}
		for _, k := range keys {
			n, err := s.remove(ctx, tx, k, false)
			if err != nil {
				return err
			}
			removed += n
		}
		return nil
	})
	return removed, err
}

// Clear implements ports.RecordStore.
func (s *Store) Clear(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
			return backendFailure(err, "clear")
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM refs"); err != nil {
			return backendFailure(err, "clear")
		}
		return nil
	})
}

// Dump implements ports.RecordStore.
func (s *Store) Dump(ctx context.Context) (map[domain.CacheKey]*domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, record FROM records")
	if err != nil {
		return nil, backendFailure(err, "dump")
	}
	defer func() { _ = rows.Close() }()

	out := make(map[domain.CacheKey]*domain.Record)
	for rows.Next() {
		var (
			key  string
			data []byte
		)
		if err := rows.Scan(&key, &data); err != nil {
			return nil, backendFailure(err, "dump")
		}
		rec, err := codec.Decode(data)
		if err != nil {
			return nil, errors.Join(domain.ErrBackendFailure, zerr.With(err, "key", key))
		}
		out[domain.CacheKey(key)] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, backendFailure(err, "dump")
	}
	return out, nil
}

// Close implements ports.RecordStore.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return backendFailure(err, "begin")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return backendFailure(err, "commit")
	}
	return nil
}

// txGraph exposes a transaction to the cascade planner.
type txGraph struct {
	ctx context.Context //nolint:containedctx // scoped to one cascade plan
	s   *Store
	tx  *sql.Tx
}

func (g txGraph) Record(key domain.CacheKey) (*domain.Record, error) {
	return g.s.record(g.ctx, g.tx, key)
}

func (g txGraph) Referrers(key domain.CacheKey) ([]domain.CacheKey, error) {
	rows, err := g.tx.QueryContext(g.ctx, "SELECT from_key FROM refs WHERE to_key = ?", string(key))
	if err != nil {
		return nil, backendFailure(err, "referrers")
	}
	defer func() { _ = rows.Close() }()

	var out []domain.CacheKey
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, backendFailure(err, "referrers")
		}
		out = append(out, domain.CacheKey(k))
	}
	if err := rows.Err(); err != nil {
		return nil, backendFailure(err, "referrers")
	}
	return out, nil
}

func backendFailure(err error, op string) error {
	return errors.Join(domain.ErrBackendFailure, zerr.With(zerr.Wrap(err, "sqlite "+op+" failed"), "backend", "sqlite"))
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

var (
	_ ports.RecordStore = (*Store)(nil)
	_ ports.Expirer     = (*Store)(nil)
)
