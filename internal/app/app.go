// Package app implements the application layer for normcache.
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
	"go.trai.ch/normcache/internal/engine/keys"
	"go.trai.ch/normcache/internal/engine/normalizer"
	"go.trai.ch/normcache/internal/engine/resolver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Tracing switches span logging on and off.
type Tracing interface {
	SetVerbose(enable bool)
}

// App runs the cache operations behind the CLI. Every call opens the
// configured store and closes it before returning.
type App struct {
	loader  ports.ConfigLoader
	factory ports.StoreFactory
	logger  ports.Logger
	clock   ports.Clock
	tracing Tracing
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, factory ports.StoreFactory, log ports.Logger, clock ports.Clock) *App {
	return &App{
		loader:  loader,
		factory: factory,
		logger:  log,
		clock:   clock,
	}
}

// WithTracing sets the tracing switch used by verbose runs.
func (a *App) WithTracing(t Tracing) *App {
	a.tracing = t
	return a
}

// Options are shared by every operation.
type Options struct {
	ConfigPath string
	// Verbose logs every record store call.
	Verbose bool
}

// WriteOptions configures Write.
type WriteOptions struct {
	Options
	QueryPath string
	DataPath  string
	// Key is the record to write under. Empty means the root record.
	Key        domain.CacheKey
	MemoryOnly bool
	DoNotStore bool
	// ExpiresIn sets the expiration date of the written fields. Zero means no expiration.
	ExpiresIn time.Duration
}

// ReadOptions configures Read.
type ReadOptions struct {
	Options
	QueryPath string
	// Key is the record to read from. Empty means the root record.
	Key            domain.CacheKey
	MaxStale       time.Duration
	EvictAfterRead bool
	MemoryOnly     bool
}

// RemoveOptions configures Remove.
type RemoveOptions struct {
	Options
	Keys    []domain.CacheKey
	Cascade bool
}

// GCOptions configures GC.
type GCOptions struct {
	Options
	// Expired also deletes records whose expiration date has passed.
	Expired bool
}

// GCResult reports what GC deleted.
type GCResult struct {
	Unreachable []domain.CacheKey
	Expired     int
}

// Write stores the result data of a query file.
func (a *App) Write(ctx context.Context, opts WriteOptions) (domain.MergeResult, error) {
	var (
		op   *domain.Operation
		data map[string]any
	)
	g := new(errgroup.Group)
	g.Go(func() (err error) {
		op, err = a.loader.LoadOperation(opts.QueryPath)
		return err
	})
	g.Go(func() (err error) {
		data, err = readData(opts.DataPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.MergeResult{}, err
	}

	var res domain.MergeResult
	err := a.withStore(ctx, opts.Options, func(s *Store, _ *opened) error {
		headers := domain.NoHeaders.WithTime(domain.HeaderReceivedDate, a.clock.Now())
		if opts.ExpiresIn > 0 {
			headers = headers.WithTime(domain.HeaderExpirationDate, a.clock.Now().Add(opts.ExpiresIn))
		}
		if opts.MemoryOnly {
			headers = headers.WithFlag(domain.HeaderMemoryCacheOnly)
		}
		if opts.DoNotStore {
			headers = headers.WithFlag(domain.HeaderDoNotStore)
		}

		var err error
		res, err = s.WriteFragmentAndPublish(ctx, *op, rootOr(opts.Key), data, headers)
		return err
	})
	return res, err
}

// Read rebuilds the tree of a query file from the cache.
func (a *App) Read(ctx context.Context, opts ReadOptions) (*domain.ReadResult, error) {
	op, err := a.loader.LoadOperation(opts.QueryPath)
	if err != nil {
		return nil, err
	}

	var res *domain.ReadResult
	err = a.withStore(ctx, opts.Options, func(s *Store, _ *opened) error {
		headers := domain.NoHeaders
		if opts.MaxStale > 0 {
			headers = headers.WithDuration(domain.HeaderMaxStale, opts.MaxStale)
		}
		if opts.EvictAfterRead {
			headers = headers.WithFlag(domain.HeaderEvictAfterRead)
		}
		if opts.MemoryOnly {
			headers = headers.WithFlag(domain.HeaderMemoryCacheOnly)
		}

		var err error
		res, err = s.ReadFragment(ctx, *op, rootOr(opts.Key), headers)
		return err
	})
	return res, err
}

// Dump returns every stored record.
func (a *App) Dump(ctx context.Context, opts Options) (map[domain.CacheKey]*domain.Record, error) {
	var out map[domain.CacheKey]*domain.Record
	err := a.withStore(ctx, opts, func(s *Store, _ *opened) error {
		var err error
		out, err = s.Dump(ctx)
		return err
	})
	return out, err
}

// Reachable returns the keys reachable from the root record.
func (a *App) Reachable(ctx context.Context, opts Options) ([]domain.CacheKey, error) {
	var out []domain.CacheKey
	err := a.withStore(ctx, opts, func(s *Store, _ *opened) error {
		var err error
		out, err = s.ReachableKeys(ctx)
		return err
	})
	return out, err
}

// Remove deletes the given records.
func (a *App) Remove(ctx context.Context, opts RemoveOptions) (int, error) {
	var n int
	err := a.withStore(ctx, opts.Options, func(s *Store, _ *opened) error {
		var err error
		n, err = s.RemoveAll(ctx, opts.Keys, opts.Cascade)
		return err
	})
	return n, err
}

// Clear deletes every record.
func (a *App) Clear(ctx context.Context, opts Options) error {
	return a.withStore(ctx, opts, func(s *Store, _ *opened) error {
		return s.ClearAll(ctx)
	})
}

// GC deletes the records unreachable from the root record and, when asked,
// the expired ones.
func (a *App) GC(ctx context.Context, opts GCOptions) (GCResult, error) {
	var res GCResult
	err := a.withStore(ctx, opts.Options, func(s *Store, o *opened) error {
		if opts.Expired {
			n, err := removeExpired(ctx, o.base, a.clock.Now())
			switch {
			case errors.Is(err, domain.ErrExpirationNotTracked):
				a.logger.Warn(fmt.Sprintf("backend %s does not track expiration dates", o.cfg.Store.Backend))
			case err != nil:
				return err
			default:
				res.Expired = n
			}
		}

		var err error
		res.Unreachable, err = s.RemoveUnreachable(ctx)
		return err
	})
	return res, err
}

type opened struct {
	cfg  *domain.Config
	base ports.RecordStore
}

func (a *App) withStore(ctx context.Context, opts Options, fn func(*Store, *opened) error) (err error) {
	cfg, err := a.loader.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if j, ok := a.logger.(interface{ SetJSON(bool) }); ok && cfg.JSONLogs {
		j.SetJSON(true)
	}
	if a.tracing != nil {
		a.tracing.SetVerbose(opts.Verbose)
	}

	base, err := a.factory.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}

	s := NewStore(base, a.logger, a.cacheOptions(cfg)...)
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = zerr.Wrap(cerr, "failed to close record store")
		}
	}()

	return fn(s, &opened{cfg: cfg, base: base})
}

func (a *App) cacheOptions(cfg *domain.Config) []StoreOption {
	n := normalizer.New(
		normalizer.WithCacheKeyGenerator(keys.NewTypePolicyGenerator(cfg.TypePolicies)),
		normalizer.WithEmbeddedFields(keys.NewEmbeddedFields(cfg.EmbeddedFields)),
	)
	return []StoreOption{
		WithNormalizer(n),
		WithResolver(resolver.NewCacheControl(
			resolver.MaxAgeTable(cfg.MaxAges),
			cfg.DefaultMaxAge,
			resolver.WithClock(a.clock),
		)),
		WithNotifierCapacity(cfg.NotifierCapacity),
	}
}

// removeExpired runs RemoveExpired on the first store of the decorator chain
// that implements it.
func removeExpired(ctx context.Context, s ports.RecordStore, now time.Time) (int, error) {
	for {
		if e, ok := s.(ports.Expirer); ok {
			return e.RemoveExpired(ctx, now)
		}
		u, ok := s.(interface{ Unwrap() ports.RecordStore })
		if !ok {
			return 0, domain.ErrExpirationNotTracked
		}
		s = u.Unwrap()
	}
}

func rootOr(key domain.CacheKey) domain.CacheKey {
	if key == "" {
		return domain.RootKey
	}
	return key
}

// readData reads a JSON result file. A response envelope with a "data"
// member is unwrapped.
func readData(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDataReadFailed.Error()), "path", path)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDataReadFailed.Error()), "path", path)
	}

	if data, ok := doc["data"].(map[string]any); ok && isEnvelope(doc) {
		return data, nil
	}
	return doc, nil
}

func isEnvelope(doc map[string]any) bool {
	for k := range doc {
		switch k {
		case "data", "errors", "extensions":
		default:
			return false
		}
	}
	return true
}
