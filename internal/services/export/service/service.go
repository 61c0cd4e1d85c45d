// Package service owns the export resource lifecycle: write, read, expire
package service

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"historian/internal/core/records"
	perr "historian/internal/platform/errors"
	"historian/internal/platform/logger"
	"historian/internal/services/export/domain"
	"historian/internal/services/export/repo"
)

// Config tunes the export lifecycle
type Config struct {
	// Dir is where NDJSON files land
	Dir string
	// MaxAge is how long a resource stays readable after Create
	MaxAge time.Duration
	// ThresholdItems is the batch size above which results export instead of inlining
	ThresholdItems int
	// ReapEvery is the background cleanup cadence
	ReapEvery time.Duration
}

// DefaultConfig returns the stock export tuning
func DefaultConfig() Config {
	return Config{
		Dir:            filepath.Join(os.TempDir(), "historian-exports"),
		MaxAge:         24 * time.Hour,
		ThresholdItems: 100,
		ReapEvery:      10 * time.Minute,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.Dir == "" {
		c.Dir = d.Dir
	}
	if c.ThresholdItems <= 0 {
		c.ThresholdItems = d.ThresholdItems
	}
	if c.ReapEvery <= 0 {
		c.ReapEvery = d.ReapEvery
	}
	// MaxAge zero is meaningful: resources expire immediately
	return c
}

// Manager implements domain.ManagerPort over a registry and a spool directory
//
// Open readers pin their resource: cleanup and Remove defer deletion until
// the last reader closes
type Manager struct {
	cfg Config
	log logger.Logger
	reg repo.Registry

	mu      sync.Mutex
	readers map[string]int
	doomed  map[string]bool

	now func() time.Time
}

// Option mutates a Manager during New
type Option func(*Manager)

// WithClock swaps the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New creates a Manager backed by the given registry
func New(cfg Config, log logger.Logger, reg repo.Registry, opts ...Option) *Manager {
	if reg == nil {
		panic("export.Manager requires a non nil registry")
	}
	m := &Manager{
		cfg:     cfg.normalized(),
		log:     log,
		reg:     reg,
		readers: make(map[string]int),
		doomed:  make(map[string]bool),
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ShouldExport reports whether a batch of n records is over the inline threshold
func (m *Manager) ShouldExport(n int) bool { return n > m.cfg.ThresholdItems }

// path returns the spool file for a resource id
func (m *Manager) path(id string) string {
	return filepath.Join(m.cfg.Dir, id+"."+domain.FormatNDJSON)
}

// Create writes records as NDJSON and registers the descriptor
//
// A serialization failure removes the partial file before the error propagates
func (m *Manager) Create(ctx context.Context, recs []records.Record, meta domain.Meta) (domain.ResourceDescriptor, error) {
	if err := os.MkdirAll(m.cfg.Dir, 0o755); err != nil {
		return domain.ResourceDescriptor{}, perr.Wrap(err, perr.ErrorCodeResource, "create export dir")
	}

	id := domain.NewResourceID()
	path := m.path(id)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return domain.ResourceDescriptor{}, perr.Wrap(err, perr.ErrorCodeResource, "create export file")
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range recs {
		r.Date = r.Date.UTC()
		if err := enc.Encode(r); err != nil {
			f.Close()
			os.Remove(path)
			return domain.ResourceDescriptor{}, perr.Wrapf(err, perr.ErrorCodeResource, "encode record %d", r.ID)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return domain.ResourceDescriptor{}, perr.Wrap(err, perr.ErrorCodeResource, "flush export file")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return domain.ResourceDescriptor{}, perr.Wrap(err, perr.ErrorCodeResource, "close export file")
	}

	fi, err := os.Stat(path)
	if err != nil {
		os.Remove(path)
		return domain.ResourceDescriptor{}, perr.Wrap(err, perr.ErrorCodeResource, "stat export file")
	}

	now := m.now().UTC()
	d := domain.ResourceDescriptor{
		ResourceID: id,
		URI:        domain.URIFor(id),
		Format:     domain.FormatNDJSON,
		ItemCount:  len(recs),
		ByteSize:   fi.Size(),
		CreatedAt:  now,
		ExpiresAt:  now.Add(m.cfg.MaxAge),
	}
	if err := m.reg.Put(ctx, d); err != nil {
		os.Remove(path)
		return domain.ResourceDescriptor{}, err
	}

	m.log.Info().Str("resource_id", id).Int("items", d.ItemCount).Int64("bytes", d.ByteSize).
		Str("collection_id", meta.CollectionID).Msg("export created")
	return d, nil
}

// Read opens an iterator over an exported resource and pins it against cleanup
func (m *Manager) Read(ctx context.Context, id string) (domain.ResourceDescriptor, domain.RecordIterator, error) {
	d, ok, err := m.reg.Get(ctx, id)
	if err != nil {
		return domain.ResourceDescriptor{}, nil, err
	}
	if !ok {
		return domain.ResourceDescriptor{}, nil, perr.NotFoundf("export resource %s not found", id)
	}

	f, err := os.Open(m.path(id))
	if err != nil {
		return domain.ResourceDescriptor{}, nil, perr.Wrapf(err, perr.ErrorCodeResource, "open export %s", id)
	}

	m.mu.Lock()
	m.readers[id]++
	m.mu.Unlock()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return d, &iterator{m: m, id: id, f: f, sc: sc}, nil
}

// List returns all registered descriptors
func (m *Manager) List(ctx context.Context) ([]domain.ResourceDescriptor, error) {
	return m.reg.List(ctx)
}

// Remove deletes a resource once its consumer is done with it
// A pinned resource is doomed instead and deleted when the last reader closes
func (m *Manager) Remove(ctx context.Context, id string) error {
	_, ok, err := m.reg.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return perr.NotFoundf("export resource %s not found", id)
	}
	if m.deferIfPinned(id) {
		return nil
	}
	return m.delete(ctx, id)
}

// CleanupExpired removes every expired, unpinned resource and returns the count
func (m *Manager) CleanupExpired(ctx context.Context) (int, error) {
	all, err := m.reg.List(ctx)
	if err != nil {
		return 0, err
	}
	now := m.now()
	removed := 0
	for _, d := range all {
		if !d.Expired(now) {
			continue
		}
		if m.deferIfPinned(d.ResourceID) {
			continue
		}
		if err := m.delete(ctx, d.ResourceID); err != nil {
			m.log.Warn().Err(err).Str("resource_id", d.ResourceID).Msg("expired export not removed")
			continue
		}
		removed++
	}
	if removed > 0 {
		m.log.Info().Int("removed", removed).Msg("expired exports reaped")
	}
	return removed, nil
}

// StartReaper runs CleanupExpired on a ticker until ctx is done
func (m *Manager) StartReaper(ctx context.Context) {
	go func() {
		t := time.NewTicker(m.cfg.ReapEvery)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if _, err := m.CleanupExpired(ctx); err != nil {
					m.log.Warn().Err(err).Msg("export reaper pass failed")
				}
			}
		}
	}()
}

// deferIfPinned dooms a pinned resource and reports whether deletion was deferred
func (m *Manager) deferIfPinned(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readers[id] > 0 {
		m.doomed[id] = true
		return true
	}
	return false
}

// delete removes the file and the registry entry
func (m *Manager) delete(ctx context.Context, id string) error {
	if err := os.Remove(m.path(id)); err != nil && !os.IsNotExist(err) {
		return perr.Wrapf(err, perr.ErrorCodeResource, "remove export %s", id)
	}
	return m.reg.Delete(ctx, id)
}

// release unpins a resource after a reader closes and finishes deferred deletion
func (m *Manager) release(id string) {
	m.mu.Lock()
	m.readers[id]--
	last := m.readers[id] <= 0
	if last {
		delete(m.readers, id)
	}
	doomed := m.doomed[id]
	if last && doomed {
		delete(m.doomed, id)
	}
	m.mu.Unlock()

	if last && doomed {
		if err := m.delete(context.Background(), id); err != nil {
			m.log.Warn().Err(err).Str("resource_id", id).Msg("deferred export deletion failed")
		}
	}
}

// iterator implements domain.RecordIterator over one NDJSON file
type iterator struct {
	m   *Manager
	id  string
	f   *os.File
	sc  *bufio.Scanner
	err error
}

// Next returns the next record, skipping malformed lines with a warning
func (it *iterator) Next() (records.Record, bool) {
	for it.sc.Scan() {
		line := it.sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var r records.Record
		if err := json.Unmarshal(line, &r); err != nil {
			it.m.log.Warn().Err(err).Str("resource_id", it.id).Msg("skipping malformed export line")
			continue
		}
		return r, true
	}
	it.err = it.sc.Err()
	return records.Record{}, false
}

// Err reports a scan failure that ended iteration early
func (it *iterator) Err() error { return it.err }

// Close releases the file and the resource pin
func (it *iterator) Close() error {
	err := it.f.Close()
	it.m.release(it.id)
	return err
}
