package paginate

import (
	"time"

	perr "historian/internal/platform/errors"
	"historian/internal/platform/logger"
)

// Config bounds a traversal
type Config struct {
	// MaxPageSize caps a single page, oversized requests clamp here
	MaxPageSize int
	// DefaultPageSize applies when the caller does not ask for a size
	DefaultPageSize int
	// MaxTotalRecords is the hard safety ceiling across all pages of one traversal
	MaxTotalRecords int
}

// DefaultConfig returns the stock traversal bounds
func DefaultConfig() Config {
	return Config{
		MaxPageSize:     100,
		DefaultPageSize: 50,
		MaxTotalRecords: 10000,
	}
}

// normalized fills zero fields with defaults so a partial Config is usable
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = d.MaxPageSize
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = d.DefaultPageSize
	}
	if c.MaxTotalRecords <= 0 {
		c.MaxTotalRecords = d.MaxTotalRecords
	}
	return c
}

// FetchParams is the shape an upstream source expects for one page
type FetchParams struct {
	Limit      int
	OffsetID   int64
	OffsetDate time.Time
	// Reverse asks the upstream for oldest-first delivery
	Reverse bool
	// Search is an optional upstream-side text query
	Search string
}

// Paginator validates page sizes, builds fetch parameters, and derives cursors
type Paginator struct {
	cfg Config
	log logger.Logger
}

// New constructs a Paginator with cfg, zero fields fall back to defaults
func New(cfg Config, log logger.Logger) *Paginator {
	return &Paginator{cfg: cfg.normalized(), log: log}
}

// DefaultPageSize returns the configured default
func (p *Paginator) DefaultPageSize() int { return p.cfg.DefaultPageSize }

// MaxTotalRecords returns the traversal ceiling
func (p *Paginator) MaxTotalRecords() int { return p.cfg.MaxTotalRecords }

// ValidatePageSize clamps requested into [1, MaxPageSize]
// Requests below 1 are a validation error, oversized requests clamp with a
// warning. The asymmetry is deliberate contract, not an oversight
func (p *Paginator) ValidatePageSize(requested int) (int, error) {
	if requested < 1 {
		return 0, perr.Validationf("page size must be at least 1, got %d", requested)
	}
	if requested > p.cfg.MaxPageSize {
		p.log.Warn().
			Int("requested", requested).
			Int("max", p.cfg.MaxPageSize).
			Msg("page size clamped")
		return p.cfg.MaxPageSize, nil
	}
	return requested, nil
}

// DecodeCursor decodes token and checks it belongs to collectionID
// Malformed tokens and cross-collection cursors yield nil, restarting the
// traversal from the beginning. Decode failures are never fatal
func (p *Paginator) DecodeCursor(token, collectionID string) *Cursor {
	if token == "" {
		return nil
	}
	c, err := Decode(token)
	if err != nil {
		p.log.Warn().Err(err).Msg("unusable cursor token, restarting traversal")
		return nil
	}
	if c.CollectionID != "" && collectionID != "" && c.CollectionID != collectionID {
		p.log.Warn().
			Str("cursor_collection", c.CollectionID).
			Str("requested_collection", collectionID).
			Msg("cursor belongs to another collection, restarting traversal")
		return nil
	}
	return &c
}

// Params maps a cursor, page size, and direction into upstream fetch parameters
// When cur carries a different direction than dir, the cursor wins and a
// warning is emitted
func (p *Paginator) Params(cur *Cursor, pageSize int, dir Direction, search string) FetchParams {
	if cur != nil && cur.Direction != dir {
		p.log.Warn().
			Str("cursor_direction", string(cur.Direction)).
			Str("requested_direction", string(dir)).
			Msg("direction mismatch, cursor direction wins")
		dir = cur.Direction
	}
	fp := FetchParams{
		Limit:   pageSize,
		Reverse: dir == Ascending,
		Search:  search,
	}
	if cur != nil {
		fp.OffsetID = cur.OffsetID
		fp.OffsetDate = cur.OffsetDate
	}
	return fp
}

// ShouldContinue reports whether another page should be fetched
// A short page means end of data, and the total ceiling bounds traversals the
// upstream never terminates
func (p *Paginator) ShouldContinue(batchLen, requested, totalFetched int) bool {
	if batchLen < requested {
		return false
	}
	return totalFetched < p.cfg.MaxTotalRecords
}

// Next derives the cursor for the page after the one just fetched
// Descending resumes at the last id, ascending just past it. FetchedCount
// accumulates the raw page length, pre-filtering
func (p *Paginator) Next(cur *Cursor, collectionID string, dir Direction, lastID int64, lastDate time.Time, pageLen int) Cursor {
	fetched := 0
	if cur != nil {
		fetched = cur.FetchedCount
		dir = cur.Direction
	}
	offset := lastID
	if dir == Ascending {
		offset = lastID + 1
	}
	return Cursor{
		OffsetID:     offset,
		OffsetDate:   lastDate,
		Direction:    dir,
		CollectionID: collectionID,
		FetchedCount: fetched + pageLen,
	}
}
