// Package upstream provides a seeded in-memory record source
// It stands in for a real messaging backend during local development and in
// tests; production deployments supply their own UpstreamPort implementation
package upstream

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"historian/internal/core/paginate"
	"historian/internal/core/records"
	perr "historian/internal/platform/errors"
	"historian/internal/platform/logger"
	histdom "historian/internal/services/history/domain"
)

// Collection is one seeded collection with its full record history
type Collection struct {
	Info histdom.CollectionInfo
	// Alias is an optional public handle, e.g. "@announcements"
	Alias string
	// Records must be ascending by id
	Records []records.Record
}

// Static implements histdom.UpstreamPort over seeded data
type Static struct {
	log logger.Logger

	mu      sync.RWMutex
	byID    map[string]Collection
	byAlias map[string]string
}

// New creates an empty static upstream
func New(log logger.Logger) *Static {
	return &Static{
		log:     log,
		byID:    make(map[string]Collection),
		byAlias: make(map[string]string),
	}
}

// Seed registers a collection, replacing any previous one with the same id
func (s *Static) Seed(c Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[c.Info.ID] = c
	if c.Alias != "" {
		s.byAlias[strings.ToLower(c.Alias)] = c.Info.ID
	}
}

// ResolveCollection maps an id or alias to collection info
func (s *Static) ResolveCollection(_ context.Context, identifier string) (histdom.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id := identifier
	if mapped, ok := s.byAlias[strings.ToLower(identifier)]; ok {
		id = mapped
	}
	c, ok := s.byID[id]
	if !ok {
		return histdom.CollectionInfo{}, perr.NotFoundf("collection %q not found", identifier)
	}
	return c.Info, nil
}

// FetchRecords serves one page the way the real source orders it:
// descending resumes strictly below the offset id, ascending at or above it
// The search parameter is left to the processing pipeline
func (s *Static) FetchRecords(_ context.Context, collectionID string, p paginate.FetchParams) ([]records.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[collectionID]
	if !ok {
		return nil, perr.NotFoundf("collection %q not found", collectionID)
	}
	if p.Limit <= 0 {
		return nil, perr.InvalidArgf("fetch limit must be positive, got %d", p.Limit)
	}

	var out []records.Record
	if p.Reverse {
		for _, r := range c.Records {
			if r.ID < p.OffsetID {
				continue
			}
			out = append(out, r)
			if len(out) == p.Limit {
				break
			}
		}
		return out, nil
	}
	for i := len(c.Records) - 1; i >= 0; i-- {
		r := c.Records[i]
		if p.OffsetID != 0 && r.ID >= p.OffsetID {
			continue
		}
		out = append(out, r)
		if len(out) == p.Limit {
			break
		}
	}
	return out, nil
}

// SeedDemo loads a small demo channel so the binary answers out of the box
func (s *Static) SeedDemo() {
	const n = 250
	recs := make([]records.Record, 0, n)
	base := time.Now().UTC().Add(-time.Duration(n) * time.Hour).Truncate(time.Hour)
	for i := 1; i <= n; i++ {
		views := i * 3
		recs = append(recs, records.Record{
			ID:     int64(i),
			Date:   base.Add(time.Duration(i) * time.Hour),
			Sender: records.Sender{ID: 42, Kind: records.SenderChannel, Display: "demo"},
			Text:   fmt.Sprintf("demo message %d", i),
			Views:  &views,
		})
	}
	s.Seed(Collection{
		Info: histdom.CollectionInfo{
			ID:          "demo-channel",
			Kind:        histdom.KindChannel,
			Title:       "Demo Channel",
			MemberCount: 1280,
		},
		Alias:   "@demo",
		Records: recs,
	})
	s.log.Info().Int("records", n).Msg("demo collection seeded")
}
