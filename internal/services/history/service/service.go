// Package service orchestrates one page of history retrieval per call
package service

import (
	"context"
	"strings"

	"historian/internal/core/paginate"
	"historian/internal/core/records"
	"historian/internal/core/retry"
	perr "historian/internal/platform/errors"
	"historian/internal/platform/logger"
	exportdom "historian/internal/services/export/domain"
	"historian/internal/services/history/domain"
)

// Config aggregates the pipeline tuning for one service instance
type Config struct {
	Paginate paginate.Config
	Retry    retry.Config
}

// Service defines the service contract for history
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
// It holds no traversal state: every Fetch call is one page, resumable only
// through the cursor the caller carries
type Svc struct {
	log      logger.Logger
	pager    *paginate.Paginator
	proc     *records.Processor
	coord    *retry.Coordinator
	upstream domain.UpstreamPort
	exports  exportdom.ManagerPort
}

// Option mutates a Svc during New
type Option func(*Svc)

// WithCoordinator swaps the retry coordinator, for tests and custom hooks
func WithCoordinator(c *retry.Coordinator) Option {
	return func(s *Svc) { s.coord = c }
}

// New creates a history service bound to an upstream and an export manager
func New(cfg Config, log logger.Logger, upstream domain.UpstreamPort, exports exportdom.ManagerPort, opts ...Option) *Svc {
	if upstream == nil {
		panic("history.Service requires a non nil upstream")
	}
	if exports == nil {
		panic("history.Service requires a non nil export manager")
	}
	s := &Svc{
		log:      log,
		pager:    paginate.New(cfg.Paginate, log),
		proc:     records.NewProcessor(log),
		coord:    retry.New(cfg.Retry, log),
		upstream: upstream,
		exports:  exports,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Fetch retrieves, filters, and pages one batch of history
func (s *Svc) Fetch(ctx context.Context, in domain.FetchInput) (domain.FetchResult, error) {
	params, err := buildParams(in)
	if err != nil {
		return domain.FetchResult{}, err
	}

	dir := paginate.Descending
	if in.Direction != "" {
		dir = paginate.Direction(in.Direction)
		if !dir.Valid() {
			return domain.FetchResult{}, perr.WithField(
				perr.Validationf("direction must be asc or desc, got %q", in.Direction), "direction")
		}
	}

	pageSize := s.pager.DefaultPageSize()
	if in.PageSize != 0 {
		pageSize, err = s.pager.ValidatePageSize(in.PageSize)
		if err != nil {
			return domain.FetchResult{}, perr.WithField(err, "page_size")
		}
	}

	info, err := s.Resolve(ctx, in.Collection)
	if err != nil {
		return domain.FetchResult{}, err
	}

	cur := s.pager.DecodeCursor(in.Cursor, info.ID)
	fp := s.pager.Params(cur, pageSize, dir, in.Search)

	totalBefore := 0
	if cur != nil {
		totalBefore = cur.FetchedCount
	}

	var batch []records.Record
	err = s.coord.Do(ctx, "fetch_records", func(ctx context.Context) error {
		var ferr error
		batch, ferr = s.upstream.FetchRecords(ctx, info.ID, fp)
		return ferr
	})
	if err != nil {
		return domain.FetchResult{}, err
	}

	processed := s.proc.Process(batch, params)

	res := domain.FetchResult{
		Collection: info,
		Count:      len(processed),
		PageSize:   fp.Limit,
		HasMore:    s.pager.ShouldContinue(len(batch), fp.Limit, totalBefore+len(batch)),
	}

	if res.HasMore && len(batch) > 0 {
		last := batch[len(batch)-1]
		next := s.pager.Next(cur, info.ID, dir, last.ID, last.Date, len(batch))
		token, encErr := next.Encode()
		if encErr != nil {
			return domain.FetchResult{}, perr.Wrap(encErr, perr.ErrorCodeUnknown, "encode next cursor")
		}
		res.Cursor = token
	}

	if s.exports.ShouldExport(len(processed)) {
		d, expErr := s.exports.Create(ctx, processed, exportdom.Meta{CollectionID: info.ID})
		if expErr != nil {
			return domain.FetchResult{}, expErr
		}
		res.Export = &d
		s.log.Info().Str("collection_id", info.ID).Int("items", d.ItemCount).
			Str("resource_id", d.ResourceID).Msg("page exported instead of inlined")
		return res, nil
	}

	res.Records = processed
	return res, nil
}

// Resolve maps an identifier to collection info, deciding the kind once
func (s *Svc) Resolve(ctx context.Context, identifier string) (domain.CollectionInfo, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return domain.CollectionInfo{}, perr.WithField(
			perr.Validationf("collection identifier must not be empty"), "collection")
	}

	var info domain.CollectionInfo
	err := s.coord.Do(ctx, "resolve_collection", func(ctx context.Context) error {
		var rerr error
		info, rerr = s.upstream.ResolveCollection(ctx, identifier)
		return rerr
	})
	if err != nil {
		return domain.CollectionInfo{}, err
	}
	if !info.Kind.Valid() {
		return domain.CollectionInfo{}, perr.Resourcef("upstream returned unknown collection kind %q", info.Kind)
	}
	return info, nil
}

// buildParams maps wire filter fields into records.Params and validates them
func buildParams(in domain.FetchInput) (records.Params, error) {
	p := records.Params{
		Search:        in.Search,
		Kinds:         in.Kinds,
		SenderIDs:     in.SenderIDs,
		MinViews:      in.MinViews,
		MaxViews:      in.MaxViews,
		DedupByIDOnly: in.DedupByIDOnly,
	}
	if in.From != "" {
		t, err := records.ParseTime(in.From)
		if err != nil {
			return records.Params{}, perr.WithField(perr.Validationf("unparseable from date %q", in.From), "from")
		}
		p.From = t
	}
	if in.To != "" {
		t, err := records.ParseTime(in.To)
		if err != nil {
			return records.Params{}, perr.WithField(perr.Validationf("unparseable to date %q", in.To), "to")
		}
		p.To = t
	}
	if err := p.Validate(); err != nil {
		return records.Params{}, err
	}
	return p, nil
}
