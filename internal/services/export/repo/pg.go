package repo

import (
	"context"

	perr "historian/internal/platform/errors"

	"historian/internal/modkit/repokit"
	"historian/internal/services/export/domain"
)

// PG is a postgres-backed registry so descriptors survive restarts and the
// reaper can act across processes
type PG struct{ q repokit.Queryer }

// NewPG binds a postgres registry to the given queryer
func NewPG(q repokit.Queryer) *PG {
	if q == nil {
		panic("export.PG requires a non nil queryer")
	}
	return &PG{q: q}
}

// NewPGBinder creates a Postgres registry binder
func NewPGBinder() repokit.Binder[Registry] {
	return repokit.BindFunc[Registry](func(q repokit.Queryer) Registry { return NewPG(q) })
}

// Put stores or replaces a descriptor
func (r *PG) Put(ctx context.Context, d domain.ResourceDescriptor) error {
	const sql = `
insert into export_resources (resource_id, uri, format, item_count, byte_size, created_at, expires_at)
values ($1, $2, $3, $4, $5, $6, $7)
on conflict (resource_id) do update
set uri = excluded.uri, format = excluded.format, item_count = excluded.item_count,
byte_size = excluded.byte_size, created_at = excluded.created_at, expires_at = excluded.expires_at
`
	_, err := r.q.Exec(ctx, sql, d.ResourceID, d.URI, d.Format, d.ItemCount, d.ByteSize, d.CreatedAt, d.ExpiresAt)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "export registry put")
	}
	return nil
}

// Get returns a descriptor by id
func (r *PG) Get(ctx context.Context, id string) (domain.ResourceDescriptor, bool, error) {
	const sql = `
select resource_id, uri, format, item_count, byte_size, created_at, expires_at
from export_resources where resource_id = $1
`
	rows, err := r.q.Query(ctx, sql, id)
	if err != nil {
		return domain.ResourceDescriptor{}, false, perr.Wrap(err, perr.ErrorCodeDB, "export registry get")
	}
	defer rows.Close()
	if !rows.Next() {
		return domain.ResourceDescriptor{}, false, rows.Err()
	}
	var d domain.ResourceDescriptor
	if err := rows.Scan(&d.ResourceID, &d.URI, &d.Format, &d.ItemCount, &d.ByteSize, &d.CreatedAt, &d.ExpiresAt); err != nil {
		return domain.ResourceDescriptor{}, false, perr.Wrap(err, perr.ErrorCodeDB, "export registry scan")
	}
	return d, true, rows.Err()
}

// List returns all descriptors, newest first
func (r *PG) List(ctx context.Context) ([]domain.ResourceDescriptor, error) {
	const sql = `
select resource_id, uri, format, item_count, byte_size, created_at, expires_at
from export_resources order by created_at desc
`
	rows, err := r.q.Query(ctx, sql)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "export registry list")
	}
	defer rows.Close()
	var out []domain.ResourceDescriptor
	for rows.Next() {
		var d domain.ResourceDescriptor
		if err := rows.Scan(&d.ResourceID, &d.URI, &d.Format, &d.ItemCount, &d.ByteSize, &d.CreatedAt, &d.ExpiresAt); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "export registry scan")
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Delete removes a descriptor, missing ids are a no-op
func (r *PG) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `delete from export_resources where resource_id = $1`, id); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "export registry delete")
	}
	return nil
}
