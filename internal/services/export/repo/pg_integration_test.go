//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"historian/internal/platform/store"
	"historian/internal/services/export/domain"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func TestPGRegistry_Integration_Lifecycle(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	s, err := store.Open(ctx, store.Config{
		PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	}, store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("store open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	if _, err := s.PG.Exec(ctx, `
		CREATE TABLE export_resources (
			resource_id TEXT PRIMARY KEY,
			uri         TEXT NOT NULL,
			format      TEXT NOT NULL,
			item_count  INT NOT NULL,
			byte_size   BIGINT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			expires_at  TIMESTAMPTZ NOT NULL
		)
	`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	reg := NewPG(s.PG)
	now := time.Now().UTC().Truncate(time.Microsecond)
	d := domain.ResourceDescriptor{
		ResourceID: domain.NewResourceID(),
		URI:        "historian://resources/export/x.ndjson",
		Format:     domain.FormatNDJSON,
		ItemCount:  150,
		ByteSize:   4096,
		CreatedAt:  now,
		ExpiresAt:  now.Add(24 * time.Hour),
	}
	d.URI = domain.URIFor(d.ResourceID)

	if err := reg.Put(ctx, d); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := reg.Get(ctx, d.ResourceID)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.URI != d.URI || got.ItemCount != 150 || got.ByteSize != 4096 {
		t.Fatalf("round trip = %+v", got)
	}
	if !got.CreatedAt.Equal(d.CreatedAt) || !got.ExpiresAt.Equal(d.ExpiresAt) {
		t.Fatalf("timestamps = %v / %v", got.CreatedAt, got.ExpiresAt)
	}

	// upsert replaces in place
	d.ItemCount = 200
	if err := reg.Put(ctx, d); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, _, _ = reg.Get(ctx, d.ResourceID)
	if got.ItemCount != 200 {
		t.Fatalf("upsert item count = %d", got.ItemCount)
	}

	all, err := reg.List(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("list: n=%d err=%v", len(all), err)
	}

	if err := reg.Delete(ctx, d.ResourceID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := reg.Get(ctx, d.ResourceID); ok {
		t.Fatalf("descriptor should be gone after delete")
	}

	// deleting a missing id is a no-op
	if err := reg.Delete(ctx, "export-0000000000000000"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}
