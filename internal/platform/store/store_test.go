package store

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

// TestOpen_NoBackends_ReturnsEmptyStore exercises the empty config path
func TestOpen_NoBackends_ReturnsEmptyStore(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s == nil {
		t.Fatalf("Open returned nil store")
	}
	if s.PG != nil {
		t.Fatalf("unexpected seam set PG=%T", s.PG)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close on empty store returned error: %v", err)
	}
}

// TestOpen_PGEnabled_BadURL_BubblesError covers the PG error path
func TestOpen_PGEnabled_BadURL_BubblesError(t *testing.T) {
	t.Parallel()

	cfg := Config{
		PG: PGConfig{
			Enabled:     true,
			URL:         "://bad", // parse error inside pg.Open
			MaxConns:    1,
			SlowQueryMs: 0,
			LogSQL:      false,
		},
	}

	s, err := Open(context.Background(), cfg)
	if err == nil {
		t.Fatalf("expected Open error for bad PG URL, got store=%#v", s)
	}
	if s != nil {
		t.Fatalf("expected nil store on error, got %#v", s)
	}
}

// TestOpen_OptionsApplied_NoPanicOnWithLogger exercises the WithLogger option path
func TestOpen_OptionsApplied_NoPanicOnWithLogger(t *testing.T) {
	t.Parallel()

	var zl zerolog.Logger

	s, err := Open(context.Background(), Config{}, WithLogger(zl))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s == nil {
		t.Fatalf("Open returned nil store")
	}
	if e := s.Close(context.Background()); e != nil {
		t.Fatalf("Close on empty store returned error: %v", e)
	}
}
