// Package http provides http transport for export resources
package http

import (
	"encoding/json"
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"historian/internal/modkit/httpkit"
	perr "historian/internal/platform/errors"
	phttp "historian/internal/platform/net/http"
	"historian/internal/services/export/domain"
)

// Register mounts export endpoints on the given router
func Register(r httpkit.Router, mgr domain.ManagerPort) {
	h := &handlers{mgr: mgr}
	httpkit.Get(r, "/", h.list)
	r.Get("/{id}", h.stream)
	httpkit.Delete(r, "/{id}", h.remove)
}

type handlers struct{ mgr domain.ManagerPort }

func (h *handlers) list(r *stdhttp.Request) (any, error) {
	return h.mgr.List(r.Context())
}

// stream writes the resource body as NDJSON, bypassing the JSON envelope
func (h *handlers) stream(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	id := chi.URLParam(r, "id")
	_, it, err := h.mgr.Read(r.Context(), id)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	defer it.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(stdhttp.StatusOK)

	enc := json.NewEncoder(w)
	for {
		rec, ok := it.Next()
		if !ok {
			break
		}
		if err := enc.Encode(rec); err != nil {
			// client went away, nothing useful left to do
			return
		}
	}
}

func (h *handlers) remove(r *stdhttp.Request) (any, error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		return nil, perr.InvalidArgf("missing export id")
	}
	if err := h.mgr.Remove(r.Context(), id); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}
