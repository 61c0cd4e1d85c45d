// Package http provides http transport for history retrieval
package http

import (
	stdhttp "net/http"

	"historian/internal/modkit/httpkit"
	phttp "historian/internal/platform/net/http"
	"historian/internal/services/history/domain"
	svc "historian/internal/services/history/service"
)

// Register mounts history endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	r.Post("/fetch", phttp.JSONHandler(h.fetch))
}

// RegisterResolve mounts the collection resolution endpoint
// It lives under its own prefix so the route reads /collections/resolve
func RegisterResolve(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	r.Post("/resolve", phttp.JSONHandler(h.resolve))
}

type handlers struct{ svc svc.Service }

func (h *handlers) fetch(r *stdhttp.Request, in domain.FetchInput) (any, error) {
	return h.svc.Fetch(r.Context(), in)
}

func (h *handlers) resolve(r *stdhttp.Request, in domain.ResolveInput) (any, error) {
	return h.svc.Resolve(r.Context(), in.Identifier)
}
