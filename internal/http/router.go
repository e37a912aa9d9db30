// Package httpapi assembles the service router: shared middleware, health and
// metrics endpoints, and the routes each module registers.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"votegate/pkg/platform/httputil"
	"votegate/pkg/platform/middleware/metadata"
	"votegate/pkg/platform/middleware/request"
	"votegate/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// Registrar mounts a module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// Check probes one backing service.
type Check func(ctx context.Context) error

type Options struct {
	Logger  *slog.Logger
	Metrics http.Handler
	// Checks are run by /health, keyed by backend name.
	Checks map[string]Check
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewRouter wires the middleware chain and mounts every registrar on the root router.
func NewRouter(opts Options, registrars ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(opts.Logger))
	r.Use(request.Logger(opts.Logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/health", health(opts.Checks))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	for _, reg := range registrars {
		reg.Register(r)
	}
	return r
}

// health reports 200 while every check passes and 503 otherwise.
func health(checks map[string]Check) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		if len(names) > 0 {
			resp.Checks = make(map[string]string, len(names))
		}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				resp.Status = "degraded"
				resp.Checks[name] = err.Error()
				continue
			}
			resp.Checks[name] = "ok"
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	}
}
