package httpapi

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votegate/internal/platform/logger"
	"votegate/pkg/platform/httputil"
	"votegate/pkg/platform/middleware/request"
	"votegate/pkg/requestcontext"
	"votegate/pkg/testutil"
)

type probeRoutes struct{}

func (probeRoutes) Register(r chi.Router) {
	r.Get("/probe", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"request_id": requestcontext.RequestID(ctx),
			"client_ip":  requestcontext.ClientIP(ctx),
			"has_time":   !requestcontext.Now(ctx).IsZero(),
		})
	})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func TestRouterMiddlewareChain(t *testing.T) {
	router := NewRouter(Options{Logger: logger.Discard()}, probeRoutes{})

	t.Run("request context is populated", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/probe")
		req.Header.Set(request.HeaderRequestID, "req-123")
		req.Header.Set("X-Forwarded-For", "198.51.100.4")
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, "req-123", rr.Header().Get(request.HeaderRequestID))
		body := testutil.UnmarshalResponse[map[string]any](t, rr)
		assert.Equal(t, "req-123", (*body)["request_id"])
		assert.Equal(t, "198.51.100.4", (*body)["client_ip"])
		assert.Equal(t, true, (*body)["has_time"])
	})

	t.Run("panics become 500", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/boom"))
		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	})

	t.Run("unknown route", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/nope"))
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestHealth(t *testing.T) {
	t.Run("no backends", func(t *testing.T) {
		router := NewRouter(Options{Logger: logger.Discard()})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("failing backend degrades", func(t *testing.T) {
		router := NewRouter(Options{
			Logger: logger.Discard(),
			Checks: map[string]Check{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return errors.New("connection refused") },
			},
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		body := testutil.UnmarshalResponse[healthResponse](t, rr)
		require.Len(t, body.Checks, 2)
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "ok", body.Checks["postgres"])
		assert.Equal(t, "connection refused", body.Checks["redis"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# HELP up\n"))
	})

	router := NewRouter(Options{Logger: logger.Discard(), Metrics: metrics})
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(t, rr)
	assert.Contains(t, rr.Body.String(), "# HELP up")

	bare := NewRouter(Options{Logger: logger.Discard()})
	rr = testutil.DoRequest(bare, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}
