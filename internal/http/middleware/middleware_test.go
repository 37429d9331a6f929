package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tuanvumaihuynh/stock-manager/internal/http/middleware"
	"github.com/tuanvumaihuynh/stock-manager/pkg/correlationid"
)

func TestRecoverer(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer(slog.New(slog.DiscardHandler)))
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"code":"INTERNAL_SERVER_ERROR","message":"an unknown error occurred"}`, resp.Body.String())
}

func TestCorrelationID(t *testing.T) {
	var seen string
	r := chi.NewRouter()
	r.Use(middleware.CorrelationID())
	r.Get("/", func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = correlationid.FromContext(r.Context())
	})

	t.Run("Should reuse request header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(correlationid.Header, "abc")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, "abc", seen)
		assert.Equal(t, "abc", resp.Header().Get(correlationid.Header))
	})

	t.Run("Should replace oversized header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(correlationid.Header, strings.Repeat("x", 500))
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.NotEmpty(t, seen)
		assert.Less(t, len(seen), 500)
		assert.Equal(t, seen, resp.Header().Get(correlationid.Header))
	})
}

func TestTrace(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	r := chi.NewRouter()
	r.Use(middleware.Trace(tracer), middleware.CorrelationID())
	r.Get("/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	r.Get("/healthz", func(http.ResponseWriter, *http.Request) {})

	for _, path := range []string{"/products/abc", "/boom", "/healthz"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "GET /products/{id}", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "/products/{id}", attrs["http.route"])
	assert.Equal(t, "404", attrs["http.response.status_code"])
	assert.NotEmpty(t, attrs["correlation_id"])

	assert.Equal(t, "GET /boom", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
