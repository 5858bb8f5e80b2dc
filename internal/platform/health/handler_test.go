package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deletionguard/pkg/platform/clock"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandleStatus(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	h := New("test", WithClock(clk))
	clk.Advance(90 * time.Second)

	rec := serve(h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var body StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "test", body.Environment)
	assert.Equal(t, int64(90), body.UptimeSeconds)
}

func TestHandleReadiness(t *testing.T) {
	h := New("test")
	h.RegisterCheck("memory", func(context.Context) error { return nil })

	rec := serve(h, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	h.RegisterCheck("redis", func(context.Context) error { return errors.New("connection refused") })
	rec = serve(h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "up", body.Checks["memory"])
	assert.Equal(t, "down: connection refused", body.Checks["redis"])
}

func TestHandleReadiness_CheckTimeout(t *testing.T) {
	h := New("test", WithCheckTimeout(10*time.Millisecond))
	h.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, "/health/ready").Code)
}

func TestHandleLiveness(t *testing.T) {
	assert.Equal(t, http.StatusOK, serve(New("test"), "/health/live").Code)
}
