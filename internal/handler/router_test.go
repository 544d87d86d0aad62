package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type readiness struct{ err error }

func (r readiness) CheckReadiness(context.Context) error { return r.err }

func TestRouter_HealthAndReadiness(t *testing.T) {
	h := newLoadedHandler(t, &mockForecastService{forecast: sampleForecast()})

	tests := []struct {
		name   string
		ready  ReadinessChecker
		path   string
		status int
		body   string
	}{
		{name: "healthz", ready: readiness{}, path: "/healthz", status: http.StatusOK, body: `"healthy"`},
		{name: "ready", ready: readiness{}, path: "/readyz", status: http.StatusOK, body: `"ready"`},
		{name: "not ready", ready: readiness{err: errors.New("forecast has not been loaded yet")}, path: "/readyz", status: http.StatusServiceUnavailable, body: "not been loaded"},
		{name: "metrics", ready: readiness{}, path: "/metrics", status: http.StatusOK, body: "go_goroutines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := NewRouter(h, tt.ready, nil)
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.body)
		})
	}
}

func TestRouter_ForecastRoutesGoThroughLimiter(t *testing.T) {
	h := newLoadedHandler(t, &mockForecastService{forecast: sampleForecast()})
	limited := 0
	limit := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limited++
			next.ServeHTTP(w, r)
		})
	}
	mux := NewRouter(h, readiness{}, limit)

	for _, path := range []string{"/forecast", "/forecast/indicators", "/forecast/intervals", "/forecast/series?variable=humidity"} {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, 4, limited)
}
