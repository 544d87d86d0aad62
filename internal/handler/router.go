package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers the forecast API behind limit, plus the unthrottled
// health, readiness and metrics endpoints. A nil limit registers the API as is.
func NewRouter(h *ForecastHandler, ready ReadinessChecker, limit func(http.Handler) http.Handler) *http.ServeMux {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	mux := http.NewServeMux()
	mux.Handle("/forecast", limit(http.HandlerFunc(h.HandleForecast)))
	mux.Handle("/forecast/indicators", limit(http.HandlerFunc(h.HandleIndicators)))
	mux.Handle("/forecast/intervals", limit(http.HandlerFunc(h.HandleIntervals)))
	mux.Handle("/forecast/series", limit(http.HandlerFunc(h.HandleSeries)))
	mux.Handle("/forecast/refresh", limit(http.HandlerFunc(h.HandleRefresh)))

	mux.HandleFunc("GET /healthz", HandleHealth)
	mux.HandleFunc("GET /readyz", HandleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}
