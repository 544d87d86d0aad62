package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/paulettemal/dashboardFin/internal/config"
	"github.com/paulettemal/dashboardFin/internal/dashboard"
	"github.com/paulettemal/dashboardFin/internal/model"
	"github.com/paulettemal/dashboardFin/internal/repository"
	"github.com/paulettemal/dashboardFin/internal/service"
	"go.uber.org/zap"
)

// DashboardView is the read side of the dashboard plus its activation hook.
type DashboardView interface {
	Location() string
	Snapshot() model.Forecast
	Indicators() []model.LocationIndicator
	Intervals() []model.ForecastInterval
	Series(variable string) (model.Series, error)
	Refresh(ctx context.Context) bool
}

type ForecastHandler struct {
	Dashboard       DashboardView
	ForecastService service.ForecastServiceInterface
	Logger          *zap.SugaredLogger
}

func NewForecastHandler(d DashboardView, svc service.ForecastServiceInterface) *ForecastHandler {
	return &ForecastHandler{
		Dashboard:       d,
		ForecastService: svc,
		Logger:          config.GetLogger(),
	}
}

func (h *ForecastHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data model.Response) {
	writeJSON(w, statusCode, data, h.Logger)
}

func writeJSON(w http.ResponseWriter, statusCode int, data any, logger *zap.SugaredLogger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil && logger != nil {
		logger.Errorw("could not encode json", "error", err)
	}
}

// allowMethod writes a 405 and returns false when r does not use method.
func (h *ForecastHandler) allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	h.writeJSONResponse(w, http.StatusMethodNotAllowed, model.ErrorResponse("Method not allowed"))
	return false
}

func success(data any) model.Response {
	return model.Response{Data: data, Message: "Success"}
}

// HandleForecast serves the dashboard snapshot, or an on-demand forecast when
// the location query parameter names another location.
func (h *ForecastHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodGet) {
		return
	}

	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" || strings.EqualFold(location, h.Dashboard.Location()) {
		h.writeJSONResponse(w, http.StatusOK, success(h.Dashboard.Snapshot()))
		return
	}

	forecast, err := h.ForecastService.GetForecast(r.Context(), location)
	if err != nil {
		h.Logger.Errorw("Error fetching weather data", "location", location, "error", err)
		if errors.Is(err, repository.ErrLocationNotFound) {
			h.writeJSONResponse(w, http.StatusNotFound, model.ErrorResponse("Location not found"))
			return
		}
		h.writeJSONResponse(w, http.StatusInternalServerError, model.ErrorResponse("Failed to fetch forecast data"))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, success(forecast))
}

func (h *ForecastHandler) HandleIndicators(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodGet) {
		return
	}
	h.writeJSONResponse(w, http.StatusOK, success(h.Dashboard.Indicators()))
}

func (h *ForecastHandler) HandleIntervals(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodGet) {
		return
	}
	h.writeJSONResponse(w, http.StatusOK, success(h.Dashboard.Intervals()))
}

// HandleSeries serves the chart data for the variable query parameter.
func (h *ForecastHandler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodGet) {
		return
	}

	variable := r.URL.Query().Get("variable")
	if variable == "" {
		h.writeJSONResponse(w, http.StatusBadRequest, model.ErrorResponse("Missing 'variable' query parameter"))
		return
	}

	series, err := h.Dashboard.Series(variable)
	if err != nil {
		msg := fmt.Sprintf("Unknown 'variable' %q, expected one of: %s", variable, strings.Join(dashboard.Variables, ", "))
		h.writeJSONResponse(w, http.StatusBadRequest, model.ErrorResponse(msg))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, success(series))
}

// HandleRefresh activates the dashboard view: it refetches the feed and
// returns the snapshot, which is the previous one when the fetch failed.
func (h *ForecastHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodPost) {
		return
	}

	message := "Success"
	if !h.Dashboard.Refresh(r.Context()) {
		message = "Refresh failed, previous forecast kept"
	}
	h.writeJSONResponse(w, http.StatusOK, model.Response{
		Data:    h.Dashboard.Snapshot(),
		Message: message,
	})
}
