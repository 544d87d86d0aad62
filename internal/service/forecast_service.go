package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulettemal/dashboardFin/internal/model"
	"github.com/paulettemal/dashboardFin/internal/normalizer"
	"github.com/paulettemal/dashboardFin/internal/observability"
	"github.com/paulettemal/dashboardFin/internal/parser"
	"github.com/paulettemal/dashboardFin/internal/repository"
)

var ErrForecastService = errors.New("forecast service error")

// ForecastServiceInterface fetches and normalizes the forecast of a location.
type ForecastServiceInterface interface {
	GetForecast(ctx context.Context, location string) (*model.Forecast, error)
}

type ForecastService struct {
	ForecastRepo repository.ForecastRepository
	Metrics      *observability.Metrics
	Clock        clockwork.Clock
}

// NewForecastService wires a service to repo, or to the default Redis-backed
// repository when repo is nil.
func NewForecastService(repo repository.ForecastRepository, metrics *observability.Metrics) *ForecastService {
	if repo == nil {
		repo = repository.NewForecastRepository(repository.WithMetrics(metrics))
	}
	return &ForecastService{
		ForecastRepo: repo,
		Metrics:      metrics,
		Clock:        clockwork.NewRealClock(),
	}
}

// GetForecast fetches the raw feed, parses it and normalizes it.
func (s *ForecastService) GetForecast(ctx context.Context, location string) (*model.Forecast, error) {
	start := s.clock().Now()
	forecast, err := s.getForecast(ctx, location)
	s.Metrics.ObserveFeedRequest(err, s.clock().Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrForecastService, err)
	}
	s.Metrics.ObserveIntervals(len(forecast.Intervals))
	return forecast, nil
}

func (s *ForecastService) getForecast(ctx context.Context, location string) (*model.Forecast, error) {
	payload, err := s.ForecastRepo.GetForecastFeed(ctx, location)
	if err != nil {
		return nil, err
	}

	doc, err := parser.Parse(bytes.NewReader(payload.Body))
	if err != nil {
		return nil, err
	}

	indicators, intervals := normalizer.Normalize(doc)
	return &model.Forecast{
		Location:   payload.Location,
		Indicators: indicators,
		Intervals:  intervals,
		Cached:     payload.Cached,
		FetchedAt:  s.clock().Now().UTC().Truncate(time.Second),
	}, nil
}

func (s *ForecastService) clock() clockwork.Clock {
	if s.Clock == nil {
		return clockwork.NewRealClock()
	}
	return s.Clock
}
