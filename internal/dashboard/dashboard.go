// Package dashboard holds the forecast snapshot the dashboard widgets read.
package dashboard

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulettemal/dashboardFin/internal/model"
	"github.com/paulettemal/dashboardFin/internal/observability"
	"github.com/paulettemal/dashboardFin/internal/service"
	"go.uber.org/zap"
)

// Dashboard keeps the latest normalized forecast for one location. Readers
// always see a complete snapshot; a refresh swaps the whole snapshot or
// leaves the previous one in place.
type Dashboard struct {
	service  service.ForecastServiceInterface
	location string
	logger   *zap.SugaredLogger
	metrics  *observability.Metrics
	clock    clockwork.Clock

	refreshMu sync.Mutex
	snapshot  atomic.Pointer[model.Forecast]
	loaded    atomic.Bool
}

type Option func(*Dashboard)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(d *Dashboard) { d.logger = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dashboard) { d.metrics = m }
}

func WithClock(c clockwork.Clock) Option {
	return func(d *Dashboard) { d.clock = c }
}

// New creates a dashboard for location with an empty snapshot.
func New(svc service.ForecastServiceInterface, location string, opts ...Option) *Dashboard {
	d := &Dashboard{
		service:  svc,
		location: location,
		logger:   zap.NewNop().Sugar(),
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.snapshot.Store(emptyForecast(location))
	return d
}

func emptyForecast(location string) *model.Forecast {
	return &model.Forecast{
		Location:   location,
		Indicators: []model.LocationIndicator{},
		Intervals:  []model.ForecastInterval{},
	}
}

// Location is the location the dashboard shows.
func (d *Dashboard) Location() string {
	return d.location
}

// Refresh fetches the feed and replaces the snapshot. Failures are logged and
// the previous snapshot stays. It reports whether the snapshot was replaced.
func (d *Dashboard) Refresh(ctx context.Context) bool {
	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	forecast, err := d.service.GetForecast(ctx, d.location)
	now := d.clock.Now()
	if err != nil {
		d.metrics.ObserveRefresh(err, 0, 0)
		d.logger.Errorw("Error fetching weather data", "location", d.location, "error", err)
		return false
	}

	if forecast.Indicators == nil {
		forecast.Indicators = []model.LocationIndicator{}
	}
	if forecast.Intervals == nil {
		forecast.Intervals = []model.ForecastInterval{}
	}
	d.snapshot.Store(forecast)
	d.loaded.Store(true)
	d.metrics.ObserveRefresh(nil, float64(now.Unix()), len(forecast.Intervals))
	d.logger.Infow("Dashboard refreshed",
		"location", d.location,
		"intervals", len(forecast.Intervals),
		"cached", forecast.Cached,
	)
	return true
}

// Run refreshes once, then every interval until ctx is done. A zero interval
// refreshes only once.
func (d *Dashboard) Run(ctx context.Context, interval time.Duration) {
	d.Refresh(ctx)
	if interval <= 0 {
		return
	}

	ticker := d.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			d.Refresh(ctx)
		}
	}
}

// Snapshot returns a copy of the current forecast.
func (d *Dashboard) Snapshot() model.Forecast {
	f := *d.snapshot.Load()
	f.Indicators = slices.Clone(f.Indicators)
	f.Intervals = slices.Clone(f.Intervals)
	return f
}

func (d *Dashboard) Indicators() []model.LocationIndicator {
	return slices.Clone(d.snapshot.Load().Indicators)
}

func (d *Dashboard) Intervals() []model.ForecastInterval {
	return slices.Clone(d.snapshot.Load().Intervals)
}

// Series returns the chart data for variable over the current intervals.
func (d *Dashboard) Series(variable string) (model.Series, error) {
	return BuildSeries(d.snapshot.Load().Intervals, variable)
}

// CheckReadiness returns nil once a refresh has succeeded.
func (d *Dashboard) CheckReadiness(_ context.Context) error {
	if !d.loaded.Load() {
		return errors.New("forecast has not been loaded yet")
	}
	return nil
}
