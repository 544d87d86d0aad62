package service

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulettemal/dashboardFin/internal/model"
	"github.com/paulettemal/dashboardFin/internal/observability"
	"github.com/paulettemal/dashboardFin/internal/parser"
	"github.com/paulettemal/dashboardFin/internal/repository"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock repository for testing
type mockForecastRepository struct {
	err     error
	payload *model.FeedPayload
	calls   []string
}

func (m *mockForecastRepository) GetForecastFeed(ctx context.Context, location string) (*model.FeedPayload, error) {
	m.calls = append(m.calls, location)
	if m.err != nil {
		return nil, m.err
	}
	return m.payload, nil
}

const oneBlockFeed = `<weatherdata>
	<location><name>Guayaquil</name><location latitude="-2.1962" longitude="-79.8862" altitude="0"/></location>
	<forecast>
		<time from="2024-01-01T03:00:00" to="2024-01-01T06:00:00"><temperature value="300.15"/></time>
	</forecast>
</weatherdata>`

func TestForecastService_GetForecast(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 2, 30, 0, 0, time.UTC))
	metrics, _ := observability.NewMetricsForTesting()
	repo := &mockForecastRepository{payload: &model.FeedPayload{
		Location: "Guayaquil",
		Body:     []byte(oneBlockFeed),
		Cached:   true,
	}}
	svc := &ForecastService{ForecastRepo: repo, Metrics: metrics, Clock: clock}

	forecast, err := svc.GetForecast(context.Background(), "Guayaquil")
	require.NoError(t, err)

	assert.Equal(t, []string{"Guayaquil"}, repo.calls)
	assert.Equal(t, "Guayaquil", forecast.Location)
	assert.True(t, forecast.Cached)
	assert.Equal(t, clock.Now(), forecast.FetchedAt)
	require.Len(t, forecast.Indicators, 4)
	assert.Equal(t, "-79.8862", forecast.Indicators[2].Value)
	require.Len(t, forecast.Intervals, 1)
	assert.Equal(t, "27.00", forecast.Intervals[0].Temperature)
	assert.Equal(t, "N/A", forecast.Intervals[0].TempMin)
	assert.Equal(t, "N/A", forecast.Intervals[0].TempMax)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FeedRequests.WithLabelValues("success")))
}

func TestForecastService_GetForecast_Errors(t *testing.T) {
	tests := []struct {
		name    string
		repo    *mockForecastRepository
		wantErr error
	}{
		{
			name:    "repository error",
			repo:    &mockForecastRepository{err: repository.ErrLocationNotFound},
			wantErr: repository.ErrLocationNotFound,
		},
		{
			name:    "malformed feed",
			repo:    &mockForecastRepository{payload: &model.FeedPayload{Body: []byte("<weatherdata><forecast>")}},
			wantErr: nil,
		},
		{
			name:    "empty feed",
			repo:    &mockForecastRepository{payload: &model.FeedPayload{Body: nil}},
			wantErr: parser.ErrEmptyDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics, _ := observability.NewMetricsForTesting()
			svc := &ForecastService{ForecastRepo: tt.repo, Metrics: metrics}

			forecast, err := svc.GetForecast(context.Background(), "Guayaquil")
			require.Error(t, err)
			assert.Nil(t, forecast)
			assert.ErrorIs(t, err, ErrForecastService)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FeedRequests.WithLabelValues("error")))
		})
	}
}

func TestNewForecastService(t *testing.T) {
	repo := &mockForecastRepository{}
	svc := NewForecastService(repo, nil)
	assert.Same(t, repo, svc.ForecastRepo.(*mockForecastRepository))
	assert.NotNil(t, svc.Clock)

	// a nil repo falls back to the Redis-backed default
	assert.NotNil(t, NewForecastService(nil, nil).ForecastRepo)
}

var _ ForecastServiceInterface = (*ForecastService)(nil)
