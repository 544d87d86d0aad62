package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulettemal/dashboardFin/internal/config"
	"github.com/paulettemal/dashboardFin/internal/model"
	"github.com/paulettemal/dashboardFin/internal/observability"
	"github.com/paulettemal/dashboardFin/internal/parser"
	"github.com/paulettemal/dashboardFin/internal/redis"
	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Custom error types
var (
	ErrLocationRequired = errors.New("location required")
	ErrLocationNotFound = errors.New("location not found")
	ErrAPIKeyMissing    = errors.New("API key missing")
	ErrExternalAPI      = errors.New("external API error")
)

// maxFeedBytes bounds the provider body; a 5 day / 3 hour XML feed is ~40KB.
const maxFeedBytes = 4 << 20

// LocationNotFoundError is returned when the provider does not know the location.
type LocationNotFoundError struct {
	Location string
	Message  string
}

func (e *LocationNotFoundError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrLocationNotFound) match.
func (e *LocationNotFoundError) Is(target error) bool {
	return target == ErrLocationNotFound
}

// CacheClient is the subset of the Redis API the repository uses.
type CacheClient interface {
	Get(ctx context.Context, key string) *redisv9.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd
}

// ForecastRepository defines the interface for forecast feed access
type ForecastRepository interface {
	GetForecastFeed(ctx context.Context, location string) (*model.FeedPayload, error)
}

// forecastRepository implements ForecastRepository
type forecastRepository struct {
	redisClient CacheClient
	httpClient  *http.Client
	cacheTTL    time.Duration
	metrics     *observability.Metrics
	logger      *zap.SugaredLogger
}

type Option func(*forecastRepository)

func WithHTTPClient(c *http.Client) Option {
	return func(r *forecastRepository) { r.httpClient = c }
}

func WithCache(c CacheClient) Option {
	return func(r *forecastRepository) { r.redisClient = c }
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(r *forecastRepository) { r.cacheTTL = ttl }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(r *forecastRepository) { r.metrics = m }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *forecastRepository) { r.logger = l }
}

// NewForecastRepository creates a repository backed by the shared Redis client
// and an HTTP client with the configured provider timeout, unless overridden.
func NewForecastRepository(opts ...Option) ForecastRepository {
	r := &forecastRepository{cacheTTL: config.GetCacheTTL()}
	for _, opt := range opts {
		opt(r)
	}
	if r.redisClient == nil {
		r.redisClient = redis.GetClient()
	}
	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: config.GetProviderTimeout()}
	}
	if r.logger == nil {
		r.logger = config.GetLogger()
	}
	return r
}

// GetForecastFeed returns the raw XML feed for location, checking cache first,
// then the provider.
func (r *forecastRepository) GetForecastFeed(ctx context.Context, location string) (*model.FeedPayload, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrLocationRequired
	}

	if body, ok := r.getFromCache(ctx, location); ok {
		return &model.FeedPayload{Location: location, Body: body, Cached: true}, nil
	}

	body, err := r.fetchFromExternalAPI(ctx, location)
	if err != nil {
		return nil, err
	}

	r.cacheFeed(ctx, location, body)

	return &model.FeedPayload{Location: location, Body: body}, nil
}

func cacheKey(location string) string {
	return "forecast:" + strings.ToLower(location)
}

// getFromCache reads a cached feed. Any cache failure is treated as a miss.
func (r *forecastRepository) getFromCache(ctx context.Context, location string) ([]byte, bool) {
	val, err := r.redisClient.Get(ctx, cacheKey(location)).Bytes()
	switch {
	case errors.Is(err, redisv9.Nil):
		r.metrics.ObserveCache("miss")
		return nil, false
	case err != nil:
		r.metrics.ObserveCache("error")
		r.logger.Warnw("Forecast cache read failed", "location", location, "error", err)
		return nil, false
	case len(val) == 0:
		r.metrics.ObserveCache("miss")
		return nil, false
	}
	r.metrics.ObserveCache("hit")
	return val, true
}

// fetchFromExternalAPI retrieves the XML forecast from OpenWeatherMap
func (r *forecastRepository) fetchFromExternalAPI(ctx context.Context, location string) ([]byte, error) {
	apiKey := config.GetOpenWeatherMapAPIKey()
	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	endpoint, err := forecastURL(config.GetOpenWeatherForecastUrl(), location, apiKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrExternalAPI, err)
	}
	if len(body) > maxFeedBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrExternalAPI, maxFeedBytes)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return nil, &LocationNotFoundError{Location: location, Message: providerMessage(body, "city not found")}
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrExternalAPI, resp.StatusCode, providerMessage(body, http.StatusText(resp.StatusCode)))
	}

	// Only a readable feed may reach the cache.
	if _, err := parser.Parse(bytes.NewReader(body)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}

	return body, nil
}

func forecastURL(base, location, apiKey string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("q", location)
	q.Set("mode", "xml")
	q.Set("appid", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// providerMessage extracts the "message" field of a provider error body,
// which comes as XML in xml mode and as JSON otherwise.
func providerMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `xml:"message" json:"message"`
	}
	trimmed := bytes.TrimSpace(body)
	switch {
	case bytes.HasPrefix(trimmed, []byte("<")):
		_ = xml.Unmarshal(trimmed, &payload)
	case bytes.HasPrefix(trimmed, []byte("{")):
		_ = json.Unmarshal(trimmed, &payload)
	}
	if payload.Message == "" {
		return fallback
	}
	return payload.Message
}

// cacheFeed stores the raw feed in Redis cache
func (r *forecastRepository) cacheFeed(ctx context.Context, location string, body []byte) {
	if r.cacheTTL <= 0 {
		return
	}
	if err := r.redisClient.Set(ctx, cacheKey(location), body, r.cacheTTL).Err(); err != nil {
		r.logger.Warnw("Forecast cache write failed", "location", location, "error", err)
	}
}
