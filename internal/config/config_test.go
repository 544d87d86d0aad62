package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestGetOpenWeatherMapAPIKey(t *testing.T) {
	t.Setenv("OPENWEATHERMAP_API_KEY", "test_api_key_123")
	assert.Equal(t, "test_api_key_123", GetOpenWeatherMapAPIKey())

	os.Unsetenv("OPENWEATHERMAP_API_KEY")
	assert.Equal(t, "", GetOpenWeatherMapAPIKey())
}

func TestGetRedisAddr(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	assert.Equal(t, "redis.internal:6380", GetRedisAddr())

	os.Unsetenv("REDIS_ADDR")
	// config_test.yaml points tests at the miniredis port.
	assert.Equal(t, "localhost:16379", GetRedisAddr())
}

func TestGetOpenWeatherForecastUrl(t *testing.T) {
	assert.Equal(t, "https://api.openweathermap.org/data/2.5/forecast", GetOpenWeatherForecastUrl())
}

func TestGetDefaultLocation(t *testing.T) {
	assert.Equal(t, "Guayaquil", GetDefaultLocation())

	t.Setenv("OPENWEATHERMAP_LOCATION", "   ")
	assert.Equal(t, "Guayaquil", GetDefaultLocation())
}

func TestGetServerPort(t *testing.T) {
	assert.Equal(t, "8080", GetServerPort())
}

func TestGetCacheTTL(t *testing.T) {
	assert.Equal(t, 10*time.Minute, GetCacheTTL())
}

func TestGetServerTimeoutDuration(t *testing.T) {
	assert.Equal(t, 15*time.Second, GetServerTimeoutDuration("read_header_timeout", time.Second))
	assert.Equal(t, 7*time.Second, GetServerTimeoutDuration("missing_timeout", 7*time.Second))
}

func TestGetRefreshInterval(t *testing.T) {
	assert.Equal(t, time.Duration(0), GetRefreshInterval())

	t.Setenv("DASHBOARD_REFRESH_INTERVAL", "30m")
	assert.Equal(t, 30*time.Minute, GetRefreshInterval())

	t.Setenv("DASHBOARD_REFRESH_INTERVAL", "soon")
	assert.Equal(t, time.Duration(0), GetRefreshInterval())
}

func TestRateLimiterConfig(t *testing.T) {
	rate, burst := GetGlobalRateLimiterConfig()
	assert.Equal(t, 10.0, rate)
	assert.Equal(t, 10, burst)

	rate, burst = GetParamRateLimiterConfig()
	assert.Equal(t, 2.0, rate)
	assert.Equal(t, 2, burst)

	assert.Equal(t, 3*time.Minute, GetRateLimiterCleanupTimeout())
}

func TestGetRateLimiterTrustForwardedFor(t *testing.T) {
	assert.False(t, GetRateLimiterTrustForwardedFor())

	t.Setenv("RATE_LIMITER_TRUST_FORWARDED_FOR", "true")
	assert.True(t, GetRateLimiterTrustForwardedFor())
}

func TestRateLimiterConfig_InvalidValuesFallBack(t *testing.T) {
	viper.Set("rate_limiter.global.rate", -1)
	viper.Set("rate_limiter.param.burst", 0)
	defer func() {
		viper.Set("rate_limiter.global.rate", 10)
		viper.Set("rate_limiter.param.burst", 2)
	}()

	rate, _ := GetGlobalRateLimiterConfig()
	assert.Equal(t, 10.0, rate)
	_, burst := GetParamRateLimiterConfig()
	assert.Equal(t, 2, burst)
}

func TestReloadConfigForTest(t *testing.T) {
	assert.NotPanics(t, ReloadConfigForTest)
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger())
	assert.Same(t, GetLogger(), GetLogger())
}
