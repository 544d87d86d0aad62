package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultForecastURL = "https://api.openweathermap.org/data/2.5/forecast"
	defaultLocation    = "Guayaquil"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func initConfig() {
	once.Do(func() {
		setDefaults()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Warnw("Project root not found, using defaults", "error", err)
			return
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			if err = viper.MergeInConfig(); err != nil {
				GetLogger().Errorw("Error merging test config file", "error", err)
			}
		}
	})
}

func setDefaults() {
	viper.SetDefault("openweathermap.forecast_url", defaultForecastURL)
	viper.SetDefault("openweathermap.location", defaultLocation)
	viper.SetDefault("openweathermap.timeout", "10s")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("cache.expiration", "10m")
	viper.SetDefault("dashboard.refresh_interval", "0s")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdown_timeout", "10s")
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// getDuration parses the duration stored under key, falling back when unset,
// malformed or negative.
func getDuration(key string, fallback time.Duration) time.Duration {
	initConfig()
	raw := viper.GetString(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		GetLogger().Warnw("Invalid duration in config, using fallback", "key", key, "value", raw, "fallback", fallback)
		return fallback
	}
	return d
}

// GetOpenWeatherForecastUrl returns the XML forecast endpoint of the provider.
func GetOpenWeatherForecastUrl() string {
	initConfig()
	return viper.GetString("openweathermap.forecast_url")
}

// GetOpenWeatherMapAPIKey reads the provider credential from the environment,
// loading a .env file first when one exists.
func GetOpenWeatherMapAPIKey() string {
	_ = godotenv.Load()
	return os.Getenv("OPENWEATHERMAP_API_KEY")
}

// GetDefaultLocation is the location the dashboard shows when none is requested.
func GetDefaultLocation() string {
	initConfig()
	location := strings.TrimSpace(viper.GetString("openweathermap.location"))
	if location == "" {
		return defaultLocation
	}
	return location
}

func GetProviderTimeout() time.Duration {
	return getDuration("openweathermap.timeout", 10*time.Second)
}

func GetRedisAddr() string {
	initConfig()
	return viper.GetString("redis.addr")
}

func GetServerPort() string {
	initConfig()
	return viper.GetString("server.port")
}

// GetCacheTTL returns the cache expiration as a time.Duration. Defaults to 10m.
func GetCacheTTL() time.Duration {
	return getDuration("cache.expiration", 10*time.Minute)
}

// GetRefreshInterval returns how often the dashboard refetches the feed.
// Zero means the feed is fetched only when the dashboard is activated.
func GetRefreshInterval() time.Duration {
	return getDuration("dashboard.refresh_interval", 0)
}

// GetServerTimeoutDuration returns the server.<key> duration, with a fallback.
func GetServerTimeoutDuration(key string, fallback time.Duration) time.Duration {
	return getDuration("server."+key, fallback)
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}

// GetRateLimiterCleanupTimeout returns the rate limiter cleanup timeout as a time.Duration.
// Defaults to 3m if not set or invalid.
func GetRateLimiterCleanupTimeout() time.Duration {
	d := getDuration("rate_limiter.cleanup_timeout", 3*time.Minute)
	if d == 0 {
		return 3 * time.Minute
	}
	return d
}

// GetGlobalRateLimiterConfig returns the per-minute rate and burst for the global rate limiter.
func GetGlobalRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.global.rate")
	if rate <= 0 {
		rate = 10
	}
	burst = viper.GetInt("rate_limiter.global.burst")
	if burst <= 0 {
		burst = 10
	}
	return
}

// GetParamRateLimiterConfig returns the per-minute rate and burst for the per-param rate limiter.
func GetParamRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.param.rate")
	if rate <= 0 {
		rate = 2
	}
	burst = viper.GetInt("rate_limiter.param.burst")
	if burst <= 0 {
		burst = 2
	}
	return
}

// GetRateLimiterTrustForwardedFor reports whether clients are keyed by the
// X-Forwarded-For header. Defaults to false.
func GetRateLimiterTrustForwardedFor() bool {
	initConfig()
	return viper.GetBool("rate_limiter.trust_forwarded_for")
}
