package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/paulettemal/dashboardFin/internal/config"
	"github.com/paulettemal/dashboardFin/internal/model"
	"golang.org/x/time/rate"
)

// DefaultParamKey is the query parameter used for per-param rate limiting.
const DefaultParamKey = "location"

// visitor holds the rate limiter and last seen time for one bucket.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limits are per-minute request rates and their bursts.
type Limits struct {
	GlobalPerMinute float64
	GlobalBurst     int
	ParamPerMinute  float64
	ParamBurst      int
	// TrustForwardedFor keys clients by X-Forwarded-For. Enable only behind
	// a proxy that overwrites the header.
	TrustForwardedFor bool
}

// LimitsFromConfig reads the limits from the rate_limiter config section.
func LimitsFromConfig() Limits {
	globalRate, globalBurst := config.GetGlobalRateLimiterConfig()
	paramRate, paramBurst := config.GetParamRateLimiterConfig()
	return Limits{
		GlobalPerMinute: globalRate,
		GlobalBurst:     globalBurst,
		ParamPerMinute:  paramRate,
		ParamBurst:      paramBurst,

		TrustForwardedFor: config.GetRateLimiterTrustForwardedFor(),
	}
}

// RateLimiter enforces a per-IP limit and a per-IP-and-param limit.
type RateLimiter struct {
	limits   Limits
	paramKey string

	muGlobal sync.Mutex
	// globalVisitors maps IP addresses to their visitor.
	globalVisitors map[string]*visitor
	muParam        sync.Mutex
	// paramVisitors maps IP -> param value -> visitor.
	paramVisitors map[string]map[string]*visitor
}

func NewRateLimiter(limits Limits, paramKey string) *RateLimiter {
	if paramKey == "" {
		paramKey = DefaultParamKey
	}
	return &RateLimiter{
		limits:         limits,
		paramKey:       paramKey,
		globalVisitors: make(map[string]*visitor),
		paramVisitors:  make(map[string]map[string]*visitor),
	}
}

func perMinute(n float64) rate.Limit {
	return rate.Limit(n / 60.0)
}

// getGlobalLimiter returns the limiter for ip, creating one if it does not exist.
func (rl *RateLimiter) getGlobalLimiter(ip string) *rate.Limiter {
	rl.muGlobal.Lock()
	defer rl.muGlobal.Unlock()
	v, exists := rl.globalVisitors[ip]
	if !exists {
		limiter := rate.NewLimiter(perMinute(rl.limits.GlobalPerMinute), rl.limits.GlobalBurst)
		rl.globalVisitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// getParamLimiter returns the limiter for ip and param, creating one if it does not exist.
func (rl *RateLimiter) getParamLimiter(ip, param string) *rate.Limiter {
	rl.muParam.Lock()
	defer rl.muParam.Unlock()
	if _, ok := rl.paramVisitors[ip]; !ok {
		rl.paramVisitors[ip] = make(map[string]*visitor)
	}
	v, exists := rl.paramVisitors[ip][param]
	if !exists {
		limiter := rate.NewLimiter(perMinute(rl.limits.ParamPerMinute), rl.limits.ParamBurst)
		rl.paramVisitors[ip][param] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Cleanup removes visitors not seen for longer than idle.
func (rl *RateLimiter) Cleanup(idle time.Duration) {
	rl.muGlobal.Lock()
	for ip, v := range rl.globalVisitors {
		if time.Since(v.lastSeen) > idle {
			delete(rl.globalVisitors, ip)
		}
	}
	rl.muGlobal.Unlock()

	rl.muParam.Lock()
	for ip, paramMap := range rl.paramVisitors {
		for param, v := range paramMap {
			if time.Since(v.lastSeen) > idle {
				delete(paramMap, param)
			}
		}
		if len(paramMap) == 0 {
			delete(rl.paramVisitors, ip)
		}
	}
	rl.muParam.Unlock()
}

// StartCleanup purges idle visitors every minute until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, idle time.Duration) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup(idle)
			}
		}
	}()
}

func (rl *RateLimiter) visitorCount() (global, param int) {
	rl.muGlobal.Lock()
	global = len(rl.globalVisitors)
	rl.muGlobal.Unlock()
	rl.muParam.Lock()
	param = len(rl.paramVisitors)
	rl.muParam.Unlock()
	return
}

// getIP extracts the client's IP address from the HTTP request. The first
// X-Forwarded-For entry is used only when trustForwarded is set.
func getIP(r *http.Request, trustForwarded bool) string {
	if xff := r.Header.Get("X-Forwarded-For"); trustForwarded && xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr // fallback
	}
	return ip
}

// Middleware enforces the global limit on every request and the per-parameter
// limit on requests that carry the parameter. Exceeding either answers 429
// with a JSON error envelope.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getIP(r, rl.limits.TrustForwardedFor)
		param := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(rl.paramKey)))

		if !rl.getGlobalLimiter(ip).Allow() {
			tooManyRequests(w,
				fmt.Sprintf("Rate limit exceeded: max %g requests per minute per user/IP", rl.limits.GlobalPerMinute),
				"Too Many Requests (global limit)")
			return
		}
		if param != "" && !rl.getParamLimiter(ip, param).Allow() {
			tooManyRequests(w,
				fmt.Sprintf("Rate limit exceeded: max %g requests per minute per unique %s per user/IP", rl.limits.ParamPerMinute, rl.paramKey),
				"Too Many Requests (per-param limit)")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tooManyRequests(w http.ResponseWriter, errMsg, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(model.Response{
		Error:   &errMsg,
		Message: message,
	})
}
