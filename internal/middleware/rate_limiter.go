package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"weathertrack/internal/config"
	"weathertrack/internal/model"
)

// visitor holds the rate limiter and last seen time for one bucket key.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a global per-IP limit plus a tighter limit per
// (IP, query-parameter value) pair, so one client cannot hammer the upstream
// weather API for a single place.
type RateLimiter struct {
	paramKey    string
	globalRate  float64
	globalBurst int
	paramRate   float64
	paramBurst  int
	staleAfter  time.Duration

	muGlobal       sync.Mutex
	globalVisitors map[string]*visitor // key: ip
	muParam        sync.Mutex
	paramVisitors  map[string]map[string]*visitor // key: ip -> param value
}

// NewRateLimiter builds a limiter from config. paramKey is the query
// parameter whose value gets its own bucket (the search text).
func NewRateLimiter(paramKey string) *RateLimiter {
	globalRate, globalBurst := config.GetGlobalRateLimiterConfig()
	paramRate, paramBurst := config.GetParamRateLimiterConfig()
	return &RateLimiter{
		paramKey:       paramKey,
		globalRate:     globalRate,
		globalBurst:    globalBurst,
		paramRate:      paramRate,
		paramBurst:     paramBurst,
		staleAfter:     config.GetRateLimiterCleanupTimeout(),
		globalVisitors: make(map[string]*visitor),
		paramVisitors:  make(map[string]map[string]*visitor),
	}
}

func (rl *RateLimiter) globalLimiter(ip string) *rate.Limiter {
	rl.muGlobal.Lock()
	defer rl.muGlobal.Unlock()
	v, exists := rl.globalVisitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(rl.globalRate/60.0), rl.globalBurst)
		rl.globalVisitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) paramLimiter(ip, param string) *rate.Limiter {
	rl.muParam.Lock()
	defer rl.muParam.Unlock()
	if _, ok := rl.paramVisitors[ip]; !ok {
		rl.paramVisitors[ip] = make(map[string]*visitor)
	}
	v, exists := rl.paramVisitors[ip][param]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(rl.paramRate/60.0), rl.paramBurst)
		rl.paramVisitors[ip][param] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// StartCleanup launches a goroutine that drops buckets not seen for
// staleAfter, checking once a minute.
func (rl *RateLimiter) StartCleanup() {
	go func() {
		for {
			time.Sleep(time.Minute)
			now := time.Now()

			rl.muGlobal.Lock()
			for ip, v := range rl.globalVisitors {
				if now.Sub(v.lastSeen) > rl.staleAfter {
					delete(rl.globalVisitors, ip)
				}
			}
			rl.muGlobal.Unlock()

			rl.muParam.Lock()
			for ip, paramMap := range rl.paramVisitors {
				for param, v := range paramMap {
					if now.Sub(v.lastSeen) > rl.staleAfter {
						delete(paramMap, param)
					}
				}
				if len(paramMap) == 0 {
					delete(rl.paramVisitors, ip)
				}
			}
			rl.muParam.Unlock()
		}
	}()
}

// ResetVisitors clears all visitor state. Used primarily for testing.
func (rl *RateLimiter) ResetVisitors() {
	rl.muGlobal.Lock()
	rl.globalVisitors = make(map[string]*visitor)
	rl.muGlobal.Unlock()
	rl.muParam.Lock()
	rl.paramVisitors = make(map[string]map[string]*visitor)
	rl.muParam.Unlock()
}

// getIP extracts the client's IP address, considering X-Forwarded-For headers.
func getIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr // fallback
	}
	return ip
}

// Middleware wraps next with both limits. Exceeding either responds 429 with
// a JSON error envelope.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getIP(r)
		param := r.URL.Query().Get(rl.paramKey)
		if param == "" {
			// Requests without the param share a single bucket.
			param = "__none__"
		}
		if !rl.globalLimiter(ip).Allow() {
			writeLimited(w, "Rate limit exceeded: too many requests per minute per user/IP",
				"Too Many Requests (global limit)")
			return
		}
		if !rl.paramLimiter(ip, param).Allow() {
			writeLimited(w, "Rate limit exceeded: too many requests per minute per search per user/IP",
				"Too Many Requests (per-param limit)")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeLimited(w http.ResponseWriter, errMsg, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(model.Response{
		Error:   &errMsg,
		Message: message,
	})
}
